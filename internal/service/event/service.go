package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/emr-gateway/pkg/messaging"
)

// Event is the envelope published for every state change the gateway sees.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

const (
	TypePatientCreated   = "PATIENT_CREATED"
	TypeEncounterCreated = "ENCOUNTER_CREATED"
	TypeWebhookReceived  = "WEBHOOK_RECEIVED"
)

// Service publishes gateway events to the configured broker. Publishing is
// best-effort: a broker failure is logged, never surfaced to the request.
type Service struct {
	broker  messaging.Broker
	channel string
	logger  zerolog.Logger
}

func NewService(broker messaging.Broker, channel string, logger zerolog.Logger) *Service {
	if channel == "" {
		channel = "emr-gateway.events"
	}
	return &Service{
		broker:  broker,
		channel: channel,
		logger:  logger.With().Str("component", "events").Logger(),
	}
}

func (s *Service) Publish(ctx context.Context, eventType string, payload interface{}) {
	evt := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.broker.Publish(ctx, s.channel, evt); err != nil {
		s.logger.Error().Err(err).Str("type", eventType).Msg("failed to publish event")
	}
}
