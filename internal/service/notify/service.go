package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/careloop/emr-gateway/internal/model"
	"github.com/careloop/emr-gateway/pkg/metrics"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Service emails High severity alerts to the configured recipient. Without
// SMTP configuration it degrades to logging the alert, so mock-mode demos
// need no mail server.
type Service struct {
	dialer  *gomail.Dialer
	cfg     Config
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewService(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Service {
	s := &Service{
		cfg:     cfg,
		metrics: m,
		logger:  logger.With().Str("component", "notify").Logger(),
	}
	if cfg.Host != "" {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

func (s *Service) NotifyHighSeverity(ctx context.Context, patient *model.Patient, alerts []model.Alert) {
	if s.dialer == nil {
		for _, a := range alerts {
			s.logger.Warn().
				Int64("patient_id", patient.ID).
				Str("type", string(a.Type)).
				Msg(a.Message)
		}
		s.metrics.NotificationsSent.WithLabelValues("log", "ok").Add(float64(len(alerts)))
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", s.cfg.To)
	msg.SetHeader("Subject", fmt.Sprintf("High severity alerts for patient %s", patient.Name))
	msg.SetBody("text/plain", formatBody(patient, alerts))

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.metrics.NotificationsSent.WithLabelValues("email", "error").Inc()
		s.logger.Error().Err(err).Int64("patient_id", patient.ID).Msg("failed to send alert email")
		return
	}
	s.metrics.NotificationsSent.WithLabelValues("email", "ok").Inc()
}

func formatBody(patient *model.Patient, alerts []model.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient: %s (id %d)\n\n", patient.Name, patient.ID)
	for _, a := range alerts {
		fmt.Fprintf(&b, "[%s] %s: %s\n", a.Severity, a.Type, a.Message)
	}
	return b.String()
}
