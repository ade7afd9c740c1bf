package encounter

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/careloop/emr-gateway/internal/emr"
	"github.com/careloop/emr-gateway/internal/model"
	"github.com/careloop/emr-gateway/internal/prompt"
	"github.com/careloop/emr-gateway/internal/repository"
	eventService "github.com/careloop/emr-gateway/internal/service/event"
	apperrors "github.com/careloop/emr-gateway/pkg/errors"
	"github.com/careloop/emr-gateway/pkg/metrics"
)

type Remote interface {
	CreateEncounter(ctx context.Context, patientID int64, prompt string) (*model.Encounter, error)
}

type Service interface {
	CreateEncounter(ctx context.Context, patientID int64, promptText string) (*model.Encounter, error)
	ListEncounters(ctx context.Context, patientID int64) ([]*model.Encounter, error)
}

// service creates encounters via the remote AI endpoint with a mock
// fallback. Medications prescribed in the prompt are always recorded in the
// local store, whatever mode we are in: the remote API exposes no
// medication read, and the alert evaluator needs them.
type service struct {
	remote   Remote
	repo     repository.EncounterRepository
	medRepo  repository.MedicationRepository
	events   *eventService.Service
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	mockMode bool
}

func NewService(
	remote Remote,
	repo repository.EncounterRepository,
	medRepo repository.MedicationRepository,
	events *eventService.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
	mockMode bool,
) Service {
	return &service{
		remote:   remote,
		repo:     repo,
		medRepo:  medRepo,
		events:   events,
		metrics:  m,
		logger:   logger.With().Str("component", "encounter_service").Logger(),
		mockMode: mockMode,
	}
}

func (s *service) CreateEncounter(ctx context.Context, patientID int64, promptText string) (*model.Encounter, error) {
	draft, err := prompt.ParseEncounter(promptText)
	if err != nil {
		return nil, apperrors.Unprocessable("prompt could not be parsed into an encounter", err)
	}

	encounter, err := s.create(ctx, patientID, promptText, draft)
	if err != nil {
		return nil, err
	}

	s.recordMedications(ctx, patientID, draft.Medications)
	s.events.Publish(ctx, eventService.TypeEncounterCreated, encounter)
	return encounter, nil
}

func (s *service) create(ctx context.Context, patientID int64, promptText string, draft *prompt.EncounterDraft) (*model.Encounter, error) {
	if !s.mockMode {
		encounter, err := s.remote.CreateEncounter(ctx, patientID, promptText)
		switch {
		case err == nil:
			return encounter, nil
		case errors.Is(err, emr.ErrUnavailable):
			s.metrics.MockFallbacks.WithLabelValues("create_encounter").Inc()
			s.logger.Warn().Err(err).Msg("remote unavailable, creating mock encounter")
		default:
			return nil, err
		}
	}

	encounter, err := s.repo.Create(ctx, &model.Encounter{
		PatientID: patientID,
		Summary:   draft.Summary,
		Diagnosis: draft.Diagnosis,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mock encounter: %w", err)
	}
	return encounter, nil
}

func (s *service) ListEncounters(ctx context.Context, patientID int64) ([]*model.Encounter, error) {
	return s.repo.ListForPatient(ctx, patientID)
}

func (s *service) recordMedications(ctx context.Context, patientID int64, meds []prompt.MedicationDraft) {
	for _, m := range meds {
		med := model.Medication{
			Name:      m.Name,
			Dose:      m.Dose,
			PatientID: patientID,
		}
		if err := s.medRepo.Add(ctx, med); err != nil {
			s.logger.Error().Err(err).Str("medication", m.Name).Msg("failed to record medication")
		}
	}
}
