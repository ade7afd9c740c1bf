package patient

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

// Remote is the slice of the EMR client this service needs.
type Remote interface {
	ListPatients(ctx context.Context) ([]*model.Patient, error)
	GetPatient(ctx context.Context, id int64) (*model.Patient, error)
	CreatePatient(ctx context.Context, prompt string) (*model.Patient, error)
}

type Service interface {
	ListPatients(ctx context.Context) ([]*model.Patient, error)
	GetPatient(ctx context.Context, id int64) (*model.Patient, error)
	CreatePatient(ctx context.Context, promptText string) (*model.Patient, error)
}

// service forwards patient operations to the remote EMR API and falls back
// to the in-memory store when the remote is unavailable. With mockMode set
// the remote is never consulted.
type service struct {
	remote   Remote
	repo     repository.PatientRepository
	events   *eventService.Service
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	mockMode bool
}

func NewService(
	remote Remote,
	repo repository.PatientRepository,
	events *eventService.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
	mockMode bool,
) Service {
	return &service{
		remote:   remote,
		repo:     repo,
		events:   events,
		metrics:  m,
		logger:   logger.With().Str("component", "patient_service").Logger(),
		mockMode: mockMode,
	}
}

func (s *service) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	if s.mockMode {
		return s.repo.List(ctx)
	}

	patients, err := s.remote.ListPatients(ctx)
	if err != nil {
		if !errors.Is(err, emr.ErrUnavailable) {
			return nil, err
		}
		s.fallback(ctx, "list_patients", err)
		return s.repo.List(ctx)
	}
	return patients, nil
}

func (s *service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	if s.mockMode {
		return s.repo.Get(ctx, id)
	}

	patient, err := s.remote.GetPatient(ctx, id)
	if err != nil {
		if !errors.Is(err, emr.ErrUnavailable) {
			return nil, err
		}
		s.fallback(ctx, "get_patient", err)
		return s.repo.Get(ctx, id)
	}
	return patient, nil
}

func (s *service) CreatePatient(ctx context.Context, promptText string) (*model.Patient, error) {
	if !s.mockMode {
		patient, err := s.remote.CreatePatient(ctx, promptText)
		switch {
		case err == nil:
			s.events.Publish(ctx, eventService.TypePatientCreated, patient)
			return patient, nil
		case errors.Is(err, emr.ErrUnavailable):
			s.fallback(ctx, "create_patient", err)
		default:
			return nil, err
		}
	}
	return s.createMock(ctx, promptText)
}

// createMock serves patient creation from the local store, standing in for
// the remote AI. The prompt must parse; an unintelligible prompt is a 422,
// never a silently defaulted record.
func (s *service) createMock(ctx context.Context, promptText string) (*model.Patient, error) {
	draft, err := prompt.ParsePatient(promptText)
	if err != nil {
		return nil, apperrors.Unprocessable("prompt could not be parsed into a patient record", err)
	}

	patient, err := s.repo.Create(ctx, &model.Patient{
		Name:      draft.Name,
		Age:       draft.Age,
		Allergies: draft.Allergies,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mock patient: %w", err)
	}

	s.events.Publish(ctx, eventService.TypePatientCreated, patient)
	return patient, nil
}

func (s *service) fallback(ctx context.Context, operation string, err error) {
	s.metrics.MockFallbacks.WithLabelValues(operation).Inc()
	s.logger.Warn().Err(err).Str("operation", operation).Msg("remote unavailable, serving from mock store")
}
