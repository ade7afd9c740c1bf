package alert

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/careloop/emr-gateway/internal/model"
	"github.com/careloop/emr-gateway/internal/repository"
	"github.com/careloop/emr-gateway/internal/rules"
	"github.com/careloop/emr-gateway/pkg/metrics"
)

// Notifier pushes high severity alerts somewhere a human will see them.
type Notifier interface {
	NotifyHighSeverity(ctx context.Context, patient *model.Patient, alerts []model.Alert)
}

// Service runs the rule table against a patient's recorded allergies and
// locally known medications.
type Service struct {
	table    rules.Table
	medRepo  repository.MedicationRepository
	notifier Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(
	table rules.Table,
	medRepo repository.MedicationRepository,
	notifier Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		table:    table,
		medRepo:  medRepo,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("component", "alert_service").Logger(),
	}
}

func (s *Service) EvaluateForPatient(ctx context.Context, patient *model.Patient) ([]model.Alert, error) {
	meds, err := s.medRepo.ListForPatient(ctx, patient.ID)
	if err != nil {
		return nil, err
	}

	alerts := s.table.Evaluate(patient.Allergies, meds)

	s.metrics.EvaluationsRun.Inc()
	for _, a := range alerts {
		s.metrics.AlertsEmitted.WithLabelValues(string(a.Type), string(a.Severity)).Inc()
	}
	return alerts, nil
}

// EvaluateAndNotify evaluates and forwards any High severity findings to
// the notifier. Notification failures never fail the request.
func (s *Service) EvaluateAndNotify(ctx context.Context, patient *model.Patient) ([]model.Alert, error) {
	alerts, err := s.EvaluateForPatient(ctx, patient)
	if err != nil {
		return nil, err
	}

	var high []model.Alert
	for _, a := range alerts {
		if a.Severity == model.SeverityHigh {
			high = append(high, a)
		}
	}
	if len(high) > 0 && s.notifier != nil {
		s.notifier.NotifyHighSeverity(ctx, patient, high)
	}
	return alerts, nil
}
