package repository

import (
	"context"

	"github.com/careloop/emr-gateway/internal/model"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) (*model.Patient, error)
	Get(ctx context.Context, id int64) (*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
}

type EncounterRepository interface {
	Create(ctx context.Context, encounter *model.Encounter) (*model.Encounter, error)
	ListForPatient(ctx context.Context, patientID int64) ([]*model.Encounter, error)
}

type MedicationRepository interface {
	Add(ctx context.Context, medication model.Medication) error
	ListForPatient(ctx context.Context, patientID int64) ([]model.Medication, error)
}
