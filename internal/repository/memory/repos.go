package memory

import (
	"context"

	"github.com/careloop/emr-gateway/internal/model"
	"github.com/careloop/emr-gateway/internal/repository"
)

// Per-entity repository views over the shared store, mirroring how the
// postgres repositories would each wrap a shared db handle.

type PatientRepository struct{ store *Store }

func NewPatientRepository(store *Store) *PatientRepository {
	return &PatientRepository{store: store}
}

func (r *PatientRepository) Create(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	return r.store.Create(ctx, patient)
}

func (r *PatientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	return r.store.Get(ctx, id)
}

func (r *PatientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	return r.store.List(ctx)
}

type EncounterRepository struct{ store *Store }

func NewEncounterRepository(store *Store) *EncounterRepository {
	return &EncounterRepository{store: store}
}

func (r *EncounterRepository) Create(ctx context.Context, encounter *model.Encounter) (*model.Encounter, error) {
	return r.store.CreateEncounter(ctx, encounter)
}

func (r *EncounterRepository) ListForPatient(ctx context.Context, patientID int64) ([]*model.Encounter, error) {
	return r.store.ListEncountersForPatient(ctx, patientID)
}

type MedicationRepository struct{ store *Store }

func NewMedicationRepository(store *Store) *MedicationRepository {
	return &MedicationRepository{store: store}
}

func (r *MedicationRepository) Add(ctx context.Context, medication model.Medication) error {
	return r.store.AddMedication(ctx, medication)
}

func (r *MedicationRepository) ListForPatient(ctx context.Context, patientID int64) ([]model.Medication, error) {
	return r.store.ListMedicationsForPatient(ctx, patientID)
}

var (
	_ repository.PatientRepository    = (*PatientRepository)(nil)
	_ repository.EncounterRepository  = (*EncounterRepository)(nil)
	_ repository.MedicationRepository = (*MedicationRepository)(nil)
)
