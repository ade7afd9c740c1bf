package memory

import (
	"context"
	"sync"
	"time"

	"github.com/careloop/emr-gateway/internal/model"
	"github.com/careloop/emr-gateway/pkg/errors"
)

// Store is the in-memory mock backend. It is an explicit repository object
// injected into services, never package-level state, and every method is
// safe for concurrent use. Identifiers are strictly increasing per
// collection for the lifetime of the process.
type Store struct {
	mu sync.RWMutex

	patients    map[int64]*model.Patient
	encounters  map[int64]*model.Encounter
	medications map[int64][]model.Medication

	nextPatientID   int64
	nextEncounterID int64
}

func NewStore() *Store {
	return &Store{
		patients:    make(map[int64]*model.Patient),
		encounters:  make(map[int64]*model.Encounter),
		medications: make(map[int64][]model.Medication),
	}
}

// Seed loads the demo records served before any prompt has been submitted.
func (s *Store) Seed(ctx context.Context) error {
	patients := []*model.Patient{
		{Name: "Ada Okafor", Age: 58, Allergies: []string{"penicillin"}},
		{Name: "Tomás Rivera", Age: 64, Allergies: []string{"sulfa"}},
	}
	for _, p := range patients {
		if _, err := s.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Create(ctx context.Context, patient *model.Patient) (*model.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPatientID++
	now := time.Now().UTC()

	stored := clonePatient(patient)
	stored.ID = s.nextPatientID
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.patients[stored.ID] = stored
	return clonePatient(stored), nil
}

func (s *Store) Get(ctx context.Context, id int64) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	patient, ok := s.patients[id]
	if !ok {
		return nil, errors.NotFound("patient", nil)
	}
	return clonePatient(patient), nil
}

func (s *Store) List(ctx context.Context) ([]*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Patient, 0, len(s.patients))
	// Map iteration order is random; return patients in id order.
	for id := int64(1); id <= s.nextPatientID; id++ {
		if p, ok := s.patients[id]; ok {
			out = append(out, clonePatient(p))
		}
	}
	return out, nil
}

func (s *Store) CreateEncounter(ctx context.Context, encounter *model.Encounter) (*model.Encounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[encounter.PatientID]; !ok {
		return nil, errors.NotFound("patient", nil)
	}

	s.nextEncounterID++

	stored := *encounter
	stored.ID = s.nextEncounterID
	stored.CreatedAt = time.Now().UTC()

	s.encounters[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (s *Store) ListEncountersForPatient(ctx context.Context, patientID int64) ([]*model.Encounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Encounter
	for id := int64(1); id <= s.nextEncounterID; id++ {
		if e, ok := s.encounters[id]; ok && e.PatientID == patientID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *Store) AddMedication(ctx context.Context, medication model.Medication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// No patient existence check here: in real mode the patient lives on
	// the remote API while prescriptions are still recorded locally.
	if medication.CreatedAt.IsZero() {
		medication.CreatedAt = time.Now().UTC()
	}
	s.medications[medication.PatientID] = append(s.medications[medication.PatientID], medication)
	return nil
}

func (s *Store) ListMedicationsForPatient(ctx context.Context, patientID int64) ([]model.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meds := s.medications[patientID]
	out := make([]model.Medication, len(meds))
	copy(out, meds)
	return out, nil
}

func clonePatient(p *model.Patient) *model.Patient {
	copied := *p
	copied.Allergies = append([]string(nil), p.Allergies...)
	return &copied
}
