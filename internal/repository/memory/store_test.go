package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/emr-gateway/internal/model"
	apperrors "github.com/careloop/emr-gateway/pkg/errors"
)

func TestStore_CreateAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var last int64
	for i := 0; i < 5; i++ {
		p, err := store.Create(ctx, &model.Patient{Name: "Test"})
		require.NoError(t, err)
		assert.Greater(t, p.ID, last)
		last = p.ID
	}
}

func TestStore_GetUnknownPatient(t *testing.T) {
	store := NewStore()

	_, err := store.Get(context.Background(), 42)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestStore_ListReturnsInIDOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for _, name := range []string{"A", "B", "C"} {
		_, err := store.Create(ctx, &model.Patient{Name: name})
		require.NoError(t, err)
	}

	patients, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, patients, 3)
	assert.Equal(t, "A", patients[0].Name)
	assert.Equal(t, "C", patients[2].Name)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	created, err := store.Create(ctx, &model.Patient{Name: "Original", Allergies: []string{"penicillin"}})
	require.NoError(t, err)

	created.Name = "Mutated"
	created.Allergies[0] = "mutated"

	fetched, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", fetched.Name)
	assert.Equal(t, []string{"penicillin"}, fetched.Allergies)
}

func TestStore_EncounterRequiresPatient(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.CreateEncounter(ctx, &model.Encounter{PatientID: 7, Summary: "visit"})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestStore_EncountersAndMedicationsPerPatient(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	p1, err := store.Create(ctx, &model.Patient{Name: "One"})
	require.NoError(t, err)
	p2, err := store.Create(ctx, &model.Patient{Name: "Two"})
	require.NoError(t, err)

	_, err = store.CreateEncounter(ctx, &model.Encounter{PatientID: p1.ID, Summary: "first"})
	require.NoError(t, err)
	_, err = store.CreateEncounter(ctx, &model.Encounter{PatientID: p2.ID, Summary: "other"})
	require.NoError(t, err)

	require.NoError(t, store.AddMedication(ctx, model.Medication{PatientID: p1.ID, Name: "Aspirin"}))

	encounters, err := store.ListEncountersForPatient(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, encounters, 1)
	assert.Equal(t, "first", encounters[0].Summary)

	meds, err := store.ListMedicationsForPatient(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, "Aspirin", meds[0].Name)

	meds, err = store.ListMedicationsForPatient(ctx, p2.ID)
	require.NoError(t, err)
	assert.Empty(t, meds)
}

func TestStore_Seed(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Seed(context.Background()))

	patients, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, patients, 2)
}

func TestStore_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, &model.Patient{Name: "Concurrent"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	patients, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, patients, 50)
}
