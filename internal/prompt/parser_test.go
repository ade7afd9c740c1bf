package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatient_FullPrompt(t *testing.T) {
	draft, err := ParsePatient("Create a patient named John Smith aged 42, allergic to penicillin and sulfa.")
	require.NoError(t, err)

	assert.Equal(t, "John Smith", draft.Name)
	assert.Equal(t, 42, draft.Age)
	assert.Equal(t, []string{"penicillin", "sulfa"}, draft.Allergies)
}

func TestParsePatient_NameOnly(t *testing.T) {
	draft, err := ParsePatient("New patient Maria Garcia")
	require.NoError(t, err)

	assert.Equal(t, "Maria Garcia", draft.Name)
	assert.Zero(t, draft.Age)
	assert.Empty(t, draft.Allergies)
}

func TestParsePatient_YearsOldPhrasing(t *testing.T) {
	draft, err := ParsePatient("Register a record for Priya Nair, 67 years old")
	require.NoError(t, err)

	assert.Equal(t, "Priya Nair", draft.Name)
	assert.Equal(t, 67, draft.Age)
}

func TestParsePatient_UnparsedIsExplicit(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"just some lowercase words with no recognizable name",
	}
	for _, c := range cases {
		draft, err := ParsePatient(c)
		assert.Nil(t, draft)
		assert.ErrorIs(t, err, ErrUnparsed)
	}
}

func TestParseEncounter_DiagnosisAndMedications(t *testing.T) {
	draft, err := ParseEncounter("Patient complains of chest pain. Prescribed Aspirin 75mg and Amlodipine.")
	require.NoError(t, err)

	assert.Equal(t, "chest pain", draft.Diagnosis)
	require.Len(t, draft.Medications, 2)
	assert.Equal(t, MedicationDraft{Name: "Aspirin", Dose: "75mg"}, draft.Medications[0])
	assert.Equal(t, MedicationDraft{Name: "Amlodipine"}, draft.Medications[1])
	assert.Contains(t, draft.Summary, "chest pain")
}

func TestParseEncounter_DiagnosedWithPhrasing(t *testing.T) {
	draft, err := ParseEncounter("Follow-up visit, diagnosed with hypertension; started on Amlodipine 5mg.")
	require.NoError(t, err)

	assert.Equal(t, "hypertension", draft.Diagnosis)
	require.Len(t, draft.Medications, 1)
	assert.Equal(t, "Amlodipine", draft.Medications[0].Name)
	assert.Equal(t, "5mg", draft.Medications[0].Dose)
}

func TestParseEncounter_PlainSummary(t *testing.T) {
	draft, err := ParseEncounter("Routine checkup, no findings")
	require.NoError(t, err)

	assert.Equal(t, "Routine checkup, no findings", draft.Summary)
	assert.Empty(t, draft.Diagnosis)
	assert.Empty(t, draft.Medications)
}

func TestParseEncounter_EmptyIsUnparsed(t *testing.T) {
	draft, err := ParseEncounter("   ")
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, ErrUnparsed)
}
