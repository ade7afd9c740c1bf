package prompt

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnparsed is returned when a prompt carries no extractable structure.
// Callers surface it as a validation failure; the parser never substitutes
// a default record for input it could not understand.
var ErrUnparsed = errors.New("prompt could not be parsed")

// PatientDraft is the structured result of parsing a patient prompt.
type PatientDraft struct {
	Name      string
	Age       int
	Allergies []string
}

// EncounterDraft is the structured result of parsing an encounter prompt.
type EncounterDraft struct {
	Summary     string
	Diagnosis   string
	Medications []MedicationDraft
}

type MedicationDraft struct {
	Name string
	Dose string
}

var (
	namePattern = regexp.MustCompile(`(?:patient|named|called|for)\s+([A-Z][a-zA-Z'-]+(?:\s+[A-Z][a-zA-Z'-]+)*)`)
	agePattern  = regexp.MustCompile(`(?i)(?:aged?\s+(\d{1,3})|(\d{1,3})\s*(?:years?\s+old|y/?o))`)

	allergyPattern   = regexp.MustCompile(`(?i)allerg(?:ic\s+to|ies:?)\s+([a-zA-Z ,]+?)(?:\s*[.;]|$)`)
	diagnosisPattern = regexp.MustCompile(`(?i)(?:diagnos(?:ed\s+with|is:?)|complain(?:s|ing)\s+of|presents?\s+with)\s+([a-zA-Z ,'-]+?)(?:\s*[.;,]\s+(?:prescrib|start)|\s*[.;]|$)`)
	medsPattern      = regexp.MustCompile(`(?i)(?:prescrib(?:e|ed|ing)|started\s+on|taking)\s+([a-zA-Z0-9 ,]+?)(?:\s*[.;]|$)`)
	dosePattern      = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?\s*(?:mg|mcg|g|ml|units?))$`)
)

// ParsePatient extracts a patient record from a free-text prompt such as
// "Create a patient named John Smith aged 42, allergic to penicillin and
// sulfa". A prompt without a recognizable name is unparsed, not defaulted.
func ParsePatient(text string) (*PatientDraft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrUnparsed
	}

	m := namePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, ErrUnparsed
	}

	draft := &PatientDraft{Name: strings.TrimSpace(m[1])}

	if am := agePattern.FindStringSubmatch(text); am != nil {
		raw := am[1]
		if raw == "" {
			raw = am[2]
		}
		if age, err := strconv.Atoi(raw); err == nil {
			draft.Age = age
		}
	}

	if al := allergyPattern.FindStringSubmatch(text); al != nil {
		draft.Allergies = splitList(al[1])
	}

	return draft, nil
}

// ParseEncounter extracts an encounter from a free-text prompt. The full
// prompt becomes the summary; diagnosis and prescribed medications are
// pulled out when the phrasing allows it.
func ParseEncounter(text string) (*EncounterDraft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrUnparsed
	}

	draft := &EncounterDraft{Summary: text}

	if dm := diagnosisPattern.FindStringSubmatch(text); dm != nil {
		draft.Diagnosis = strings.TrimSpace(dm[1])
	}

	if mm := medsPattern.FindStringSubmatch(text); mm != nil {
		for _, item := range splitList(mm[1]) {
			draft.Medications = append(draft.Medications, parseMedication(item))
		}
	}

	return draft, nil
}

// parseMedication splits "Aspirin 75mg" into name and dose. Anything that
// does not end in a dose token is all name.
func parseMedication(item string) MedicationDraft {
	fields := strings.Fields(item)
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		if dosePattern.MatchString(last) {
			return MedicationDraft{
				Name: strings.Join(fields[:len(fields)-1], " "),
				Dose: last,
			}
		}
	}
	return MedicationDraft{Name: strings.Join(fields, " ")}
}

func splitList(s string) []string {
	s = strings.ReplaceAll(s, " and ", ",")
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
