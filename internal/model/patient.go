package model

import (
	"time"
)

type Patient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age,omitempty"`
	Allergies []string  `json:"allergies"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreatePatientRequest struct {
	Prompt string `json:"prompt" binding:"required,freetext"`
}

// PatientDashboard is the computed patient detail view: the record itself,
// its current medications and the alerts the rule table produced for them.
type PatientDashboard struct {
	Patient     *Patient     `json:"patient"`
	Encounters  []*Encounter `json:"encounters"`
	Medications []Medication `json:"medications"`
	Alerts      []Alert      `json:"alerts"`
}
