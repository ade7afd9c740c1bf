package model

import (
	"time"
)

type Encounter struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	Summary   string    `json:"summary"`
	Diagnosis string    `json:"diagnosis,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Medication struct {
	Name      string    `json:"name"`
	PatientID int64     `json:"patient_id"`
	Dose      string    `json:"dose,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateEncounterRequest struct {
	Prompt    string `json:"prompt" binding:"required,freetext"`
	PatientID int64  `json:"patient_id" binding:"required,gt=0"`
}
