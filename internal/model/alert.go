package model

type AlertType string

const (
	AlertTypeAllergyRisk       AlertType = "allergy_risk"
	AlertTypeDrugInteraction   AlertType = "drug_interaction"
	AlertTypePharmacovigilance AlertType = "pharmacovigilance"
)

type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "High"
	SeverityMedium AlertSeverity = "Medium"
)

// Alert is a single textual warning produced by the rule table. Output is
// unordered and duplicates are possible; callers must not rely on either.
type Alert struct {
	Type     AlertType     `json:"type"`
	Message  string        `json:"message"`
	Severity AlertSeverity `json:"severity"`
}
