package rules

import (
	"github.com/careloop/emr-gateway/internal/model"
)

// InteractionRule flags a risky pair of drugs. Matching is by
// case-insensitive substring, so "Aspirin 75mg" matches "aspirin".
type InteractionRule struct {
	DrugA    string              `mapstructure:"drug_a"`
	DrugB    string              `mapstructure:"drug_b"`
	Message  string              `mapstructure:"message"`
	Severity model.AlertSeverity `mapstructure:"severity"`
}

// WatchRule flags a single drug independent of anything else prescribed.
type WatchRule struct {
	Drug     string              `mapstructure:"drug"`
	Message  string              `mapstructure:"message"`
	Severity model.AlertSeverity `mapstructure:"severity"`
}

// Table is the complete alert rule set. It is data, not logic: deployments
// can override it from configuration without touching the evaluator.
type Table struct {
	Interactions []InteractionRule `mapstructure:"interactions"`
	Watchlist    []WatchRule       `mapstructure:"watchlist"`
}

// DefaultTable returns the built-in demo rule set.
func DefaultTable() Table {
	return Table{
		Interactions: []InteractionRule{
			{
				DrugA:    "aspirin",
				DrugB:    "amlodipine",
				Message:  "may enhance hypotensive effect, monitor blood pressure",
				Severity: model.SeverityHigh,
			},
			{
				DrugA:    "ibuprofen",
				DrugB:    "warfarin",
				Message:  "increased bleeding risk",
				Severity: model.SeverityHigh,
			},
			{
				DrugA:    "amoxicillin",
				DrugB:    "penicillin",
				Message:  "cross-reactive beta-lactams, duplicate therapy risk",
				Severity: model.SeverityHigh,
			},
			{
				DrugA:    "paracetamol",
				DrugB:    "codeine",
				Message:  "combined opioid preparation, watch cumulative dosing",
				Severity: model.SeverityHigh,
			},
			{
				DrugA:    "aspirin",
				DrugB:    "ibuprofen",
				Message:  "concurrent NSAIDs, increased GI bleeding risk",
				Severity: model.SeverityHigh,
			},
		},
		Watchlist: []WatchRule{
			{
				Drug:     "warfarin",
				Message:  "narrow therapeutic index, INR monitoring required",
				Severity: model.SeverityMedium,
			},
			{
				Drug:     "codeine",
				Message:  "opioid, review for dependence and respiratory depression",
				Severity: model.SeverityMedium,
			},
			{
				Drug:     "amoxicillin",
				Message:  "confirm no beta-lactam allergy before administration",
				Severity: model.SeverityMedium,
			},
		},
	}
}
