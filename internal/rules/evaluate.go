package rules

import (
	"fmt"
	"strings"

	"github.com/careloop/emr-gateway/internal/model"
)

// Evaluate runs the rule table against a patient's recorded allergies and
// current medications. Output is unordered and is not deduplicated. The
// result is invariant under reordering of the medication list: interaction
// rules match by pair membership, never by position.
func (t Table) Evaluate(allergies []string, medications []model.Medication) []model.Alert {
	var alerts []model.Alert

	meds := make([]string, 0, len(medications))
	for _, m := range medications {
		if name := normalize(m.Name); name != "" {
			meds = append(meds, name)
		}
	}

	for _, raw := range allergies {
		allergy := normalize(raw)
		if allergy == "" {
			continue
		}
		for i, med := range meds {
			if t.allergyConflict(allergy, med) {
				alerts = append(alerts, model.Alert{
					Type:     model.AlertTypeAllergyRisk,
					Severity: model.SeverityHigh,
					Message: fmt.Sprintf("Allergy risk: patient allergic to %q, prescribed %s",
						raw, medications[i].Name),
				})
			}
		}
	}

	for _, rule := range t.Interactions {
		if containsDrug(meds, rule.DrugA) && containsDrug(meds, rule.DrugB) {
			alerts = append(alerts, model.Alert{
				Type:     model.AlertTypeDrugInteraction,
				Severity: rule.Severity,
				Message: fmt.Sprintf("Drug interaction: %s + %s (%s)",
					rule.DrugA, rule.DrugB, rule.Message),
			})
		}
	}

	for _, rule := range t.Watchlist {
		for range matchingDrugs(meds, rule.Drug) {
			alerts = append(alerts, model.Alert{
				Type:     model.AlertTypePharmacovigilance,
				Severity: rule.Severity,
				Message:  fmt.Sprintf("Pharmacovigilance: %s (%s)", rule.Drug, rule.Message),
			})
		}
	}

	return alerts
}

// allergyConflict reports whether a single allergy string conflicts with a
// single medication name. Plain substring containment in either direction
// (the reverse direction only considers the medication's first word, so a
// dose suffix never matches), plus known cross-reactive pairs from the
// interaction table, e.g. a penicillin allergy against amoxicillin.
func (t Table) allergyConflict(allergy, med string) bool {
	if strings.Contains(med, allergy) {
		return true
	}
	if w := firstWord(med); w != "" && strings.Contains(allergy, w) {
		return true
	}
	for _, rule := range t.Interactions {
		a, b := normalize(rule.DrugA), normalize(rule.DrugB)
		if strings.Contains(med, a) && strings.Contains(allergy, b) {
			return true
		}
		if strings.Contains(med, b) && strings.Contains(allergy, a) {
			return true
		}
	}
	return false
}

func containsDrug(meds []string, drug string) bool {
	return len(matchingDrugs(meds, drug)) > 0
}

func matchingDrugs(meds []string, drug string) []string {
	needle := normalize(drug)
	if needle == "" {
		return nil
	}
	var out []string
	for _, med := range meds {
		if strings.Contains(med, needle) {
			out = append(out, med)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
