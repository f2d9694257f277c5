package analysis

import (
	"cmp"
	"slices"

	"symptom-assistant/internal/knowledge"
)

// MatchThreshold is the strict lower bound a disease's confidence must
// exceed to be reported at all.
const MatchThreshold = 0.2

// Prediction is a fresh per-call result; it never aliases knowledge-base
// records.
type Prediction struct {
	Disease         string             `json:"disease"`
	Confidence      float64            `json:"confidence"`
	MatchedSymptoms int                `json:"matched_symptoms"`
	TotalSymptoms   int                `json:"total_symptoms"`
	Severity        knowledge.Severity `json:"severity"`
	Description     string             `json:"description"`
	Recommendations string             `json:"recommendations"`
}

// Score rates every disease by the fraction of its own symptom list present
// in symptoms and returns those above MatchThreshold, highest first. Equal
// confidences keep knowledge-base order.
func (a *Analyzer) Score(symptoms []string) []Prediction {
	predictions := []Prediction{}
	if len(symptoms) == 0 {
		return predictions
	}

	reported := make(map[string]bool, len(symptoms))
	for _, s := range symptoms {
		reported[s] = true
	}

	for _, d := range a.kb.Diseases() {
		total := len(d.Symptoms)
		if total == 0 {
			continue
		}
		matched := 0
		for _, s := range d.Symptoms {
			if reported[s] {
				matched++
			}
		}
		confidence := float64(matched) / float64(total)
		if confidence <= MatchThreshold {
			continue
		}
		predictions = append(predictions, Prediction{
			Disease:         d.Name,
			Confidence:      confidence,
			MatchedSymptoms: matched,
			TotalSymptoms:   total,
			Severity:        d.Severity,
			Description:     d.Description,
			Recommendations: d.Recommendations,
		})
	}

	slices.SortStableFunc(predictions, func(x, y Prediction) int {
		return cmp.Compare(y.Confidence, x.Confidence)
	})
	return predictions
}
