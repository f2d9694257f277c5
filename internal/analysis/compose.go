package analysis

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"symptom-assistant/internal/knowledge"
)

const (
	// NarrativeThreshold gates the single-disease narrative reply.
	NarrativeThreshold = 0.7
	// PanelThreshold gates the detailed result panel. It is checked
	// independently of NarrativeThreshold.
	PanelThreshold = 0.6

	listLimit = 3
)

const (
	replyNeedDetail = "I understand you're not feeling well. Could you please describe your symptoms in more detail? " +
		"For example, are you experiencing fever, cough, fatigue, or any other specific symptoms?"
	replyConsult   = "I recommend consulting with a healthcare provider for proper diagnosis."
	replyMoreAbout = "I've identified some symptoms that could indicate various conditions. " +
		"To provide a more accurate assessment, could you tell me more about:\n" +
		"• How long have you been experiencing these symptoms?\n" +
		"• How severe are they?\n" +
		"• Do you have any other symptoms?"

	panelDisclaimer = "This is a preliminary assessment. Please consult a healthcare provider for proper diagnosis and treatment."
)

// RoundPercent converts a confidence in [0,1] to a whole percentage.
func RoundPercent(confidence float64) int {
	return int(math.Round(confidence * 100))
}

// Compose picks the reply for a turn in which at least one symptom was
// recognised. predictions must already be ranked. extracted is the set
// recognised in this turn; none of the templates quote it today.
func Compose(predictions []Prediction, extracted []string) string {
	switch {
	case len(predictions) == 0:
		return replyNeedDetail
	case len(predictions) == 1 && predictions[0].Confidence > NarrativeThreshold:
		p := predictions[0]
		return fmt.Sprintf("Based on your symptoms, there's a strong possibility you might have %s. %s \n\n%s",
			p.Disease, p.Description, p.Recommendations)
	case len(predictions) > 1:
		var b strings.Builder
		b.WriteString("Based on your symptoms, there are several possibilities:\n\n")
		for i, p := range predictions[:min(listLimit, len(predictions))] {
			fmt.Fprintf(&b, "%d. %s (%d%% match)\n", i+1, p.Disease, RoundPercent(p.Confidence))
		}
		b.WriteString("\n")
		b.WriteString(replyConsult)
		return b.String()
	default:
		return replyMoreAbout
	}
}

// ResultPanel is the detailed view shown alongside a confident reply.
type ResultPanel struct {
	Disease         string             `json:"disease"`
	Confidence      float64            `json:"confidence"`
	Percent         int                `json:"percent"`
	Severity        knowledge.Severity `json:"severity"`
	Description     string             `json:"description"`
	Recommendations string             `json:"recommendations"`
	Symptoms        []string           `json:"symptoms"`
	Disclaimer      string             `json:"disclaimer"`
}

// BuildPanel returns the panel for the top prediction when its confidence
// exceeds PanelThreshold. symptoms is the full accumulated session set.
func BuildPanel(predictions []Prediction, symptoms []string) (ResultPanel, bool) {
	if len(predictions) == 0 || predictions[0].Confidence <= PanelThreshold {
		return ResultPanel{}, false
	}
	top := predictions[0]
	return ResultPanel{
		Disease:         top.Disease,
		Confidence:      top.Confidence,
		Percent:         RoundPercent(top.Confidence),
		Severity:        top.Severity,
		Description:     top.Description,
		Recommendations: top.Recommendations,
		Symptoms:        slices.Clone(symptoms),
		Disclaimer:      panelDisclaimer,
	}, true
}
