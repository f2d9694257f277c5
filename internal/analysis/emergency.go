package analysis

import "strings"

const EmergencyAdvisory = "⚠️ EMERGENCY: You're experiencing symptoms that require immediate medical attention. " +
	"Please call emergency services (911) immediately or go to the nearest emergency room."

var emergencyPhrases = []string{
	"difficulty breathing",
	"shortness of breath",
	"chest pain",
	"severe chest pain",
	"unconsciousness",
	"severe bleeding",
	"high fever",
}

// CheckEmergency returns the urgent-care advisory when any supplied phrase
// contains one of the emergency phrases. It is independent of scoring.
func CheckEmergency(phrases []string) (string, bool) {
	for _, urgent := range emergencyPhrases {
		for _, p := range phrases {
			if strings.Contains(normalize(p), urgent) {
				return EmergencyAdvisory, true
			}
		}
	}
	return "", false
}
