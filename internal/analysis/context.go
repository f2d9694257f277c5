package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	SeveritySevere   = "severe"
	SeverityMild     = "mild"
	SeverityModerate = "moderate"

	FrequencyUnknown = "unknown"
)

// Duration is how long the user says a symptom has lasted. Unit is the
// matched unit word.
type Duration struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// SymptomContext is the auxiliary descriptor extracted alongside symptoms.
// It is reported to callers but does not influence scoring.
type SymptomContext struct {
	Duration  *Duration `json:"duration,omitempty"`
	Severity  string    `json:"severity"`
	Frequency string    `json:"frequency"`
}

// Tried in order; the first pattern that matches anywhere wins.
var durationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(day|days)`),
	regexp.MustCompile(`(?i)(\d+)\s*(week|weeks)`),
	regexp.MustCompile(`(?i)(\d+)\s*(hour|hours)`),
	regexp.MustCompile(`(?i)(\d+)\s*(month|months)`),
}

var (
	severeWords = []string{"severe", "terrible", "awful", "intense", "extreme", "very bad"}
	mildWords   = []string{"mild", "slight", "minor", "little"}
)

var frequencyWords = []struct{ word, frequency string }{
	{"constant", "constant"},
	{"continuous", "constant"},
	{"intermittent", "intermittent"},
	{"occasional", "occasional"},
	{"frequent", "frequent"},
	{"rare", "rare"},
}

func ExtractContext(text string) SymptomContext {
	msg := normalize(text)
	return SymptomContext{
		Duration:  extractDuration(msg),
		Severity:  extractSeverity(msg),
		Frequency: extractFrequency(msg),
	}
}

func extractDuration(msg string) *Duration {
	for _, re := range durationPatterns {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			// Only a digit run too long for int gets here.
			v = math.MaxInt
		}
		return &Duration{Value: v, Unit: m[2]}
	}
	return nil
}

func extractSeverity(msg string) string {
	if containsAny(msg, severeWords) {
		return SeveritySevere
	}
	if containsAny(msg, mildWords) {
		return SeverityMild
	}
	return SeverityModerate
}

func extractFrequency(msg string) string {
	for _, f := range frequencyWords {
		if strings.Contains(msg, f.word) {
			return f.frequency
		}
	}
	return FrequencyUnknown
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
