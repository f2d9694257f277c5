// Package analysis holds the symptom matching pipeline: extraction, disease
// scoring, reply composition and the auxiliary context and emergency checks.
// Everything here is synchronous and total: empty or unrecognised input
// produces empty results, never errors.
package analysis

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"symptom-assistant/internal/knowledge"
)

// Analyzer runs the pipeline against one knowledge base. It holds no
// mutable state and is safe for concurrent use.
type Analyzer struct {
	kb *knowledge.Base
}

func New(kb *knowledge.Base) *Analyzer {
	return &Analyzer{kb: kb}
}

func (a *Analyzer) Knowledge() *knowledge.Base { return a.kb }

// normalize case-folds text. A Caser keeps internal state, so one is built
// per call.
func normalize(text string) string {
	return cases.Lower(language.Und).String(text)
}

// Extract returns the canonical symptoms whose phrases occur in text, in
// synonym-table order. Matching is plain substring containment, so "cold"
// will also match inside "scolding".
func (a *Analyzer) Extract(text, lang string) []string {
	msg := normalize(text)
	found := []string{}
	seen := make(map[string]bool)
	for _, entry := range a.kb.Synonyms(lang) {
		if seen[entry.Symptom] {
			continue
		}
		for _, phrase := range entry.Phrases {
			if strings.Contains(msg, normalize(phrase)) {
				found = append(found, entry.Symptom)
				seen[entry.Symptom] = true
				break
			}
		}
	}
	return found
}

// ExtractWithContext combines Extract and ExtractContext for callers that
// want both in one pass.
func (a *Analyzer) ExtractWithContext(text, lang string) ([]string, SymptomContext) {
	return a.Extract(text, lang), ExtractContext(text)
}

// MergeSymptoms returns the ordered union of existing and added.
func MergeSymptoms(existing, added []string) []string {
	out := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]bool, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, s := range list {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
