package knowledge

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// validate checks the invariants the matcher relies on and reports every
// violation at once.
func validate(doc *document) error {
	var result *multierror.Error

	if doc.DefaultLanguage == "" {
		result = multierror.Append(result, fmt.Errorf("default_language is not set"))
	}

	seenLang := make(map[string]bool)
	for _, l := range doc.Languages {
		if l.Code == "" {
			result = multierror.Append(result, fmt.Errorf("language with empty code"))
			continue
		}
		if seenLang[l.Code] {
			result = multierror.Append(result, fmt.Errorf("language %q declared twice", l.Code))
		}
		seenLang[l.Code] = true
	}
	if doc.DefaultLanguage != "" && !seenLang[doc.DefaultLanguage] {
		result = multierror.Append(result, fmt.Errorf("default language %q has no language block", doc.DefaultLanguage))
	}

	defaults, ok := doc.Synonyms[doc.DefaultLanguage]
	if !ok {
		result = multierror.Append(result, fmt.Errorf("default language %q has no synonym table", doc.DefaultLanguage))
	}
	canonical := make(map[string]bool, len(defaults))
	for _, e := range defaults {
		canonical[e.Symptom] = true
	}

	for lang, table := range doc.Synonyms {
		seen := make(map[string]bool, len(table))
		for _, e := range table {
			if e.Symptom == "" {
				result = multierror.Append(result, fmt.Errorf("synonyms[%s]: entry with empty symptom", lang))
				continue
			}
			if seen[e.Symptom] {
				result = multierror.Append(result, fmt.Errorf("synonyms[%s]: symptom %q listed twice", lang, e.Symptom))
			}
			seen[e.Symptom] = true
			if len(e.Phrases) == 0 {
				result = multierror.Append(result, fmt.Errorf("synonyms[%s]: symptom %q has no phrases", lang, e.Symptom))
			}
			for _, p := range e.Phrases {
				if p == "" {
					result = multierror.Append(result, fmt.Errorf("synonyms[%s]: symptom %q has an empty phrase", lang, e.Symptom))
				}
			}
			if lang != doc.DefaultLanguage && !canonical[e.Symptom] {
				result = multierror.Append(result, fmt.Errorf("synonyms[%s]: %q is not a canonical symptom", lang, e.Symptom))
			}
		}
	}

	names := make(map[string]bool, len(doc.Diseases))
	for i, d := range doc.Diseases {
		if d.Name == "" {
			result = multierror.Append(result, fmt.Errorf("disease #%d has no name", i))
		} else if names[d.Name] {
			result = multierror.Append(result, fmt.Errorf("disease %q declared twice", d.Name))
		}
		names[d.Name] = true
		if !d.Severity.Valid() {
			result = multierror.Append(result, fmt.Errorf("disease %q: invalid severity %q", d.Name, d.Severity))
		}
		if len(d.Symptoms) == 0 {
			result = multierror.Append(result, fmt.Errorf("disease %q has no symptoms", d.Name))
		}
		listed := make(map[string]bool, len(d.Symptoms))
		for _, s := range d.Symptoms {
			if listed[s] {
				result = multierror.Append(result, fmt.Errorf("disease %q: symptom %q listed twice", d.Name, s))
			}
			listed[s] = true
			if !canonical[s] {
				result = multierror.Append(result, fmt.Errorf("disease %q: symptom %q is not a canonical symptom", d.Name, s))
			}
		}
	}

	return result.ErrorOrNil()
}
