package knowledge

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed data/knowledge.yaml
var embeddedDocument []byte

const fallbackSpeechLocale = "en-US"

// Base is the immutable, process-wide knowledge base. All accessors return
// copies so callers can never mutate shared state.
type Base struct {
	defaultLanguage string
	languages       []Language
	diseases        []Disease
	synonyms        map[string]SynonymTable
	canonical       map[string]struct{}
}

var (
	defaultBase *Base
	defaultOnce sync.Once
)

// Default returns the knowledge base compiled into the binary. The embedded
// document is validated by tests, so a failure here is a programming error.
func Default() *Base {
	defaultOnce.Do(func() {
		kb, err := Load(bytes.NewReader(embeddedDocument))
		if err != nil {
			panic(fmt.Sprintf("knowledge: embedded document is invalid: %v", err))
		}
		defaultBase = kb
	})
	return defaultBase
}

// Load decodes and validates a YAML knowledge document.
func Load(r io.Reader) (*Base, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge document: %w", err)
	}
	doc.DefaultLanguage = strings.ToLower(strings.TrimSpace(doc.DefaultLanguage))
	if err := validate(&doc); err != nil {
		return nil, err
	}

	kb := &Base{
		defaultLanguage: doc.DefaultLanguage,
		languages:       doc.Languages,
		diseases:        doc.Diseases,
		synonyms:        doc.Synonyms,
		canonical:       make(map[string]struct{}),
	}
	for _, e := range doc.Synonyms[doc.DefaultLanguage] {
		kb.canonical[e.Symptom] = struct{}{}
	}
	return kb, nil
}

// LoadFile reads a knowledge document from disk.
func LoadFile(path string) (*Base, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (b *Base) DefaultLanguage() string { return b.defaultLanguage }

// Diseases returns the disease table in declaration order.
func (b *Base) Diseases() []Disease {
	out := make([]Disease, len(b.diseases))
	for i, d := range b.diseases {
		d.Symptoms = slices.Clone(d.Symptoms)
		out[i] = d
	}
	return out
}

// Synonyms returns the synonym table for lang, falling back to the default
// language when lang has no table of its own.
func (b *Base) Synonyms(lang string) SynonymTable {
	table, ok := b.synonyms[lang]
	if !ok {
		table = b.synonyms[b.defaultLanguage]
	}
	out := make(SynonymTable, len(table))
	for i, e := range table {
		out[i] = SynonymEntry{Symptom: e.Symptom, Phrases: slices.Clone(e.Phrases)}
	}
	return out
}

// HasSymptom reports whether name is a canonical symptom.
func (b *Base) HasSymptom(name string) bool {
	_, ok := b.canonical[name]
	return ok
}

// Languages lists the supported language codes in document order.
func (b *Base) Languages() []string {
	codes := make([]string, 0, len(b.languages))
	for _, l := range b.languages {
		codes = append(codes, l.Code)
	}
	return codes
}

// ResolveLanguage maps an arbitrary tag ("hi-IN", "auto", "", "de") to a
// supported language code. Anything unsupported resolves to the default.
func (b *Base) ResolveLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.EqualFold(tag, "auto") {
		return b.defaultLanguage
	}
	t, err := language.Parse(tag)
	if err != nil {
		return b.defaultLanguage
	}
	base, _ := t.Base()
	code := base.String()
	if b.language(code) == nil {
		return b.defaultLanguage
	}
	return code
}

// Message returns the UI string for key in lang. Missing translations fall
// back to the default language, then to the empty string.
func (b *Base) Message(lang, key string) string {
	if l := b.language(lang); l != nil {
		if msg, ok := l.Messages[key]; ok {
			return msg
		}
	}
	if l := b.language(b.defaultLanguage); l != nil {
		return l.Messages[key]
	}
	return ""
}

// Messages returns every UI string for lang with per-key fallback applied.
func (b *Base) Messages(lang string) map[string]string {
	out := make(map[string]string)
	if l := b.language(b.defaultLanguage); l != nil {
		for k, v := range l.Messages {
			out[k] = v
		}
	}
	if l := b.language(lang); l != nil {
		for k, v := range l.Messages {
			out[k] = v
		}
	}
	return out
}

func (b *Base) SpeechLocale(lang string) string {
	if l := b.language(lang); l != nil && l.SpeechLocale != "" {
		return l.SpeechLocale
	}
	return fallbackSpeechLocale
}

func (b *Base) language(code string) *Language {
	for i := range b.languages {
		if b.languages[i].Code == code {
			return &b.languages[i]
		}
	}
	return nil
}
