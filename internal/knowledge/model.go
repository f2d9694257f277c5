package knowledge

// Severity is the coarse urgency tag attached to each disease.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Disease is one static entry of the knowledge base.
type Disease struct {
	Name            string   `yaml:"name" json:"name"`
	Symptoms        []string `yaml:"symptoms" json:"symptoms"` // canonical symptom names
	Severity        Severity `yaml:"severity" json:"severity"`
	Description     string   `yaml:"description" json:"description"`
	Recommendations string   `yaml:"recommendations" json:"recommendations"`
}

// SynonymEntry maps a canonical symptom to the surface phrasings that
// identify it in one language.
type SynonymEntry struct {
	Symptom string   `yaml:"symptom" json:"symptom"`
	Phrases []string `yaml:"phrases" json:"phrases"`
}

// SynonymTable is an ordered list of entries for a single language.
// Order is significant: extraction reports symptoms in table order.
type SynonymTable []SynonymEntry

// Language carries the UI strings and speech locale for one supported
// language code.
type Language struct {
	Code         string            `yaml:"code" json:"code"`
	SpeechLocale string            `yaml:"speech_locale" json:"speech_locale"`
	Messages     map[string]string `yaml:"messages" json:"messages"`
}

// UI string keys present in every language block of the embedded document.
const (
	MsgWelcome        = "welcome"
	MsgDisclaimer     = "disclaimer"
	MsgHelp           = "help"
	MsgQuickSymptoms  = "quick_symptoms"
	MsgFever          = "fever"
	MsgCough          = "cough"
	MsgFatigue        = "fatigue"
	MsgHeadache       = "headache"
	MsgPlaceholder    = "placeholder"
	MsgListening      = "listening"
	MsgSpeechEnabled  = "speech_enabled"
	MsgSpeechDisabled = "speech_disabled"
)

// document is the on-disk shape of the knowledge base.
type document struct {
	DefaultLanguage string                  `yaml:"default_language"`
	Languages       []Language              `yaml:"languages"`
	Diseases        []Disease               `yaml:"diseases"`
	Synonyms        map[string]SynonymTable `yaml:"synonyms"`
}
