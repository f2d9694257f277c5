package consultation

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"symptom-assistant/internal/analysis"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Consultation is one conversation's state.
type Consultation struct {
	ID       uuid.UUID `json:"id"`
	Language string    `json:"language"`

	// Accumulated canonical symptoms, deduplicated, in first-seen order.
	Symptoms []string `json:"symptoms"`

	// Append-only log for display; scoring never reads it.
	History []Message `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Consultation) addMessage(sender Sender, text string) {
	c.History = append(c.History, Message{Sender: sender, Text: text, Timestamp: time.Now()})
}

func (c *Consultation) hasSymptom(name string) bool {
	return slices.Contains(c.Symptoms, name)
}

func (c *Consultation) clone() *Consultation {
	cp := *c
	cp.Symptoms = slices.Clone(c.Symptoms)
	cp.History = slices.Clone(c.History)
	return &cp
}

// TurnResult is everything one processed message produces. Context and
// Emergency are informational and never feed back into the ranking.
type TurnResult struct {
	Reply       string                  `json:"reply"`
	Intent      analysis.Intent         `json:"intent,omitempty"`
	Extracted   []string                `json:"extracted"`
	Symptoms    []string                `json:"symptoms"`
	Predictions []analysis.Prediction   `json:"predictions"`
	Panel       *analysis.ResultPanel   `json:"panel,omitempty"`
	Context     analysis.SymptomContext `json:"context"`
	Emergency   string                  `json:"emergency,omitempty"`
}

// Greeting is the localized opening shown when a consultation starts.
type Greeting struct {
	Welcome    string `json:"welcome"`
	Disclaimer string `json:"disclaimer"`
	Help       string `json:"help"`
}
