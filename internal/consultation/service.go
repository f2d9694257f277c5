package consultation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"symptom-assistant/internal/analysis"
	"symptom-assistant/internal/knowledge"
)

var (
	ErrBusy           = errors.New("consultation is already processing a message")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrUnknownSymptom = errors.New("unknown symptom")
	ErrNoResult       = errors.New("no result confident enough to report")
)

// ReportService renders the detailed result panel for download.
type ReportService interface {
	RenderResultPanel(ctx context.Context, c Consultation, panel analysis.ResultPanel) ([]byte, error)
}

type Service interface {
	CreateConsultation(ctx context.Context, language string) (*Consultation, Greeting, error)
	GetConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error)
	ProcessMessage(ctx context.Context, id uuid.UUID, text string) (*TurnResult, error)
	AddSymptom(ctx context.Context, id uuid.UUID, symptom string) (*TurnResult, error)
	SetLanguage(ctx context.Context, id uuid.UUID, language string) (*Consultation, error)
	Reset(ctx context.Context, id uuid.UUID) (*Consultation, error)
	EndConsultation(ctx context.Context, id uuid.UUID) error
	RenderReport(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type Options struct {
	// DefaultLanguage is used when a consultation is created without one.
	DefaultLanguage string
	// ThinkingDelay is a cosmetic pause before each reply so clients can
	// show a typing indicator. It never changes what is computed.
	ThinkingDelay time.Duration
}

type service struct {
	repo      Repository
	analyzer  *analysis.Analyzer
	reportSvc ReportService
	opts      Options

	mu   sync.Mutex
	busy map[uuid.UUID]bool
}

func NewService(repo Repository, analyzer *analysis.Analyzer, report ReportService, opts Options) Service {
	return &service{
		repo:      repo,
		analyzer:  analyzer,
		reportSvc: report,
		opts:      opts,
		busy:      make(map[uuid.UUID]bool),
	}
}

func (s *service) kb() *knowledge.Base { return s.analyzer.Knowledge() }

func (s *service) greeting(lang string) Greeting {
	return Greeting{
		Welcome:    s.kb().Message(lang, knowledge.MsgWelcome),
		Disclaimer: s.kb().Message(lang, knowledge.MsgDisclaimer),
		Help:       s.kb().Message(lang, knowledge.MsgHelp),
	}
}

func (s *service) CreateConsultation(ctx context.Context, language string) (*Consultation, Greeting, error) {
	if strings.TrimSpace(language) == "" {
		language = s.opts.DefaultLanguage
	}
	c := &Consultation{
		ID:        uuid.New(),
		Language:  s.kb().ResolveLanguage(language),
		Symptoms:  []string{},
		History:   []Message{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, Greeting{}, err
	}
	slog.Info("consultation created", "consultation_id", c.ID, "language", c.Language)
	return c, s.greeting(c.Language), nil
}

func (s *service) GetConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

// ProcessMessage runs one conversational turn: extract, accumulate, score,
// compose. Only one turn per consultation may be in flight.
func (s *service) ProcessMessage(ctx context.Context, id uuid.UUID, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	return s.runTurn(ctx, id, text)
}

// AddSymptom handles a quick-symptom button press for a canonical symptom.
func (s *service) AddSymptom(ctx context.Context, id uuid.UUID, symptom string) (*TurnResult, error) {
	symptom = strings.ToLower(strings.TrimSpace(symptom))
	if !s.kb().HasSymptom(symptom) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSymptom, symptom)
	}

	if !s.acquire(id) {
		return nil, ErrBusy
	}
	defer s.release(id)

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.hasSymptom(symptom) {
		reply := fmt.Sprintf("You've already mentioned %s. Please describe any other symptoms you're experiencing.", symptom)
		c.addMessage(SenderBot, reply)
		if err := s.repo.Save(ctx, c); err != nil {
			return nil, err
		}
		return &TurnResult{
			Reply:       reply,
			Extracted:   []string{},
			Symptoms:    slices.Clone(c.Symptoms),
			Predictions: []analysis.Prediction{},
			Context:     analysis.ExtractContext(""),
		}, nil
	}

	if err := s.think(ctx); err != nil {
		return nil, err
	}
	// The phrase is English, so the symptom is passed through directly
	// rather than relying on extraction in the session language.
	res := s.turn(c, fmt.Sprintf("I have %s.", symptom), []string{symptom})
	return s.finishTurn(ctx, c, res)
}

func (s *service) runTurn(ctx context.Context, id uuid.UUID, text string) (*TurnResult, error) {
	if !s.acquire(id) {
		return nil, ErrBusy
	}
	defer s.release(id)

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.think(ctx); err != nil {
		return nil, err
	}
	return s.finishTurn(ctx, c, s.turn(c, text, nil))
}

func (s *service) finishTurn(ctx context.Context, c *Consultation, res *TurnResult) (*TurnResult, error) {
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save consultation: %w", err)
	}
	slog.Info("turn processed",
		"consultation_id", c.ID,
		"language", c.Language,
		"extracted", len(res.Extracted),
		"symptoms", len(res.Symptoms),
		"predictions", len(res.Predictions),
		"panel", res.Panel != nil,
		"emergency", res.Emergency != "")
	return res, nil
}

// turn mutates c in place and reports what happened.
func (s *service) turn(c *Consultation, text string, preset []string) *TurnResult {
	c.addMessage(SenderUser, text)

	extracted, sctx := s.analyzer.ExtractWithContext(text, c.Language)
	extracted = analysis.MergeSymptoms(preset, extracted)

	res := &TurnResult{
		Extracted:   extracted,
		Predictions: []analysis.Prediction{},
		Context:     sctx,
	}

	if len(extracted) > 0 {
		c.Symptoms = analysis.MergeSymptoms(c.Symptoms, extracted)
		res.Predictions = s.analyzer.Score(c.Symptoms)
		res.Reply = analysis.Compose(res.Predictions, extracted)
		if panel, ok := analysis.BuildPanel(res.Predictions, c.Symptoms); ok {
			res.Panel = &panel
		}
	} else {
		res.Intent = analysis.ClassifyIntent(text)
		res.Reply = analysis.GeneralReply(res.Intent)
	}
	res.Symptoms = slices.Clone(c.Symptoms)

	if advisory, ok := analysis.CheckEmergency(append(slices.Clone(c.Symptoms), text)); ok {
		res.Emergency = advisory
	}

	c.addMessage(SenderBot, res.Reply)
	return res
}

func (s *service) think(ctx context.Context) error {
	if s.opts.ThinkingDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.opts.ThinkingDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *service) SetLanguage(ctx context.Context, id uuid.UUID, language string) (*Consultation, error) {
	if !s.acquire(id) {
		return nil, ErrBusy
	}
	defer s.release(id)

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Language = s.kb().ResolveLanguage(language)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Reset clears symptoms and history. The knowledge base is untouched.
func (s *service) Reset(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	if !s.acquire(id) {
		return nil, ErrBusy
	}
	defer s.release(id)

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Symptoms = []string{}
	c.History = []Message{}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("consultation reset", "consultation_id", id)
	return c, nil
}

func (s *service) EndConsultation(ctx context.Context, id uuid.UUID) error {
	if !s.acquire(id) {
		return ErrBusy
	}
	defer s.release(id)

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("consultation ended", "consultation_id", id)
	return nil
}

func (s *service) RenderReport(ctx context.Context, id uuid.UUID) ([]byte, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	panel, ok := analysis.BuildPanel(s.analyzer.Score(c.Symptoms), c.Symptoms)
	if !ok {
		return nil, ErrNoResult
	}
	slog.Info("rendering report", "consultation_id", id, "disease", panel.Disease, "percent", panel.Percent)
	return s.reportSvc.RenderResultPanel(ctx, *c, panel)
}

func (s *service) acquire(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[id] {
		return false
	}
	s.busy[id] = true
	return true
}

func (s *service) release(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, id)
}
