package consultation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symptom-assistant/internal/analysis"
	"symptom-assistant/internal/knowledge"
)

type fakeReport struct {
	mu     sync.Mutex
	panels []analysis.ResultPanel
}

func (f *fakeReport) RenderResultPanel(ctx context.Context, c Consultation, panel analysis.ResultPanel) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panels = append(f.panels, panel)
	return []byte("%PDF-fake " + panel.Disease), nil
}

func newTestService(t *testing.T, opts Options) (*service, *fakeReport) {
	t.Helper()
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	report := &fakeReport{}
	svc := NewService(NewRepository(), analysis.New(knowledge.Default()), report, opts)
	return svc.(*service), report
}

func newConsultation(t *testing.T, svc Service, lang string) uuid.UUID {
	t.Helper()
	c, _, err := svc.CreateConsultation(context.Background(), lang)
	require.NoError(t, err)
	return c.ID
}

const dengueText = "I have high fever, severe headache, pain behind my eyes, nausea and a skin rash, joint and muscle pain"

func TestCreateConsultation(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	c, greeting, err := svc.CreateConsultation(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "en", c.Language)
	assert.Empty(t, c.Symptoms)
	assert.NotNil(t, c.Symptoms)
	assert.Empty(t, c.History)
	assert.True(t, strings.HasPrefix(greeting.Welcome, "Hello! I'm Dr. AI Assistant"))
	assert.NotEmpty(t, greeting.Disclaimer)

	c, greeting, err = svc.CreateConsultation(ctx, "hi-IN")
	require.NoError(t, err)
	assert.Equal(t, "hi", c.Language)
	assert.Contains(t, greeting.Welcome, "नमस्ते")

	c, _, err = svc.CreateConsultation(ctx, "de")
	require.NoError(t, err)
	assert.Equal(t, "en", c.Language)
}

func TestProcessMessageAccumulatesAcrossTurns(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	id := newConsultation(t, svc, "en")

	first, err := svc.ProcessMessage(ctx, id, "fever")
	require.NoError(t, err)
	assert.Equal(t, []string{"fever"}, first.Extracted)
	assert.Empty(t, first.Predictions)
	assert.True(t, strings.HasPrefix(first.Reply, "I understand you're not feeling well."))
	assert.Nil(t, first.Panel)

	second, err := svc.ProcessMessage(ctx, id, "cough")
	require.NoError(t, err)
	assert.Equal(t, []string{"cough"}, second.Extracted)
	assert.Equal(t, []string{"fever", "cough"}, second.Symptoms)

	want := analysis.New(knowledge.Default()).Score([]string{"fever", "cough"})
	assert.Equal(t, want, second.Predictions)
	require.Len(t, second.Predictions, 2)
	assert.Equal(t, "Pneumonia", second.Predictions[0].Disease)
	assert.Equal(t, "Influenza", second.Predictions[1].Disease)
	assert.Contains(t, second.Reply, "several possibilities")

	c, err := svc.GetConsultation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"fever", "cough"}, c.Symptoms)
	require.Len(t, c.History, 4)
	assert.Equal(t, SenderUser, c.History[0].Sender)
	assert.Equal(t, "fever", c.History[0].Text)
	assert.Equal(t, SenderBot, c.History[1].Sender)
}

func TestProcessMessageGeneralReply(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	id := newConsultation(t, svc, "en")

	res, err := svc.ProcessMessage(context.Background(), id, "just saying hello")
	require.NoError(t, err)
	assert.Equal(t, analysis.IntentGreeting, res.Intent)
	assert.True(t, strings.HasPrefix(res.Reply, "Hello! I'm here to help"))
	assert.Empty(t, res.Extracted)
	assert.Empty(t, res.Symptoms)
	assert.Empty(t, res.Predictions)
}

func TestProcessMessagePanelAndEmergency(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	id := newConsultation(t, svc, "en")

	res, err := svc.ProcessMessage(context.Background(), id, dengueText)
	require.NoError(t, err)

	require.NotEmpty(t, res.Predictions)
	assert.Equal(t, "Dengue Fever", res.Predictions[0].Disease)
	assert.Contains(t, res.Reply, "1. Dengue Fever (75% match)")

	require.NotNil(t, res.Panel)
	assert.Equal(t, "Dengue Fever", res.Panel.Disease)
	assert.Equal(t, res.Symptoms, res.Panel.Symptoms)

	assert.Equal(t, analysis.EmergencyAdvisory, res.Emergency)
	assert.Equal(t, analysis.SeveritySevere, res.Context.Severity)
}

func TestProcessMessageFallsBackForUnsupportedLanguage(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	id := newConsultation(t, svc, "en")

	_, err := svc.SetLanguage(ctx, id, "de")
	require.NoError(t, err)

	res, err := svc.ProcessMessage(ctx, id, "I have fever and cough and fatigue")
	require.NoError(t, err)
	assert.Equal(t, []string{"fever", "cough", "fatigue"}, res.Extracted)
}

func TestProcessMessageHindi(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	id := newConsultation(t, svc, "hi")

	res, err := svc.ProcessMessage(context.Background(), id, "मुझे बुखार है")
	require.NoError(t, err)
	assert.Equal(t, []string{"fever"}, res.Extracted)
}

func TestProcessMessageErrors(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	id := newConsultation(t, svc, "en")

	_, err := svc.ProcessMessage(ctx, id, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.ProcessMessage(ctx, uuid.New(), "fever")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBusyConsultationRejectsOverlappingWork(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	id := newConsultation(t, svc, "en")

	require.True(t, svc.acquire(id))

	_, err := svc.ProcessMessage(ctx, id, "fever")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = svc.AddSymptom(ctx, id, "cough")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = svc.Reset(ctx, id)
	assert.ErrorIs(t, err, ErrBusy)

	other := newConsultation(t, svc, "en")
	_, err = svc.ProcessMessage(ctx, other, "fever")
	assert.NoError(t, err)

	svc.release(id)
	_, err = svc.ProcessMessage(ctx, id, "fever")
	assert.NoError(t, err)
}

func TestThinkingDelayHonoursCancellation(t *testing.T) {
	svc, _ := newTestService(t, Options{ThinkingDelay: time.Hour})
	id := newConsultation(t, svc, "en")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.ProcessMessage(ctx, id, "fever")
	assert.ErrorIs(t, err, context.Canceled)

	assert.True(t, svc.acquire(id), "busy flag must be released")
	svc.release(id)

	c, err := svc.GetConsultation(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, c.Symptoms)
}

func TestThinkingDelayDoesNotChangeResults(t *testing.T) {
	fast, _ := newTestService(t, Options{})
	slow, _ := newTestService(t, Options{ThinkingDelay: 10 * time.Millisecond})
	ctx := context.Background()

	a, err := fast.ProcessMessage(ctx, newConsultation(t, fast, "en"), dengueText)
	require.NoError(t, err)
	b, err := slow.ProcessMessage(ctx, newConsultation(t, slow, "en"), dengueText)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAddSymptom(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	id := newConsultation(t, svc, "te")

	res, err := svc.AddSymptom(ctx, id, "Fever")
	require.NoError(t, err)
	assert.Equal(t, []string{"fever"}, res.Extracted)
	assert.Equal(t, []string{"fever"}, res.Symptoms)

	res, err = svc.AddSymptom(ctx, id, "fever")
	require.NoError(t, err)
	assert.Equal(t, "You've already mentioned fever. Please describe any other symptoms you're experiencing.", res.Reply)
	assert.Equal(t, []string{"fever"}, res.Symptoms)

	_, err = svc.AddSymptom(ctx, id, "banana")
	assert.ErrorIs(t, err, ErrUnknownSymptom)

	c, err := svc.GetConsultation(ctx, id)
	require.NoError(t, err)
	require.Len(t, c.History, 3)
	assert.Equal(t, "I have fever.", c.History[0].Text)
}

func TestReset(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	id := newConsultation(t, svc, "en")

	_, err := svc.ProcessMessage(ctx, id, "fever and chills")
	require.NoError(t, err)

	c, err := svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, c.Symptoms)
	assert.Empty(t, c.History)

	res, err := svc.ProcessMessage(ctx, id, "cough")
	require.NoError(t, err)
	assert.Equal(t, []string{"cough"}, res.Symptoms)
}

func TestRenderReport(t *testing.T) {
	svc, report := newTestService(t, Options{})
	ctx := context.Background()
	id := newConsultation(t, svc, "en")

	_, err := svc.RenderReport(ctx, id)
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = svc.ProcessMessage(ctx, id, dengueText)
	require.NoError(t, err)

	pdf, err := svc.RenderReport(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake Dengue Fever", string(pdf))
	require.Len(t, report.panels, 1)
	assert.Equal(t, 75, report.panels[0].Percent)
}

func TestEndConsultation(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()
	id := newConsultation(t, svc, "en")

	require.NoError(t, svc.EndConsultation(ctx, id))
	_, err := svc.GetConsultation(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.EndConsultation(ctx, id), ErrNotFound)
}

func TestIndependentSessionsRunConcurrently(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := newConsultation(t, svc, "en")
		text := "fever and cough and fatigue"
		if i%2 == 1 {
			text = "runny nose, sneezing and congestion"
		}
		wg.Add(1)
		go func(id uuid.UUID, text string) {
			defer wg.Done()
			res, err := svc.ProcessMessage(ctx, id, text)
			assert.NoError(t, err)
			assert.Equal(t, analysis.New(knowledge.Default()).Score(res.Extracted), res.Predictions)
		}(id, text)
	}
	wg.Wait()
}
