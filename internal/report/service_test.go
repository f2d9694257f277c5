package report

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symptom-assistant/internal/analysis"
	"symptom-assistant/internal/consultation"
	"symptom-assistant/internal/knowledge"
)

func availableFont(t *testing.T) string {
	for _, path := range DefaultFontPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("DejaVuSans.ttf not installed")
	return ""
}

func samplePanel() analysis.ResultPanel {
	return analysis.ResultPanel{
		Disease:         "Dengue Fever",
		Confidence:      0.75,
		Percent:         75,
		Severity:        knowledge.SeverityHigh,
		Description:     "Mosquito-borne viral infection.",
		Recommendations: "Seek immediate medical attention. Rest and stay hydrated.",
		Symptoms:        []string{"high fever", "severe headache"},
		Disclaimer:      "This is a preliminary assessment.",
	}
}

func TestRenderResultPanel(t *testing.T) {
	font := availableFont(t)
	svc := NewService([]string{"/does/not/exist.ttf", font})

	c := consultation.Consultation{ID: uuid.New(), Language: "en", CreatedAt: time.Now()}
	pdf, err := svc.RenderResultPanel(context.Background(), c, samplePanel())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestRenderResultPanelWithoutFont(t *testing.T) {
	svc := NewService([]string{"/does/not/exist.ttf"})
	_, err := svc.RenderResultPanel(context.Background(), consultation.Consultation{}, samplePanel())
	assert.ErrorIs(t, err, ErrNoFont)
}

func TestRenderResultPanelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewService(nil).RenderResultPanel(ctx, consultation.Consultation{}, samplePanel())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeverityLabel(t *testing.T) {
	assert.Equal(t, "Medium", severityLabel(knowledge.SeverityMedium))
	assert.Equal(t, "other", severityLabel("other"))
}
