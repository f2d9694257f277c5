package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/signintech/gopdf"

	"symptom-assistant/internal/analysis"
	"symptom-assistant/internal/consultation"
	"symptom-assistant/internal/knowledge"
)

const fontName = "DejaVu"

// DefaultFontPaths are the usual DejaVuSans locations on Debian and Alpine.
var DefaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

var ErrNoFont = errors.New("no usable report font")

type Service struct {
	fontPaths []string
}

func NewService(fontPaths []string) *Service {
	if len(fontPaths) == 0 {
		fontPaths = DefaultFontPaths
	}
	return &Service{fontPaths: fontPaths}
}

func (s *Service) loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range s.fontPaths {
		err := pdf.AddTTFFont(fontName, path)
		if err == nil {
			slog.Debug("loaded report font", "path", path)
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("%w (tried %s): %v", ErrNoFont, strings.Join(s.fontPaths, ", "), lastErr)
}

// RenderResultPanel lays out the detailed analysis panel as a one-page A4 PDF.
func (s *Service) RenderResultPanel(ctx context.Context, c consultation.Consultation, panel analysis.ResultPanel) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := s.loadFont(&pdf); err != nil {
		return nil, err
	}

	w := &writer{pdf: &pdf}
	w.font(20)
	w.line("Analysis Results", 30)

	w.font(12)
	w.line(fmt.Sprintf("Date: %s", time.Now().Format("02.01.2006 15:04")), 15)
	w.line(fmt.Sprintf("Consultation: %s", c.ID), 15)
	w.line(fmt.Sprintf("Language: %s", c.Language), 25)

	w.font(14)
	w.line(fmt.Sprintf("Most Likely Condition: %s", panel.Disease), 18)
	w.font(12)
	w.line(fmt.Sprintf("Confidence: %d%%", panel.Percent), 15)
	w.line(fmt.Sprintf("Severity: %s", severityLabel(panel.Severity)), 25)

	w.section("Description:")
	w.paragraph(panel.Description)
	w.section("Recommendations:")
	w.paragraph(panel.Recommendations)

	w.section("Your Symptoms:")
	if len(panel.Symptoms) == 0 {
		w.line("- none recorded", 15)
	}
	for _, symptom := range panel.Symptoms {
		w.line("- "+symptom, 14)
	}

	pdf.SetY(760)
	w.font(9)
	w.paragraph(panel.Disclaimer)

	if w.err != nil {
		return nil, fmt.Errorf("failed to lay out report: %w", w.err)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// writer keeps the first layout error so the render path reads top-down.
type writer struct {
	pdf *gopdf.GoPdf
	err error
}

func (w *writer) font(size float64) {
	if w.err != nil {
		return
	}
	w.err = w.pdf.SetFont(fontName, "", size)
}

func (w *writer) line(text string, advance float64) {
	if w.err != nil {
		return
	}
	w.pdf.SetX(40)
	w.err = w.pdf.Cell(nil, text)
	w.pdf.Br(advance)
}

func (w *writer) section(title string) {
	w.font(14)
	w.line(title, 18)
	w.font(11)
}

func (w *writer) paragraph(text string) {
	if w.err != nil || text == "" {
		return
	}
	lines, err := w.pdf.SplitText(text, 500)
	if err != nil {
		w.err = err
		return
	}
	for _, l := range lines {
		w.line(l, 13)
	}
	w.pdf.Br(10)
}

func severityLabel(s knowledge.Severity) string {
	switch s {
	case knowledge.SeverityHigh:
		return "High - seek medical attention"
	case knowledge.SeverityMedium:
		return "Medium"
	case knowledge.SeverityLow:
		return "Low"
	default:
		return string(s)
	}
}
