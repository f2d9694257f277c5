package consultation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"symptom-assistant/internal/knowledge"
)

type Handler struct {
	svc Service
	kb  *knowledge.Base
}

func NewHandler(svc Service, kb *knowledge.Base) *Handler {
	return &Handler{svc: svc, kb: kb}
}

type CreateConsultationRequest struct {
	Language string `json:"language"`
}

type CreateConsultationResponse struct {
	ConsultationID string   `json:"consultation_id"`
	Language       string   `json:"language"`
	SpeechLocale   string   `json:"speech_locale"`
	Greeting       Greeting `json:"greeting"`
}

type ChatRequest struct {
	Text string `json:"text"`
}

type AddSymptomRequest struct {
	Symptom string `json:"symptom"`
}

type LanguageRequest struct {
	Language string `json:"language"`
}

type LanguageMessagesResponse struct {
	Language     string            `json:"language"`
	SpeechLocale string            `json:"speech_locale"`
	Messages     map[string]string `json:"messages,omitempty"`
}

type StreamEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoResult):
		status = http.StatusNotFound
	case errors.Is(err, ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrUnknownSymptom):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func consultationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid consultation ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	var req CreateConsultationRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	c, greeting, err := h.svc.CreateConsultation(r.Context(), req.Language)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateConsultationResponse{
		ConsultationID: c.ID.String(),
		Language:       c.Language,
		SpeechLocale:   h.kb.SpeechLocale(c.Language),
		Greeting:       greeting,
	})
}

func (h *Handler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetConsultation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) EndConsultation(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	if err := h.svc.EndConsultation(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	var req ChatRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	res, err := h.svc.ProcessMessage(r.Context(), id, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleChatStream emits the turn as server-sent events so a client can show
// a typing indicator between "thinking" and "reply".
func (h *Handler) HandleChatStream(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	var req ChatRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, ErrEmptyMessage)
		return
	}
	if _, err := h.svc.GetConsultation(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(event StreamEvent) {
		data, _ := json.Marshal(event)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	send(StreamEvent{Type: "user_text", Data: req.Text})
	send(StreamEvent{Type: "thinking", Data: true})

	res, err := h.svc.ProcessMessage(r.Context(), id, req.Text)
	if err != nil {
		send(StreamEvent{Type: "error", Data: err.Error()})
		return
	}

	send(StreamEvent{Type: "reply", Data: res})
	if res.Panel != nil {
		send(StreamEvent{Type: "panel", Data: res.Panel})
	}
	if res.Emergency != "" {
		send(StreamEvent{Type: "emergency", Data: res.Emergency})
	}
	send(StreamEvent{Type: "done", Data: true})
}

func (h *Handler) AddSymptom(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	var req AddSymptomRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	res, err := h.svc.AddSymptom(r.Context(), id, req.Symptom)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	var req LanguageRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	c, err := h.svc.SetLanguage(r.Context(), id, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Reset(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}
	pdf, err := h.svc.RenderReport(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=report_%s.pdf", id))
	w.Write(pdf)
}

func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	out := make([]LanguageMessagesResponse, 0)
	for _, code := range h.kb.Languages() {
		out = append(out, LanguageMessagesResponse{
			Language:     code,
			SpeechLocale: h.kb.SpeechLocale(code),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) LanguageMessages(w http.ResponseWriter, r *http.Request) {
	lang := h.kb.ResolveLanguage(chi.URLParam(r, "lang"))
	writeJSON(w, http.StatusOK, LanguageMessagesResponse{
		Language:     lang,
		SpeechLocale: h.kb.SpeechLocale(lang),
		Messages:     h.kb.Messages(lang),
	})
}

func (h *Handler) ListDiseases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.kb.Diseases())
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/consultation", h.CreateConsultation)
	r.Route("/consultation/{id}", func(r chi.Router) {
		r.Get("/", h.GetConsultation)
		r.Delete("/", h.EndConsultation)
		r.Post("/chat", h.HandleChat)
		r.Post("/chat/stream", h.HandleChatStream)
		r.Post("/symptoms", h.AddSymptom)
		r.Put("/language", h.SetLanguage)
		r.Post("/reset", h.Reset)
		r.Get("/report", h.DownloadReport)
	})
	r.Get("/languages", h.ListLanguages)
	r.Get("/languages/{lang}/messages", h.LanguageMessages)
	r.Get("/diseases", h.ListDiseases)
}
