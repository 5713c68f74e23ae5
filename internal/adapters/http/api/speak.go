package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// SpeechHandler handles speech requests.
type SpeechHandler struct {
	deps Dependencies
}

// NewSpeechHandler creates a new speech handler.
func NewSpeechHandler(deps Dependencies) *SpeechHandler {
	return &SpeechHandler{deps: deps}
}

type speakRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// HandleSpeak handles POST /speak requests. Speech failure is soft: the
// response reports spoken=false rather than erroring, matching the
// board's degrade-to-visual behavior.
func (h *SpeechHandler) HandleSpeak(w http.ResponseWriter, r *http.Request) {
	const op = "api.speak"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req speakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing text")))
		return
	}

	if err := h.deps.Speak(r.Context(), req.Text, langFromString(req.Lang)); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"spoken": false, "reason": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spoken": true})
}

// HandleDiagnostics handles GET /speech/diagnostics requests.
func (h *SpeechHandler) HandleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.SpeechDiagnostics(r.Context()))
}
