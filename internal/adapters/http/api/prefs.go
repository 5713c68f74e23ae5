package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/metalk/feelings/internal/adapters/prefs"
	"github.com/metalk/feelings/internal/domain/catalog"
)

// PrefsHandler handles display preference requests.
type PrefsHandler struct {
	deps Dependencies
}

// NewPrefsHandler creates a new preferences handler.
func NewPrefsHandler(deps Dependencies) *PrefsHandler {
	return &PrefsHandler{deps: deps}
}

type prefsRequest struct {
	Language     string `json:"language"`
	HighContrast bool   `json:"highContrast"`
}

// HandlePrefs dispatches GET (load) and PUT (save).
func (h *PrefsHandler) HandlePrefs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *PrefsHandler) get(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_prefs"
	id := sessionID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_session", NewKind(op, ErrMissingSession))
		return
	}

	p, err := h.deps.Preferences(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PrefsHandler) put(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_prefs"
	id := sessionID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_session", NewKind(op, ErrMissingSession))
		return
	}

	var req prefsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	p := prefs.Preferences{
		Language:     catalog.Lang(req.Language),
		HighContrast: req.HighContrast,
	}
	if err := h.deps.SavePreferences(r.Context(), id, p); err != nil {
		if errors.Is(err, prefs.ErrInvalidLanguage) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
