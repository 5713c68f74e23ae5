package api

import (
	"net/http"
	"time"
)

// SessionHandler handles session lifecycle requests.
type SessionHandler struct {
	deps Dependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps Dependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type sessionResponse struct {
	SessionID         string `json:"session_id"`
	SessionStart      string `json:"session_start"`
	AvatarsCreated    int    `json:"avatars_created"`
	CanGenerate       bool   `json:"can_generate"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// HandleSession dispatches POST (create), GET (info), DELETE (reset).
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.info(w, r)
	case http.MethodDelete:
		h.reset(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"

	// Re-posting with an existing session id is idempotent.
	if id := sessionID(r); id != "" {
		st, err := h.deps.InitializeSession(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
			return
		}
		_, decision, err := h.deps.SessionInfo(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{
			SessionID:         st.ID,
			SessionStart:      st.SessionStart.Format(time.RFC3339),
			AvatarsCreated:    st.AvatarsCreated,
			CanGenerate:       decision.Allowed,
			RetryAfterSeconds: decision.RetryAfterSeconds,
		})
		return
	}

	st, err := h.deps.NewSession(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    st.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:    st.ID,
		SessionStart: st.SessionStart.Format(time.RFC3339),
		CanGenerate:  true,
	})
}

func (h *SessionHandler) info(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_info"
	id := sessionID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_session", NewKind(op, ErrMissingSession))
		return
	}

	st, decision, err := h.deps.SessionInfo(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}

	resp := sessionResponse{
		SessionID:         id,
		AvatarsCreated:    st.AvatarsCreated,
		CanGenerate:       decision.Allowed,
		RetryAfterSeconds: decision.RetryAfterSeconds,
	}
	if !st.SessionStart.IsZero() {
		resp.SessionStart = st.SessionStart.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) reset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_session"
	id := sessionID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_session", NewKind(op, ErrMissingSession))
		return
	}
	if err := h.deps.ResetSession(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
