package api

import (
	"errors"
	"io"
	"net/http"

	service "github.com/metalk/feelings/internal/app"
	"github.com/metalk/feelings/internal/domain/validate"
)

// maxMultipartMemory bounds in-memory multipart parsing; larger parts
// spill to disk. The validator enforces the real upload ceiling.
const maxMultipartMemory = 8 << 20

// UploadHandler handles photo upload requests.
type UploadHandler struct {
	deps Dependencies
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(deps Dependencies) *UploadHandler {
	return &UploadHandler{deps: deps}
}

// HandleUpload handles POST /upload requests. The multipart field is
// named "photo". Rejections and cooldown blocks are well-formed 4xx
// responses carrying the user-facing reason, not errors.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	id := sessionID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_session", NewKind(op, ErrMissingSession))
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing photo field")))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	outcome, err := h.deps.Upload(r.Context(), id, validate.Upload{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Data:      data,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}

	switch outcome.Status {
	case service.UploadOnCooldown:
		writeJSON(w, http.StatusTooManyRequests, outcome)
	case service.UploadRejected:
		writeJSON(w, http.StatusUnprocessableEntity, outcome)
	default:
		writeJSON(w, http.StatusAccepted, outcome)
	}
}
