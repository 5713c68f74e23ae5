package api

import (
	"net/http"
	"strconv"

	"github.com/metalk/feelings/internal/export/collage"
)

// CollageHandler handles collage export requests.
type CollageHandler struct {
	deps Dependencies
}

// NewCollageHandler creates a new collage handler.
func NewCollageHandler(deps Dependencies) *CollageHandler {
	return &CollageHandler{deps: deps}
}

// HandleCollage handles GET /collage requests. Query parameters: title,
// headings (bool), per_row (int), page (a4|letter), lang.
func (h *CollageHandler) HandleCollage(w http.ResponseWriter, r *http.Request) {
	const op = "api.collage"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	opts := collage.Options{
		Title: q.Get("title"),
		Lang:  langParam(r),
	}
	if v, err := strconv.ParseBool(q.Get("headings")); err == nil {
		opts.IncludeCategoryHeadings = v
	}
	if n, err := strconv.Atoi(q.Get("per_row")); err == nil {
		opts.TilesPerRow = n
	}
	if q.Get("page") == string(collage.PageLetter) {
		opts.PageSize = collage.PageLetter
	}

	out, err := h.deps.Collage(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="feelings-collage.png"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
