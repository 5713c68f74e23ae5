package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/metalk/feelings/internal/board"
)

// BoardHandler handles board view and tile requests.
type BoardHandler struct {
	deps Dependencies
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(deps Dependencies) *BoardHandler {
	return &BoardHandler{deps: deps}
}

// HandleBoard handles GET /board/{category} requests.
func (h *BoardHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	const op = "api.board"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	categoryKey := strings.TrimPrefix(r.URL.Path, "/board/")
	if categoryKey == "" || strings.Contains(categoryKey, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	view, err := h.deps.BoardView(r.Context(), categoryKey, langParam(r))
	if err != nil {
		if errors.Is(err, board.ErrUnknownCategory) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleTileImage handles GET /tiles/{key}/image requests, serving the
// personalized image when installed and the reference image otherwise.
func (h *BoardHandler) HandleTileImage(w http.ResponseWriter, r *http.Request) {
	const op = "api.tile_image"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/tiles/")
	tileKey, ok := strings.CutSuffix(rest, "/image")
	if !ok || tileKey == "" || strings.Contains(tileKey, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	img, asset, err := h.deps.TileImage(r.Context(), tileKey)
	if err != nil {
		if errors.Is(err, board.ErrUnknownTile) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}

	if img == nil {
		img, err = h.deps.LoadAsset(r.Context(), asset)
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
	} else {
		// Personalized images are sanitized PNG.
		w.Header().Set("Content-Type", "image/png")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

type tapRequest struct {
	TileKey string `json:"tile_key"`
	Lang    string `json:"lang"`
}

// HandleTap handles POST /tap requests, speaking the tapped tile's
// label. Speech failure degrades to 200 with spoken=false; the board
// never breaks because audio did.
func (h *BoardHandler) HandleTap(w http.ResponseWriter, r *http.Request) {
	const op = "api.tap"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req tapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.TileKey) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing tile_key")))
		return
	}

	lang := langFromString(req.Lang)
	if err := h.deps.TapTile(r.Context(), req.TileKey, lang); err != nil {
		if errors.Is(err, board.ErrUnknownTile) {
			writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"spoken": false, "reason": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"spoken": true})
}
