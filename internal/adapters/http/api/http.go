// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/metalk/feelings/internal/adapters/prefs"
	"github.com/metalk/feelings/internal/adapters/repository"
	service "github.com/metalk/feelings/internal/app"
	"github.com/metalk/feelings/internal/board"
	"github.com/metalk/feelings/internal/domain/catalog"
	"github.com/metalk/feelings/internal/domain/session"
	"github.com/metalk/feelings/internal/domain/validate"
	"github.com/metalk/feelings/internal/export/collage"
	"github.com/metalk/feelings/internal/speech"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	NewSession(ctx context.Context) (session.State, error)
	InitializeSession(ctx context.Context, id string) (session.State, error)
	SessionInfo(ctx context.Context, id string) (session.State, session.Decision, error)
	ResetSession(ctx context.Context, id string) error

	Upload(ctx context.Context, sessionID string, up validate.Upload) (service.UploadOutcome, error)
	Progress(ctx context.Context) repository.Progress
	SubscribeProgress() (<-chan repository.Progress, func())

	BoardView(ctx context.Context, categoryKey string, lang catalog.Lang) (board.View, error)
	TileImage(ctx context.Context, tileKey string) ([]byte, string, error)
	LoadAsset(ctx context.Context, id string) ([]byte, error)
	TapTile(ctx context.Context, tileKey string, lang catalog.Lang) error

	Speak(ctx context.Context, text string, lang catalog.Lang) error
	SpeechDiagnostics(ctx context.Context) speech.Diagnostics

	Collage(ctx context.Context, opts collage.Options) ([]byte, error)

	Preferences(ctx context.Context, sessionID string) (prefs.Preferences, error)
	SavePreferences(ctx context.Context, sessionID string, p prefs.Preferences) error
}

// StatsProvider exposes service statistics for the stats endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionHandler  *SessionHandler
	uploadHandler   *UploadHandler
	boardHandler    *BoardHandler
	progressHandler *ProgressHandler
	speechHandler   *SpeechHandler
	collageHandler  *CollageHandler
	prefsHandler    *PrefsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionHandler:  NewSessionHandler(deps),
		uploadHandler:   NewUploadHandler(deps),
		boardHandler:    NewBoardHandler(deps),
		progressHandler: NewProgressHandler(deps),
		speechHandler:   NewSpeechHandler(deps),
		collageHandler:  NewCollageHandler(deps),
		prefsHandler:    NewPrefsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/session", MetricsMiddleware(s.sessionHandler.HandleSession, "session"))
	mux.HandleFunc("/upload", MetricsMiddleware(s.uploadHandler.HandleUpload, "upload"))
	mux.HandleFunc("/board/", MetricsMiddleware(s.boardHandler.HandleBoard, "board"))
	mux.HandleFunc("/tiles/", MetricsMiddleware(s.boardHandler.HandleTileImage, "tile_image"))
	mux.HandleFunc("/tap", MetricsMiddleware(s.boardHandler.HandleTap, "tap"))
	mux.HandleFunc("/progress", MetricsMiddleware(s.progressHandler.HandleProgress, "progress"))
	mux.HandleFunc("/progress/ws", s.progressHandler.HandleProgressWS)
	mux.HandleFunc("/speak", MetricsMiddleware(s.speechHandler.HandleSpeak, "speak"))
	mux.HandleFunc("/speech/diagnostics", MetricsMiddleware(s.speechHandler.HandleDiagnostics, "speech_diagnostics"))
	mux.HandleFunc("/collage", MetricsMiddleware(s.collageHandler.HandleCollage, "collage"))
	mux.HandleFunc("/prefs", MetricsMiddleware(s.prefsHandler.HandlePrefs, "prefs"))
}

// sessionCookie is how the browser-facing surface carries the session id.
const sessionCookie = "feelings_session"

// sessionID resolves the caller's session id from cookie or header.
func sessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimSpace(r.Header.Get("X-Session-ID"))
}

// langParam resolves the requested language, defaulting to English.
func langParam(r *http.Request) catalog.Lang {
	return langFromString(r.URL.Query().Get("lang"))
}

func langFromString(s string) catalog.Lang {
	lang := catalog.Lang(strings.ToLower(strings.TrimSpace(s)))
	if !catalog.IsSupported(lang) {
		return catalog.LangEnglish
	}
	return lang
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
