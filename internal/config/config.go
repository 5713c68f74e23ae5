// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() defaults and Load(ctx) for layered loading.
// - External errors must be wrapped via this package's error kinds.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory compose job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of compose workers.
	WorkerCount int `koanf:"worker_count"`

	// CooldownMS is the per-session generation cooldown in milliseconds.
	CooldownMS int `koanf:"cooldown_ms"`

	// SessionTTLMinutes sets how long idle sessions are kept.
	SessionTTLMinutes int `koanf:"session_ttl_minutes"`

	// MaxUploadBytes caps accepted photo size.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// MaxImageDimension is the longest edge kept by the sanitizer.
	MaxImageDimension int `koanf:"max_image_dimension"`

	// ClassifierURL points at the external content classifier. Empty
	// disables the safety check entirely.
	ClassifierURL string `koanf:"classifier_url"`

	// ClassifierOpenOnUnavailable keeps uploads flowing when the
	// classifier is unreachable.
	ClassifierOpenOnUnavailable bool `koanf:"classifier_open_on_unavailable"`

	// UnsafeThreshold is the probability above which explicit or
	// suggestive predictions block an upload.
	UnsafeThreshold float64 `koanf:"unsafe_threshold"`

	// CheckTimeoutMS bounds each external validation call.
	CheckTimeoutMS int `koanf:"check_timeout_ms"`

	// GeminiAPIKey enables the Gemini-backed composer. Empty selects the
	// simulated composer.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// GeminiModel overrides the image-compose model name.
	GeminiModel string `koanf:"gemini_model"`

	// AssetsDir is the directory holding reference feeling images.
	AssetsDir string `koanf:"assets_dir"`

	// PrefsDBPath locates the sqlite preference database. Empty keeps
	// preferences in memory.
	PrefsDBPath string `koanf:"prefs_db_path"`

	// SpeechVoicesCommand and SpeechSpeakCommand configure the exec
	// speech engine. Both empty disables speech.
	SpeechVoicesCommand string `koanf:"speech_voices_command"`
	SpeechSpeakCommand  string `koanf:"speech_speak_command"`

	// SpeechReadyTimeoutMS bounds the wait for the engine's voice list.
	SpeechReadyTimeoutMS int `koanf:"speech_ready_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                    "info",
		Addr:                        ":8080",
		QueueSize:                   256,
		WorkerCount:                 runtime.NumCPU(),
		CooldownMS:                  5000,
		SessionTTLMinutes:           30,
		MaxUploadBytes:              5 * 1024 * 1024,
		MaxImageDimension:           1600,
		ClassifierOpenOnUnavailable: true,
		UnsafeThreshold:             0.5,
		CheckTimeoutMS:              10_000,
		GeminiModel:                 "gemini-2.0-flash-exp",
		AssetsDir:                   "assets",
		SpeechReadyTimeoutMS:        3000,
	}
}
