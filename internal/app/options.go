package service

import (
	"time"

	"github.com/metalk/feelings/internal/adapters/assets"
	"github.com/metalk/feelings/internal/adapters/compose"
	"github.com/metalk/feelings/internal/adapters/prefs"
	"github.com/metalk/feelings/internal/domain/catalog"
	"github.com/metalk/feelings/internal/domain/validate"
	"github.com/metalk/feelings/internal/speech"
	"github.com/metalk/feelings/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of compose workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the compose job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCooldown sets the per-session generation cooldown.
func WithCooldown(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.cooldown = d
		}
	}
}

// WithSessionTTL sets how long idle sessions are kept.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithCatalog replaces the default feeling catalog.
func WithCatalog(c catalog.Catalog) Option {
	return func(s *Service) {
		if len(c) > 0 {
			s.catalog = c
		}
	}
}

// WithValidator sets the upload validator.
func WithValidator(v *validate.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithComposer sets the tile composer backend.
func WithComposer(c compose.Composer) Option {
	return func(s *Service) {
		if c != nil {
			s.composer = c
		}
	}
}

// WithAssets sets the reference image source.
func WithAssets(src assets.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.refs = src
		}
	}
}

// WithSpeech sets the speech driver.
func WithSpeech(d *speech.Driver) Option {
	return func(s *Service) {
		if d != nil {
			s.speaker = d
		}
	}
}

// WithPrefsStore sets the preference store.
func WithPrefsStore(p prefs.Store) Option {
	return func(s *Service) {
		if p != nil {
			s.prefs = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
