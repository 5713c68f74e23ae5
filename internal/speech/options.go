package speech

import (
	"time"

	"github.com/metalk/feelings/pkg/logger"
)

// Option applies a configuration option to the Driver.
type Option func(*Driver)

// WithReadyTimeout bounds how long the driver waits for the engine's
// voice list to populate before giving up.
func WithReadyTimeout(d time.Duration) Option {
	return func(drv *Driver) {
		if d > 0 {
			drv.readyTimeout = d
		}
	}
}

// WithPollInterval sets the voice-list polling interval used when the
// engine does not signal voice changes.
func WithPollInterval(d time.Duration) Option {
	return func(drv *Driver) {
		if d > 0 {
			drv.pollInterval = d
		}
	}
}

// WithDriverLogger sets a custom logger for the driver.
func WithDriverLogger(l logger.Logger) Option {
	return func(drv *Driver) {
		if l != nil {
			drv.logger = l
		}
	}
}
