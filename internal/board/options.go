package board

import (
	"github.com/metalk/feelings/pkg/logger"
)

// Option applies a configuration option to the Presenter.
type Option func(*Presenter)

// WithLogger sets a custom logger for the presenter.
func WithLogger(l logger.Logger) Option {
	return func(p *Presenter) {
		if l != nil {
			p.logger = l
		}
	}
}
