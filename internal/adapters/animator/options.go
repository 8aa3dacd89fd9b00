package animator

import (
	"github.com/okian/forest/internal/domain/flicker"
	"github.com/okian/forest/pkg/logger"
)

// Option applies a configuration option to the Animator.
type Option func(*Animator)

// WithScheduler sets the clock tasks are scheduled on.
func WithScheduler(s flicker.Scheduler) Option {
	return func(a *Animator) {
		if s != nil {
			a.sched = s
		}
	}
}

// WithConfig sets the flicker parameters. Invalid configs are ignored.
func WithConfig(cfg flicker.Config) Option {
	return func(a *Animator) {
		if cfg.Validate() == nil {
			a.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Animator) {
		if l != nil {
			a.logger = l
		}
	}
}
