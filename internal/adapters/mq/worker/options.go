package worker

import (
	"context"

	"github.com/okian/forest/pkg/logger"
)

// Option configures an InMemoryWorker. Pool passes its options to every
// worker it creates.
type Option func(*InMemoryWorker)

// WithName names the worker in its log lines.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger replaces the package logger.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnStored registers fn to run after an entry was newly stored.
// Duplicates and failed writes do not trigger it. fn runs on the worker
// goroutine and must not block.
func WithOnStored(fn func(ctx context.Context, e Entry)) Option {
	return func(w *InMemoryWorker) {
		if fn != nil {
			w.onStored = fn
		}
	}
}
