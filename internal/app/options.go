package service

import (
	"time"

	"github.com/okian/forest/internal/adapters/repository"
	"github.com/okian/forest/internal/domain/flicker"
	"github.com/okian/forest/internal/domain/layout"
	"github.com/okian/forest/internal/domain/model"
	"github.com/okian/forest/internal/domain/scene"
	"github.com/okian/forest/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingest workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the ingest queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the ingest deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
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

// WithStore makes the service use st instead of building its own. The
// service still closes it on Stop.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithSQLite selects the sqlite store at path.
func WithSQLite(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.sqlitePath = path
		}
	}
}

// WithWindow sets the recency window of the forest.
func WithWindow(w model.Window) Option {
	return func(s *Service) {
		if w.Days > 0 {
			s.window = w
		}
	}
}

// WithLayout sets the placement options.
func WithLayout(o layout.Options) Option {
	return func(s *Service) {
		s.layout = o
	}
}

// WithReferenceViewport sets the viewport layouts are computed in.
// Non-positive sizes are ignored.
func WithReferenceViewport(vp layout.Viewport) Option {
	return func(s *Service) {
		if vp.W > 0 && vp.H > 0 {
			s.reference = vp
		}
	}
}

// WithFlicker sets the flicker parameters. An invalid config is ignored.
func WithFlicker(cfg flicker.Config) Option {
	return func(s *Service) {
		if cfg.Validate() == nil {
			s.flicker = cfg
		}
	}
}

// WithPulse sets the pulse of a highlighted light.
func WithPulse(p scene.Pulse) Option {
	return func(s *Service) {
		s.pulse = p
	}
}

// WithHighlightOnce controls whether a highlighted id pulses only the
// first time it is asked for.
func WithHighlightOnce(once bool) Option {
	return func(s *Service) {
		s.highlightOnce = once
	}
}

// WithRefreshInterval sets how often mounted lights are resynced with the store.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithScheduler sets the clock that drives flicker timers.
func WithScheduler(sched flicker.Scheduler) Option {
	return func(s *Service) {
		if sched != nil {
			s.sched = sched
		}
	}
}

// WithClock sets the wall clock used for the window and the season.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
