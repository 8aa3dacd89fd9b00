// Package service wires the store, the ingest pipeline, the layout cache and
// the animator into the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/okian/forest/internal/adapters/animator"
	eventqueue "github.com/okian/forest/internal/adapters/mq/queue"
	workerpool "github.com/okian/forest/internal/adapters/mq/worker"
	"github.com/okian/forest/internal/adapters/repository"
	"github.com/okian/forest/internal/domain/dedupe"
	"github.com/okian/forest/internal/domain/flicker"
	"github.com/okian/forest/internal/domain/layout"
	"github.com/okian/forest/internal/domain/model"
	"github.com/okian/forest/internal/domain/scene"
	"github.com/okian/forest/internal/domain/types"
	"github.com/okian/forest/pkg/logger"
	"github.com/okian/forest/pkg/metrics"
)

// Lifecycle errors.
var (
	ErrNotStarted = errors.New("service not started")
	ErrStopped    = errors.New("service stopped")
)

const shutdownTimeout = 30 * time.Second

// forest is one computed layout together with the ids it was computed for.
type forest struct {
	ids   []string
	items []scene.Item
}

// Service implements the API dependencies for the forest.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	pulses  *dedupe.Once
	queue   *eventqueue.InMemoryQueue
	pool    *workerpool.Pool
	lights  *animator.Animator

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	sqlitePath      string
	window          model.Window
	layout          layout.Options
	reference       layout.Viewport
	flicker         flicker.Config
	pulse           scene.Pulse
	highlightOnce   bool
	refreshInterval time.Duration
	sched           flicker.Scheduler
	now             func() time.Time

	// Layout cache, guarded by layoutMu.
	layoutMu sync.Mutex
	current  forest

	// State
	started bool
	stopped bool
	cancel  context.CancelFunc
	nudge   chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       10_000,
		dedupeSize:      50_000,
		window:          model.Window{Days: model.DefaultWindowDays},
		layout:          layout.Defaults(),
		reference:       layout.Viewport{W: 1200, H: 800},
		flicker:         flicker.DefaultConfig(),
		pulse:           scene.DefaultPulse(),
		highlightOnce:   true,
		refreshInterval: time.Second,
		sched:           flicker.RealScheduler{},
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.pulses = dedupe.NewOnce(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize)))
	s.nudge = make(chan struct{}, 1)
	return s
}

// Start opens the store, starts the ingest workers and mounts the lights
// of the current window.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting forest service...")

	// runCtx is cancelled by Stop once the queue has drained.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if s.store == nil {
		st, err := s.openStore(runCtx)
		if err != nil {
			cancel()
			return err
		}
		s.store = st
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store, workerpool.WithOnStored(s.nudgeRefresh))
	s.pool.Start(runCtx)

	s.lights = animator.New(
		animator.WithScheduler(s.sched),
		animator.WithConfig(s.flicker),
		animator.WithLogger(s.logger.Named("animator")),
	)
	if _, err := s.refresh(runCtx); err != nil {
		s.logger.Warn(ctx, "initial refresh failed", logger.Error(err))
	}
	metrics.UpdateEntriesStored(s.store.Count(runCtx))

	s.cancel = cancel
	s.wg.Add(1)
	go s.refreshLoop(runCtx)

	s.started = true
	s.logger.Info(ctx, "forest service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("windowDays", s.window.Days),
		logger.Int("lights", s.lights.Len()),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	if s.sqlitePath == "" {
		s.logger.Info(ctx, "using treap store")
		return repository.NewTreapStore(), nil
	}
	st, err := repository.OpenSQLite(ctx, s.sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.logger.Info(ctx, "using sqlite store", logger.String("path", s.sqlitePath))
	return st, nil
}

// Stop drains the ingest queue, stops every flicker task and closes the
// store. A stopped service cannot be started again.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.stopped = true
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping forest service...")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.pool.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}

	s.cancel()
	s.wg.Wait()

	s.lights.Stop()
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store failed", logger.Error(err))
	}
	s.logger.Info(ctx, "forest service stopped")
}

func (s *Service) refreshLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.nudge:
		}
		if _, err := s.refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn(ctx, "refresh failed", logger.Error(err))
			metrics.RecordErrorByComponent("service", "refresh")
		}
		metrics.UpdateEntriesStored(s.store.Count(ctx))
	}
}

// nudgeRefresh asks the refresh loop to run early. A burst of stored
// entries collapses into a single pending refresh.
func (s *Service) nudgeRefresh(context.Context, workerpool.Entry) {
	select {
	case s.nudge <- struct{}{}:
	default:
	}
}

// refresh reads the window and, when its ids changed, recomputes the
// layout at the reference viewport and resyncs the animator.
func (s *Service) refresh(ctx context.Context) (forest, error) {
	entries, err := s.store.Recent(ctx, s.window.Since(s.now()), 0)
	if err != nil {
		return forest{}, err
	}
	ids := model.IDs(entries)

	s.layoutMu.Lock()
	defer s.layoutMu.Unlock()

	if slices.Equal(ids, s.current.ids) {
		return s.current, nil
	}
	s.current = s.place(ids)
	added, removed := s.lights.Sync(s.current.items)
	s.logger.Debug(ctx, "forest changed",
		logger.Int("lights", len(ids)),
		logger.Int("mounted", added),
		logger.Int("unmounted", removed),
	)
	return s.current, nil
}

func (s *Service) place(ids []string) forest {
	start := time.Now()
	points, report := layout.Place(ids, s.reference, layout.WithOptions(s.layout))
	metrics.RecordLayoutDuration(float64(time.Since(start).Microseconds()) / 1000)

	for _, o := range []layout.Outcome{layout.Accepted, layout.BestEffort, layout.Centered} {
		if n := report.Count(o); n > 0 {
			metrics.RecordLayoutPlacements(o.String(), n)
		}
	}
	return forest{ids: ids, items: scene.ItemsFor(points)}
}

// SeenAndRecord atomically checks if an entry id was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEntryDuplicate()
	}
	return seen
}

// Unrecord removes an id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of ids in the deduper.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue submits an entry reference for asynchronous storage. It returns
// false when the queue is full or the service is not running.
func (s *Service) Enqueue(ctx context.Context, e model.Entry) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return false
	}
	if err := e.Validate(); err != nil {
		s.logger.Warn(ctx, "refusing invalid entry", logger.Error(err))
		return false
	}
	s.logger.Debug(ctx, "enqueueing entry",
		logger.String("id", e.ID),
		logger.String("createdAt", e.CreatedAt.Format(time.RFC3339)),
	)
	return s.queue.Enqueue(ctx, e)
}

// Entry returns the stored reference for id.
func (s *Service) Entry(ctx context.Context, id string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.Entry{}, ErrNotStarted
	}
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return types.Entry{}, err
	}
	rank, err := s.store.Rank(ctx, id)
	if err != nil {
		return types.Entry{}, err
	}
	return types.Entry{ID: e.ID, CreatedAt: e.CreatedAt, Href: scene.Href(e.ID), Rank: rank}, nil
}

// Scene composes the forest for vp. A zero viewport means the reference
// viewport. A failing store read yields a scene without lights.
func (s *Service) Scene(ctx context.Context, vp layout.Viewport, highlight string) (types.Scene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.Scene{}, ErrNotStarted
	}
	if vp.W <= 0 || vp.H <= 0 {
		vp = s.reference
	}

	f, err := s.refresh(ctx)
	if err != nil {
		s.logger.Warn(ctx, "store read failed, rendering an empty forest", logger.Error(err))
		metrics.RecordErrorByComponent("service", "store_read")
		f = forest{}
	}

	in := scene.Input{
		Items:     f.items,
		Viewport:  vp,
		PaddingPx: s.layout.SafePaddingPx,
		Pulse:     s.pulse,
		Now:       s.now(),
		Offsets:   s.lights,
	}
	if s.shouldPulse(ctx, f, highlight) {
		in.Highlight = highlight
		metrics.RecordPulse()
	}
	return scene.Compose(in), nil
}

// shouldPulse reports whether highlight is in the forest and, in one-shot
// mode, has not pulsed before.
func (s *Service) shouldPulse(ctx context.Context, f forest, highlight string) bool {
	if highlight == "" || !slices.Contains(f.ids, highlight) {
		return false
	}
	return !s.highlightOnce || s.pulses.First(ctx, highlight)
}

// Frame returns the live flicker offsets of every mounted light.
func (s *Service) Frame(_ context.Context) types.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return types.Frame{Offsets: map[string]flicker.Offset{}}
	}
	version, offsets := s.lights.Snapshot()
	return types.Frame{Version: version, Offsets: offsets}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storeKind := "memory"
	if s.sqlitePath != "" {
		storeKind = "sqlite"
	}
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"windowDays":  s.window.Days,
		"store":       storeKind,
	}

	if s.started {
		ctx := context.Background()
		queueLen := s.queue.Len(ctx)
		stored := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["entriesStored"] = stored
		stats["lightsMounted"] = s.lights.Len()
		stats["lightsActive"] = s.lights.Active()
		stats["frameVersion"] = s.lights.Version()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateEntriesStored(stored)
	}
	return stats
}
