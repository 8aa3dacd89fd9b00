// Package animator keeps one flicker task per mounted light and exposes
// their live offsets.
package animator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/forest/internal/domain/flicker"
	"github.com/okian/forest/internal/domain/scene"
	"github.com/okian/forest/pkg/logger"
	"github.com/okian/forest/pkg/metrics"
)

type mounted struct {
	task  *flicker.Task
	depth float64
}

// Animator owns the flicker tasks of the lights currently on screen. It is
// safe for concurrent use.
type Animator struct {
	sched  flicker.Scheduler
	cfg    flicker.Config
	logger logger.Logger

	mu      sync.RWMutex
	lights  map[string]mounted
	stopped bool

	version atomic.Uint64
}

// New returns an animator with no mounted lights.
func New(opts ...Option) *Animator {
	a := &Animator{
		sched:  flicker.RealScheduler{},
		cfg:    flicker.DefaultConfig(),
		lights: make(map[string]mounted),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("animator")
	}
	return a
}

// Sync makes the mounted set match items. New ids are mounted, ids that
// left are unmounted and ids whose depth changed are remounted. Unchanged
// lights keep their running tasks.
func (a *Animator) Sync(items []scene.Item) (added, removed int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return 0, 0
	}

	want := make(map[string]float64, len(items))
	for _, it := range items {
		want[it.ID] = it.Depth
	}
	for id := range a.lights {
		if _, ok := want[id]; !ok {
			a.unmountLocked(id)
			removed++
		}
	}
	for id, d := range want {
		cur, ok := a.lights[id]
		if ok && cur.depth == d {
			continue
		}
		if !ok {
			added++
		}
		a.mountLocked(id, d)
	}
	metrics.UpdateLightsMounted(len(a.lights))
	if added > 0 || removed > 0 {
		a.logger.Debug(context.Background(), "lights synced",
			logger.Int("added", added),
			logger.Int("removed", removed),
			logger.Int("mounted", len(a.lights)),
		)
	}
	return added, removed
}

// Offset returns the live offset of id and whether it is mounted.
func (a *Animator) Offset(id string) (flicker.Offset, bool) {
	a.mu.RLock()
	l, ok := a.lights[id]
	a.mu.RUnlock()
	if !ok {
		return flicker.Offset{}, false
	}
	return l.task.Offset(), true
}

// Snapshot returns the offsets of every mounted light and the tick version
// they were read at.
func (a *Animator) Snapshot() (uint64, map[string]flicker.Offset) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]flicker.Offset, len(a.lights))
	for id, l := range a.lights {
		out[id] = l.task.Offset()
	}
	return a.version.Load(), out
}

// Version increases every time any light ticks.
func (a *Animator) Version() uint64 {
	return a.version.Load()
}

// Len returns the number of mounted lights.
func (a *Animator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.lights)
}

// Active returns how many mounted lights have a pending tick.
func (a *Animator) Active() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n := 0
	for _, l := range a.lights {
		if l.task.Active() {
			n++
		}
	}
	return n
}

// Stop unmounts everything. Later syncs are ignored.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id := range a.lights {
		a.unmountLocked(id)
	}
	a.stopped = true
	metrics.UpdateLightsMounted(0)
}

func (a *Animator) mountLocked(id string, depth float64) {
	a.unmountLocked(id)
	m := flicker.New(id, depth, a.cfg)
	a.lights[id] = mounted{task: flicker.Run(m, a.sched, a.onStep), depth: depth}
}

func (a *Animator) unmountLocked(id string) {
	if l, ok := a.lights[id]; ok {
		l.task.Stop()
		delete(a.lights, id)
	}
}

// onStep runs under the ticking task's lock.
func (a *Animator) onStep(step flicker.Step) {
	metrics.RecordFlickerTick()
	if step.Stalled {
		metrics.RecordFlickerStall()
	}
	a.version.Add(1)
}

var _ scene.OffsetSource = (*Animator)(nil)
