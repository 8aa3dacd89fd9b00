package flicker

import (
	"time"

	"github.com/okian/forest/internal/domain/seedrng"
)

// Offset is a pixel displacement.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Step is the result of one tick.
type Step struct {
	// Offset is the offset after the tick.
	Offset Offset
	// Next is the delay before the following tick.
	Next time.Duration
	// Stalled is set when the tick started or continued a stall.
	Stalled bool
	// Moved is set when the tick took a random-walk step.
	Moved bool
}

// Stats counts what a model has done since it was created.
type Stats struct {
	Ticks  int
	Stalls int
	Moves  int
}

// Model is the flicker state of one light. It is not safe for concurrent use.
type Model struct {
	cfg        Config
	rng        seedrng.Rand
	strength   float64
	offset     Offset
	stallUntil time.Time
	stats      Stats
}

// New returns a model drawing from its own generator seeded by the entry id.
// The generator is never shared with layout, which builds a fresh one.
func New(id string, depth float64, cfg Config) *Model {
	return NewWithRand(seedrng.FromSeed(id), depth, cfg)
}

// NewWithRand returns a model drawing from r.
func NewWithRand(r seedrng.Rand, depth float64, cfg Config) *Model {
	return &Model{
		cfg:      cfg,
		rng:      r,
		strength: Strength(depth, cfg.Cutoff),
	}
}

// Active reports whether the model ever moves. Inactive models stay at the
// origin and need no timer.
func (m *Model) Active() bool { return m.strength > 0 }

// Strength returns the animation strength derived from depth.
func (m *Model) Strength() float64 { return m.strength }

// Offset returns the current offset.
func (m *Model) Offset() Offset { return m.offset }

// Stats returns the tick counters.
func (m *Model) Stats() Stats { return m.stats }

// Start draws the delay before the first tick. It returns 0 for inactive
// models without consuming a draw.
func (m *Model) Start() time.Duration {
	if !m.Active() {
		return 0
	}
	return m.duration(m.cfg.InitialDelay)
}

// Tick advances the model to now and returns the new offset and the delay
// before the next tick.
func (m *Model) Tick(now time.Time) Step {
	if !m.Active() {
		return Step{}
	}
	m.stats.Ticks++

	if now.Before(m.stallUntil) {
		return Step{Offset: m.offset, Next: m.duration(m.cfg.Interval), Stalled: true}
	}

	if m.rng.Float64() < m.cfg.StallChance {
		m.stallUntil = now.Add(m.duration(m.cfg.Stall))
		m.stats.Stalls++
		return Step{Offset: m.offset, Next: m.duration(m.cfg.Interval), Stalled: true}
	}

	amp := seedrng.Between(m.rng, m.cfg.Walk.Min, m.cfg.Walk.Max) * m.strength
	dx := seedrng.Between(m.rng, -amp, amp)
	dy := seedrng.Between(m.rng, -amp, amp)
	m.offset = Offset{
		X: m.clamp((m.offset.X + dx) * m.cfg.Damping),
		Y: m.clamp((m.offset.Y + dy) * m.cfg.Damping),
	}
	m.stats.Moves++
	return Step{Offset: m.offset, Next: m.duration(m.cfg.Interval), Moved: true}
}

func (m *Model) duration(r DurationRange) time.Duration {
	return r.Min + time.Duration(m.rng.Float64()*float64(r.Max-r.Min))
}

func (m *Model) clamp(v float64) float64 {
	c := m.cfg.ClampPx
	if !finite(v) {
		return 0
	}
	return max(-c, min(c, v))
}
