// Package flicker models the small positional jitter of front-layer lights.
//
// A Model is a pure state machine driven by Tick. A Task binds one Model to a
// Scheduler and owns its pending timer until Stop is called.
package flicker

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("flicker: invalid config")

// Range is a closed float interval.
type Range struct {
	Min float64
	Max float64
}

// DurationRange is a closed duration interval.
type DurationRange struct {
	Min time.Duration
	Max time.Duration
}

// Config holds the tunables of the flicker walk.
type Config struct {
	// Cutoff is the deepest depth that still animates.
	Cutoff float64
	// Interval bounds the delay between ticks.
	Interval DurationRange
	// InitialDelay bounds the delay before the first tick.
	InitialDelay DurationRange
	// StallChance is the per-tick probability of entering a stall.
	StallChance float64
	// Stall bounds how long a stall lasts.
	Stall DurationRange
	// Walk bounds the step amplitude at full strength, in pixels.
	Walk Range
	// Damping pulls the offset back toward the center after each step.
	Damping float64
	// ClampPx bounds the offset on both axes.
	ClampPx float64
}

// DefaultConfig returns the stock flicker tuning.
func DefaultConfig() Config {
	return Config{
		Cutoff:       0.25,
		Interval:     DurationRange{Min: 250 * time.Millisecond, Max: 330 * time.Millisecond},
		InitialDelay: DurationRange{Min: 120 * time.Millisecond, Max: 240 * time.Millisecond},
		StallChance:  0.22,
		Stall:        DurationRange{Min: 1000 * time.Millisecond, Max: 3000 * time.Millisecond},
		Walk:         Range{Min: 0.4, Max: 0.6},
		Damping:      0.9,
		ClampPx:      2,
	}
}

// Validate reports the first field that is out of range.
func (c Config) Validate() error {
	switch {
	case !finite(c.Cutoff) || c.Cutoff < 0 || c.Cutoff > 1:
		return fmt.Errorf("%w: cutoff %v not in [0,1]", ErrInvalidConfig, c.Cutoff)
	case c.Interval.Min <= 0 || c.Interval.Max < c.Interval.Min:
		return fmt.Errorf("%w: interval [%s,%s]", ErrInvalidConfig, c.Interval.Min, c.Interval.Max)
	case c.InitialDelay.Min < 0 || c.InitialDelay.Max < c.InitialDelay.Min:
		return fmt.Errorf("%w: initial delay [%s,%s]", ErrInvalidConfig, c.InitialDelay.Min, c.InitialDelay.Max)
	case !finite(c.StallChance) || c.StallChance < 0 || c.StallChance > 1:
		return fmt.Errorf("%w: stall chance %v not in [0,1]", ErrInvalidConfig, c.StallChance)
	case c.Stall.Min < 0 || c.Stall.Max < c.Stall.Min:
		return fmt.Errorf("%w: stall [%s,%s]", ErrInvalidConfig, c.Stall.Min, c.Stall.Max)
	case !finite(c.Walk.Min) || !finite(c.Walk.Max) || c.Walk.Min < 0 || c.Walk.Max < c.Walk.Min:
		return fmt.Errorf("%w: walk [%v,%v]", ErrInvalidConfig, c.Walk.Min, c.Walk.Max)
	case !finite(c.Damping) || c.Damping < 0 || c.Damping > 1:
		return fmt.Errorf("%w: damping %v not in [0,1]", ErrInvalidConfig, c.Damping)
	case !finite(c.ClampPx) || c.ClampPx < 0:
		return fmt.Errorf("%w: clamp %v", ErrInvalidConfig, c.ClampPx)
	}
	return nil
}

// Strength is the animation strength for a depth: 1 at the front, falling
// linearly to 0 at the cutoff and staying 0 beyond it.
func Strength(depth, cutoff float64) float64 {
	if !finite(depth) || !finite(cutoff) || cutoff <= 0 || depth > cutoff {
		return 0
	}
	return max(0, min(1, 1-depth/cutoff))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
