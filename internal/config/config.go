// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Keys are flat and match the koanf tags; env vars add the FOREST_ prefix.
// - Errors wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/forest/internal/domain/flicker"
	"github.com/okian/forest/internal/domain/layout"
	"github.com/okian/forest/internal/domain/model"
	"github.com/okian/forest/internal/domain/scene"
)

// Load and Validate failures wrap one of these.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Store selects the entry store backend: memory or sqlite.
	Store      string `koanf:"store"`
	SQLitePath string `koanf:"sqlite_path"`

	// QueueSize bounds the in-memory ingest queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of ingest workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize sets the size of the ingest deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// WindowDays is how many calendar days of entries the forest shows.
	WindowDays int `koanf:"window_days"`
	// RefreshIntervalMS is how often the mounted lights are resynced with the store.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// LayoutWidth and LayoutHeight are the reference viewport positions are
	// computed in; request viewports only re-project them.
	LayoutWidth       float64 `koanf:"layout_width"`
	LayoutHeight      float64 `koanf:"layout_height"`
	SafePaddingPx     float64 `koanf:"safe_padding_px"`
	MinDistancePx     float64 `koanf:"min_distance_px"`
	MaxPlacementTries int     `koanf:"max_placement_tries"`

	FlickerCutoff        float64 `koanf:"flicker_cutoff"`
	FlickerIntervalMinMS int     `koanf:"flicker_interval_min_ms"`
	FlickerIntervalMaxMS int     `koanf:"flicker_interval_max_ms"`
	FlickerInitialMinMS  int     `koanf:"flicker_initial_min_ms"`
	FlickerInitialMaxMS  int     `koanf:"flicker_initial_max_ms"`
	FlickerStallChance   float64 `koanf:"flicker_stall_chance"`
	FlickerStallMinMS    int     `koanf:"flicker_stall_min_ms"`
	FlickerStallMaxMS    int     `koanf:"flicker_stall_max_ms"`
	FlickerWalkMinPx     float64 `koanf:"flicker_walk_min_px"`
	FlickerWalkMaxPx     float64 `koanf:"flicker_walk_max_px"`
	FlickerDamping       float64 `koanf:"flicker_damping"`
	FlickerClampPx       float64 `koanf:"flicker_clamp_px"`

	PulsePopMS    int  `koanf:"pulse_pop_ms"`
	PulseSettleMS int  `koanf:"pulse_settle_ms"`
	HighlightOnce bool `koanf:"highlight_once"`
}

// New creates a Config with defaults.
func New() *Config {
	fl := flicker.DefaultConfig()
	p := scene.DefaultPulse()
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		Store:             StoreMemory,
		SQLitePath:        "data/forest.db",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		DedupeSize:        50_000,
		WindowDays:        model.DefaultWindowDays,
		RefreshIntervalMS: 1000,

		LayoutWidth:       1200,
		LayoutHeight:      800,
		SafePaddingPx:     layout.DefaultSafePaddingPx,
		MinDistancePx:     layout.DefaultMinDistancePx,
		MaxPlacementTries: layout.DefaultMaxTries,

		FlickerCutoff:        fl.Cutoff,
		FlickerIntervalMinMS: ms(fl.Interval.Min),
		FlickerIntervalMaxMS: ms(fl.Interval.Max),
		FlickerInitialMinMS:  ms(fl.InitialDelay.Min),
		FlickerInitialMaxMS:  ms(fl.InitialDelay.Max),
		FlickerStallChance:   fl.StallChance,
		FlickerStallMinMS:    ms(fl.Stall.Min),
		FlickerStallMaxMS:    ms(fl.Stall.Max),
		FlickerWalkMinPx:     fl.Walk.Min,
		FlickerWalkMaxPx:     fl.Walk.Max,
		FlickerDamping:       fl.Damping,
		FlickerClampPx:       fl.ClampPx,

		PulsePopMS:    p.DurationMs,
		PulseSettleMS: p.SettleMs,
		HighlightOnce: true,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	case c.Store != StoreMemory && c.Store != StoreSQLite:
		return fmt.Errorf("%w: store %q must be memory or sqlite", ErrInvalidConfig, c.Store)
	case c.Store == StoreSQLite && c.SQLitePath == "":
		return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.WindowDays <= 0:
		return fmt.Errorf("%w: window_days must be positive", ErrInvalidConfig)
	case c.RefreshIntervalMS <= 0:
		return fmt.Errorf("%w: refresh_interval_ms must be positive", ErrInvalidConfig)
	case !(c.LayoutWidth > 0) || !(c.LayoutHeight > 0):
		return fmt.Errorf("%w: layout viewport must be positive", ErrInvalidConfig)
	case c.SafePaddingPx < 0 || c.MinDistancePx < 0 || c.MaxPlacementTries < 0:
		return fmt.Errorf("%w: layout options must not be negative", ErrInvalidConfig)
	case c.PulsePopMS < 0 || c.PulseSettleMS < 0:
		return fmt.Errorf("%w: pulse durations must not be negative", ErrInvalidConfig)
	}
	if err := c.Flicker().Validate(); err != nil {
		return fmt.Errorf("%w: flicker: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Layout returns the placement options.
func (c *Config) Layout() layout.Options {
	return layout.Options{
		SafePaddingPx: c.SafePaddingPx,
		MinDistancePx: c.MinDistancePx,
		MaxTries:      c.MaxPlacementTries,
	}
}

// ReferenceViewport is the viewport layouts are computed in.
func (c *Config) ReferenceViewport() layout.Viewport {
	return layout.Viewport{W: c.LayoutWidth, H: c.LayoutHeight}
}

// Flicker returns the flicker parameters.
func (c *Config) Flicker() flicker.Config {
	return flicker.Config{
		Cutoff:       c.FlickerCutoff,
		Interval:     flicker.DurationRange{Min: dur(c.FlickerIntervalMinMS), Max: dur(c.FlickerIntervalMaxMS)},
		InitialDelay: flicker.DurationRange{Min: dur(c.FlickerInitialMinMS), Max: dur(c.FlickerInitialMaxMS)},
		StallChance:  c.FlickerStallChance,
		Stall:        flicker.DurationRange{Min: dur(c.FlickerStallMinMS), Max: dur(c.FlickerStallMaxMS)},
		Walk:         flicker.Range{Min: c.FlickerWalkMinPx, Max: c.FlickerWalkMaxPx},
		Damping:      c.FlickerDamping,
		ClampPx:      c.FlickerClampPx,
	}
}

// Pulse returns the pulse of a fresh entry.
func (c *Config) Pulse() scene.Pulse {
	p := scene.DefaultPulse()
	p.DurationMs = c.PulsePopMS
	p.SettleMs = c.PulseSettleMS
	return p
}

// Window returns the recency window.
func (c *Config) Window() model.Window {
	return model.Window{Days: c.WindowDays}
}

// RefreshInterval is the resync period of the mounted lights.
func (c *Config) RefreshInterval() time.Duration {
	return dur(c.RefreshIntervalMS)
}

func ms(d time.Duration) int { return int(d / time.Millisecond) }

func dur(n int) time.Duration { return time.Duration(n) * time.Millisecond }
