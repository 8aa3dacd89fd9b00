package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/forest/internal/config"
	"github.com/okian/forest/internal/domain/flicker"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.WindowDays, convey.ShouldEqual, 50)
			convey.So(cfg.HighlightOnce, convey.ShouldBeTrue)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the derived domain settings match the built-in defaults", func() {
			convey.So(cfg.Flicker(), convey.ShouldResemble, flicker.DefaultConfig())
			convey.So(cfg.Layout().MaxTries, convey.ShouldEqual, 80)
			convey.So(cfg.ReferenceViewport().W, convey.ShouldEqual, 1200)
			convey.So(cfg.Pulse().DurationMs, convey.ShouldEqual, 350)
			convey.So(cfg.Window().Days, convey.ShouldEqual, 50)
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, time.Second)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad field", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "" },
			"log format":        func(c *config.Config) { c.LogFormat = "xml" },
			"store":             func(c *config.Config) { c.Store = "redis" },
			"sqlite path":       func(c *config.Config) { c.Store = config.StoreSQLite; c.SQLitePath = "" },
			"queue size":        func(c *config.Config) { c.QueueSize = 0 },
			"worker count":      func(c *config.Config) { c.WorkerCount = -1 },
			"dedupe size":       func(c *config.Config) { c.DedupeSize = 0 },
			"window":            func(c *config.Config) { c.WindowDays = 0 },
			"refresh":           func(c *config.Config) { c.RefreshIntervalMS = 0 },
			"layout viewport":   func(c *config.Config) { c.LayoutHeight = 0 },
			"negative padding":  func(c *config.Config) { c.SafePaddingPx = -1 },
			"pulse":             func(c *config.Config) { c.PulsePopMS = -5 },
			"flicker cutoff":    func(c *config.Config) { c.FlickerCutoff = 2 },
			"flicker intervals": func(c *config.Config) { c.FlickerIntervalMaxMS = 10 },
		}

		convey.Convey("Then each is rejected as invalid", func() {
			for _, mutate := range cases {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then flicker errors keep their own kind too", func() {
			cfg := config.New()
			cfg.FlickerDamping = 3
			convey.So(errors.Is(cfg.Validate(), flicker.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
