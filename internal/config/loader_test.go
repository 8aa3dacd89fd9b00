package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/forest/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"FOREST_CONFIG", "FOREST_ADDR", "FOREST_QUEUE_SIZE", "FOREST_WORKER_COUNT",
	"FOREST_DEDUPE_SIZE", "FOREST_STORE", "FOREST_SQLITE_PATH", "FOREST_WINDOW_DAYS",
	"FOREST_FLICKER_CUTOFF", "FOREST_LOG_FORMAT", "FOREST_HIGHLIGHT_ONCE",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "forest.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FOREST_ADDR", ":8080")
			_ = os.Setenv("FOREST_QUEUE_SIZE", "500")
			_ = os.Setenv("FOREST_WORKER_COUNT", "3")
			_ = os.Setenv("FOREST_FLICKER_CUTOFF", "0.4")
			_ = os.Setenv("FOREST_HIGHLIGHT_ONCE", "false")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.FlickerCutoff, convey.ShouldEqual, 0.4)
				convey.So(cfg.HighlightOnce, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
store: sqlite
sqlite_path: /tmp/forest-test.db
window_days: 30
layout_width: 1600
`)
			_ = os.Setenv("FOREST_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/forest-test.db")
				convey.So(cfg.WindowDays, convey.ShouldEqual, 30)
				convey.So(cfg.LayoutWidth, convey.ShouldEqual, 1600)
				convey.So(cfg.LayoutHeight, convey.ShouldEqual, 800)
			})

			convey.Convey("Then environment variables override the file", func() {
				_ = os.Setenv("FOREST_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.WindowDays, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When the file is invalid or missing", func() {
			convey.Convey("Then loading fails", func() {
				_ = os.Setenv("FOREST_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))
				cfg, err := config.Load(ctx)
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)

				_ = os.Setenv("FOREST_CONFIG", "/non/existent/file.yaml")
				cfg, err = config.Load(ctx)
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When values fail validation", func() {
			_ = os.Setenv("FOREST_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then a validation error is returned", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When numeric values do not parse", func() {
			_ = os.Setenv("FOREST_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
