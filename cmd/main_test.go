package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	app "github.com/okian/forest/internal/app"
	"github.com/okian/forest/internal/config"
	"github.com/okian/forest/pkg/logger"
	"github.com/okian/forest/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("FOREST_ADDR", ":8080")
			_ = os.Setenv("FOREST_QUEUE_SIZE", "1000")
			_ = os.Setenv("FOREST_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("FOREST_ADDR")
				_ = os.Unsetenv("FOREST_QUEUE_SIZE")
				_ = os.Unsetenv("FOREST_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When mapping configuration onto the service", func() {
			cfg := config.New()
			cfg.Store = config.StoreSQLite
			cfg.SQLitePath = filepath.Join(t.TempDir(), "forest.db")
			cfg.WorkerCount = 3
			cfg.WindowDays = 7

			svc := app.New(serviceOptions(cfg, logger.Get())...)

			convey.Convey("Then the service reflects it", func() {
				stats := svc.GetStats()
				convey.So(stats["store"], convey.ShouldEqual, "sqlite")
				convey.So(stats["workerCount"], convey.ShouldEqual, 3)
				convey.So(stats["windowDays"], convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			srv := newHTTPServer(":0", http.NotFoundHandler())

			convey.Convey("Then timeouts are set", func() {
				convey.So(srv.ReadTimeout, convey.ShouldEqual, readTimeout)
				convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)
				convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				convey.So(metrics.NewManager(), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainHandler(t *testing.T) {
	convey.Convey("Given the handler over a started service", t, func() {
		ctx := context.Background()
		svc := app.New(app.WithWorkerCount(1), app.WithQueueSize(8))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newHandler(ctx, svc))
		defer srv.Close()

		get := func(path string) *http.Response {
			resp, err := http.Get(srv.URL + path)
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			return resp
		}

		convey.Convey("Then the API, the docs and the page are mounted together", func() {
			convey.So(get("/healthz").StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/scene").StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/forest.svg").StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").StatusCode, convey.ShouldEqual, http.StatusOK)

			page := get("/")
			convey.So(page.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(page.Header.Get("Content-Type"), convey.ShouldContainSubstring, "text/html")
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing the metrics updaters", func() {
			svc := app.New()

			convey.Convey("Then they return once the context is done", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
				convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
			})

			convey.Convey("Then single updates do not panic", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given the run loop", t, func() {
		convey.Convey("When the configuration is invalid", func() {
			_ = os.Setenv("FOREST_QUEUE_SIZE", "0")
			defer func() { _ = os.Unsetenv("FOREST_QUEUE_SIZE") }()

			convey.Convey("Then it fails before serving", func() {
				err := run(context.Background())
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			_ = os.Setenv("FOREST_ADDR", "127.0.0.1:0")
			defer func() { _ = os.Unsetenv("FOREST_ADDR") }()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(run(ctx), convey.ShouldBeNil)
			})
		})
	})
}
