package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/forest/internal/app"
	"github.com/okian/forest/internal/adapters/repository"
	"github.com/okian/forest/internal/domain/flicker"
	"github.com/okian/forest/internal/domain/layout"
	"github.com/okian/forest/internal/domain/model"
	"github.com/okian/forest/internal/domain/types"
	"github.com/okian/forest/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var springNoon = time.Date(2026, time.April, 20, 12, 0, 0, 0, time.UTC)

// brokenStore fails every read.
type brokenStore struct{}

var errDisk = errors.New("disk on fire")

func (brokenStore) Put(context.Context, model.Entry) (bool, error) { return false, errDisk }
func (brokenStore) Get(context.Context, string) (model.Entry, error) {
	return model.Entry{}, errDisk
}
func (brokenStore) Recent(context.Context, time.Time, int) ([]model.Entry, error) {
	return nil, errDisk
}
func (brokenStore) Rank(context.Context, string) (int, error) { return 0, errDisk }
func (brokenStore) Count(context.Context) int                 { return 0 }
func (brokenStore) Close() error                              { return nil }

// seededStore returns a treap store holding three recent entries and one
// outside the window.
func seededStore() repository.Store {
	st := repository.NewTreapStore()
	for _, e := range []model.Entry{
		{ID: "e-new", CreatedAt: springNoon.Add(-time.Hour)},
		{ID: "e-mid", CreatedAt: springNoon.AddDate(0, 0, -3)},
		{ID: "e-old", CreatedAt: springNoon.AddDate(0, 0, -20)},
		{ID: "e-gone", CreatedAt: springNoon.AddDate(0, 0, -60)},
	} {
		_, _ = st.Put(context.Background(), e)
	}
	return st
}

func newService(extra ...service.Option) (*service.Service, *flicker.Manual) {
	clock := flicker.NewManual(springNoon)
	opts := []service.Option{
		service.WithWorkerCount(1),
		service.WithQueueSize(16),
		service.WithStore(seededStore()),
		service.WithScheduler(clock),
		service.WithClock(func() time.Time { return springNoon }),
		service.WithRefreshInterval(time.Hour),
	}
	return service.New(append(opts, extra...)...), clock
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not started", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.GetStats()["store"], ShouldEqual, "memory")
		})

		Convey("Then requests before Start are refused", func() {
			ctx := context.Background()
			_, err := svc.Scene(ctx, layout.Viewport{}, "")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Entry(ctx, "x")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.Enqueue(ctx, model.Entry{ID: "x"}), ShouldBeFalse)
			So(svc.Frame(ctx).Offsets, ShouldBeEmpty)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithWindow(model.Window{Days: 10}),
			service.WithSQLite("forest.db"),
		)

		Convey("Then the stats reflect them", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 50_000)
			So(stats["dedupeSize"], ShouldEqual, 25_000)
			So(stats["windowDays"], ShouldEqual, 10)
			So(stats["store"], ShouldEqual, "sqlite")
		})
	})
}

func TestService_Scene(t *testing.T) {
	Convey("Given a started service over a seeded store", t, func() {
		svc, _ := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When composing at the default viewport", func() {
			sc, err := svc.Scene(ctx, layout.Viewport{}, "")
			So(err, ShouldBeNil)

			Convey("Then only the window is shown", func() {
				So(sc.Lights, ShouldHaveLength, 3)
				So(sc.Viewport, ShouldResemble, layout.Viewport{W: 1200, H: 800})
				So(string(sc.Season), ShouldEqual, "spring")
			})

			Convey("Then the newest light is drawn last at the front", func() {
				front := sc.Lights[len(sc.Lights)-1]
				So(front.ID, ShouldEqual, "e-new")
				So(front.Depth, ShouldEqual, 0)
				So(front.Href, ShouldEqual, "/entry/e-new")
				So(sc.Lights[0].ID, ShouldEqual, "e-old")
				So(sc.Lights[0].Depth, ShouldEqual, 1)
			})
		})

		Convey("When composing at two viewports", func() {
			big, _ := svc.Scene(ctx, layout.Viewport{W: 1200, H: 800}, "")
			small, _ := svc.Scene(ctx, layout.Viewport{W: 600, H: 400}, "")

			Convey("Then each light keeps its normalized position", func() {
				pad := layout.DefaultSafePaddingPx
				for i := range big.Lights {
					b, s := big.Lights[i], small.Lights[i]
					So(s.ID, ShouldEqual, b.ID)
					So((s.BaseX-pad)/(600-2*pad), ShouldAlmostEqual, (b.BaseX-pad)/(1200-2*pad), 1e-9)
					So((s.BaseY-pad)/(400-2*pad), ShouldAlmostEqual, (b.BaseY-pad)/(800-2*pad), 1e-9)
				}
			})
		})

		Convey("When a highlight is requested twice", func() {
			first, _ := svc.Scene(ctx, layout.Viewport{}, "e-mid")
			second, _ := svc.Scene(ctx, layout.Viewport{}, "e-mid")

			Convey("Then it pulses only the first time", func() {
				So(pulsed(first), ShouldResemble, []string{"e-mid"})
				So(pulsed(second), ShouldBeEmpty)
			})
		})

		Convey("When an unknown id is highlighted", func() {
			sc, _ := svc.Scene(ctx, layout.Viewport{}, "nope")

			Convey("Then nothing pulses", func() {
				So(pulsed(sc), ShouldBeEmpty)
			})
		})

		Convey("When looking an entry up", func() {
			e, err := svc.Entry(ctx, "e-old")

			Convey("Then it carries its link", func() {
				So(err, ShouldBeNil)
				So(e.ID, ShouldEqual, "e-old")
				So(e.Href, ShouldEqual, "/entry/e-old")
				So(e.Rank, ShouldEqual, 2)
			})

			Convey("Then unknown ids are not found", func() {
				_, err := svc.Entry(ctx, "missing")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service that pulses every time", t, func() {
		svc, _ := newService(service.WithHighlightOnce(false))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then repeated highlights keep pulsing", func() {
			for i := 0; i < 3; i++ {
				sc, _ := svc.Scene(ctx, layout.Viewport{}, "e-new")
				So(pulsed(sc), ShouldResemble, []string{"e-new"})
			}
		})
	})

	Convey("Given a store that cannot be read", t, func() {
		svc, _ := newService(service.WithStore(brokenStore{}))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the forest renders without lights", func() {
			sc, err := svc.Scene(ctx, layout.Viewport{}, "")
			So(err, ShouldBeNil)
			So(sc.Lights, ShouldBeEmpty)
			So(sc.Background.From, ShouldNotBeEmpty)
		})
	})
}

func TestService_Frame(t *testing.T) {
	Convey("Given a started service on a manual clock", t, func() {
		svc, clock := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then every window light is mounted", func() {
			frame := svc.Frame(ctx)
			So(frame.Offsets, ShouldHaveLength, 3)
			So(frame.Version, ShouldEqual, 0)
			So(svc.GetStats()["lightsMounted"], ShouldEqual, 3)
			So(svc.GetStats()["lightsActive"], ShouldEqual, 1)
		})

		Convey("When the clock advances", func() {
			clock.Advance(2 * time.Second)
			frame := svc.Frame(ctx)

			Convey("Then the front light has ticked within the clamp", func() {
				So(frame.Version, ShouldBeGreaterThan, 0)
				off := frame.Offsets["e-new"]
				So(off.X, ShouldBeBetweenOrEqual, -2, 2)
				So(off.Y, ShouldBeBetweenOrEqual, -2, 2)
			})

			Convey("Then lights past the cutoff stay at rest", func() {
				So(frame.Offsets["e-mid"], ShouldResemble, flicker.Offset{})
				So(frame.Offsets["e-old"], ShouldResemble, flicker.Offset{})
			})
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc, clock := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then starting again is a no-op", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()
		})

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it is marked as stopped and its timers are gone", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				So(clock.Pending(), ShouldEqual, 0)
			})

			Convey("Then stopping again is safe", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})

			Convey("Then it cannot be restarted", func() {
				So(errors.Is(svc.Start(ctx), service.ErrStopped), ShouldBeTrue)
			})
		})
	})
}

func pulsed(sc types.Scene) []string {
	out := []string{}
	for _, l := range sc.Lights {
		if l.Pulse != nil {
			out = append(out, l.ID)
		}
	}
	return out
}
