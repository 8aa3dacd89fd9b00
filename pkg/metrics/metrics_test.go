package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithLatencyBuckets([]float64{1, 10}),
				WithRegistry(registry),
			)

			Convey("Then collectors use the configured names", func() {
				So(manager, ShouldNotBeNil)
				manager.entriesIngested.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_entries_ingested_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When the same registry is reused", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithRegistry(registry))

			Convey("Then registering again panics", func() {
				So(func() { NewManager(WithRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When counters are incremented", func() {
			before := testutil.ToFloat64(globalManager.entriesIngested)
			RecordEntryIngested()

			Convey("Then the value grows", func() {
				So(testutil.ToFloat64(globalManager.entriesIngested), ShouldEqual, before+1)
			})
		})

		Convey("When gauges are set", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(100)
			UpdateLightsMounted(3)
			UpdateEntriesStored(42)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(globalManager.lightsMounted), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.entriesStored), ShouldEqual, 42)
			})
		})

		Convey("When placements are recorded by outcome", func() {
			before := testutil.ToFloat64(globalManager.layoutPlacements.WithLabelValues("best_effort"))
			RecordLayoutPlacements("best_effort", 2)
			RecordLayoutPlacements("best_effort", 0)

			Convey("Then only positive counts are added", func() {
				So(testutil.ToFloat64(globalManager.layoutPlacements.WithLabelValues("best_effort")), ShouldEqual, before+2)
			})
		})

		Convey("When every helper is called", func() {
			Convey("Then none panics", func() {
				So(func() {
					RecordEntryDuplicate()
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateWorkerCount(4)
					RecordWorkerError()
					RecordWorkerProcessingLatency(1.5)
					RecordStoreLatency("put", 0.2)
					RecordLayoutDuration(3)
					RecordFlickerTick()
					RecordFlickerStall()
					RecordSceneComposed("json")
					RecordPulse()
					RecordHTTPRequest("scene", "GET", "200")
					RecordHTTPRequestDuration("scene", "GET", "200", 12)
					RecordErrorByComponent("store", "read")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})

		Convey("When the registry is gathered", func() {
			RecordHTTPRequest("healthz", "GET", "200")
			families, err := GetRegistry().Gather()

			Convey("Then every family is namespaced", func() {
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "forest_scene_"), ShouldBeTrue)
				}
			})
		})
	})
}

func TestLatencyBuckets(t *testing.T) {
	Convey("Given latency bucket options", t, func() {
		defaults := NewManager(WithRegistry(prometheus.NewRegistry())).histogramBuckets

		Convey("Then unsorted or repeated buckets keep the defaults", func() {
			So(NewManager(WithRegistry(prometheus.NewRegistry()), WithLatencyBuckets([]float64{5, 1})).histogramBuckets, ShouldResemble, defaults)
			So(NewManager(WithRegistry(prometheus.NewRegistry()), WithLatencyBuckets([]float64{1, 1, 2})).histogramBuckets, ShouldResemble, defaults)
		})

		Convey("Then the caller's slice is copied", func() {
			in := []float64{1, 2, 3}
			m := NewManager(WithRegistry(prometheus.NewRegistry()), WithLatencyBuckets(in))
			in[0] = 99
			So(m.histogramBuckets[0], ShouldEqual, 1)
		})
	})
}
