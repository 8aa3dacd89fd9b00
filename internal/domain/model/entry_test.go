package model_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	model "github.com/okian/forest/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	convey.Convey("Given an entry reference", t, func() {
		convey.Convey("When the id is blank", func() {
			err := model.Entry{ID: "  "}.Validate()

			convey.Convey("Then it is rejected", func() {
				convey.So(errors.Is(err, model.ErrEmptyID), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the id is set", func() {
			convey.Convey("Then it validates", func() {
				convey.So(model.Entry{ID: "e1"}.Validate(), convey.ShouldBeNil)
			})
		})
	})
}

func TestWindow(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	convey.Convey("Given the default 50 day window", t, func() {
		w := model.Window{Days: model.DefaultWindowDays}

		convey.Convey("Then it starts 49 days before now", func() {
			convey.So(w.Since(now), convey.ShouldEqual, now.Add(-49*day))
		})

		convey.Convey("Then a window of one day starts now", func() {
			convey.So(model.Window{Days: 1}.Since(now), convey.ShouldEqual, now)
		})

		convey.Convey("Then a zero window falls back to the default", func() {
			convey.So(model.Window{}.Since(now), convey.ShouldEqual, w.Since(now))
		})
	})

	convey.Convey("Given entries ordered newest first", t, func() {
		entries := []model.Entry{
			{ID: "b", CreatedAt: now.Add(-2 * day)},
			{ID: "gone", CreatedAt: now.Add(-80 * day)},
			{ID: "a", CreatedAt: now},
			{ID: "c", CreatedAt: now.Add(-2 * day)},
		}
		sorted := slices.Clone(entries)
		slices.SortFunc(sorted, func(x, y model.Entry) int {
			if model.Less(x, y) {
				return -1
			}
			if model.Less(y, x) {
				return 1
			}
			return 0
		})

		convey.Convey("Then newer entries lead and equal times fall back to the id", func() {
			convey.So(model.IDs(sorted), convey.ShouldResemble, []string{"a", "b", "c", "gone"})
		})
	})
}
