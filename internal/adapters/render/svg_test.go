package render_test

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/okian/forest/internal/adapters/render"
	"github.com/okian/forest/internal/domain/layout"
	"github.com/okian/forest/internal/domain/scene"
	. "github.com/smartystreets/goconvey/convey"
)

func composed(ids []string, highlight string, now time.Time) scene.Scene {
	vp := layout.Viewport{W: 1000, H: 800}
	return scene.Compose(scene.Input{
		Items:     scene.ItemsFor(layout.Lights(ids, vp)),
		Viewport:  vp,
		PaddingPx: layout.DefaultSafePaddingPx,
		Highlight: highlight,
		Pulse:     scene.DefaultPulse(),
		Now:       now,
	})
}

// pulseAttr reads a numeric attribute of the first pulse circle.
func pulseAttr(doc, name string) float64 {
	i := strings.Index(doc, `class="pulse"`)
	if i < 0 {
		return -1
	}
	rest := doc[i:]
	key := " " + name + `="`
	j := strings.Index(rest, key)
	if j < 0 {
		return -1
	}
	rest = rest[j+len(key):]
	v, err := strconv.ParseFloat(rest[:strings.IndexByte(rest, '"')], 64)
	if err != nil {
		return -1
	}
	return v
}

// wellFormed walks the whole document with the XML decoder.
func wellFormed(doc []byte) error {
	d := xml.NewDecoder(strings.NewReader(string(doc)))
	for {
		if _, err := d.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func TestRenderSVG(t *testing.T) {
	autumn := time.Date(2026, 10, 14, 21, 0, 0, 0, time.UTC)

	Convey("Given a scene with three lights", t, func() {
		s := composed([]string{"c", "b", "a"}, "", autumn)
		doc := render.RenderSVG(s)
		out := string(doc)

		Convey("Then the document is well formed and sized to the viewport", func() {
			So(wellFormed(doc), ShouldBeNil)
			So(out, ShouldStartWith, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1000 800"`)
			So(out, ShouldContainSubstring, `data-season="autumn"`)
		})

		Convey("Then every light links to its entry", func() {
			So(strings.Count(out, `<a href="/entry/`), ShouldEqual, 3)
			So(out, ShouldContainSubstring, `href="/entry/a"`)
		})

		Convey("Then the autumn backdrop carries three vignettes and both tree edges", func() {
			So(out, ShouldContainSubstring, `id="shadow-2"`)
			So(strings.Count(out, `viewBox="0 0 200 800"`), ShouldEqual, 2)
			So(out, ShouldContainSubstring, `stop-color="#0b0d12"`)
		})

		Convey("Then no text element is emitted", func() {
			So(out, ShouldNotContainSubstring, "<text")
		})

		Convey("Then lights are painted back to front", func() {
			So(strings.Index(out, `data-id="a"`), ShouldBeLessThan, strings.Index(out, `data-id="c"`))
		})
	})

	Convey("Given a highlighted light", t, func() {
		s := composed([]string{"new", "old"}, "new", autumn)

		Convey("Then the pulse animates once by default", func() {
			out := string(render.RenderSVG(s))
			So(strings.Count(out, `class="pulse"`), ShouldEqual, 1)
			So(out, ShouldContainSubstring, `dur="350ms"`)
			So(out, ShouldContainSubstring, `fill="freeze"`)
		})

		Convey("Then the static form has no animation", func() {
			out := string(render.RenderSVG(s, render.WithStatic()))
			So(out, ShouldContainSubstring, `class="pulse"`)
			So(out, ShouldNotContainSubstring, "<animate")
		})

		Convey("Then a mid-pulse frame is larger and fainter than the first", func() {
			first := string(render.RenderSVG(s, render.WithStatic()))
			mid := string(render.RenderSVG(s, render.WithPulseFrame(175*time.Millisecond)))
			So(mid, ShouldContainSubstring, `class="pulse"`)
			So(mid, ShouldNotContainSubstring, "<animate")
			So(pulseAttr(mid, "r"), ShouldBeGreaterThan, pulseAttr(first, "r"))
			So(pulseAttr(mid, "fill-opacity"), ShouldBeLessThan, pulseAttr(first, "fill-opacity"))
		})

		Convey("Then the element backdrop layers the vignettes over the palette", func() {
			out := string(render.RenderSVG(s))
			So(out, ShouldContainSubstring, `style="background:`+scene.ShadowsCSS(scene.Autumn)+","+scene.Palette(scene.Autumn).CSS()+`"`)
		})

		Convey("Then a frame past the pop has no pulse", func() {
			out := string(render.RenderSVG(s, render.WithPulseFrame(time.Second)))
			So(out, ShouldNotContainSubstring, `class="pulse"`)
			So(out, ShouldNotContainSubstring, `class="pulse-glow"`)
		})
	})

	Convey("Given options that strip the backdrop", t, func() {
		s := composed([]string{"a"}, "", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
		out := string(render.RenderSVG(s, render.WithoutTrees(), render.WithoutShadows()))

		Convey("Then the element backdrop is the bare palette", func() {
			So(out, ShouldContainSubstring, `style="background:linear-gradient(180deg, #070a0f 0%, #06080d 100%)"`)
		})

		Convey("Then only the background and lights remain", func() {
			So(out, ShouldNotContainSubstring, "shadow-")
			So(out, ShouldNotContainSubstring, "<path")
			So(out, ShouldContainSubstring, `data-season="winter"`)
		})
	})

	Convey("Given ids that need escaping", t, func() {
		s := composed([]string{`a"<b>&`}, "", autumn)
		doc := render.RenderSVG(s)

		Convey("Then the markup stays well formed", func() {
			So(wellFormed(doc), ShouldBeNil)
		})
	})

	Convey("Given an empty degenerate scene", t, func() {
		s := scene.Compose(scene.Input{Now: autumn})
		doc := render.RenderSVG(s)

		Convey("Then a minimal document is still produced", func() {
			So(wellFormed(doc), ShouldBeNil)
			So(string(doc), ShouldContainSubstring, `viewBox="0 0 1 1"`)
			So(string(doc), ShouldNotContainSubstring, "<a ")
		})
	})
}
