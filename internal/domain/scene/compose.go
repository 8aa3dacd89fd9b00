package scene

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/forest/internal/domain/depth"
	"github.com/okian/forest/internal/domain/flicker"
	"github.com/okian/forest/internal/domain/layout"
)

// Item is one light before projection.
type Item struct {
	ID    string
	Point layout.Point
	Depth float64
}

// ItemsFor pairs newest-first points with their recency depth.
func ItemsFor(points []layout.Point) []Item {
	depths := depth.All(len(points))
	items := make([]Item, len(points))
	for i, p := range points {
		items[i] = Item{ID: p.ID, Point: p, Depth: depths[i]}
	}
	return items
}

// OffsetSource supplies live flicker offsets by light id.
type OffsetSource interface {
	Offset(id string) (flicker.Offset, bool)
}

// Input is everything Compose needs for one render.
type Input struct {
	Items     []Item
	Viewport  layout.Viewport
	PaddingPx float64
	// Highlight is the id that receives the pulse; empty for none.
	Highlight string
	Pulse     Pulse
	// Now selects the season.
	Now time.Time
	// Offsets may be nil, in which case every light is at rest.
	Offsets OffsetSource
}

// Light is a fully resolved render item.
type Light struct {
	ID    string  `json:"id"`
	Href  string  `json:"href"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	BaseX float64 `json:"base_x"`
	BaseY float64 `json:"base_y"`
	Depth float64 `json:"depth"`
	Appearance
	Z     int    `json:"z"`
	Pulse *Pulse `json:"pulse,omitempty"`
}

// Scene is one composed frame.
type Scene struct {
	Season     Season          `json:"season"`
	Background Gradient        `json:"background"`
	Shadows    []Shadow        `json:"shadows"`
	Viewport   layout.Viewport `json:"viewport"`
	Lights     []Light         `json:"lights"`
}

// Href is the link target of an entry's light. The id is escaped like a
// browser's encodeURIComponent: every byte outside A-Z a-z 0-9 and
// -_.!~*'() is percent-encoded from its UTF-8 form.
func Href(id string) string {
	return "/entry/" + escapeComponent(id)
}

const upperHex = "0123456789ABCDEF"

func escapeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// Compose projects every item into the viewport and attaches its look.
// Lights come back ordered by ascending Z so a painter can draw them in
// sequence.
func Compose(in Input) Scene {
	season := SeasonOf(in.Now)
	out := Scene{
		Season:     season,
		Background: Palette(season),
		Shadows:    Shadows(season),
		Viewport:   in.Viewport,
		Lights:     make([]Light, 0, len(in.Items)),
	}

	for _, it := range in.Items {
		base := layout.ToPx(it.Point, in.Viewport, in.PaddingPx)
		var off flicker.Offset
		if in.Offsets != nil {
			off, _ = in.Offsets.Offset(it.ID)
		}
		l := Light{
			ID:         it.ID,
			Href:       Href(it.ID),
			X:          base.X + off.X,
			Y:          base.Y + off.Y,
			BaseX:      base.X,
			BaseY:      base.Y,
			Depth:      it.Depth,
			Appearance: AppearanceFor(it.Depth),
			Z:          ZIndex(it.Depth),
		}
		if in.Highlight != "" && it.ID == in.Highlight {
			p := in.Pulse
			l.Pulse = &p
		}
		out.Lights = append(out.Lights, l)
	}

	sort.SliceStable(out.Lights, func(i, j int) bool {
		return out.Lights[i].Z < out.Lights[j].Z
	})
	return out
}
