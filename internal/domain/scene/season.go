package scene

import (
	"fmt"
	"strings"
	"time"
)

// Season is the calendar season driving the backdrop.
type Season string

// Seasons.
const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// SeasonOf returns the season of t's month in t's location:
// Mar-May spring, Jun-Aug summer, Sep-Nov autumn, Dec-Feb winter.
func SeasonOf(t time.Time) Season {
	switch m := t.Month(); {
	case m >= time.March && m <= time.May:
		return Spring
	case m >= time.June && m <= time.August:
		return Summer
	case m >= time.September && m <= time.November:
		return Autumn
	default:
		return Winter
	}
}

// Gradient is a vertical background gradient.
type Gradient struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CSS renders the gradient as a linear-gradient value.
func (g Gradient) CSS() string {
	return fmt.Sprintf("linear-gradient(180deg, %s 0%%, %s 100%%)", g.From, g.To)
}

// Palette returns the dark background of a season.
func Palette(s Season) Gradient {
	switch s {
	case Spring:
		return Gradient{From: "#0b0f14", To: "#0a1016"}
	case Summer:
		return Gradient{From: "#070c10", To: "#070d12"}
	case Autumn:
		return Gradient{From: "#0b0d12", To: "#090b10"}
	default:
		return Gradient{From: "#070a0f", To: "#06080d"}
	}
}

// Shadow is one elliptical vignette, black at Alpha in its center and
// transparent from FadePct outward. Geometry is in percent of the viewport.
type Shadow struct {
	WidthPct  float64 `json:"width_pct"`
	HeightPct float64 `json:"height_pct"`
	AtXPct    float64 `json:"at_x_pct"`
	AtYPct    float64 `json:"at_y_pct"`
	Alpha     float64 `json:"alpha"`
	FadePct   float64 `json:"fade_pct"`
}

// CSS renders the shadow as a radial-gradient value.
func (s Shadow) CSS() string {
	return fmt.Sprintf("radial-gradient(%g%% %g%% at %g%% %g%%, rgba(0,0,0,%g) 0%%, rgba(0,0,0,0.0) %g%%)",
		s.WidthPct, s.HeightPct, s.AtXPct, s.AtYPct, s.Alpha, s.FadePct)
}

// Shadows returns the vignettes of a season: a small band at the bottom in
// spring, almost nothing in summer, bottom plus both sides in autumn and the
// lower half in winter.
func Shadows(s Season) []Shadow {
	switch s {
	case Spring:
		return []Shadow{{WidthPct: 120, HeightPct: 40, AtXPct: 50, AtYPct: 105, Alpha: 0.55, FadePct: 60}}
	case Summer:
		return []Shadow{{WidthPct: 90, HeightPct: 25, AtXPct: 50, AtYPct: 110, Alpha: 0.38, FadePct: 55}}
	case Autumn:
		return []Shadow{
			{WidthPct: 120, HeightPct: 45, AtXPct: 50, AtYPct: 108, Alpha: 0.58, FadePct: 62},
			{WidthPct: 40, HeightPct: 70, AtXPct: 0, AtYPct: 65, Alpha: 0.33, FadePct: 68},
			{WidthPct: 40, HeightPct: 70, AtXPct: 100, AtYPct: 65, Alpha: 0.33, FadePct: 68},
		}
	default:
		return []Shadow{{WidthPct: 120, HeightPct: 80, AtXPct: 50, AtYPct: 95, Alpha: 0.72, FadePct: 70}}
	}
}

// ShadowsCSS joins the season's vignettes into one background value.
func ShadowsCSS(s Season) string {
	parts := make([]string, 0, 3)
	for _, sh := range Shadows(s) {
		parts = append(parts, sh.CSS())
	}
	return strings.Join(parts, ",")
}
