// Package scene turns placed lights into render parameters: pixel
// positions, depth-driven appearance, stacking order, the one-shot pulse of
// a new entry and the seasonal backdrop. It draws no randomness of its own
// and never carries entry text.
package scene

import (
	"math"
	"time"
)

// Appearance is the steady-state look of a light.
type Appearance struct {
	Opacity   float64 `json:"opacity"`
	Size      float64 `json:"size"`
	Glow      float64 `json:"glow"`
	GlowAlpha float64 `json:"glow_alpha"`
}

// AppearanceFor returns the look of a light at depth. Frontness 1-depth is
// eased by pow(x, 0.6) so mid-depth lights stay distinguishable; the deepest
// lights keep a visible floor.
func AppearanceFor(depth float64) Appearance {
	b := math.Pow(clamp01(1-depth), 0.6)
	return Appearance{
		Opacity:   0.18 + 0.62*b,
		Size:      6 + 10*b,
		Glow:      10 + 26*b,
		GlowAlpha: 0.10 + 0.22*b,
	}
}

// ZIndex maps depth inversely to a stacking index; front lights paint last.
func ZIndex(depth float64) int {
	return int(math.Round(1000 * clamp01(1-depth)))
}

// Pulse is the transient glow of a freshly created entry.
type Pulse struct {
	DurationMs int     `json:"duration_ms"`
	SettleMs   int     `json:"settle_ms"`
	Opacity    float64 `json:"opacity"`
	GlowPx     float64 `json:"glow_px"`
	GlowAlpha  float64 `json:"glow_alpha"`
	ScaleTo    float64 `json:"scale_to"`
}

// DefaultPulse pops for 350ms and settles over 650ms.
func DefaultPulse() Pulse {
	return Pulse{
		DurationMs: 350,
		SettleMs:   650,
		Opacity:    0.55,
		GlowPx:     46,
		GlowAlpha:  0.35,
		ScaleTo:    1.6,
	}
}

// Duration is the pop length.
func (p Pulse) Duration() time.Duration {
	return time.Duration(p.DurationMs) * time.Millisecond
}

// At returns the pulse intensity (1 at the start, 0 when done) and scale
// (1 growing to ScaleTo) after elapsed, with an ease-out curve.
func (p Pulse) At(elapsed time.Duration) (intensity, scale float64) {
	d := p.Duration()
	switch {
	case elapsed <= 0:
		return 1, 1
	case d <= 0 || elapsed >= d:
		return 0, p.ScaleTo
	}
	e := easeOut(float64(elapsed) / float64(d))
	return 1 - e, 1 + (p.ScaleTo-1)*e
}

// Done reports whether the pulse has fully faded after elapsed.
func (p Pulse) Done(elapsed time.Duration) bool {
	return elapsed >= p.Duration()
}

// easeOut is a cubic ease-out on [0,1].
func easeOut(u float64) float64 {
	v := 1 - clamp01(u)
	return 1 - v*v*v
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(1, v))
}
