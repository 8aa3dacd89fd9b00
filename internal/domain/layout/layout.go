package layout

import (
	"math"

	"github.com/okian/forest/internal/domain/seedrng"
)

// Viewport is a pixel size.
type Viewport struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Point is a light position normalized to the usable area, both axes in [0,1].
type Point struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Pixel is a position in viewport pixels.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outcome records how a light's position was chosen.
type Outcome int

const (
	// Accepted means a candidate satisfied the minimum distance.
	Accepted Outcome = iota
	// BestEffort means the try budget ran out and the candidate with the
	// largest observed clearance was kept.
	BestEffort
	// Centered means no candidate was recorded and the center was used.
	Centered
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case BestEffort:
		return "best_effort"
	case Centered:
		return "centered"
	default:
		return "unknown"
	}
}

// Placement is the instrumentation for a single light.
type Placement struct {
	ID      string
	Tries   int
	Outcome Outcome
}

// Report collects placements in input order.
type Report struct {
	Placements []Placement
}

// Count returns how many placements ended with outcome o.
func (r Report) Count(o Outcome) int {
	n := 0
	for _, p := range r.Placements {
		if p.Outcome == o {
			n++
		}
	}
	return n
}

// Fallbacks returns how many lights did not get an accepted candidate.
func (r Report) Fallbacks() int {
	return len(r.Placements) - r.Count(Accepted)
}

// Lights returns one normalized point per id, in input order.
func Lights(ids []string, vp Viewport, opts ...Option) []Point {
	points, _ := Place(ids, vp, opts...)
	return points
}

// Place is Lights plus a per-light report.
//
// Each id draws its candidates from its own seeded generator, so a light's
// candidate sequence never depends on the other ids. Placement itself is a
// greedy sequential packer: lights placed earlier constrain later ones.
func Place(ids []string, vp Viewport, opts ...Option) ([]Point, Report) {
	o := resolve(opts)
	pad := o.SafePaddingPx
	usableW, degW := usable(vp.W, pad)
	usableH, degH := usable(vp.H, pad)
	center := Pixel{X: pad + usableW*0.5, Y: pad + usableH*0.5}

	placed := make([]Pixel, 0, len(ids))
	report := Report{Placements: make([]Placement, 0, len(ids))}

	for _, id := range ids {
		r := seedrng.FromSeed(id)
		pl := Placement{ID: id, Outcome: Centered}

		var best Pixel
		haveBest := false
		bestScore := math.Inf(-1)

		for i := 0; i < o.MaxTries; i++ {
			c := Pixel{
				X: pad + seedrng.Between(r, 0, usableW),
				Y: pad + seedrng.Between(r, 0, usableH),
			}
			if degW {
				c.X = center.X
			}
			if degH {
				c.Y = center.Y
			}
			pl.Tries = i + 1

			ok, nearest := clearance(c, placed, o.MinDistancePx)
			if ok {
				best, haveBest = c, true
				pl.Outcome = Accepted
				break
			}
			if nearest > bestScore {
				bestScore = nearest
				best, haveBest = c, true
			}
		}

		switch {
		case !haveBest:
			best = center
		case pl.Outcome != Accepted:
			pl.Outcome = BestEffort
		}
		placed = append(placed, best)
		report.Placements = append(report.Placements, pl)
	}

	points := make([]Point, len(ids))
	for i, id := range ids {
		points[i] = Point{
			ID: id,
			X:  clamp01((placed[i].X - pad) / usableW),
			Y:  clamp01((placed[i].Y - pad) / usableH),
		}
	}
	return points, report
}

// clearance reports whether c keeps minD from every placed point, plus the
// smallest distance observed before the first rejection.
func clearance(c Pixel, placed []Pixel, minD float64) (bool, float64) {
	nearest := math.Inf(1)
	for _, p := range placed {
		d := math.Hypot(c.X-p.X, c.Y-p.Y)
		nearest = min(nearest, d)
		if d < minD {
			return false, nearest
		}
	}
	return true, nearest
}

// ToPx projects a normalized point into pixel space for any viewport.
func ToPx(p Point, vp Viewport, padPx float64) Pixel {
	usableW, _ := usable(vp.W, padPx)
	usableH, _ := usable(vp.H, padPx)
	return Pixel{
		X: padPx + p.X*usableW,
		Y: padPx + p.Y*usableH,
	}
}

// usable returns the usable extent along one axis, clamped to at least 1,
// and whether the axis is degenerate.
func usable(extent, pad float64) (float64, bool) {
	u := extent - 2*pad
	if math.IsNaN(u) || math.IsInf(u, 0) || u < 1 {
		return 1, true
	}
	return u, false
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	return max(0, min(1, v))
}
