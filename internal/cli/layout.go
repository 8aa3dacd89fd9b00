package cli

import (
	"github.com/spf13/cobra"

	"github.com/okian/forest/internal/domain/layout"
)

type layoutOpts struct {
	width       float64
	height      float64
	pad         float64
	minDistance float64
	tries       int
}

// placedPoint is a normalized point together with its pixel projection.
type placedPoint struct {
	layout.Point
	PX      float64 `json:"px"`
	PY      float64 `json:"py"`
	Tries   int     `json:"tries"`
	Outcome string  `json:"outcome"`
}

type layoutResult struct {
	Viewport  layout.Viewport `json:"viewport"`
	Points    []placedPoint   `json:"points"`
	Fallbacks int             `json:"fallbacks"`
}

func (o layoutOpts) options() layout.Option {
	return layout.WithOptions(layout.Options{
		SafePaddingPx: o.pad,
		MinDistancePx: o.minDistance,
		MaxTries:      o.tries,
	})
}

func (o layoutOpts) viewport() layout.Viewport {
	return layout.Viewport{W: o.width, H: o.height}
}

func addLayoutFlags(cmd *cobra.Command, o *layoutOpts) {
	d := layout.Defaults()
	cmd.Flags().Float64Var(&o.width, "width", defaultWidth, "viewport width in pixels")
	cmd.Flags().Float64Var(&o.height, "height", defaultHeight, "viewport height in pixels")
	cmd.Flags().Float64Var(&o.pad, "pad", d.SafePaddingPx, "safe padding in pixels")
	cmd.Flags().Float64Var(&o.minDistance, "min-distance", d.MinDistancePx, "minimum distance between lights in pixels")
	cmd.Flags().IntVar(&o.tries, "tries", d.MaxTries, "placement candidates per light")
}

func newLayoutCmd() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [ids...]",
		Short: "Place one light per id and print the points as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			vp := opts.viewport()
			points, report := layout.Place(args, vp, opts.options())

			res := layoutResult{Viewport: vp, Points: make([]placedPoint, len(points)), Fallbacks: report.Fallbacks()}
			for i, p := range points {
				px := layout.ToPx(p, vp, opts.pad)
				res.Points[i] = placedPoint{
					Point:   p,
					PX:      px.X,
					PY:      px.Y,
					Tries:   report.Placements[i].Tries,
					Outcome: report.Placements[i].Outcome.String(),
				}
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	addLayoutFlags(cmd, &opts)
	return cmd
}
