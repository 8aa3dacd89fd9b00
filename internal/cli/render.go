package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/forest/internal/adapters/render"
	"github.com/okian/forest/internal/domain/layout"
	"github.com/okian/forest/internal/domain/scene"
)

type renderOpts struct {
	layoutOpts
	highlight string
	date      string
	output    string
	static    bool
	pulseAt   time.Duration
	noTrees   bool
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [ids...]",
		Short: "Render newest-first ids to an SVG forest",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if opts.date != "" {
				t, err := time.Parse(time.DateOnly, opts.date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", opts.date, err)
				}
				now = t
			}

			vp := opts.viewport()
			points := layout.Lights(args, vp, opts.options())
			sc := scene.Compose(scene.Input{
				Items:     scene.ItemsFor(points),
				Viewport:  vp,
				PaddingPx: opts.pad,
				Highlight: opts.highlight,
				Pulse:     scene.DefaultPulse(),
				Now:       now,
			})

			var svgOpts []render.SVGOption
			switch {
			case opts.pulseAt > 0:
				svgOpts = append(svgOpts, render.WithPulseFrame(opts.pulseAt))
			case opts.static:
				svgOpts = append(svgOpts, render.WithStatic())
			}
			if opts.noTrees {
				svgOpts = append(svgOpts, render.WithoutTrees())
			}
			out := render.RenderSVG(sc, svgOpts...)

			if opts.output == "" || opts.output == "-" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			return os.WriteFile(opts.output, out, 0o644)
		},
	}
	addLayoutFlags(cmd, &opts.layoutOpts)
	cmd.Flags().StringVar(&opts.highlight, "new", "", "id of the freshly created entry to pulse")
	cmd.Flags().StringVar(&opts.date, "date", "", "date selecting the season (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.static, "static", false, "omit animations")
	cmd.Flags().DurationVar(&opts.pulseAt, "pulse-at", 0, "render the pulse as the still frame reached after this duration")
	cmd.Flags().BoolVar(&opts.noTrees, "no-trees", false, "omit the tree silhouettes")
	return cmd
}
