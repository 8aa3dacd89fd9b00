package cli

import (
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/forest/internal/domain/flicker"
)

type flickerResult struct {
	Seed     string         `json:"seed"`
	Depth    float64        `json:"depth"`
	Strength float64        `json:"strength"`
	Active   bool           `json:"active"`
	Ticks    int            `json:"ticks"`
	Moves    int            `json:"moves"`
	Stalls   int            `json:"stalls"`
	MaxAbsX  float64        `json:"max_abs_x"`
	MaxAbsY  float64        `json:"max_abs_y"`
	Final    flicker.Offset `json:"final"`
	Elapsed  string         `json:"elapsed"`
}

// simulate runs one light for ticks ticks on a manual clock.
func simulate(seed string, depth float64, ticks int, cfg flicker.Config) flickerResult {
	m := flicker.New(seed, depth, cfg)
	res := flickerResult{Seed: seed, Depth: depth, Strength: m.Strength(), Active: m.Active()}

	start := time.Unix(0, 0).UTC()
	clock := flicker.NewManual(start)
	task := flicker.Run(m, clock, func(step flicker.Step) {
		res.MaxAbsX = math.Max(res.MaxAbsX, math.Abs(step.Offset.X))
		res.MaxAbsY = math.Max(res.MaxAbsY, math.Abs(step.Offset.Y))
	})
	defer task.Stop()

	step := max(cfg.Interval.Max, time.Millisecond)
	for task.Active() && task.Stats().Ticks < ticks {
		clock.Advance(step)
	}

	st := task.Stats()
	res.Ticks, res.Moves, res.Stalls = st.Ticks, st.Moves, st.Stalls
	res.Final = task.Offset()
	res.Elapsed = clock.Now().Sub(start).String()
	return res
}

func newFlickerCmd() *cobra.Command {
	var (
		seed   string
		depth  float64
		ticks  int
		cutoff float64
	)
	cfg := flicker.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "flicker",
		Short: "Simulate one light's flicker and print its statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := cfg
			c.Cutoff = cutoff
			if err := c.Validate(); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), simulate(seed, depth, ticks, c))
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "light", "entry id seeding the flicker")
	cmd.Flags().Float64Var(&depth, "depth", 0, "depth of the light in [0,1]")
	cmd.Flags().IntVar(&ticks, "ticks", 10_000, "number of ticks to simulate")
	cmd.Flags().Float64Var(&cutoff, "cutoff", cfg.Cutoff, "depth beyond which lights rest")
	return cmd
}
