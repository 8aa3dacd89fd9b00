// Package cli implements forestctl, an offline companion to the forest
// server: it lays out, renders and simulates lights without running the
// service, and can seed a running server.
package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/forest/pkg/logger"
)

// Viewport defaults match the server's reference viewport.
const (
	defaultWidth  = 1200
	defaultHeight = 800
)

// NewRootCommand builds the forestctl command tree.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "forestctl",
		Short:         "forestctl lays out, renders and animates diary lights",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithOptions(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if verbose {
				return logger.SetLevelString("debug")
			}
			return logger.SetLevelString("warn")
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newLayoutCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newFlickerCmd())
	root.AddCommand(newSeedCmd())
	return root
}

// writeJSON prints v indented.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
