package cli

import (
	"github.com/spf13/cobra"

	"github.com/okian/forest/internal/domain/model"
	"github.com/okian/forest/internal/seeder"
)

func newSeedCmd() *cobra.Command {
	var cfg seeder.Config

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Post entry references to a running server and verify the scene",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := seeder.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the forest server")
	cmd.Flags().IntVar(&cfg.Entries, "entries", seeder.DefaultEntries, "number of entries to post")
	cmd.Flags().IntVar(&cfg.Workers, "workers", seeder.DefaultWorkers, "concurrent posters")
	cmd.Flags().IntVar(&cfg.Days, "days", model.DefaultWindowDays, "days to spread creation times across")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", seeder.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().DurationVar(&cfg.SettleTimeout, "settle", seeder.DefaultSettleTimeout, "how long to wait for lights to appear")
	cmd.Flags().StringVar(&cfg.Jitter, "jitter", "", "seed for creation time jitter")
	cmd.Flags().BoolVarP(&cfg.Verbose, "progress", "p", false, "log submission progress")
	return cmd
}
