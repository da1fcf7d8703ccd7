package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/okian/briefmatch/internal/loadtest"
	"github.com/okian/briefmatch/pkg/logger"
)

func newLoadtestCmd() *cobra.Command {
	var (
		cfg      loadtest.Config
		logLevel string
	)
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Stream concurrent matches against a running server and verify every run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			_, log, err := setup(ctx, logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			stats, err := loadtest.Run(ctx, &cfg, log)
			if err != nil && !errors.Is(err, loadtest.ErrViolation) {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(stats); encErr != nil {
				return encErr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "base URL of the server")
	cmd.Flags().IntVar(&cfg.Briefs, "briefs", loadtest.DefaultBriefs, "number of briefs to match")
	cmd.Flags().IntVar(&cfg.Workers, "workers", loadtest.DefaultWorkers, "concurrent streams")
	cmd.Flags().IntVar(&cfg.Clients, "clients", loadtest.DefaultClients, "distinct client ids")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", loadtest.DefaultTimeout, "per-stream timeout")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "brief generator seed")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level for this command")
	return cmd
}
