package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	app "github.com/okian/briefmatch/internal/app"
	"github.com/okian/briefmatch/internal/domain/model"
	"github.com/okian/briefmatch/pkg/logger"
)

func newMatchCmd() *cobra.Command {
	var (
		briefPath string
		logLevel  string
	)
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match one brief and print each phase as a JSON line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			b, err := readBrief(briefPath)
			if err != nil {
				return err
			}
			cfg, log, err := setup(ctx, logLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			svc := app.New(app.WithConfig(cfg), app.WithLogger(log))
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = svc.Stop(context.Background()) }()

			return runMatch(ctx, svc, b, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&briefPath, "brief", "", "brief file (JSON or YAML)")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level for this command")
	_ = cmd.MarkFlagRequired("brief")
	return cmd
}

// runMatch writes every event of the run as one JSON line.
func runMatch(ctx context.Context, svc *app.Service, b *model.Brief, out io.Writer) error {
	run, err := svc.Match(ctx, b)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for ev := range run.Events() {
		if err := enc.Encode(ev); err != nil {
			run.Cancel()
			return fmt.Errorf("write event: %w", err)
		}
	}
	return nil
}

// readBrief decodes a brief file; .yaml and .yml are parsed as YAML,
// anything else as JSON.
func readBrief(path string) (*model.Brief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brief: %w", err)
	}
	var b model.Brief
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &b)
	default:
		err = json.Unmarshal(data, &b)
	}
	if err != nil {
		return nil, fmt.Errorf("parse brief %s: %w", path, err)
	}
	return &b, nil
}
