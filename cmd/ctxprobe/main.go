package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"ctxprobe/internal/config"
	"ctxprobe/internal/errdefs"
	"ctxprobe/internal/logger"
	"ctxprobe/internal/pipeline"
	"ctxprobe/internal/render"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "ctxprobe <project> <function>",
		Short: "Reconstruct a function signature and its referenced types from fuzz-introspector reports",
		Long: "ctxprobe loads the fuzz-introspector reports of an OSS-Fuzz project, prints the\n" +
			"signature of the named function and the definitions of the types it references.\n\n" +
			"Configuration is read from config.yaml (or $CTXPROBE_CONFIG), .env and CTXPROBE_* variables.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], args[1], stdout, stderr)
		},
	}
}

func run(ctx context.Context, project, function string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	path := os.Getenv("CTXPROBE_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return errors.Errorf("failed to load config: %w", err)
	}

	ctx = logger.Setup(ctx, stderr, cfg.Logging.Level, cfg.Logging.Format)
	slogctx.Debug(ctx, "Configuration loaded",
		"config", path,
		"base_url", cfg.Introspector.BaseURL,
		"snapshot_date", cfg.Introspector.SnapshotDate)

	res, err := pipeline.Run(ctx, pipeline.Options{
		Config:   cfg,
		Project:  project,
		Function: function,
	})
	if err != nil {
		if errdefs.IsFatal(err) {
			slogctx.Error(ctx, "Reports unavailable", "project", project, "snapshot_date", cfg.Introspector.SnapshotDate, "error", err)
		} else {
			slogctx.Error(ctx, "Probe failed", "project", project, "function", function, "error", err)
		}
		return err
	}
	return render.Write(stdout, cfg.Output.Format, res)
}
