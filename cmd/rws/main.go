// Command rws runs the full radial-wind-speed analysis batch: load a Molas3D
// RealTime CSV, apply the CNR quality filter, aggregate per beam direction and
// write charts plus a textual report into the output directory.
//
// Usage:
//
//	rws [input.csv]
//
// A positional argument overrides the configured input path. All other
// settings come from rws.toml and RWS_-prefixed environment variables.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/lidar-rws-analysis/internal/adapter/molas"
	"github.com/couchcryptid/lidar-rws-analysis/internal/adapter/render"
	"github.com/couchcryptid/lidar-rws-analysis/internal/config"
	"github.com/couchcryptid/lidar-rws-analysis/internal/observability"
	"github.com/couchcryptid/lidar-rws-analysis/internal/pipeline"
	"github.com/couchcryptid/lidar-rws-analysis/internal/report"
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if arg := flag.Arg(0); arg != "" {
		cfg.Input = arg
	}

	logger := observability.NewLogger(cfg)

	loader := molas.NewReader(logger)
	renderer := render.NewRenderer(cfg.OutputDir, logger)
	reporter := report.NewWriter(cfg.OutputDir)

	p := pipeline.New(loader, renderer, reporter, logger, pipeline.Options{
		Input:       cfg.Input,
		OutDir:      cfg.OutputDir,
		Threshold:   cfg.CNRThreshold,
		Percentiles: cfg.Percentiles,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil {
		logger.Error("analysis run failed", "error", err)
		stop()
		os.Exit(1)
	}
}
