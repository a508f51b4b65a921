// Package pipeline orchestrates a full analysis run: load the raw CSV, derive
// the quality-filtered aggregates, render charts and write the report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/lidar-rws-analysis/internal/domain"
)

// Loader reads raw measurements from a source path.
type Loader interface {
	Load(ctx context.Context, path string) (*domain.MeasurementSet, error)
}

// Renderer produces chart artifacts for an analysis and returns their file
// names in render order.
type Renderer interface {
	Render(a *domain.Analysis) ([]string, error)
}

// ReportWriter writes the textual summary and returns its path.
type ReportWriter interface {
	Write(a *domain.Analysis, charts []string) (string, error)
}

// Pipeline wires the stages of one batch run.
type Pipeline struct {
	loader   Loader
	renderer Renderer
	reporter ReportWriter
	logger   *slog.Logger

	input       string
	outDir      string
	threshold   float64
	percentiles []float64
}

// Options carries the run parameters resolved from configuration.
type Options struct {
	Input       string
	OutDir      string
	Threshold   float64
	Percentiles []float64
}

// New creates a Pipeline from its stage implementations.
func New(loader Loader, renderer Renderer, reporter ReportWriter, logger *slog.Logger, opts Options) *Pipeline {
	return &Pipeline{
		loader:      loader,
		renderer:    renderer,
		reporter:    reporter,
		logger:      logger,
		input:       opts.Input,
		outDir:      opts.OutDir,
		threshold:   opts.Threshold,
		percentiles: opts.Percentiles,
	}
}

// Run executes the batch end to end. The output directory is recreated at the
// start so artifacts from a previous run never survive into this one.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("starting analysis run",
		"input", p.input,
		"output_dir", p.outDir,
		"cnr_threshold", p.threshold,
	)

	if err := p.prepareOutputDir(); err != nil {
		return err
	}

	set, err := p.loader.Load(ctx, p.input)
	if err != nil {
		return fmt.Errorf("load measurements: %w", err)
	}
	p.logger.Info("measurements loaded",
		"rows_read", set.Stats.RowsRead,
		"rows_parsed", set.Stats.RowsParsed,
		"rows_skipped", set.Stats.RowsSkipped,
	)

	a := domain.Analyze(set, p.input, p.threshold, p.percentiles)
	p.logger.Info("quality filter applied",
		"valid", a.View.ValidCount(),
		"total", a.View.TotalCount(),
		"retained_pct", fmt.Sprintf("%.2f", a.RetainedFraction()*100),
	)
	for _, key := range a.NoDataAngles() {
		p.logger.Warn("angle has no valid data above threshold", "angle", key.String())
	}

	charts, err := p.renderer.Render(a)
	if err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	p.logger.Info("charts rendered", "count", len(charts))

	reportPath, err := p.reporter.Write(a, charts)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	p.logger.Info("analysis run complete", "report", reportPath, "charts", len(charts))
	return nil
}

func (p *Pipeline) prepareOutputDir() error {
	if err := os.RemoveAll(p.outDir); err != nil {
		return fmt.Errorf("clear output dir %s: %w", p.outDir, err)
	}
	if err := os.MkdirAll(p.outDir, 0o750); err != nil {
		return fmt.Errorf("create output dir %s: %w", p.outDir, err)
	}
	return nil
}
