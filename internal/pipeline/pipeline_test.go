package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lidar-rws-analysis/internal/domain"
)

type stubLoader struct {
	set  *domain.MeasurementSet
	err  error
	path string
}

func (l *stubLoader) Load(_ context.Context, path string) (*domain.MeasurementSet, error) {
	l.path = path
	return l.set, l.err
}

type stubRenderer struct {
	charts []string
	err    error
	got    *domain.Analysis
}

func (r *stubRenderer) Render(a *domain.Analysis) ([]string, error) {
	r.got = a
	return r.charts, r.err
}

type stubReporter struct {
	path      string
	err       error
	gotCharts []string
}

func (r *stubReporter) Write(_ *domain.Analysis, charts []string) (string, error) {
	r.gotCharts = charts
	return r.path, r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSet() *domain.MeasurementSet {
	return &domain.MeasurementSet{
		Measurements: []domain.Measurement{
			{
				Timestamp: time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC),
				Azimuth:   45, Elevation: 15, Gate: 0, Distance: 50,
				RWS: 2.1, CNR: -10,
			},
		},
		Stats: domain.ParseStats{RowsRead: 1, RowsParsed: 1},
	}
}

func newTestPipeline(t *testing.T, loader *stubLoader, renderer *stubRenderer, reporter *stubReporter) *Pipeline {
	t.Helper()
	return New(loader, renderer, reporter, discardLogger(), Options{
		Input:     "in.csv",
		OutDir:    filepath.Join(t.TempDir(), "out"),
		Threshold: -20,
	})
}

func TestRun(t *testing.T) {
	loader := &stubLoader{set: testSet()}
	renderer := &stubRenderer{charts: []string{"wind_rose.png"}}
	reporter := &stubReporter{path: "out/report.txt"}
	p := newTestPipeline(t, loader, renderer, reporter)

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, "in.csv", loader.path)
	require.NotNil(t, renderer.got)
	assert.Equal(t, -20.0, renderer.got.Threshold)
	assert.Equal(t, 1, renderer.got.View.ValidCount())
	assert.Equal(t, []string{"wind_rose.png"}, reporter.gotCharts)

	info, err := os.Stat(p.outDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunClearsPreviousArtifacts(t *testing.T) {
	p := newTestPipeline(t, &stubLoader{set: testSet()}, &stubRenderer{}, &stubReporter{})

	require.NoError(t, os.MkdirAll(p.outDir, 0o750))
	stale := filepath.Join(p.outDir, "heatmap_azimuth_distance_el75.0.png")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))

	require.NoError(t, p.Run(context.Background()))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestRunErrors(t *testing.T) {
	t.Run("loader failure aborts the run", func(t *testing.T) {
		renderer := &stubRenderer{}
		p := newTestPipeline(t, &stubLoader{err: errors.New("no such file")}, renderer, &stubReporter{})

		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load measurements")
		assert.Nil(t, renderer.got, "renderer must not run after a load failure")
	})

	t.Run("renderer failure aborts before the report", func(t *testing.T) {
		reporter := &stubReporter{}
		p := newTestPipeline(t, &stubLoader{set: testSet()}, &stubRenderer{err: errors.New("encode png")}, reporter)

		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "render charts")
		assert.Nil(t, reporter.gotCharts)
	})

	t.Run("report failure surfaces", func(t *testing.T) {
		p := newTestPipeline(t, &stubLoader{set: testSet()}, &stubRenderer{}, &stubReporter{err: errors.New("disk full")})

		err := p.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "write report")
	})
}
