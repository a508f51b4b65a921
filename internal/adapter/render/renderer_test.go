package render

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/lidar-rws-analysis/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func measurement(az, el float64, gate int, rws, cnr float64) domain.Measurement {
	return domain.Measurement{
		Timestamp: time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC),
		Azimuth:   az,
		Elevation: el,
		Gate:      gate,
		Distance:  50 * float64(gate+1),
		RWS:       rws,
		CNR:       cnr,
	}
}

func testAnalysis() *domain.Analysis {
	set := &domain.MeasurementSet{Measurements: []domain.Measurement{
		measurement(45, 15, 0, 2.1, -10),
		measurement(45, 15, 0, 3.4, -12),
		measurement(45, 15, 1, 4.0, -11),
		measurement(90, 15, 0, -1.2, -9),
		measurement(90, 15, 1, -2.0, -14),
		measurement(270, 15, 0, 7.0, -35), // entire angle below threshold
	}}
	return domain.Analyze(set, "test.csv", -20, nil)
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, discardLogger())

	charts, err := r.Render(testAnalysis())
	require.NoError(t, err)

	expected := []string{
		"rws_distance_az45.0_el15.0.png",
		"rws_distribution_az45.0_el15.0.png",
		"cnr_filter_comparison_az45.0_el15.0.png",
		"rws_distance_az90.0_el15.0.png",
		"rws_distribution_az90.0_el15.0.png",
		"cnr_filter_comparison_az90.0_el15.0.png",
		"heatmap_azimuth_distance_el15.0.png",
		"azimuth_comparison_el15.0.png",
		"heatmap_elevation_distance_az45.0.png",
		"heatmap_elevation_distance_az90.0.png",
		"wind_rose.png",
	}
	assert.Equal(t, expected, charts)

	for _, name := range expected {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}

	t.Run("no chart files for the filtered-out angle", func(t *testing.T) {
		matches, err := filepath.Glob(filepath.Join(dir, "*az270.0*"))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestBuildGrid(t *testing.T) {
	a := testAnalysis()

	g := buildGrid(a.Matrix, 1500)
	require.NotNil(t, g)

	cols, rows := g.Dims()
	assert.Equal(t, 3, cols) // azimuths 45, 90, 270
	assert.Equal(t, 2, rows) // distances 50, 100

	assert.Equal(t, 45.0, g.X(0))
	assert.Equal(t, 270.0, g.X(2))
	assert.Equal(t, 50.0, g.Y(0))
	assert.Equal(t, 100.0, g.Y(1))

	t.Run("no-data cells are NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(g.Z(2, 0)), "az 270 has no valid rows")
		assert.False(t, math.IsNaN(g.Z(0, 0)))
	})

	t.Run("finite range excludes NaN", func(t *testing.T) {
		lo, hi := g.finiteRange()
		assert.Equal(t, -2.0, lo)
		assert.InDelta(t, 4.0, hi, 1e-12)
	})

	t.Run("nil for absent elevation", func(t *testing.T) {
		assert.Nil(t, buildGrid(a.Matrix, 7500))
	})
}

func TestBuildElevationGrid(t *testing.T) {
	a := testAnalysis()

	g := buildElevationGrid(a.Matrix, 4500)
	require.NotNil(t, g)

	cols, rows := g.Dims()
	assert.Equal(t, 1, cols)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 15.0, g.X(0))
	assert.Equal(t, 50.0, g.Y(0))
	assert.InDelta(t, 2.75, g.Z(0, 0), 1e-12) // mean of 2.1 and 3.4

	t.Run("nil when the azimuth has no valid data", func(t *testing.T) {
		assert.Nil(t, buildElevationGrid(a.Matrix, 27000))
	})
}

func TestRenderMultiElevation(t *testing.T) {
	set := &domain.MeasurementSet{Measurements: []domain.Measurement{
		measurement(45, 15, 0, 2.1, -10),
		measurement(45, 15, 1, 3.0, -11),
		measurement(45, 75, 0, 1.2, -9),
		measurement(45, 75, 1, 0.8, -12),
	}}
	a := domain.Analyze(set, "test.csv", -20, nil)

	dir := t.TempDir()
	charts, err := NewRenderer(dir, discardLogger()).Render(a)
	require.NoError(t, err)

	t.Run("elevation comparison appears with two elevations at one azimuth", func(t *testing.T) {
		assert.Contains(t, charts, "elevation_comparison_az45.0.png")
	})

	t.Run("no azimuth comparison with a single azimuth per elevation", func(t *testing.T) {
		for _, c := range charts {
			assert.NotContains(t, c, "azimuth_comparison")
		}
	})

	t.Run("one elevation heatmap per azimuth, one azimuth heatmap per elevation", func(t *testing.T) {
		assert.Contains(t, charts, "heatmap_elevation_distance_az45.0.png")
		assert.Contains(t, charts, "heatmap_azimuth_distance_el15.0.png")
		assert.Contains(t, charts, "heatmap_azimuth_distance_el75.0.png")
	})
}
