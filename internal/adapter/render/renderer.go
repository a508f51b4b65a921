// Package render turns analysis aggregates into static PNG chart artifacts.
// Rendering is presentation-only: it formats and draws but never alters an
// aggregate value.
package render

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/lidar-rws-analysis/internal/domain"
)

// Renderer writes chart files into a prepared output directory.
type Renderer struct {
	outDir string
	logger *slog.Logger
}

// NewRenderer creates a Renderer targeting outDir. The directory must already
// exist; the pipeline recreates it at the start of each run.
func NewRenderer(outDir string, logger *slog.Logger) *Renderer {
	return &Renderer{outDir: outDir, logger: logger}
}

// Render produces every chart the analysis supports and returns the written
// file names (relative to the output directory). Beam directions without a
// single valid measurement get no charts; the report notes those omissions.
func (r *Renderer) Render(a *domain.Analysis) ([]string, error) {
	var charts []string

	add := func(name string, err error) error {
		if err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		r.logger.Info("chart written", "file", name)
		charts = append(charts, name)
		return nil
	}

	for _, s := range a.Matrix.Angles {
		if !s.HasData() {
			r.logger.Info("skipping charts for angle with no valid data", "angle", s.Key.String())
			continue
		}

		name := fmt.Sprintf("rws_distance_az%.1f_el%.1f.png", s.Key.Azimuth(), s.Key.Elevation())
		if err := add(name, r.renderProfile(s, name)); err != nil {
			return charts, err
		}

		name = fmt.Sprintf("rws_distribution_az%.1f_el%.1f.png", s.Key.Azimuth(), s.Key.Elevation())
		if err := add(name, r.renderDistribution(a, s, name)); err != nil {
			return charts, err
		}

		name = fmt.Sprintf("cnr_filter_comparison_az%.1f_el%.1f.png", s.Key.Azimuth(), s.Key.Elevation())
		if err := add(name, r.renderFilterComparison(a, s, name)); err != nil {
			return charts, err
		}
	}

	for _, el := range a.Matrix.Elevations() {
		g := buildGrid(a.Matrix, el)
		if g == nil {
			continue
		}
		elDeg := float64(el) / 100
		name := fmt.Sprintf("heatmap_azimuth_distance_el%.1f.png", elDeg)
		title := fmt.Sprintf("Mean RWS, azimuth × distance (el=%.2f°)", elDeg)
		if err := add(name, r.renderHeatmap(g, title, "Azimuth (°)", name)); err != nil {
			return charts, err
		}

		groups, labels := angleGroups(a, func(k domain.AngleKey) (bool, string) {
			return k.ElevationCD == el, fmt.Sprintf("%.1f°", k.Azimuth())
		})
		if len(groups) >= 2 {
			name = fmt.Sprintf("azimuth_comparison_el%.1f.png", elDeg)
			title = fmt.Sprintf("RWS by azimuth (el=%.2f°)", elDeg)
			if err := add(name, r.renderComparison(groups, labels, title, "Azimuth", name)); err != nil {
				return charts, err
			}
		}
	}

	for _, az := range a.Matrix.Azimuths() {
		g := buildElevationGrid(a.Matrix, az)
		if g == nil {
			continue
		}
		azDeg := float64(az) / 100
		name := fmt.Sprintf("heatmap_elevation_distance_az%.1f.png", azDeg)
		title := fmt.Sprintf("Mean RWS, elevation × distance (az=%.2f°)", azDeg)
		if err := add(name, r.renderHeatmap(g, title, "Elevation (°)", name)); err != nil {
			return charts, err
		}

		groups, labels := angleGroups(a, func(k domain.AngleKey) (bool, string) {
			return k.AzimuthCD == az, fmt.Sprintf("%.2f°", k.Elevation())
		})
		if len(groups) >= 2 {
			name = fmt.Sprintf("elevation_comparison_az%.1f.png", azDeg)
			title = fmt.Sprintf("RWS by elevation (az=%.2f°)", azDeg)
			if err := add(name, r.renderComparison(groups, labels, title, "Elevation", name)); err != nil {
				return charts, err
			}
		}
	}

	if roseHasData(a.Rose) {
		if err := add("wind_rose.png", r.renderRose(a.Rose, "wind_rose.png")); err != nil {
			return charts, err
		}
	}

	return charts, nil
}

func (r *Renderer) path(name string) string {
	return filepath.Join(r.outDir, name)
}

func roseHasData(bins []domain.RoseBin) bool {
	for _, b := range bins {
		if b.Count > 0 {
			return true
		}
	}
	return false
}

// angleGroups collects, in matrix order, the valid RWS values of every angle
// the selector admits, with its display label. Angles without valid data are
// left out so every box in a comparison has content.
func angleGroups(a *domain.Analysis, pick func(domain.AngleKey) (bool, string)) ([][]float64, []string) {
	var groups [][]float64
	var labels []string
	for _, s := range a.Matrix.Angles {
		ok, label := pick(s.Key)
		if !ok || !s.HasData() {
			continue
		}
		groups = append(groups, validRWS(a, s.Key))
		labels = append(labels, label)
	}
	return groups, labels
}

// validRWS collects the RWS values passing the quality view at one angle.
func validRWS(a *domain.Analysis, key domain.AngleKey) []float64 {
	var out []float64
	for i := range a.Set.Measurements {
		if a.Set.Key(i) == key && a.View.Valid(i) {
			out = append(out, a.Set.Measurements[i].RWS)
		}
	}
	return out
}

// allRWS collects every loaded RWS value at one angle, ignoring the filter.
func allRWS(a *domain.Analysis, key domain.AngleKey) []float64 {
	var out []float64
	for i := range a.Set.Measurements {
		if a.Set.Key(i) == key {
			out = append(out, a.Set.Measurements[i].RWS)
		}
	}
	return out
}
