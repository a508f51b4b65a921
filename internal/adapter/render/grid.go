package render

import (
	"math"
	"sort"

	"github.com/couchcryptid/lidar-rws-analysis/internal/domain"
)

// grid is a 2D matrix of mean RWS over distance rows and angle columns,
// implementing plotter.GridXYZ. Missing or no-data cells hold NaN so the
// heatmap leaves them unpainted instead of faking a value.
type grid struct {
	xs    []float64 // column coordinates (azimuth or elevation, deg), ascending
	ys    []float64 // row coordinates (distance, m), ascending
	cells [][]float64
}

// buildGrid slices the multi-angle matrix at one elevation (centidegrees),
// columns keyed by azimuth. Returns nil when no cell has valid data.
func buildGrid(m domain.AngleMatrix, elevationCD int32) *grid {
	var summaries []domain.AngleSummary
	for _, s := range m.Angles {
		if s.Key.ElevationCD == elevationCD {
			summaries = append(summaries, s)
		}
	}
	return gridFrom(summaries, func(k domain.AngleKey) float64 { return k.Azimuth() })
}

// buildElevationGrid slices the matrix at one azimuth (centidegrees), columns
// keyed by elevation. Returns nil when no cell has valid data.
func buildElevationGrid(m domain.AngleMatrix, azimuthCD int32) *grid {
	var summaries []domain.AngleSummary
	for _, s := range m.Angles {
		if s.Key.AzimuthCD == azimuthCD {
			summaries = append(summaries, s)
		}
	}
	return gridFrom(summaries, func(k domain.AngleKey) float64 { return k.Elevation() })
}

// gridFrom fills cells with per-gate mean RWS; one column per summary, in
// matrix order, which is already ascending along the free coordinate.
func gridFrom(summaries []domain.AngleSummary, colOf func(domain.AngleKey) float64) *grid {
	if len(summaries) == 0 {
		return nil
	}

	distSet := make(map[float64]struct{})
	for _, s := range summaries {
		for _, g := range s.Gates {
			if g.HasData() {
				distSet[g.Distance] = struct{}{}
			}
		}
	}
	if len(distSet) == 0 {
		return nil
	}

	g := &grid{}
	for d := range distSet {
		g.ys = append(g.ys, d)
	}
	sort.Float64s(g.ys)
	rowOf := make(map[float64]int, len(g.ys))
	for i, d := range g.ys {
		rowOf[d] = i
	}

	for _, s := range summaries {
		g.xs = append(g.xs, colOf(s.Key))
	}

	g.cells = make([][]float64, len(g.ys))
	for i := range g.cells {
		g.cells[i] = make([]float64, len(g.xs))
		for j := range g.cells[i] {
			g.cells[i][j] = math.NaN()
		}
	}

	for col, s := range summaries {
		for _, gate := range s.Gates {
			if !gate.HasData() {
				continue
			}
			g.cells[rowOf[gate.Distance]][col] = gate.Mean
		}
	}
	return g
}

func (g *grid) Dims() (c, r int) { return len(g.xs), len(g.ys) }

func (g *grid) Z(c, r int) float64 { return g.cells[r][c] }

func (g *grid) X(c int) float64 { return g.xs[c] }

func (g *grid) Y(r int) float64 { return g.ys[r] }

// finiteRange returns the min and max over non-NaN cells.
func (g *grid) finiteRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range g.cells {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
