package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/lidar-rws-analysis/internal/domain"
)

var (
	meanColor   = color.NRGBA{R: 31, G: 119, B: 180, A: 255}
	stdColor    = color.NRGBA{R: 255, G: 127, B: 14, A: 180}
	rangeColor  = color.NRGBA{R: 44, G: 160, B: 44, A: 255}
	histColor   = color.NRGBA{R: 135, G: 206, B: 235, A: 255}
	beforeColor = color.NRGBA{R: 31, G: 119, B: 180, A: 120}
	afterColor  = color.NRGBA{R: 214, G: 39, B: 40, A: 120}
	roseColor   = color.NRGBA{R: 135, G: 206, B: 235, A: 200}
)

// renderProfile draws mean, min and max RWS against distance for one beam
// direction. Gates with no valid data leave gaps rather than zeros.
func (r *Renderer) renderProfile(s domain.AngleSummary, name string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("RWS vs distance (%s)", s.Key)
	p.X.Label.Text = "Distance (m)"
	p.Y.Label.Text = "RWS (m/s)"
	p.Add(plotter.NewGrid())

	var meanXY, minXY, maxXY, loXY, hiXY plotter.XYs
	for _, g := range s.Gates {
		if !g.HasData() {
			continue
		}
		meanXY = append(meanXY, plotter.XY{X: g.Distance, Y: g.Mean})
		minXY = append(minXY, plotter.XY{X: g.Distance, Y: g.Min})
		maxXY = append(maxXY, plotter.XY{X: g.Distance, Y: g.Max})
		if g.Std != nil {
			loXY = append(loXY, plotter.XY{X: g.Distance, Y: g.Mean - *g.Std})
			hiXY = append(hiXY, plotter.XY{X: g.Distance, Y: g.Mean + *g.Std})
		}
	}

	meanLine, err := plotter.NewLine(meanXY)
	if err != nil {
		return err
	}
	meanLine.Color = meanColor
	meanLine.Width = vg.Points(2)

	minLine, err := plotter.NewLine(minXY)
	if err != nil {
		return err
	}
	minLine.Color = rangeColor
	minLine.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}

	maxLine, err := plotter.NewLine(maxXY)
	if err != nil {
		return err
	}
	maxLine.Color = rangeColor
	maxLine.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}

	p.Add(meanLine, minLine, maxLine)
	p.Legend.Add("mean", meanLine)
	p.Legend.Add("min/max", minLine)

	if len(loXY) > 0 {
		loLine, err := plotter.NewLine(loXY)
		if err != nil {
			return err
		}
		hiLine, err := plotter.NewLine(hiXY)
		if err != nil {
			return err
		}
		loLine.Color = stdColor
		hiLine.Color = stdColor
		p.Add(loLine, hiLine)
		p.Legend.Add("mean ± std", loLine)
	}
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 5*vg.Inch, r.path(name))
}

// renderDistribution draws valid RWS values at one angle: a histogram panel
// with mean/median markers over a box-plot panel on the same value axis.
func (r *Renderer) renderDistribution(a *domain.Analysis, s domain.AngleSummary, name string) error {
	values := validRWS(a, s.Key)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mean := stat.Mean(values, nil)
	median := domain.Quantile(sorted, 0.5)

	top := plot.New()
	// Summary numbers in the title are display formatting only.
	top.Title.Text = fmt.Sprintf("RWS distribution (%s)\nn=%d  mean=%.3f  median=%.3f",
		s.Key, len(values), mean, median)
	top.X.Label.Text = "RWS (m/s)"
	top.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(values), histBins(len(values)))
	if err != nil {
		return err
	}
	h.FillColor = histColor
	top.Add(h)

	// Vertical markers at the mean and median, spanning the tallest bin.
	var peak float64
	for _, bin := range h.Bins {
		if bin.Weight > peak {
			peak = bin.Weight
		}
	}
	for _, mark := range []struct {
		x     float64
		color color.NRGBA
		label string
	}{
		{mean, meanColor, "mean"},
		{median, rangeColor, "median"},
	} {
		line, err := plotter.NewLine(plotter.XYs{{X: mark.x, Y: 0}, {X: mark.x, Y: peak}})
		if err != nil {
			return err
		}
		line.Color = mark.color
		line.Width = vg.Points(2)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		top.Add(line)
		top.Legend.Add(mark.label, line)
	}
	top.Legend.Top = true

	bottom := plot.New()
	bottom.X.Label.Text = "RWS (m/s)"
	box, err := plotter.NewBoxPlot(vg.Points(30), 0, plotter.Values(values))
	if err != nil {
		return err
	}
	box.Horizontal = true
	bottom.Add(box)
	bottom.NominalY("valid")

	return r.savePanels(top, bottom, name)
}

// renderFilterComparison shows the before/after quality comparison for one
// angle: overlaid histograms over side-by-side box plots.
func (r *Renderer) renderFilterComparison(a *domain.Analysis, s domain.AngleSummary, name string) error {
	before := allRWS(a, s.Key)
	after := validRWS(a, s.Key)

	top := plot.New()
	top.Title.Text = fmt.Sprintf("CNR filter comparison (%s, threshold %.1f dB)", s.Key, a.Threshold)
	top.X.Label.Text = "RWS (m/s)"
	top.Y.Label.Text = "Count"

	hb, err := plotter.NewHist(plotter.Values(before), histBins(len(before)))
	if err != nil {
		return err
	}
	hb.FillColor = beforeColor

	ha, err := plotter.NewHist(plotter.Values(after), histBins(len(after)))
	if err != nil {
		return err
	}
	ha.FillColor = afterColor

	top.Add(hb, ha)
	top.Legend.Add(fmt.Sprintf("before (n=%d)", len(before)), hb)
	top.Legend.Add(fmt.Sprintf("after (n=%d)", len(after)), ha)
	top.Legend.Top = true

	bottom := plot.New()
	bottom.Y.Label.Text = "RWS (m/s)"
	for i, group := range [][]float64{before, after} {
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(group))
		if err != nil {
			return err
		}
		bottom.Add(box)
	}
	bottom.NominalX("before", "after")

	return r.savePanels(top, bottom, name)
}

// renderHeatmap draws mean RWS over angle × distance. Cells with no valid
// data carry NaN and are left unpainted.
func (r *Renderer) renderHeatmap(g *grid, title, xlabel, name string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Distance (m)"

	h := plotter.NewHeatMap(g, palette.Heat(12, 1))
	h.Min, h.Max = g.finiteRange()
	p.Add(h)

	return p.Save(8*vg.Inch, 6*vg.Inch, r.path(name))
}

// renderComparison draws one box plot per group on a shared RWS axis, the
// multi-angle distribution comparison view.
func (r *Renderer) renderComparison(groups [][]float64, labels []string, title, xlabel, name string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "RWS (m/s)"

	for i, group := range groups {
		box, err := plotter.NewBoxPlot(vg.Points(30), float64(i), plotter.Values(group))
		if err != nil {
			return err
		}
		p.Add(box)
	}
	p.NominalX(labels...)

	return p.Save(8*vg.Inch, 5*vg.Inch, r.path(name))
}

// savePanels writes two stacked plots into one PNG.
func (r *Renderer) savePanels(top, bottom *plot.Plot, name string) error {
	img := vgimg.New(8*vg.Inch, 8*vg.Inch)
	canvases := plot.Align(
		[][]*plot.Plot{{top}, {bottom}},
		draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Millimeter * 2},
		draw.New(img),
	)
	top.Draw(canvases[0][0])
	bottom.Draw(canvases[1][0])

	f, err := os.Create(r.path(name))
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// renderRose draws mean |RWS| per azimuth as polar petals, north up,
// azimuth increasing clockwise.
func (r *Renderer) renderRose(bins []domain.RoseBin, name string) error {
	p := plot.New()
	p.Title.Text = "Wind rose: mean |RWS| per azimuth (m/s)"
	p.HideAxes()

	var rMax float64
	for _, b := range bins {
		if b.Count > 0 && b.MeanAbsRWS > rMax {
			rMax = b.MeanAbsRWS
		}
	}

	const halfWidth = 2.5 // deg, petal half opening angle
	for _, b := range bins {
		if b.Count == 0 {
			continue
		}
		petal, err := plotter.NewPolygon(petalXY(b.Azimuth(), b.MeanAbsRWS, halfWidth))
		if err != nil {
			return err
		}
		petal.Color = roseColor
		p.Add(petal)
	}

	lim := rMax * 1.1
	if lim == 0 {
		lim = 1
	}
	p.X.Min, p.X.Max = -lim, lim
	p.Y.Min, p.Y.Max = -lim, lim

	return p.Save(6*vg.Inch, 6*vg.Inch, r.path(name))
}

// petalXY builds a wedge polygon from the origin to radius at the given
// compass azimuth. Screen mapping: x = r·sin θ, y = r·cos θ.
func petalXY(azimuth, radius, halfWidth float64) plotter.XYs {
	const arcSteps = 8
	xys := plotter.XYs{{X: 0, Y: 0}}
	for i := 0; i <= arcSteps; i++ {
		deg := azimuth - halfWidth + 2*halfWidth*float64(i)/arcSteps
		rad := deg * math.Pi / 180
		xys = append(xys, plotter.XY{X: radius * math.Sin(rad), Y: radius * math.Cos(rad)})
	}
	return xys
}

// histBins picks a bin count that stays readable for small samples.
func histBins(n int) int {
	switch {
	case n >= 200:
		return 50
	case n >= 50:
		return 30
	case n >= 10:
		return 15
	default:
		return 5
	}
}
