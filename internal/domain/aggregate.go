package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultPercentiles is the quantile set reported when none is configured.
var DefaultPercentiles = []float64{5, 25, 50, 75, 95}

// GateStats holds the statistics of valid RWS measurements at one distance
// gate of one beam direction. Count == 0 marks an explicit no-data entry; the
// remaining fields are meaningless then and must not be rendered as numbers.
type GateStats struct {
	Gate      int
	Distance  float64 // m; from the first row seen at the gate, valid or not
	Count     int
	Mean      float64
	Median    float64
	Min       float64
	Max       float64
	Std       *float64  // sample std dev (n-1); nil when Count <= 1
	Quantiles []float64 // aligned with the configured percentile set
}

// HasData reports whether any valid measurement contributed to this gate.
func (g GateStats) HasData() bool { return g.Count > 0 }

// AngleSummary holds the per-gate statistics for one beam direction, gates
// ascending. An angle whose rows were all filtered out still gets a summary
// with every gate marked no-data, so the report can show what was excluded.
type AngleSummary struct {
	Key         AngleKey
	Percentiles []float64
	Gates       []GateStats
	ValidCount  int // rows at this angle passing the quality view
	TotalCount  int // all rows at this angle, before filtering
}

// HasData reports whether the angle has at least one valid measurement.
func (a AngleSummary) HasData() bool { return a.ValidCount > 0 }

// AngleMatrix is the multi-angle comparison form: one AngleSummary per beam
// direction present in the set, ordered by azimuth then elevation.
type AngleMatrix struct {
	Percentiles []float64
	Angles      []AngleSummary
}

// Elevations returns the distinct elevations present, in centidegrees,
// ascending. Used to slice the matrix into per-elevation heatmaps.
func (m AngleMatrix) Elevations() []int32 {
	seen := make(map[int32]struct{})
	for _, a := range m.Angles {
		seen[a.Key.ElevationCD] = struct{}{}
	}
	els := make([]int32, 0, len(seen))
	for el := range seen {
		els = append(els, el)
	}
	sort.Slice(els, func(i, j int) bool { return els[i] < els[j] })
	return els
}

// Azimuths returns the distinct azimuths present, in centidegrees, ascending.
// Used to slice the matrix into per-azimuth elevation heatmaps.
func (m AngleMatrix) Azimuths() []int32 {
	seen := make(map[int32]struct{})
	for _, a := range m.Angles {
		seen[a.Key.AzimuthCD] = struct{}{}
	}
	azs := make([]int32, 0, len(seen))
	for az := range seen {
		azs = append(azs, az)
	}
	sort.Slice(azs, func(i, j int) bool { return azs[i] < azs[j] })
	return azs
}

// RoseBin is the directional aggregate behind the wind rose: the mean |RWS|
// of all valid measurements at one azimuth, elevation and distance ignored.
type RoseBin struct {
	AzimuthCD  int32
	Count      int
	MeanAbsRWS float64
}

// Azimuth returns the bin's azimuth in degrees.
func (b RoseBin) Azimuth() float64 { return float64(b.AzimuthCD) / 100 }

// Summary holds whole-distribution RWS statistics, used for the before/after
// filter comparison.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	Std    *float64
}

// HasData reports whether any measurement contributed.
func (s Summary) HasData() bool { return s.Count > 0 }

// AggregateAngle computes per-gate statistics for one beam direction over the
// measurements passing the view. Gates are ascending; gates present in the
// input but with no valid measurement appear as no-data entries.
func AggregateAngle(set *MeasurementSet, view QualityView, key AngleKey, percentiles []float64) AngleSummary {
	if len(percentiles) == 0 {
		percentiles = DefaultPercentiles
	}

	type gateGroup struct {
		distance float64
		values   []float64
	}
	groups := make(map[int]*gateGroup)
	summary := AngleSummary{Key: key, Percentiles: percentiles}

	for i := range set.Measurements {
		if set.Key(i) != key {
			continue
		}
		summary.TotalCount++
		m := &set.Measurements[i]
		g, ok := groups[m.Gate]
		if !ok {
			g = &gateGroup{distance: m.Distance}
			groups[m.Gate] = g
		}
		if !view.Valid(i) {
			continue
		}
		summary.ValidCount++
		g.values = append(g.values, m.RWS)
	}

	gates := make([]int, 0, len(groups))
	for gate := range groups {
		gates = append(gates, gate)
	}
	sort.Ints(gates)

	for _, gate := range gates {
		g := groups[gate]
		gs := computeGateStats(g.values, percentiles)
		gs.Gate = gate
		gs.Distance = g.distance
		summary.Gates = append(summary.Gates, gs)
	}
	return summary
}

// AggregateAll computes the full multi-angle matrix: every beam direction in
// the set, including those left with no valid data by the filter.
func AggregateAll(set *MeasurementSet, view QualityView, percentiles []float64) AngleMatrix {
	if len(percentiles) == 0 {
		percentiles = DefaultPercentiles
	}
	matrix := AngleMatrix{Percentiles: percentiles}
	for _, key := range set.Angles() {
		matrix.Angles = append(matrix.Angles, AggregateAngle(set, view, key, percentiles))
	}
	return matrix
}

// AggregateRose computes mean |RWS| per azimuth over valid measurements,
// ignoring elevation and distance entirely. Bins are azimuth-ascending.
// Azimuths whose rows were all filtered out appear with Count == 0.
func AggregateRose(set *MeasurementSet, view QualityView) []RoseBin {
	type acc struct {
		sum   float64
		count int
	}
	accs := make(map[int32]*acc)
	for i := range set.Measurements {
		cd := set.Key(i).AzimuthCD
		a, ok := accs[cd]
		if !ok {
			a = &acc{}
			accs[cd] = a
		}
		if !view.Valid(i) {
			continue
		}
		a.sum += math.Abs(set.Measurements[i].RWS)
		a.count++
	}

	bins := make([]RoseBin, 0, len(accs))
	for cd, a := range accs {
		bin := RoseBin{AzimuthCD: cd, Count: a.count}
		if a.count > 0 {
			bin.MeanAbsRWS = a.sum / float64(a.count)
		}
		bins = append(bins, bin)
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].AzimuthCD < bins[j].AzimuthCD })
	return bins
}

// Quantile returns the p-quantile (p in [0, 1]) of ascending sorted values by
// linear interpolation between closest ranks, the default of pandas and R
// (type 7). The median of [2, 4] is 3. Not gonum's stat.Quantile, whose
// CDF-inversion interpolation yields 2 for the same input.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := p * float64(n-1)
	i := int(h)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}

// SummarizeRWS computes whole-set RWS statistics. A nil view summarizes every
// loaded measurement (the "before filter" distribution).
func SummarizeRWS(set *MeasurementSet, view *QualityView) Summary {
	values := make([]float64, 0, set.Len())
	for i := range set.Measurements {
		if view != nil && !view.Valid(i) {
			continue
		}
		values = append(values, set.Measurements[i].RWS)
	}
	if len(values) == 0 {
		return Summary{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := Summary{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Median: Quantile(sorted, 0.5),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(values) > 1 {
		sd := stat.StdDev(values, nil)
		s.Std = &sd
	}
	return s
}

func computeGateStats(values []float64, percentiles []float64) GateStats {
	gs := GateStats{Count: len(values)}
	if len(values) == 0 {
		return gs
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	gs.Mean = stat.Mean(values, nil)
	gs.Median = Quantile(sorted, 0.5)
	gs.Min = sorted[0]
	gs.Max = sorted[len(sorted)-1]
	if len(values) > 1 {
		sd := stat.StdDev(values, nil)
		gs.Std = &sd
	}
	gs.Quantiles = make([]float64, len(percentiles))
	for i, p := range percentiles {
		gs.Quantiles[i] = Quantile(sorted, p/100)
	}
	return gs
}
