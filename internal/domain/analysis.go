package domain

import "time"

// Analysis is the complete derived output of one run over one MeasurementSet:
// the quality view, before/after distribution summaries, the multi-angle
// matrix and the wind-rose aggregate. Renderers and the report consume it
// read-only; no stage mutates an Analysis after Analyze returns.
type Analysis struct {
	Input       string
	Threshold   float64 // dB
	Percentiles []float64

	Set  *MeasurementSet
	View QualityView

	Before Summary // all loaded rows
	After  Summary // rows passing the quality view

	Matrix AngleMatrix
	Rose   []RoseBin

	GeneratedAt time.Time
}

// Analyze runs the filter and aggregation stages over a loaded set. Pure
// except for the generation timestamp, which comes from the injected clock.
func Analyze(set *MeasurementSet, input string, threshold float64, percentiles []float64) *Analysis {
	if len(percentiles) == 0 {
		percentiles = DefaultPercentiles
	}
	view := NewQualityView(set, threshold)
	return &Analysis{
		Input:       input,
		Threshold:   threshold,
		Percentiles: percentiles,
		Set:         set,
		View:        view,
		Before:      SummarizeRWS(set, nil),
		After:       SummarizeRWS(set, &view),
		Matrix:      AggregateAll(set, view, percentiles),
		Rose:        AggregateRose(set, view),
		GeneratedAt: clock.Now(),
	}
}

// NoDataAngles returns the beam directions left without a single valid
// measurement by the filter, in matrix order. The renderer skips their charts
// and the report notes each omission.
func (a *Analysis) NoDataAngles() []AngleKey {
	var keys []AngleKey
	for _, s := range a.Matrix.Angles {
		if !s.HasData() {
			keys = append(keys, s.Key)
		}
	}
	return keys
}

// RetainedFraction returns the share of rows passing the filter, in [0, 1].
func (a *Analysis) RetainedFraction() float64 {
	if a.View.TotalCount() == 0 {
		return 0
	}
	return float64(a.View.ValidCount()) / float64(a.View.TotalCount())
}
