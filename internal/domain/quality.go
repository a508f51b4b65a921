package domain

import "math"

// QualityView is the per-measurement validity decision for one CNR threshold.
// It is derived on demand from a MeasurementSet and never stored back onto it,
// so filtered and unfiltered statistics both come from the same loaded rows.
type QualityView struct {
	Threshold float64
	valid     []bool
	count     int
}

// NewQualityView marks each measurement valid iff CNR >= threshold. The
// boundary value passes. A NaN CNR fails the comparison and is invalid
// regardless of threshold.
func NewQualityView(set *MeasurementSet, threshold float64) QualityView {
	v := QualityView{
		Threshold: threshold,
		valid:     make([]bool, set.Len()),
	}
	for i := range set.Measurements {
		cnr := set.Measurements[i].CNR
		if !math.IsNaN(cnr) && cnr >= threshold {
			v.valid[i] = true
			v.count++
		}
	}
	return v
}

// Valid reports whether measurement i passed the threshold.
func (v QualityView) Valid(i int) bool { return v.valid[i] }

// ValidCount returns how many measurements passed.
func (v QualityView) ValidCount() int { return v.count }

// TotalCount returns how many measurements were considered.
func (v QualityView) TotalCount() int { return len(v.valid) }
