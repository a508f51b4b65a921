package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Measurement is one row of the RealTime export: a single radial wind speed
// sample at one distance gate along one beam direction. Immutable once loaded.
type Measurement struct {
	Timestamp time.Time
	Azimuth   float64 // deg, 0 = north, clockwise
	Elevation float64 // deg above horizontal
	Gate      int     // distance gate index along the beam
	Distance  float64 // m, gate center range
	RWS       float64 // m/s, radial wind speed
	CNR       float64 // dB, carrier-to-noise ratio; NaN when the device reported none

	// Ancillary meteorology; nil when the column was absent or unparseable.
	Temperature *float64 // °C
	Humidity    *float64 // %
	Pressure    *float64 // hPa
	BLHeight    *float64 // m, boundary-layer height
}

// ParseStats counts loader outcomes for one input file.
type ParseStats struct {
	RowsRead    int // data rows seen, excluding the header
	RowsParsed  int // rows that produced a Measurement
	RowsSkipped int // malformed rows dropped with a warning
}

// MeasurementSet is the ordered collection of measurements for one device/day,
// owned exclusively by a single pipeline run.
type MeasurementSet struct {
	Measurements []Measurement
	Stats        ParseStats
}

// Len returns the number of loaded measurements.
func (s *MeasurementSet) Len() int { return len(s.Measurements) }

// AngleKey identifies one beam pointing direction. Angles are stored in
// centidegrees so that keys compare exactly despite float jitter in the
// device's reported angles.
type AngleKey struct {
	AzimuthCD   int32
	ElevationCD int32
}

// NewAngleKey folds an (azimuth, elevation) pair to its centidegree key.
func NewAngleKey(azimuth, elevation float64) AngleKey {
	return AngleKey{
		AzimuthCD:   int32(math.Round(azimuth * 100)),
		ElevationCD: int32(math.Round(elevation * 100)),
	}
}

// Azimuth returns the key's azimuth in degrees.
func (k AngleKey) Azimuth() float64 { return float64(k.AzimuthCD) / 100 }

// Elevation returns the key's elevation in degrees.
func (k AngleKey) Elevation() float64 { return float64(k.ElevationCD) / 100 }

// Less orders keys by azimuth, then elevation.
func (k AngleKey) Less(o AngleKey) bool {
	if k.AzimuthCD != o.AzimuthCD {
		return k.AzimuthCD < o.AzimuthCD
	}
	return k.ElevationCD < o.ElevationCD
}

func (k AngleKey) String() string {
	return fmt.Sprintf("az=%.2f° el=%.2f°", k.Azimuth(), k.Elevation())
}

// Key returns the angle key of measurement i.
func (s *MeasurementSet) Key(i int) AngleKey {
	m := &s.Measurements[i]
	return NewAngleKey(m.Azimuth, m.Elevation)
}

// Angles returns every angle key present in the set, sorted by azimuth then
// elevation.
func (s *MeasurementSet) Angles() []AngleKey {
	seen := make(map[AngleKey]struct{})
	for i := range s.Measurements {
		seen[s.Key(i)] = struct{}{}
	}
	keys := make([]AngleKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
