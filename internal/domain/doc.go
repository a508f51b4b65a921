// Package domain models radial wind speed (RWS) measurements from a Molas3D
// Doppler wind lidar and the statistics derived from them.
//
// # Data Source
//
// The device exports one CSV file per day in its "RealTime" format: a fixed
// 29-column table with one row per distance gate per beam dwell. The columns
// this package consumes are Timestamp, Azimuth(deg), Elevation(deg), Gate,
// Distance(m), RWS(m/s) and CNR(dB); a handful of ancillary meteorological
// columns (temperature, humidity, pressure, boundary-layer height) are carried
// along when present, the rest are ignored. See the molas adapter for the full
// header.
//
// # Device Conventions
//
// Beam geometry:
//
//	The scanner dwells on a fixed set of (azimuth, elevation) pointing
//	directions and reports one RWS value per distance gate along the beam.
//	Reported angles jitter in the third decimal between scan cycles, so two
//	dwells on the same nominal direction rarely compare equal as floats.
//	[NewAngleKey] folds angles to centidegrees, which is coarser than the
//	jitter and finer than the angular separation of any two scan directions.
//
// Radial wind speed:
//
//	Line-of-sight velocity component in m/s. Positive values are motion away
//	from the instrument. A measured value of exactly 0 m/s is a real
//	measurement and must never be conflated with an absent one; groups with
//	no valid measurement are therefore represented as explicit no-data
//	entries, not as zeros.
//
// Carrier-to-noise ratio:
//
//	Signal quality in dB. Measurements below a configurable CNR threshold are
//	unreliable (typically far gates, precipitation, or aerosol-poor air) and
//	are excluded from statistics. -20 dB is the manufacturer-recommended
//	cutoff and the default here. Filtering is a view over the loaded rows,
//	never a mutation, so before/after comparisons always derive from the same
//	stored copy.
//
// # Statistics
//
// Aggregation groups valid measurements by (angle, gate) and computes count,
// mean, median, sample standard deviation and a configurable quantile set.
// Groups and angles are emitted in a fixed order (gate ascending within an
// angle, angles by azimuth then elevation) so repeated runs over the same
// input produce identical report output.
package domain
