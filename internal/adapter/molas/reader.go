// Package molas loads the Molas3D "RealTime" CSV export into the domain model.
package molas

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/lidar-rws-analysis/internal/domain"
)

// Header is the full 29-column RealTime export schema, in device order.
// The loader locates columns by name, not position, so reordered exports
// still parse; only the required columns must be present.
var Header = []string{
	"Timestamp", "DeviceID", "ScanMode",
	"Azimuth(deg)", "Elevation(deg)", "Gate", "Distance(m)",
	"RWS(m/s)", "RWS_Status", "CNR(dB)", "SpectralWidth(m/s)", "Backscatter(dB)",
	"Temperature(°C)", "Humidity(%)", "Pressure(hPa)",
	"WindSpeed(m/s)", "WindDirection(deg)", "HorizontalWind(m/s)", "VerticalWind(m/s)",
	"WiperStatus", "Visibility(m)", "PrecipIntensity(mm/h)", "CloudBase(m)", "BLH(m)",
	"GPSLat(deg)", "GPSLon(deg)", "GPSAlt(m)", "InternalTemp(°C)", "SystemStatus",
}

// Required columns; a header missing any of these is a schema error.
const (
	colTimestamp = "Timestamp"
	colAzimuth   = "Azimuth(deg)"
	colElevation = "Elevation(deg)"
	colGate      = "Gate"
	colDistance  = "Distance(m)"
	colRWS       = "RWS(m/s)"
	colCNR       = "CNR(dB)"
)

// Optional ancillary columns carried onto the Measurement when present.
const (
	colTemperature = "Temperature(°C)"
	colHumidity    = "Humidity(%)"
	colPressure    = "Pressure(hPa)"
	colBLH         = "BLH(m)"
)

var requiredColumns = []string{
	colTimestamp, colAzimuth, colElevation, colGate, colDistance, colRWS, colCNR,
}

// timestampLayouts in the order the device firmware has used them.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02 15:04:05",
}

// maxRowWarnings caps per-file row warnings so a corrupt file does not flood
// the log; the total skipped count still lands in ParseStats.
const maxRowWarnings = 10

// Reader loads RealTime CSV files, transparently decompressing .gz inputs.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a Reader logging row-level problems through logger.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// Load reads one export file into a MeasurementSet. File-level problems
// (missing file, unreadable, required column absent, zero parseable rows) are
// returned as errors; malformed rows are skipped, counted, and logged.
func (r *Reader) Load(ctx context.Context, path string) (*domain.MeasurementSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip input: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	return r.load(ctx, src, path)
}

func (r *Reader) load(ctx context.Context, src io.Reader, path string) (*domain.MeasurementSet, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1 // row length validated per record
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}
	if len(header) != len(Header) {
		r.logger.Warn("unexpected column count, required columns present",
			"path", path, "columns", len(header), "expected", len(Header))
	}

	set := &domain.MeasurementSet{}
	warned := 0

	for {
		if set.Stats.RowsRead%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			set.Stats.RowsRead++
			set.Stats.RowsSkipped++
			warned = r.warnRow(warned, path, set.Stats.RowsRead, err)
			continue
		}

		set.Stats.RowsRead++
		m, err := parseRecord(record, cols)
		if err != nil {
			set.Stats.RowsSkipped++
			warned = r.warnRow(warned, path, set.Stats.RowsRead, err)
			continue
		}
		set.Stats.RowsParsed++
		set.Measurements = append(set.Measurements, m)
	}

	if set.Stats.RowsParsed == 0 {
		return nil, fmt.Errorf("no parseable rows in %s (%d rows skipped)", path, set.Stats.RowsSkipped)
	}

	r.logger.Info("input loaded",
		"path", path,
		"rows_read", set.Stats.RowsRead,
		"rows_parsed", set.Stats.RowsParsed,
		"rows_skipped", set.Stats.RowsSkipped,
	)
	return set, nil
}

func (r *Reader) warnRow(warned int, path string, row int, err error) int {
	if warned < maxRowWarnings {
		r.logger.Warn("skipping malformed row", "path", path, "row", row, "error", err)
	} else if warned == maxRowWarnings {
		r.logger.Warn("further malformed-row warnings suppressed", "path", path)
	}
	return warned + 1
}

// indexColumns maps header names to positions and checks required columns.
func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToValidUTF8(strings.TrimSpace(name), "�")] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("input schema: required column %q missing", name)
		}
	}
	return cols, nil
}

func parseRecord(record []string, cols map[string]int) (domain.Measurement, error) {
	ts, err := parseTimestamp(field(record, cols, colTimestamp))
	if err != nil {
		return domain.Measurement{}, err
	}

	azimuth, err := parseFloat(field(record, cols, colAzimuth), colAzimuth)
	if err != nil {
		return domain.Measurement{}, err
	}
	elevation, err := parseFloat(field(record, cols, colElevation), colElevation)
	if err != nil {
		return domain.Measurement{}, err
	}
	gate, err := parseInt(field(record, cols, colGate), colGate)
	if err != nil {
		return domain.Measurement{}, err
	}
	distance, err := parseFloat(field(record, cols, colDistance), colDistance)
	if err != nil {
		return domain.Measurement{}, err
	}
	rws, err := parseFloat(field(record, cols, colRWS), colRWS)
	if err != nil {
		return domain.Measurement{}, err
	}

	return domain.Measurement{
		Timestamp: ts,
		Azimuth:   azimuth,
		Elevation: elevation,
		Gate:      gate,
		Distance:  distance,
		RWS:       rws,
		// Absent or unparseable CNR becomes NaN: the row stays loaded and the
		// quality filter marks it invalid, by definition rather than by error.
		CNR: parseCNR(field(record, cols, colCNR)),

		Temperature: parseOptionalFloat(field(record, cols, colTemperature)),
		Humidity:    parseOptionalFloat(field(record, cols, colHumidity)),
		Pressure:    parseOptionalFloat(field(record, cols, colPressure)),
		BLHeight:    parseOptionalFloat(field(record, cols, colBLH)),
	}, nil
}

// field fetches a cell by column name, sanitized with UTF-8 replacement.
// Missing column or short row yields "".
func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.ToValidUTF8(strings.TrimSpace(record[i]), "�")
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty Timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid Timestamp %q", s)
}

func parseFloat(s, col string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", col, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite %s %q", col, s)
	}
	return v, nil
}

func parseInt(s, col string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", col, s)
	}
	return v, nil
}

func parseCNR(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseOptionalFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
