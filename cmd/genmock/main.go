// Command genmock writes a deterministic synthetic Molas3D RealTime CSV for
// local runs and test fixtures. The wind field is a fixed sinusoid over
// azimuth and distance, so aggregate values are reproducible run to run; a
// designated beam direction carries only below-threshold CNR to exercise the
// no-data path, and a few malformed rows exercise row skipping.
//
// Usage:
//
//	go run ./cmd/genmock -out testdata/Molas3D_00941_RealTime.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/lidar-rws-analysis/internal/adapter/molas"
)

var baseTime = time.Date(2025, time.October, 5, 8, 0, 0, 0, time.UTC)

const (
	deviceID  = "00941"
	gateWidth = 50.0 // m between range gates

	// The beam that never passes the -20 dB quality cut.
	deadAzimuth   = 270.0
	deadElevation = 45.0
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "Molas3D_00941_RealTime.csv", "output CSV path (.gz for gzip)")
	sweeps := flag.Int("sweeps", 10, "full azimuth sweeps to generate")
	gates := flag.Int("gates", 20, "range gates per beam")
	corrupt := flag.Int("corrupt", 3, "malformed rows to inject")
	flag.Parse()

	if *sweeps < 1 || *gates < 1 {
		return fmt.Errorf("sweeps and gates must be positive, got %d and %d", *sweeps, *gates)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	var dst io.Writer = f
	if strings.HasSuffix(*out, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		dst = gz
	}

	rows, err := write(dst, *sweeps, *gates, *corrupt)
	if err != nil {
		return err
	}
	log.Printf("wrote %s: %d data rows (%d malformed)", *out, rows, *corrupt)
	return nil
}

func write(dst io.Writer, sweeps, gates, corrupt int) (int, error) {
	w := csv.NewWriter(dst)
	if err := w.Write(molas.Header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	angles := beamAngles()
	rows := 0
	ts := baseTime

	for sweep := 0; sweep < sweeps; sweep++ {
		for _, b := range angles {
			for gate := 0; gate < gates; gate++ {
				if err := w.Write(row(ts, b.azimuth, b.elevation, gate, sweep)); err != nil {
					return rows, fmt.Errorf("write row: %w", err)
				}
				rows++
			}
			ts = ts.Add(2 * time.Second)
		}
	}

	// Malformed rows land at the end so row numbers in warnings are stable.
	for i := 0; i < corrupt; i++ {
		bad := []string{ts.Format("2006-01-02 15:04:05"), deviceID, "PPI", "not-a-number"}
		if err := w.Write(bad); err != nil {
			return rows, fmt.Errorf("write malformed row: %w", err)
		}
	}

	w.Flush()
	return rows, w.Error()
}

type beam struct {
	azimuth   float64
	elevation float64
}

// beamAngles lists the scan pattern: a 12-point PPI sweep at 15° elevation
// plus the dead beam at 270°/45°.
func beamAngles() []beam {
	var out []beam
	for az := 0.0; az < 360; az += 30 {
		out = append(out, beam{azimuth: az, elevation: 15})
	}
	out = append(out, beam{azimuth: deadAzimuth, elevation: deadElevation})
	return out
}

// row builds one 29-column record. RWS follows a sinusoid over azimuth with a
// distance-dependent amplitude; CNR decays with distance from a strong near
// return, except on the dead beam where it sits far below any sane threshold.
func row(ts time.Time, azimuth, elevation float64, gate, sweep int) []string {
	distance := gateWidth * float64(gate+1)

	azRad := azimuth * math.Pi / 180
	rws := (4 + 0.01*distance) * math.Sin(azRad+0.1*float64(sweep))
	cnr := -5 - 0.02*distance
	if azimuth == deadAzimuth && elevation == deadElevation {
		cnr = -35 - 0.02*distance
	}

	cells := make([]string, len(molas.Header))
	set := func(col, val string) {
		for i, name := range molas.Header {
			if name == col {
				cells[i] = val
				return
			}
		}
	}

	set("Timestamp", ts.Format("2006-01-02 15:04:05"))
	set("DeviceID", deviceID)
	set("ScanMode", "PPI")
	set("Azimuth(deg)", strconv.FormatFloat(azimuth, 'f', 2, 64))
	set("Elevation(deg)", strconv.FormatFloat(elevation, 'f', 2, 64))
	set("Gate", strconv.Itoa(gate))
	set("Distance(m)", strconv.FormatFloat(distance, 'f', 1, 64))
	set("RWS(m/s)", strconv.FormatFloat(rws, 'f', 3, 64))
	set("RWS_Status", "0")
	set("CNR(dB)", strconv.FormatFloat(cnr, 'f', 2, 64))
	set("SpectralWidth(m/s)", strconv.FormatFloat(0.4+0.001*distance, 'f', 3, 64))
	set("Backscatter(dB)", strconv.FormatFloat(-60+0.01*distance, 'f', 2, 64))
	set("Temperature(°C)", "12.5")
	set("Humidity(%)", "78.0")
	set("Pressure(hPa)", "1013.2")
	set("WindSpeed(m/s)", strconv.FormatFloat(math.Abs(rws)+1, 'f', 3, 64))
	set("WindDirection(deg)", strconv.FormatFloat(math.Mod(azimuth+180, 360), 'f', 1, 64))
	set("HorizontalWind(m/s)", strconv.FormatFloat(math.Abs(rws), 'f', 3, 64))
	set("VerticalWind(m/s)", "0.100")
	set("WiperStatus", "0")
	set("Visibility(m)", "10000")
	set("PrecipIntensity(mm/h)", "0.0")
	set("CloudBase(m)", "1500")
	set("BLH(m)", "850")
	set("GPSLat(deg)", "40.689200")
	set("GPSLon(deg)", "-74.044500")
	set("GPSAlt(m)", "12.0")
	set("InternalTemp(°C)", "31.4")
	set("SystemStatus", "OK")

	return cells
}
