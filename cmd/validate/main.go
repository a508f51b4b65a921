// Command validate runs integrity checks over a Molas3D RealTime CSV and the
// analysis built from it: schema conformance, parse accounting, quality-filter
// properties and aggregate sanity. Intended for vetting a new export before a
// full run, and for vetting genmock fixtures.
//
// Usage:
//
//	go run ./cmd/validate -input testdata/Molas3D_00941_RealTime.csv
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/couchcryptid/lidar-rws-analysis/internal/adapter/molas"
	"github.com/couchcryptid/lidar-rws-analysis/internal/domain"
)

func main() {
	input := flag.String("input", "", "Molas3D RealTime CSV to validate")
	threshold := flag.Float64("cnr-threshold", -20, "CNR threshold in dB")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*input, *threshold); code != 0 {
		os.Exit(code)
	}
}

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func run(input string, threshold float64) int {
	fmt.Println("=== Molas3D RWS Data Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	set, err := molas.NewReader(logger).Load(context.Background(), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load input: %v\n", err)
		return 1
	}

	a := domain.Analyze(set, input, threshold, nil)

	phases := []*phase{
		validateSchema(input),
		validateParseAccounting(set),
		validateMeasurements(set),
		validateFilter(set, a, threshold),
		validateAggregates(a),
	}

	fmt.Printf("Rows: %d read, %d parsed, %d skipped; %d beam directions\n",
		set.Stats.RowsRead, set.Stats.RowsParsed, set.Stats.RowsSkipped, len(a.Matrix.Angles))
	fmt.Println()

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Schema ──
// The header must carry every column of the RealTime export schema.

func validateSchema(input string) *phase {
	p := &phase{name: "Phase 1: Schema"}

	header, err := readHeader(input)
	if err != nil {
		p.errorf("read header: %v", err)
		return p
	}

	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[strings.TrimSpace(name)] = true
	}
	for _, name := range molas.Header {
		if !present[name] {
			p.errorf("missing column %q", name)
		}
	}
	if len(header) != len(molas.Header) {
		p.errorf("expected %d columns, got %d", len(molas.Header), len(header))
	}
	return p
}

func readHeader(input string) ([]string, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(input, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		src = gz
	}
	return csv.NewReader(src).Read()
}

// ── Phase 2: Parse Accounting ──
// Row counters must reconcile and the set must be non-trivial.

func validateParseAccounting(set *domain.MeasurementSet) *phase {
	p := &phase{name: "Phase 2: Parse Accounting"}

	st := set.Stats
	if st.RowsParsed+st.RowsSkipped != st.RowsRead {
		p.errorf("counters do not reconcile: %d parsed + %d skipped != %d read",
			st.RowsParsed, st.RowsSkipped, st.RowsRead)
	}
	if st.RowsParsed != set.Len() {
		p.errorf("parsed counter %d does not match %d held measurements", st.RowsParsed, set.Len())
	}
	if st.RowsRead > 0 {
		skipRate := float64(st.RowsSkipped) / float64(st.RowsRead)
		if skipRate > 0.5 {
			p.errorf("more than half the rows were skipped (%.1f%%), input likely corrupt", skipRate*100)
		}
	}
	return p
}

// ── Phase 3: Measurement Ranges ──
// Field values must sit inside physically plausible bounds.

func validateMeasurements(set *domain.MeasurementSet) *phase {
	p := &phase{name: "Phase 3: Measurement Ranges"}

	for i := range set.Measurements {
		m := &set.Measurements[i]
		if m.Azimuth < 0 || m.Azimuth >= 360 {
			p.errorf("row %d: azimuth %.2f outside [0, 360)", i, m.Azimuth)
		}
		if m.Elevation < -90 || m.Elevation > 90 {
			p.errorf("row %d: elevation %.2f outside [-90, 90]", i, m.Elevation)
		}
		if m.Gate < 0 {
			p.errorf("row %d: negative gate %d", i, m.Gate)
		}
		if m.Distance <= 0 {
			p.errorf("row %d: non-positive distance %.1f", i, m.Distance)
		}
		if math.Abs(m.RWS) > 100 {
			p.errorf("row %d: implausible RWS %.1f m/s", i, m.RWS)
		}
		if !math.IsNaN(m.CNR) && (m.CNR < -60 || m.CNR > 20) {
			p.errorf("row %d: implausible CNR %.1f dB", i, m.CNR)
		}
		if m.Timestamp.IsZero() {
			p.errorf("row %d: zero timestamp", i)
		}
	}
	return p
}

// ── Phase 4: Filter Properties ──
// The quality view must match a direct re-application of the threshold rule
// and behave monotonically as the threshold tightens.

func validateFilter(set *domain.MeasurementSet, a *domain.Analysis, threshold float64) *phase {
	p := &phase{name: "Phase 4: Filter Properties"}

	recount := 0
	for i := range set.Measurements {
		cnr := set.Measurements[i].CNR
		want := !math.IsNaN(cnr) && cnr >= threshold
		if a.View.Valid(i) != want {
			p.errorf("row %d: view says valid=%v for CNR %.2f at threshold %.2f",
				i, a.View.Valid(i), cnr, threshold)
		}
		if want {
			recount++
		}
	}
	if recount != a.View.ValidCount() {
		p.errorf("valid count %d does not match recount %d", a.View.ValidCount(), recount)
	}
	if a.View.TotalCount() != set.Len() {
		p.errorf("view total %d does not match set length %d", a.View.TotalCount(), set.Len())
	}

	tighter := domain.NewQualityView(set, threshold+5)
	if tighter.ValidCount() > a.View.ValidCount() {
		p.errorf("tightening the threshold grew the valid set: %d > %d",
			tighter.ValidCount(), a.View.ValidCount())
	}
	return p
}

// ── Phase 5: Aggregate Sanity ──
// Per-gate statistics must be internally consistent and sum back to the
// filtered row count.

func validateAggregates(a *domain.Analysis) *phase {
	p := &phase{name: "Phase 5: Aggregate Sanity"}

	totalValid := 0
	for _, s := range a.Matrix.Angles {
		totalValid += s.ValidCount

		if !sort.SliceIsSorted(s.Gates, func(i, j int) bool { return s.Gates[i].Gate < s.Gates[j].Gate }) {
			p.errorf("%s: gates not ascending", s.Key)
		}

		gateSum := 0
		for _, g := range s.Gates {
			gateSum += g.Count
			if !g.HasData() {
				continue
			}
			if g.Mean < g.Min || g.Mean > g.Max {
				p.errorf("%s gate %d: mean %.3f outside [%.3f, %.3f]", s.Key, g.Gate, g.Mean, g.Min, g.Max)
			}
			if g.Median < g.Min || g.Median > g.Max {
				p.errorf("%s gate %d: median %.3f outside [%.3f, %.3f]", s.Key, g.Gate, g.Median, g.Min, g.Max)
			}
			if g.Count <= 1 && g.Std != nil {
				p.errorf("%s gate %d: std present with count %d", s.Key, g.Gate, g.Count)
			}
			for i := 1; i < len(g.Quantiles); i++ {
				if g.Quantiles[i] < g.Quantiles[i-1] {
					p.errorf("%s gate %d: quantiles not non-decreasing at index %d", s.Key, g.Gate, i)
				}
			}
		}
		if gateSum != s.ValidCount {
			p.errorf("%s: gate counts sum to %d, angle has %d valid rows", s.Key, gateSum, s.ValidCount)
		}
	}
	if totalValid != a.View.ValidCount() {
		p.errorf("per-angle valid rows sum to %d, filter reports %d", totalValid, a.View.ValidCount())
	}

	roseSum := 0
	for _, b := range a.Rose {
		roseSum += b.Count
		if b.Count > 0 && b.MeanAbsRWS < 0 {
			p.errorf("rose bin az=%.2f: negative mean |RWS| %.3f", b.Azimuth(), b.MeanAbsRWS)
		}
	}
	if roseSum != a.View.ValidCount() {
		p.errorf("rose bin counts sum to %d, filter reports %d", roseSum, a.View.ValidCount())
	}
	return p
}
