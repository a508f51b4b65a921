// Package report writes the textual analysis summary. Output formatting is
// fixed so that two runs over the same input and configuration produce
// byte-identical files apart from the generation-time line.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/lidar-rws-analysis/internal/domain"
)

// FileName is the report file written into the output directory.
const FileName = "report.txt"

// Writer renders an Analysis to the report file.
type Writer struct {
	outDir string
}

// NewWriter creates a Writer targeting outDir.
func NewWriter(outDir string) *Writer {
	return &Writer{outDir: outDir}
}

// Write renders the report and returns its path. charts lists the chart file
// names the renderer produced, in render order.
func (w *Writer) Write(a *domain.Analysis, charts []string) (string, error) {
	path := filepath.Join(w.outDir, FileName)
	if err := os.WriteFile(path, []byte(Format(a, charts)), 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Format renders the full report text. Exposed separately so tests can assert
// byte-identical output without touching the filesystem.
func Format(a *domain.Analysis, charts []string) string {
	var b strings.Builder

	b.WriteString("Molas3D RWS Analysis Report\n")
	b.WriteString("===========================\n\n")
	fmt.Fprintf(&b, "Generated:     %s\n", a.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Input:         %s\n", a.Input)
	fmt.Fprintf(&b, "CNR threshold: %.1f dB\n", a.Threshold)
	fmt.Fprintf(&b, "Percentiles:   %s\n\n", percentileList(a.Percentiles))

	writeLoadSection(&b, a)
	writeFilterSection(&b, a)
	writeAngleSections(&b, a)
	writeRoseSection(&b, a)
	writeOmissions(&b, a)
	writeCharts(&b, charts)

	return b.String()
}

func writeLoadSection(b *strings.Builder, a *domain.Analysis) {
	st := a.Set.Stats
	b.WriteString("Load summary\n")
	fmt.Fprintf(b, "  rows read:    %d\n", st.RowsRead)
	fmt.Fprintf(b, "  rows parsed:  %d\n", st.RowsParsed)
	fmt.Fprintf(b, "  rows skipped: %d\n\n", st.RowsSkipped)
}

func writeFilterSection(b *strings.Builder, a *domain.Analysis) {
	b.WriteString("Quality filter (whole set)\n")
	fmt.Fprintf(b, "  %-8s %8s %10s %10s %10s %10s %10s\n",
		"", "count", "mean", "median", "std", "min", "max")
	fmt.Fprintf(b, "  %-8s %s\n", "before", summaryRow(a.Before))
	fmt.Fprintf(b, "  %-8s %s\n", "after", summaryRow(a.After))
	fmt.Fprintf(b, "  retained: %.2f%%\n\n", a.RetainedFraction()*100)
}

func writeAngleSections(b *strings.Builder, a *domain.Analysis) {
	for _, s := range a.Matrix.Angles {
		if !s.HasData() {
			fmt.Fprintf(b, "Angle %s: no valid measurements above threshold (%d rows filtered)\n\n",
				s.Key, s.TotalCount)
			continue
		}
		fmt.Fprintf(b, "Angle %s: %d of %d rows valid\n", s.Key, s.ValidCount, s.TotalCount)

		header := fmt.Sprintf("  %4s %10s %6s %10s %10s %10s %10s %10s",
			"gate", "dist(m)", "count", "mean", "median", "std", "min", "max")
		for _, p := range s.Percentiles {
			header += fmt.Sprintf(" %9s", fmt.Sprintf("p%g", p))
		}
		b.WriteString(header + "\n")

		for _, g := range s.Gates {
			if !g.HasData() {
				fmt.Fprintf(b, "  %4d %10.1f %6s  no data\n", g.Gate, g.Distance, "0")
				continue
			}
			row := fmt.Sprintf("  %4d %10.1f %6d %10.3f %10.3f %10s %10.3f %10.3f",
				g.Gate, g.Distance, g.Count, g.Mean, g.Median, stdCell(g.Std), g.Min, g.Max)
			for _, q := range g.Quantiles {
				row += fmt.Sprintf(" %9.3f", q)
			}
			b.WriteString(row + "\n")
		}
		b.WriteString("\n")
	}
}

func writeRoseSection(b *strings.Builder, a *domain.Analysis) {
	b.WriteString("Wind rose (mean |RWS| per azimuth, elevation and distance ignored)\n")
	fmt.Fprintf(b, "  %12s %8s %12s\n", "azimuth", "count", "mean|RWS|")
	for _, bin := range a.Rose {
		if bin.Count == 0 {
			fmt.Fprintf(b, "  %11.2f° %8d %12s\n", bin.Azimuth(), 0, "no data")
			continue
		}
		fmt.Fprintf(b, "  %11.2f° %8d %12.3f\n", bin.Azimuth(), bin.Count, bin.MeanAbsRWS)
	}
	b.WriteString("\n")
}

func writeOmissions(b *strings.Builder, a *domain.Analysis) {
	skipped := a.NoDataAngles()
	if len(skipped) == 0 {
		return
	}
	b.WriteString("Skipped charts\n")
	for _, key := range skipped {
		fmt.Fprintf(b, "  %s: no valid data, charts omitted\n", key)
	}
	b.WriteString("\n")
}

func writeCharts(b *strings.Builder, charts []string) {
	if len(charts) == 0 {
		return
	}
	b.WriteString("Chart artifacts\n")
	for _, c := range charts {
		fmt.Fprintf(b, "  %s\n", c)
	}
}

func summaryRow(s domain.Summary) string {
	if !s.HasData() {
		return fmt.Sprintf("%8d %10s", 0, "no data")
	}
	return fmt.Sprintf("%8d %10.3f %10.3f %10s %10.3f %10.3f",
		s.Count, s.Mean, s.Median, stdCell(s.Std), s.Min, s.Max)
}

// stdCell formats a sample standard deviation; a nil value (count <= 1) is
// shown as a dash, never as a number.
func stdCell(std *float64) string {
	if std == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *std)
}

func percentileList(ps []float64) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprintf("%g", p)
	}
	return strings.Join(parts, ", ")
}
