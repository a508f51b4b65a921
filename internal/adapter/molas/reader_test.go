package molas

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "Timestamp,Azimuth(deg),Elevation(deg),Gate,Distance(m),RWS(m/s),CNR(dB),Temperature(°C)\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	r := NewReader(discardLogger())
	ctx := context.Background()

	t.Run("parses well-formed rows", func(t *testing.T) {
		csv := testHeader +
			"2025-10-05 08:00:00,45.001,15.0,0,50,3.25,-12.5,18.3\n" +
			"2025-10-05 08:00:00,45.001,15.0,1,100,-1.75,-19.0,\n"
		set, err := r.Load(ctx, writeTemp(t, "ok.csv", csv))

		require.NoError(t, err)
		require.Equal(t, 2, set.Len())
		assert.Equal(t, 2, set.Stats.RowsRead)
		assert.Equal(t, 2, set.Stats.RowsParsed)
		assert.Equal(t, 0, set.Stats.RowsSkipped)

		m := set.Measurements[0]
		assert.Equal(t, time.Date(2025, 10, 5, 8, 0, 0, 0, time.UTC), m.Timestamp)
		assert.Equal(t, 45.001, m.Azimuth)
		assert.Equal(t, 0, m.Gate)
		assert.Equal(t, 50.0, m.Distance)
		assert.Equal(t, 3.25, m.RWS)
		assert.Equal(t, -12.5, m.CNR)
		require.NotNil(t, m.Temperature)
		assert.Equal(t, 18.3, *m.Temperature)
		assert.Nil(t, set.Measurements[1].Temperature)
	})

	t.Run("skips malformed rows and counts them", func(t *testing.T) {
		csv := testHeader +
			"2025-10-05 08:00:00,45,15,0,50,3.0,-12,\n" +
			"2025-10-05 08:00:00,45,15,1,100,not-a-number,-12,\n" + // bad RWS
			"garbage-timestamp,45,15,2,150,1.0,-12,\n" + // bad timestamp
			"2025-10-05 08:00:00,45,15,3,200,2.0,-12,\n"
		set, err := r.Load(ctx, writeTemp(t, "mixed.csv", csv))

		require.NoError(t, err)
		assert.Equal(t, 4, set.Stats.RowsRead)
		assert.Equal(t, 2, set.Stats.RowsParsed)
		assert.Equal(t, 2, set.Stats.RowsSkipped)
	})

	t.Run("missing CNR loads as NaN, not a row error", func(t *testing.T) {
		csv := testHeader + "2025-10-05 08:00:00,45,15,0,50,3.0,,\n"
		set, err := r.Load(ctx, writeTemp(t, "nocnr.csv", csv))

		require.NoError(t, err)
		require.Equal(t, 1, set.Len())
		assert.True(t, math.IsNaN(set.Measurements[0].CNR))
	})

	t.Run("missing required column is fatal", func(t *testing.T) {
		csv := "Timestamp,Azimuth(deg),Elevation(deg),Gate,Distance(m),CNR(dB)\n" +
			"2025-10-05 08:00:00,45,15,0,50,-12\n"
		_, err := r.Load(ctx, writeTemp(t, "noschema.csv", csv))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "RWS(m/s)")
	})

	t.Run("zero parseable rows is fatal", func(t *testing.T) {
		csv := testHeader + "x,x,x,x,x,x,x,x\n"
		_, err := r.Load(ctx, writeTemp(t, "allbad.csv", csv))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no parseable rows")
	})

	t.Run("missing file is fatal", func(t *testing.T) {
		_, err := r.Load(ctx, filepath.Join(t.TempDir(), "absent.csv"))
		require.Error(t, err)
	})

	t.Run("invalid bytes in string fields are replaced, not fatal", func(t *testing.T) {
		csv := testHeader + "2025-10-05 08:00:00,45,15,0,50,3.0,-12,\xff\xfe\n"
		set, err := r.Load(ctx, writeTemp(t, "badenc.csv", csv))

		require.NoError(t, err)
		assert.Equal(t, 1, set.Stats.RowsParsed)
	})
}

func TestLoad_Gzip(t *testing.T) {
	csv := testHeader + "2025-10-05 08:00:00,45,15,0,50,3.0,-12,\n"

	path := filepath.Join(t.TempDir(), "input.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	set, err := NewReader(discardLogger()).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}
