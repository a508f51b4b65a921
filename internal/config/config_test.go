package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Molas3D_00941_RealTime.csv", cfg.Input)
	assert.Equal(t, "output_rws_analysis", cfg.OutputDir)
	assert.Equal(t, -20.0, cfg.CNRThreshold)
	assert.Equal(t, []float64{5, 25, 50, 75, 95}, cfg.Percentiles)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("RWS_INPUT", "device2.csv")
	t.Setenv("RWS_OUTPUT_DIR", "out")
	t.Setenv("RWS_CNR_THRESHOLD", "-17.5")
	t.Setenv("RWS_PERCENTILES", "10,50,90")
	t.Setenv("RWS_LOG_LEVEL", "debug")
	t.Setenv("RWS_LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "device2.csv", cfg.Input)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, -17.5, cfg.CNRThreshold)
	assert.Equal(t, []float64{10, 50, 90}, cfg.Percentiles)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidPercentiles(t *testing.T) {
	cases := []struct {
		name  string
		value string
	}{
		{"not a number", "5,abc,95"},
		{"zero", "0,50"},
		{"hundred", "50,100"},
		{"not increasing", "25,25,75"},
		{"decreasing", "75,25"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("RWS_PERCENTILES", tc.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("RWS_LOG_LEVEL", "verbose")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("RWS_LOG_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_format")
}
