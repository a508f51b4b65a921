package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all run settings. Resolved once at startup and held immutable
// for the duration of the run.
type Config struct {
	Input        string    // input CSV path when no positional argument is given
	OutputDir    string    // artifact directory, cleared and rebuilt each run
	CNRThreshold float64   // dB
	Percentiles  []float64 // quantile set, strictly increasing, each in (0, 100)
	LogLevel     string
	LogFormat    string
}

// Load reads configuration from an optional rws.toml in the working directory
// and RWS_-prefixed environment variables, applying defaults where unset.
// Precedence: environment over file over defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("rws")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.SetDefault("input", "Molas3D_00941_RealTime.csv")
	v.SetDefault("output_dir", "output_rws_analysis")
	v.SetDefault("cnr_threshold", -20.0)
	v.SetDefault("percentiles", "5,25,50,75,95")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("RWS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No config file is fine; defaults and environment apply.
	}

	percentiles, err := parsePercentiles(v.GetString("percentiles"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Input:        v.GetString("input"),
		OutputDir:    v.GetString("output_dir"),
		CNRThreshold: v.GetFloat64("cnr_threshold"),
		Percentiles:  percentiles,
		LogLevel:     v.GetString("log_level"),
		LogFormat:    v.GetString("log_format"),
	}

	if cfg.Input == "" {
		return nil, errors.New("input must not be empty")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("output_dir must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log_format %q", cfg.LogFormat)
	}

	return cfg, nil
}

// parsePercentiles parses a comma-separated percentile list. The list must be
// strictly increasing with every value in the open interval (0, 100), so that
// quantile columns are well defined and monotonic by construction.
func parsePercentiles(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) == 0 {
		return nil, errors.New("percentiles must not be empty")
	}

	out := make([]float64, 0, len(parts))
	prev := 0.0
	for _, part := range parts {
		part = strings.TrimSpace(part)
		p, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid percentile %q", part)
		}
		if p <= 0 || p >= 100 {
			return nil, fmt.Errorf("percentile %g out of range (0, 100)", p)
		}
		if p <= prev {
			return nil, fmt.Errorf("percentiles must be strictly increasing, got %g after %g", p, prev)
		}
		out = append(out, p)
		prev = p
	}
	return out, nil
}
