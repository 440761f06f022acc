// Package config loads runtime configuration from the environment,
// generalizing the env-with-default helper the teacher used in tests
// into the program's actual configuration surface.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	envCustomVariantTimeout   = "VARIANT_CUSTOM_TIMEOUT"
	envCustomVariantRateHz    = "VARIANT_CUSTOM_RATE_HZ"
	envCustomVariantRateBurst = "VARIANT_CUSTOM_RATE_BURST"
	envCachePath              = "VARIANT_CACHE_PATH"
	envCacheTTL               = "VARIANT_CACHE_TTL"
	envBatchWorkers           = "VARIANT_BATCH_WORKERS"
	envScheduleCron           = "VARIANT_SCHEDULE_CRON"
)

// Config holds every environment-tunable knob the engine, the batch
// driver, the custom-variant resolver, and the scheduled runner read at
// startup.
type Config struct {
	CustomVariantTimeout   time.Duration
	CustomVariantRateHz    float64
	CustomVariantRateBurst int
	CachePath              string
	CacheTTL               time.Duration
	BatchWorkers           int
	ScheduleCron           string
}

// Default mirrors the values the rest of the module falls back to when
// no configuration is supplied at all.
func Default() Config {
	return Config{
		CustomVariantTimeout:   2 * time.Second,
		CustomVariantRateHz:    2,
		CustomVariantRateBurst: 4,
		CachePath:              "variant_cache.json",
		CacheTTL:               24 * time.Hour,
		BatchWorkers:           0,
		ScheduleCron:           "@every 6h",
	}
}

// Load reads a .env file at envPath if present (a missing file is not an
// error, matching godotenv's own convention for optional env files), then
// overlays Default() with whatever environment variables are set.
func Load(envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load env file %s: %w", envPath, err)
		}
	}

	cfg := Default()

	if v := os.Getenv(envCustomVariantTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envCustomVariantTimeout, err)
		}
		cfg.CustomVariantTimeout = d
	}
	if v := os.Getenv(envCustomVariantRateHz); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envCustomVariantRateHz, err)
		}
		cfg.CustomVariantRateHz = f
	}
	if v := os.Getenv(envCustomVariantRateBurst); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envCustomVariantRateBurst, err)
		}
		cfg.CustomVariantRateBurst = n
	}
	if v := os.Getenv(envCachePath); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv(envCacheTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envCacheTTL, err)
		}
		cfg.CacheTTL = d
	}
	if v := os.Getenv(envBatchWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envBatchWorkers, err)
		}
		cfg.BatchWorkers = n
	}
	if v := os.Getenv(envScheduleCron); v != "" {
		cfg.ScheduleCron = v
	}

	return cfg, nil
}

// EnvOrDefault returns the value of envVar, or defaultValue when unset,
// generalizing the teacher's GetTestToken helper for non-test callers.
func EnvOrDefault(envVar, defaultValue string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultValue
}
