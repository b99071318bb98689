package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variable names
const (
	EnvListen             = "FAQUE_LISTEN"
	EnvDataDir            = "FAQUE_DATA_DIR"
	EnvMaxRequestHistory  = "FAQUE_MAX_REQUEST_HISTORY"
	EnvMaxBodySize        = "FAQUE_MAX_BODY_SIZE"
	EnvMaxRequestBodySize = "FAQUE_MAX_REQUEST_BODY_SIZE"
	EnvMaxRoutes          = "FAQUE_MAX_ROUTES"
	EnvSaveInterval       = "FAQUE_SAVE_INTERVAL"
	EnvCleanupInterval    = "FAQUE_CLEANUP_INTERVAL"
	EnvLogLevel           = "FAQUE_LOG_LEVEL"
	EnvLogFormat          = "FAQUE_LOG_FORMAT"
	EnvConfig             = "FAQUE_CONFIG"
)

// ApplyEnv overrides cfg with FAQUE_* variables present in the environment.
// Malformed values are reported and leave the field unchanged.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not an integer", name, v))
				return
			}
			*dst = n
		}
	}
	integer64 := func(name string, dst *int64) {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not an integer", name, v))
				return
			}
			*dst = n
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok && v != "" {
			d, err := ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not a duration", name, v))
				return
			}
			*dst = d
		}
	}

	str(EnvListen, &cfg.Listen)
	str(EnvDataDir, &cfg.DataDir)
	integer(EnvMaxRequestHistory, &cfg.MaxRequestHistory)
	integer(EnvMaxBodySize, &cfg.MaxBodySize)
	integer64(EnvMaxRequestBodySize, &cfg.MaxRequestBodySize)
	integer(EnvMaxRoutes, &cfg.MaxRoutes)
	duration(EnvSaveInterval, &cfg.SaveInterval)
	duration(EnvCleanupInterval, &cfg.CleanupInterval)
	str(EnvLogLevel, &cfg.Log.Level)
	str(EnvLogFormat, &cfg.Log.Format)

	return errors.Join(errs...)
}

// ParseDuration accepts Go durations ("2s") and bare seconds ("2").
func ParseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}
