package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats = []string{"text", "json", "pretty"}
)

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, errors.New("listen: must not be empty"))
	}
	if c.MaxRequestHistory <= 0 {
		errs = append(errs, fmt.Errorf("maxRequestHistory: must be positive, got %d", c.MaxRequestHistory))
	}
	if c.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("maxBodySize: must be positive, got %d", c.MaxBodySize))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, fmt.Errorf("maxRequestBodySize: must be positive, got %d", c.MaxRequestBodySize))
	}
	if c.MaxRoutes < 0 {
		errs = append(errs, fmt.Errorf("maxRoutes: must not be negative, got %d", c.MaxRoutes))
	}
	if c.SaveInterval <= 0 {
		errs = append(errs, fmt.Errorf("saveInterval: must be positive, got %s", c.SaveInterval))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, fmt.Errorf("cleanupInterval: must be positive, got %s", c.CleanupInterval))
	}
	if c.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("readTimeout: must be positive, got %s", c.ReadTimeout))
	}
	if c.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("writeTimeout: must be positive, got %s", c.WriteTimeout))
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level: must be one of %s, got %q",
			strings.Join(validLogLevels, ", "), c.Log.Level))
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("log.format: must be one of %s, got %q",
			strings.Join(validLogFormats, ", "), c.Log.Format))
	}

	return errors.Join(errs...)
}
