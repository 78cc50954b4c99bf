package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Accepted values for the enumerated settings.
var (
	Formats      = []string{"stl", "stl-binary"}
	UpAxes       = []string{"y", "z"}
	LogLevels    = []string{"debug", "info", "warn", "error"}
	LogEncodings = []string{"console", "json"}
)

// canonicalize lower-cases the enumerated settings.
func (c *Config) canonicalize() {
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	c.Export.UpAxis = strings.ToLower(strings.TrimSpace(c.Export.UpAxis))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Encoding = strings.ToLower(strings.TrimSpace(c.Logging.Encoding))
}

// Validate reports every setting that an export, the server or the logger
// would reject. Empty enumerated values fall back to defaults downstream
// and are accepted.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	oneOf := func(key, v string, allowed []string) {
		if v == "" {
			return
		}
		for _, a := range allowed {
			if v == a {
				return
			}
		}
		bad("%s %q, want one of %s", key, v, strings.Join(allowed, ", "))
	}

	e := c.Export
	oneOf("export.format", e.Format, Formats)
	oneOf("export.up_axis", e.UpAxis, UpAxes)
	if !finiteNonNegative(e.TargetExtent) {
		bad("export.target_extent %g must be a finite, non-negative number", e.TargetExtent)
	}
	if !finiteNonNegative(e.UnitScale) {
		bad("export.unit_scale %g must be a finite, non-negative number", e.UnitScale)
	}
	if e.Workers < 0 {
		bad("export.workers %d is negative", e.Workers)
	}

	s := c.Server
	if s.MaxBodyBytes < 0 {
		bad("server.max_body_bytes %d is negative", s.MaxBodyBytes)
	}
	if s.RequestTimeout < 0 || s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		bad("server timeouts must not be negative")
	}

	l := c.Logging
	oneOf("logging.level", l.Level, LogLevels)
	oneOf("logging.encoding", l.Encoding, LogEncodings)
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		bad("logging rotation settings must not be negative")
	}

	return errors.Join(errs...)
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
