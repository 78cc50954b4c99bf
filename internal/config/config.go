// Package config handles partmesh configuration loading and management.
package config

import "time"

// Config holds all settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds the default export settings. CLI flags and HTTP query
// parameters override them per export.
type ExportConfig struct {
	Format       string  `yaml:"format"`        // stl or stl-binary
	Normalize    bool    `yaml:"normalize"`     // Apply display normalization
	TargetExtent float64 `yaml:"target_extent"` // Largest extent after normalization
	UnitScale    float64 `yaml:"unit_scale"`    // Multiplier on final coordinates
	UpAxis       string  `yaml:"up_axis"`       // y or z
	SolidName    string  `yaml:"solid_name"`
	SkipRepair   bool    `yaml:"skip_repair"`
	Workers      int     `yaml:"workers"` // Concurrent buffer decoders
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Encoding   string `yaml:"encoding"` // console or json
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Format:       "stl",
			Normalize:    false,
			TargetExtent: 4,
			UnitScale:    1,
			UpAxis:       "y",
			SolidName:    "mesh",
			Workers:      4,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    64 << 20,
			RequestTimeout:  30 * time.Second,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Encoding:   "console",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
