// Package config defines process configuration and how it is loaded.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and CALLRECON_ env vars.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"
	"unicode/utf8"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Delta is the default tolerance in seconds.
	Delta int `koanf:"delta"`

	// Delimiter separates fields of the input files. One character.
	Delimiter string `koanf:"delimiter"`

	// SourceAName and SourceBName label the two sources in reports.
	SourceAName string `koanf:"source_a_name"`
	SourceBName string `koanf:"source_b_name"`

	// QueueSize bounds the number of pending reconciliation jobs.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of reconciliation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize caps the fingerprints the duplicate-row filter keeps per
	// input file. Zero keeps all of them; a cap lets duplicates further apart
	// than DedupeSize rows through.
	DedupeSize int `koanf:"dedupe_size"`

	// Parallelism is how many key groups one run classifies concurrently.
	Parallelism int `koanf:"parallelism"`

	// FirstCome pairs candidates strictly first-come, without re-pairing
	// records to match more calls.
	FirstCome bool `koanf:"first_come"`

	// MaxUploadMB caps one upload request.
	MaxUploadMB int `koanf:"max_upload_mb"`

	// Retention drops finished runs after this long. Zero keeps them.
	Retention time.Duration `koanf:"retention"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		Delta:           3,
		Delimiter:       ";",
		SourceAName:     "kms",
		SourceBName:     "oper",
		QueueSize:       64,
		WorkerCount:     runtime.NumCPU(),
		DedupeSize:      0,
		Parallelism:     runtime.NumCPU(),
		MaxUploadMB:     64,
		Retention:       24 * time.Hour,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Delta < 0:
		return fmt.Errorf("%w: delta must not be negative, got %d", ErrInvalidConfig, c.Delta)
	case utf8.RuneCountInString(c.Delimiter) != 1:
		return fmt.Errorf("%w: delimiter must be one character, got %q", ErrInvalidConfig, c.Delimiter)
	case c.SourceAName == "" || c.SourceBName == "":
		return fmt.Errorf("%w: source names must not be empty", ErrInvalidConfig)
	case c.SourceAName == c.SourceBName:
		return fmt.Errorf("%w: source names must differ, both are %q", ErrInvalidConfig, c.SourceAName)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.MaxUploadMB < 1:
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// DelimiterRune returns the delimiter as a rune. Call after Validate.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// MaxUploadBytes returns MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
