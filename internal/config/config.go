// SPDX-License-Identifier: MIT

// Package config holds the run configuration surface: defaults, optional
// YAML file, environment overrides, and validation that rejects invalid
// combinations before any cache or network activity.
package config

import (
	"time"

	"github.com/guidepipe/tvg2x/internal/guide"
)

// Options is the complete configuration for one invocation. Hour fields use
// -1 for "not set" so 0 (midnight) stays expressible.
type Options struct {
	// Input source: a saved listings file or the live API.
	InputFile string `yaml:"input_file"`
	API       bool   `yaml:"api"`

	Platform string `yaml:"platform"`
	Region   string `yaml:"region"`

	// Fetch window: a single date, an inclusive date range, or now-mode.
	Date      string `yaml:"date"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Hour      int    `yaml:"hour"`
	StartHour int    `yaml:"start_hour"`
	EndHour   int    `yaml:"end_hour"`
	Now       bool   `yaml:"now"`
	NowDays   int    `yaml:"now_days"`

	View    string `yaml:"view"`
	Details bool   `yaml:"details"`

	Output   string `yaml:"output"`
	Timezone string `yaml:"timezone"` // IANA zone name; empty = process-local

	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxRetries      int    `yaml:"max_retries"`
	CacheDir        string `yaml:"cache_dir"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	NoCache         bool   `yaml:"no_cache"`
	CacheOnly       bool   `yaml:"cache_only"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the baseline options before file, env, and flag overlays.
func Defaults() Options {
	return Options{
		Hour:            -1,
		StartHour:       -1,
		EndHour:         -1,
		NowDays:         7,
		View:            "grid",
		TimeoutSeconds:  30,
		MaxRetries:      3,
		CacheDir:        "cache",
		CacheTTLSeconds: 3600,
	}
}

// Timeout returns the per-attempt request timeout.
func (o Options) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// CacheTTL returns the time-to-live applied to new cache entries.
func (o Options) CacheTTL() time.Duration {
	return time.Duration(o.CacheTTLSeconds) * time.Second
}

// Location resolves the configured output timezone.
func (o Options) Location() (*time.Location, error) {
	if o.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(o.Timezone)
}

// Window resolves the configured date/hour selection into a fetch range.
// Validate must have accepted the options first.
func (o Options) Window(now time.Time) guide.Range {
	if o.Now {
		return guide.NowRange(now, o.NowDays)
	}

	r := guide.Range{StartDate: o.StartDate, EndDate: o.EndDate}
	if o.Date != "" {
		r.StartDate, r.EndDate = o.Date, o.Date
	}
	if o.Hour >= 0 {
		r.StartHour, r.EndHour = o.Hour, o.Hour
	} else {
		r.StartHour, r.EndHour = o.StartHour, o.EndHour
	}
	return r
}
