// SPDX-License-Identifier: MIT

package guide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	xlog "github.com/guidepipe/tvg2x/internal/log"
	"github.com/guidepipe/tvg2x/internal/tvguide"
)

var (
	// ErrNoData is the run-level failure: zero fetch units succeeded.
	ErrNoData = errors.New("guide: no fetch unit produced data")

	// ErrCacheUnavailable marks a unit skipped in cache-only mode because no
	// valid cache entry existed for it.
	ErrCacheUnavailable = errors.New("guide: no cached data available")

	// ErrCachePolicy marks a mutually exclusive cache configuration.
	ErrCachePolicy = errors.New("guide: cache-only mode requires the cache to be enabled")
)

// Fetcher issues one upstream listings call per unit.
type Fetcher interface {
	Listings(ctx context.Context, unit tvguide.Unit) ([]tvguide.Channel, error)
}

// Cache is the subset of the cache store the orchestrator needs. Read
// failures surface as misses inside the implementation; write failures are
// returned and downgraded to warnings here.
type Cache interface {
	Get(unit tvguide.Unit) ([]byte, bool)
	Put(unit tvguide.Unit, payload []byte, ttl time.Duration) error
}

// Options configure one orchestrator run.
type Options struct {
	Platform     string
	Region       string
	Window       Range
	CacheTTL     time.Duration
	CacheEnabled bool
	CacheOnly    bool
}

// UnitFailure records one unit that produced no data, with its cause.
type UnitFailure struct {
	Unit tvguide.Unit
	Err  error
}

// Report summarises how a run's units were resolved.
type Report struct {
	Units     int
	FromCache int
	Fetched   int
	Failures  []UnitFailure
}

// Orchestrator resolves fetch units sequentially, in expansion order, so the
// first-occurrence-wins merge stays deterministic.
type Orchestrator struct {
	opts    Options
	fetcher Fetcher
	cache   Cache
	logger  zerolog.Logger
}

// New wires an orchestrator. cache may be nil when Options.CacheEnabled is
// false.
func New(opts Options, fetcher Fetcher, cache Cache) *Orchestrator {
	return &Orchestrator{
		opts:    opts,
		fetcher: fetcher,
		cache:   cache,
		logger:  xlog.WithComponent("guide"),
	}
}

// Run expands the window into units, resolves each one through cache policy,
// and merges the successful results. A run with failed units still succeeds
// as long as at least one unit produced data; the report carries the rest.
func (o *Orchestrator) Run(ctx context.Context) (*MergedListing, *Report, error) {
	if o.opts.CacheOnly && !o.opts.CacheEnabled {
		return nil, nil, ErrCachePolicy
	}
	if o.opts.CacheEnabled && o.cache == nil {
		return nil, nil, errors.New("guide: cache enabled but no cache store wired")
	}

	units, err := o.opts.Window.Expand(o.opts.Platform, o.opts.Region)
	if err != nil {
		return nil, nil, err
	}

	o.logger.Info().
		Str("event", "run.start").
		Str("platform", o.opts.Platform).
		Str("region", o.opts.Region).
		Int("units", len(units)).
		Bool("cache_only", o.opts.CacheOnly).
		Msg("resolving fetch units")

	report := &Report{Units: len(units)}
	m := newMerger()
	for _, unit := range units {
		channels, cached, err := o.resolve(ctx, unit)
		if err != nil {
			report.Failures = append(report.Failures, UnitFailure{Unit: unit, Err: err})
			o.logger.Warn().Err(err).
				Str("event", "unit.failed").
				Stringer("unit", unit).
				Msg("fetch unit produced no data")
			continue
		}
		if cached {
			report.FromCache++
		} else {
			report.Fetched++
		}
		m.add(channels)
	}

	if report.FromCache+report.Fetched == 0 {
		return nil, report, fmt.Errorf("%w (%d unit(s) attempted)", ErrNoData, report.Units)
	}

	listing := m.listing()
	o.logger.Info().
		Str("event", "run.merged").
		Int("channels", len(listing.Channels)).
		Int("from_cache", report.FromCache).
		Int("fetched", report.Fetched).
		Int("failed", len(report.Failures)).
		Msg("fetch units merged")
	return listing, report, nil
}

// resolve applies the per-unit policy: cache disabled → always fetch;
// cache hit → use it; miss in cache-only mode → unavailable; otherwise
// fetch and write the result back with the configured TTL.
func (o *Orchestrator) resolve(ctx context.Context, unit tvguide.Unit) ([]tvguide.Channel, bool, error) {
	if o.opts.CacheEnabled {
		if payload, ok := o.cache.Get(unit); ok {
			var channels []tvguide.Channel
			if err := json.Unmarshal(payload, &channels); err == nil {
				return channels, true, nil
			}
			o.logger.Warn().
				Str("event", "cache.bad_payload").
				Stringer("unit", unit).
				Msg("cached payload does not decode, refetching")
		}
		if o.opts.CacheOnly {
			return nil, false, fmt.Errorf("%w for %s", ErrCacheUnavailable, unit)
		}
	}

	channels, err := o.fetcher.Listings(ctx, unit)
	if err != nil {
		return nil, false, err
	}

	if o.opts.CacheEnabled {
		if payload, err := json.Marshal(channels); err == nil {
			// A failed cache write must not fail an otherwise successful fetch.
			if err := o.cache.Put(unit, payload, o.opts.CacheTTL); err != nil {
				o.logger.Warn().Err(err).
					Str("event", "cache.write_failed").
					Stringer("unit", unit).
					Msg("could not cache listings")
			}
		}
	}
	return channels, false, nil
}
