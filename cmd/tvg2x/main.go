// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guidepipe/tvg2x/internal/cache"
	"github.com/guidepipe/tvg2x/internal/config"
	"github.com/guidepipe/tvg2x/internal/epg"
	"github.com/guidepipe/tvg2x/internal/guide"
	xlog "github.com/guidepipe/tvg2x/internal/log"
	"github.com/guidepipe/tvg2x/internal/tvguide"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("tvg2x", flag.ContinueOnError)
	defaults := config.Defaults()

	input := fs.String("input", "", "input JSON file path")
	api := fs.Bool("api", false, "fetch data from the TV Guide API")
	output := fs.String("output", "", "output XMLTV file path")
	platform := fs.String("platform", "", "TV platform (e.g. sky, freeview)")
	region := fs.String("region", "", "geographic region (e.g. london, manchester)")
	date := fs.String("date", "", "date in YYYY-MM-DD format (single day)")
	startDate := fs.String("start-date", "", "start date in YYYY-MM-DD format (multi-day)")
	endDate := fs.String("end-date", "", "end date in YYYY-MM-DD format (multi-day)")
	hour := fs.Int("hour", -1, "hour in 24-hour format (0-23)")
	startHour := fs.Int("start-hour", -1, "starting hour for fetch (0-23)")
	endHour := fs.Int("end-hour", -1, "ending hour for fetch (0-23)")
	nowMode := fs.Bool("now", false, "fetch guide from (now - 1 hour) to (now + N days)")
	nowDays := fs.Int("now-days", defaults.NowDays, "number of days to fetch in now mode")
	view := fs.String("view", defaults.View, "listings view")
	details := fs.Bool("details", false, "request extended programme details")
	timeout := fs.Int("timeout", defaults.TimeoutSeconds, "API request timeout in seconds")
	retries := fs.Int("retries", defaults.MaxRetries, "maximum API retry attempts")
	cacheTTL := fs.Int("cache-ttl", defaults.CacheTTLSeconds, "cache time-to-live in seconds")
	noCache := fs.Bool("no-cache", false, "disable cache usage")
	cacheOnly := fs.Bool("cache-only", false, "only use cached data, do not call the API")
	cacheDir := fs.String("cache-dir", defaults.CacheDir, "cache directory")
	clearCache := fs.Bool("clear-cache", false, "clear all cached data and exit")
	cacheStats := fs.Bool("cache-stats", false, "show cache statistics and exit")
	timezone := fs.String("timezone", "", "IANA timezone for programme timestamps (default: local)")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	configPath := fs.String("config", "", "path to config file (YAML)")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Printf("tvg2x %s (commit: %s, built: %s)\n", version, commit, buildDate)
		return 0
	}

	opts := defaults
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 2
		}
		opts = loaded
	}
	opts.ApplyEnv()

	// Explicit flags win over file and environment values.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			opts.InputFile = *input
		case "api":
			opts.API = *api
		case "output":
			opts.Output = *output
		case "platform":
			opts.Platform = *platform
		case "region":
			opts.Region = *region
		case "date":
			opts.Date = *date
		case "start-date":
			opts.StartDate = *startDate
		case "end-date":
			opts.EndDate = *endDate
		case "hour":
			opts.Hour = *hour
		case "start-hour":
			opts.StartHour = *startHour
		case "end-hour":
			opts.EndHour = *endHour
		case "now":
			opts.Now = *nowMode
		case "now-days":
			opts.NowDays = *nowDays
		case "view":
			opts.View = *view
		case "details":
			opts.Details = *details
		case "timeout":
			opts.TimeoutSeconds = *timeout
		case "retries":
			opts.MaxRetries = *retries
		case "cache-ttl":
			opts.CacheTTLSeconds = *cacheTTL
		case "no-cache":
			opts.NoCache = *noCache
		case "cache-only":
			opts.CacheOnly = *cacheOnly
		case "cache-dir":
			opts.CacheDir = *cacheDir
		case "timezone":
			opts.Timezone = *timezone
		case "log-level":
			opts.LogLevel = *logLevel
		}
	})

	xlog.Configure(xlog.Config{Level: opts.LogLevel, Service: "tvg2x"})
	logger := xlog.WithComponent("cli")

	// Cache administration short-circuits the conversion run.
	if *clearCache || *cacheStats {
		store, err := cache.New(opts.CacheDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
		if *clearCache {
			removed, err := store.Clear()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				return 1
			}
			fmt.Printf("Cache cleared: %d entries removed\n", removed)
			return 0
		}
		stats, err := store.Stats()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
		fmt.Println("Cache statistics:")
		fmt.Printf("  Entries: %d\n", stats.Entries)
		fmt.Printf("  Total size: %d bytes\n", stats.TotalBytes)
		if stats.Entries > 0 {
			fmt.Printf("  Oldest entry age: %s\n", stats.OldestAge.Round(time.Second))
			fmt.Printf("  Newest entry age: %s\n", stats.NewestAge.Round(time.Second))
		}
		return 0
	}

	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listing, report, err := acquire(ctx, opts)
	if err != nil {
		switch {
		case errors.Is(err, guide.ErrInvalidRange), errors.Is(err, guide.ErrCachePolicy):
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 2
		default:
			logger.Error().Err(err).Str("event", "run.failed").Msg("run produced no data")
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
	}
	if report != nil {
		for _, f := range report.Failures {
			logger.Warn().Err(f.Err).Stringer("unit", f.Unit).Str("event", "unit.failed").Msg("fetch unit failed")
		}
	}

	loc, err := opts.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}
	tv, warnings := epg.Convert(listing.Channels, epg.Options{Location: loc})
	for _, w := range warnings {
		logger.Warn().Str("event", "convert.skipped").Msg(w.String())
	}

	if err := epg.WriteDocument(opts.Output, tv); err != nil {
		logger.Error().Err(err).Str("event", "write.failed").Str("path", opts.Output).Msg("could not write XMLTV")
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	logger.Info().
		Str("event", "run.success").
		Str("path", opts.Output).
		Int("channels", len(tv.Channels)).
		Int("programmes", len(tv.Programmes)).
		Int("warnings", len(warnings)).
		Msg("XMLTV written")
	return 0
}

// acquire resolves the listing either from a saved file or through the
// fetch orchestrator.
func acquire(ctx context.Context, opts config.Options) (*guide.MergedListing, *guide.Report, error) {
	if opts.InputFile != "" {
		listing, err := guide.FromFile(opts.InputFile)
		return listing, nil, err
	}

	client := tvguide.NewClient(tvguide.ClientOptions{
		Timeout:    opts.Timeout(),
		MaxRetries: opts.MaxRetries,
		View:       opts.View,
		Details:    opts.Details,
	})

	orchOpts := guide.Options{
		Platform:     opts.Platform,
		Region:       opts.Region,
		Window:       opts.Window(time.Now()),
		CacheTTL:     opts.CacheTTL(),
		CacheEnabled: !opts.NoCache,
		CacheOnly:    opts.CacheOnly,
	}

	var store guide.Cache
	if orchOpts.CacheEnabled {
		s, err := cache.New(opts.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		store = s
	}

	return guide.New(orchOpts, client, store).Run(ctx)
}
