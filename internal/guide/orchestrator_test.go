// SPDX-License-Identifier: MIT

package guide

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidepipe/tvg2x/internal/cache"
	"github.com/guidepipe/tvg2x/internal/tvguide"
)

// fakeFetcher returns canned listings per unit and records every call.
type fakeFetcher struct {
	calls     []tvguide.Unit
	responses map[string][]tvguide.Channel
	errs      map[string]error
}

func (f *fakeFetcher) Listings(_ context.Context, unit tvguide.Unit) ([]tvguide.Channel, error) {
	f.calls = append(f.calls, unit)
	if err, ok := f.errs[unit.String()]; ok {
		return nil, err
	}
	return f.responses[unit.String()], nil
}

func intp(n int) *int { return &n }

func singleWindow() Range {
	return Range{StartDate: "2025-01-15", EndDate: "2025-01-15", StartHour: 21, EndHour: 21}
}

func baseOptions(window Range) Options {
	return Options{
		Platform:     "sky",
		Region:       "london",
		Window:       window,
		CacheTTL:     time.Hour,
		CacheEnabled: true,
	}
}

func bbcOne(scheds ...tvguide.Schedule) tvguide.Channel {
	return tvguide.Channel{PaID: "1001", Title: "BBC One", Slug: "bbc-one", Schedules: scheds}
}

func TestRun_CacheHitSkipsFetch(t *testing.T) {
	unit := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 21}
	store := cache.NewMemory()
	payload, err := json.Marshal([]tvguide.Channel{bbcOne()})
	require.NoError(t, err)
	require.NoError(t, store.Put(unit, payload, time.Hour))

	fetcher := &fakeFetcher{}
	listing, report, err := New(baseOptions(singleWindow()), fetcher, store).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, fetcher.calls, "a valid cache entry must never trigger a fetch")
	assert.Equal(t, 1, report.FromCache)
	assert.Equal(t, 0, report.Fetched)
	require.Len(t, listing.Channels, 1)
	assert.Equal(t, "1001", listing.Channels[0].PaID)
}

func TestRun_MissFetchesAndWritesCache(t *testing.T) {
	unit := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 21}
	store := cache.NewMemory()
	fetcher := &fakeFetcher{responses: map[string][]tvguide.Channel{
		unit.String(): {bbcOne()},
	}}

	listing, report, err := New(baseOptions(singleWindow()), fetcher, store).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, unit, fetcher.calls[0])
	assert.Equal(t, 1, report.Fetched)
	assert.Equal(t, 1, store.Len(), "successful fetch must be written back to the cache")
	require.Len(t, listing.Channels, 1)

	cached, ok := store.Get(unit)
	require.True(t, ok)
	var cachedChannels []tvguide.Channel
	require.NoError(t, json.Unmarshal(cached, &cachedChannels))
	if diff := cmp.Diff(listing.Channels, cachedChannels); diff != "" {
		t.Errorf("cached payload differs from merged listing (-want +got):\n%s", diff)
	}
}

func TestRun_CacheDisabledAlwaysFetches(t *testing.T) {
	unit := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 21}
	opts := baseOptions(singleWindow())
	opts.CacheEnabled = false
	fetcher := &fakeFetcher{responses: map[string][]tvguide.Channel{
		unit.String(): {bbcOne()},
	}}

	listing, report, err := New(opts, fetcher, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, fetcher.calls, 1)
	assert.Equal(t, 1, report.Fetched)
	assert.Len(t, listing.Channels, 1)
}

func TestRun_CacheOnlyEmptyCacheFails(t *testing.T) {
	opts := baseOptions(Range{StartDate: "2025-01-15", EndDate: "2025-01-15", StartHour: 18, EndHour: 20})
	opts.CacheOnly = true
	fetcher := &fakeFetcher{}

	listing, report, err := New(opts, fetcher, cache.NewMemory()).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, listing)
	assert.Empty(t, fetcher.calls, "cache-only mode must never call the fetch client")
	require.Len(t, report.Failures, 3)
	for _, f := range report.Failures {
		assert.ErrorIs(t, f.Err, ErrCacheUnavailable)
	}
}

func TestRun_CacheOnlyUsesAvailableUnits(t *testing.T) {
	opts := baseOptions(Range{StartDate: "2025-01-15", EndDate: "2025-01-15", StartHour: 21, EndHour: 22})
	opts.CacheOnly = true

	cachedUnit := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 21}
	store := cache.NewMemory()
	payload, err := json.Marshal([]tvguide.Channel{bbcOne()})
	require.NoError(t, err)
	require.NoError(t, store.Put(cachedUnit, payload, time.Hour))

	fetcher := &fakeFetcher{}
	listing, report, err := New(opts, fetcher, store).Run(context.Background())
	require.NoError(t, err, "a partially cached window still produces output")
	assert.Empty(t, fetcher.calls)
	assert.Equal(t, 1, report.FromCache)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 22, report.Failures[0].Unit.Hour)
	assert.Len(t, listing.Channels, 1)
}

func TestRun_CacheOnlyWithCacheDisabledIsConfigError(t *testing.T) {
	opts := baseOptions(singleWindow())
	opts.CacheEnabled = false
	opts.CacheOnly = true

	_, _, err := New(opts, &fakeFetcher{}, nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCachePolicy)
}

func TestRun_InvalidWindowRejectedBeforeFetch(t *testing.T) {
	opts := baseOptions(Range{StartDate: "2025-01-17", EndDate: "2025-01-15", StartHour: 0, EndHour: 1})
	fetcher := &fakeFetcher{}

	_, _, err := New(opts, fetcher, cache.NewMemory()).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Empty(t, fetcher.calls)
}

func TestRun_PartialFailureStillProducesListing(t *testing.T) {
	opts := baseOptions(Range{StartDate: "2025-01-15", EndDate: "2025-01-15", StartHour: 21, EndHour: 22})
	u21 := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 21}
	u22 := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 22}

	fetcher := &fakeFetcher{
		responses: map[string][]tvguide.Channel{
			u21.String(): {bbcOne()},
		},
		errs: map[string]error{
			u22.String(): &tvguide.FetchError{Kind: tvguide.KindServerError, Unit: u22, Attempts: 4, Status: 502},
		},
	}

	listing, report, err := New(opts, fetcher, cache.NewMemory()).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, listing.Channels, 1)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, u22, report.Failures[0].Unit)
	assert.ErrorIs(t, report.Failures[0].Err, tvguide.ErrServer)
}

func TestRun_AllUnitsFailedIsRunFailure(t *testing.T) {
	u := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 21}
	fetcher := &fakeFetcher{errs: map[string]error{
		u.String(): &tvguide.FetchError{Kind: tvguide.KindTimeout, Unit: u, Attempts: 4},
	}}

	listing, report, err := New(baseOptions(singleWindow()), fetcher, cache.NewMemory()).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, listing)
	assert.Len(t, report.Failures, 1)
}

func TestRun_DeduplicatesBoundaryProgrammes(t *testing.T) {
	opts := baseOptions(Range{StartDate: "2025-01-15", EndDate: "2025-01-15", StartHour: 21, EndHour: 22})
	u21 := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 21}
	u22 := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 22}

	// The film spans the 21h/22h boundary, so both windows report it.
	film := tvguide.Schedule{PaID: "p9", Title: "Film Night", StartAt: "2025-01-15T21:30:00Z", Duration: intp(120)}
	news := tvguide.Schedule{PaID: "p1", Title: "News at Nine", StartAt: "2025-01-15T21:00:00Z", Duration: intp(30)}
	late := tvguide.Schedule{PaID: "p2", Title: "Late Review", StartAt: "2025-01-15T22:30:00Z", Duration: intp(30)}

	fetcher := &fakeFetcher{responses: map[string][]tvguide.Channel{
		u21.String(): {bbcOne(news, film)},
		u22.String(): {bbcOne(film, late)},
	}}

	listing, _, err := New(opts, fetcher, cache.NewMemory()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, listing.Channels, 1, "the channel appears once across both units")

	scheds := listing.Channels[0].Schedules
	require.Len(t, scheds, 3, "the boundary programme must appear exactly once")
	starts := map[string]int{}
	for _, s := range scheds {
		starts[s.StartAt]++
	}
	assert.Equal(t, 1, starts["2025-01-15T21:30:00Z"])
}

func TestRun_ChannelMetadataRefill(t *testing.T) {
	opts := baseOptions(Range{StartDate: "2025-01-15", EndDate: "2025-01-15", StartHour: 21, EndHour: 22})
	u21 := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 21}
	u22 := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 22}

	first := tvguide.Channel{PaID: "1001", Title: "BBC One"}
	second := tvguide.Channel{PaID: "1001", Title: "BBC One HD", Slug: "bbc-one", LogoURL: "https://img.example/bbc.png"}

	fetcher := &fakeFetcher{responses: map[string][]tvguide.Channel{
		u21.String(): {first},
		u22.String(): {second},
	}}

	listing, _, err := New(opts, fetcher, cache.NewMemory()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, listing.Channels, 1)

	ch := listing.Channels[0]
	assert.Equal(t, "BBC One", ch.Title, "first occurrence wins for populated fields")
	assert.Equal(t, "bbc-one", ch.Slug, "missing optional fields are refilled by later units")
	assert.Equal(t, "https://img.example/bbc.png", ch.LogoURL)
}

func TestRun_CorruptCachedPayloadRefetches(t *testing.T) {
	unit := tvguide.Unit{Platform: "sky", Region: "london", Date: "2025-01-15", Hour: 21}
	store := cache.NewMemory()
	require.NoError(t, store.Put(unit, []byte(`{"not":"an array"`), time.Hour))

	fetcher := &fakeFetcher{responses: map[string][]tvguide.Channel{
		unit.String(): {bbcOne()},
	}}

	listing, report, err := New(baseOptions(singleWindow()), fetcher, store).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, fetcher.calls, 1, "undecodable cached payload falls through to the network")
	assert.Equal(t, 1, report.Fetched)
	assert.Len(t, listing.Channels, 1)
}
