// SPDX-License-Identifier: MIT

package tvguide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	xlog "github.com/guidepipe/tvg2x/internal/log"
)

// DefaultBaseURL is the public listings endpoint.
const DefaultBaseURL = "https://api-2.tvguide.co.uk/listings"

// The API rejects requests without a browser User-Agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Responses are bounded to keep a misbehaving upstream from exhausting memory.
const maxResponseBytes = 50 * 1024 * 1024

// ClientOptions configure a Client. Zero values select defaults.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration // per-attempt request timeout
	MaxRetries int           // additional attempts after the first
	View       string        // listings view, default "grid"
	Details    bool          // request extended programme details
	Backoff    func(attempt int) time.Duration
	HTTPClient *http.Client
}

// Client fetches listings for one Unit per call, retrying transient
// failures with monotonically non-decreasing backoff.
type Client struct {
	base       string
	view       string
	details    bool
	maxRetries int
	backoff    func(attempt int) time.Duration
	http       *http.Client
	logger     zerolog.Logger
}

// NewClient builds a Client, applying defaults for unset options.
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.View == "" {
		opts.View = "grid"
	}
	if opts.Backoff == nil {
		opts.Backoff = DefaultBackoff
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		base:       opts.BaseURL,
		view:       opts.View,
		details:    opts.Details,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		http:       httpClient,
		logger:     xlog.WithComponent("tvguide"),
	}
}

// DefaultBackoff doubles the delay per attempt: 1s, 2s, 4s, ...
func DefaultBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(1<<(attempt-1)) * time.Second
}

// Listings fetches the listings for one unit. Transient failures (timeout,
// 5xx, connection errors) are retried up to MaxRetries additional attempts;
// client-class failures surface immediately.
func (c *Client) Listings(ctx context.Context, unit Unit) ([]Channel, error) {
	var last *FetchError
	attempts := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.logger.Debug().
				Str("event", "fetch.retry").
				Stringer("unit", unit).
				Int("attempt", attempt+1).
				Dur("backoff", delay).
				Msg("retrying listings fetch")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &FetchError{Kind: KindTimeout, Unit: unit, Attempts: attempts, Err: ctx.Err()}
			}
		}
		attempts++

		channels, ferr := c.fetchOnce(ctx, unit)
		if ferr == nil {
			return channels, nil
		}
		ferr.Unit = unit
		ferr.Attempts = attempts
		if !ferr.Kind.Retryable() {
			return nil, ferr
		}
		last = ferr
	}
	return nil, last
}

func (c *Client) fetchOnce(ctx context.Context, unit Unit) ([]Channel, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindClientError, Err: err}
	}
	q := url.Values{}
	q.Set("platform", unit.Platform)
	q.Set("region", unit.Region)
	q.Set("view", c.view)
	q.Set("date", unit.Date)
	q.Set("hour", strconv.Itoa(unit.Hour))
	q.Set("details", strconv.FormatBool(c.details))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: classifyTransport(err), Err: err}
	}
	defer func() {
		_ = res.Body.Close()
	}()

	switch {
	case res.StatusCode >= 500:
		return nil, &FetchError{Kind: KindServerError, Status: res.StatusCode}
	case res.StatusCode >= 400:
		return nil, &FetchError{Kind: KindClientError, Status: res.StatusCode}
	case res.StatusCode != http.StatusOK:
		return nil, &FetchError{Kind: KindClientError, Status: res.StatusCode,
			Err: fmt.Errorf("unexpected status")}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, &FetchError{Kind: classifyTransport(err), Status: res.StatusCode, Err: err}
	}

	// The endpoint returns a JSON array of channel records. Anything else,
	// including truncated or malformed JSON, is a terminal client error and
	// must never pass for an empty listing.
	var channels []Channel
	if err := json.Unmarshal(body, &channels); err != nil {
		return nil, &FetchError{Kind: KindClientError, Status: res.StatusCode,
			Err: fmt.Errorf("invalid JSON response: %w", err)}
	}
	return channels, nil
}

func classifyTransport(err error) Kind {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindNetworkError
}
