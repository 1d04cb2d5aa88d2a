package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"verdict/internal/window"
)

// ParseFunc maps a raw response body onto a typed FetchResult. It returns an
// error on shape mismatch; an Empty result (no error) when the payload is
// well formed but has no rows.
type ParseFunc func(body []byte) (FetchResult, error)

// SourceConfig describes one logical upstream: a primary endpoint and an
// optional fallback tried once when the primary fails. Query and Header are
// shared by both attempts. StartKey/EndKey name the query parameters the
// upstream expects the window under; when empty the window is not embedded
// (game-by-date sources key on a date path instead).
type SourceConfig struct {
	PrimaryURL  string
	FallbackURL string
	Query       url.Values
	Header      http.Header
	StartKey    string
	EndKey      string
}

// Client performs fetch-with-fallback lookups. One Client is shared by all
// questions in a run; per-host rate limiters keep batch runs polite to each
// upstream.
type Client struct {
	http     *http.Client
	timeout  time.Duration
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewClient builds a Client with a per-attempt timeout and a per-host rate
// limit. rps <= 0 disables rate limiting.
func NewClient(timeout time.Duration, rps float64, burst int) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if burst < 1 {
		burst = 1
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		timeout:  timeout,
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// FetchWindow performs one logical lookup: primary endpoint first, fallback
// second, never more than two attempts. Transport errors, non-2xx statuses,
// parse failures, and empty payloads all fall through identically. The
// returned FetchResult is the only failure channel; FetchWindow never
// returns a Go error and never panics.
func (c *Client) FetchWindow(ctx context.Context, src SourceConfig, win window.TimeWindow, parse ParseFunc) FetchResult {
	query := cloneValues(src.Query)
	if src.StartKey != "" {
		query.Set(src.StartKey, strconv.FormatInt(win.StartMS, 10))
	}
	if src.EndKey != "" {
		query.Set(src.EndKey, strconv.FormatInt(win.EndMS, 10))
	}

	endpoints := []string{src.PrimaryURL}
	if src.FallbackURL != "" {
		endpoints = append(endpoints, src.FallbackURL)
	}

	sawEmpty := false
	for i, endpoint := range endpoints {
		res, err := c.attempt(ctx, endpoint, query, src.Header, parse)
		if err != nil {
			slog.Warn("fetch attempt failed",
				"endpoint", endpoint,
				"attempt", i+1,
				"error", err,
			)
			continue
		}
		if res.Kind == KindEmpty {
			sawEmpty = true
			slog.Warn("fetch attempt returned no rows",
				"endpoint", endpoint,
				"attempt", i+1,
			)
			continue
		}
		res.Source = endpoint
		return res
	}

	if sawEmpty {
		return Empty()
	}
	return Errorf(fmt.Sprintf("all %d source(s) failed", len(endpoints)))
}

func (c *Client) attempt(ctx context.Context, endpoint string, query url.Values, header http.Header, parse ParseFunc) (FetchResult, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return FetchResult{}, fmt.Errorf("parsing endpoint url: %w", err)
	}

	if err := c.wait(ctx, u.Host); err != nil {
		return FetchResult{}, fmt.Errorf("rate limiter: %w", err)
	}

	// Merge configured params over any baked into the endpoint URL.
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return FetchResult{}, fmt.Errorf("building request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return FetchResult{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, fmt.Errorf("reading body: %w", err)
	}

	res, err := parse(body)
	if err != nil {
		return FetchResult{}, fmt.Errorf("parsing payload: %w", err)
	}
	return res, nil
}

func (c *Client) wait(ctx context.Context, host string) error {
	if c.rps <= 0 {
		return nil
	}
	c.mu.Lock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(c.rps, c.burst)
		c.limiters[host] = lim
	}
	c.mu.Unlock()
	return lim.Wait(ctx)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
