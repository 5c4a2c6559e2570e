package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "search-agent/1.0 (+https://github.com/petasbytes/search-agent)"

// maxBodyBytes bounds how much of a backend response is read.
const maxBodyBytes = 2 << 20

// Backend configures one lookup source.
type Backend struct {
	BaseURL string
	Limits  Limits
	// Interval is the minimum spacing between requests. Zero selects the
	// source's default; negative disables rate limiting.
	Interval time.Duration
}

// httpSource is the shared HTTP plumbing behind each lookup tool.
type httpSource struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPSource(base, defaultBase string, client *http.Client, interval, defaultInterval time.Duration) *httpSource {
	if base == "" {
		base = defaultBase
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if interval == 0 {
		interval = defaultInterval
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		lim = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &httpSource{base: strings.TrimRight(base, "/"), client: client, limiter: lim}
}

// do waits for the rate limiter, then sends req with the common headers.
func (s *httpSource) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return s.client.Do(req)
}

// get issues a GET and returns the body of a 200 response.
func (s *httpSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}
	return body, nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("http %d", e.code) }
