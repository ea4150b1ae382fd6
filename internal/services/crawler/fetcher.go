// -----------------------------------------------------------------------
// Fetcher - Resilient HTTP fetching with retries and backoff
// -----------------------------------------------------------------------

package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/net/html/charset"

	"github.com/ternarybob/lustro/internal/common"
)

// blockingHosts are hostnames that routinely refuse automated clients.
// Exhausted retries against these surface as BlockedSiteError with a hint
// instead of a raw network error.
var blockingHosts = []string{"google", "facebook", "twitter"}

// FetchResult is the outcome of a successful HTTP fetch.
// The body is returned whatever the status code; 4xx/5xx interpretation
// is the caller's responsibility.
type FetchResult struct {
	StatusCode int
	Status     string
	Body       string
	URL        string
}

// OK reports whether the response status is in the 2xx range
func (r *FetchResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher issues HTTP GETs with browser-like headers, a per-attempt
// timeout, and bounded retries with exponential backoff
type Fetcher struct {
	client *http.Client
	config *common.CrawlerConfig
	logger arbor.ILogger
}

// NewFetcher creates a fetcher from crawler configuration
func NewFetcher(config *common.CrawlerConfig, logger arbor.ILogger) *Fetcher {
	return &Fetcher{
		// Redirects are followed by default; the per-attempt timeout is
		// applied via request context so it covers the full redirect chain.
		client: &http.Client{},
		config: config,
		logger: logger,
	}
}

// Fetch performs a GET with up to maxRetries attempts. Between attempts it
// sleeps 2^attempt seconds (2s, 4s, 8s...), observing ctx so a cancelled
// crawl stops between attempts rather than mid-backoff.
//
// On exhausting retries against a known-blocking host the error is a
// BlockedSiteError; otherwise the last network error is returned unchanged.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, maxRetries int) (*FetchResult, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		f.logger.Debug().
			Str("url", rawURL).
			Int("attempt", attempt).
			Int("max_retries", maxRetries).
			Err(err).
			Msg("Fetch attempt failed")

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	if host := blockingHostFor(rawURL); host != "" {
		f.logger.Warn().
			Str("url", rawURL).
			Str("host", host).
			Msg("Fetch exhausted against known-blocking host")
		return nil, &BlockedSiteError{Hostname: host, Err: lastErr}
	}

	return nil, lastErr
}

// fetchOnce performs a single GET attempt bounded by the configured timeout
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*FetchResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}

	f.setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Decode the body respecting the declared charset, capped at MaxBodySize
	limited := io.LimitReader(resp.Body, int64(f.config.MaxBodySize))
	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		// Undecodable charset declarations fall back to the raw bytes
		reader = limited
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", rawURL, err)
	}

	return &FetchResult{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
		URL:        rawURL,
	}, nil
}

// setBrowserHeaders applies a fixed set of realistic browser headers
func (f *Fetcher) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// blockingHostFor returns the matched blocking hostname for a URL,
// or empty when the host is not on the known-blocking list
func blockingHostFor(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	hostname := strings.ToLower(parsed.Hostname())
	for _, blocked := range blockingHosts {
		if strings.Contains(hostname, blocked) {
			return hostname
		}
	}
	return ""
}
