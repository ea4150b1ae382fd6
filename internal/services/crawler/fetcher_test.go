package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/common"
)

// roundTripperFunc adapts a function to http.RoundTripper
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testCrawlerConfig() *common.CrawlerConfig {
	cfg := common.NewDefaultConfig().Crawler
	cfg.RequestTimeout = 2 * time.Second
	cfg.PageDelay = 0
	return &cfg
}

func newTestFetcher(transport http.RoundTripper) *Fetcher {
	fetcher := NewFetcher(testCrawlerConfig(), arbor.NewLogger())
	if transport != nil {
		fetcher.client = &http.Client{Transport: transport}
	}
	return fetcher
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("Expected browser User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	fetcher := newTestFetcher(nil)
	result, err := fetcher.Fetch(context.Background(), server.URL, 1)
	if err != nil {
		t.Fatalf("Expected successful fetch, got error: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", result.StatusCode)
	}
	if result.Body != "<html><body>hello</body></html>" {
		t.Errorf("Unexpected body: %q", result.Body)
	}
}

func TestFetchReturnsNonOKResponses(t *testing.T) {
	// 4xx/5xx are not errors at the fetch layer; status interpretation
	// belongs to the caller
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := newTestFetcher(nil)
	result, err := fetcher.Fetch(context.Background(), server.URL, 1)
	if err != nil {
		t.Fatalf("Expected non-2xx response without error, got: %v", err)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", result.StatusCode)
	}
	if result.OK() {
		t.Error("Expected OK() to be false for 404")
	}
}

func TestFetchBlockedSiteAfterExhaustion(t *testing.T) {
	attempts := 0
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		attempts++
		return nil, errors.New("connection reset by peer")
	})

	fetcher := newTestFetcher(transport)
	_, err := fetcher.Fetch(context.Background(), "https://twitter.com/x", 1)
	if err == nil {
		t.Fatal("Expected error after exhausted retries")
	}

	var blocked *BlockedSiteError
	if !errors.As(err, &blocked) {
		t.Fatalf("Expected BlockedSiteError, got %T: %v", err, err)
	}
	if blocked.Hostname != "twitter.com" {
		t.Errorf("Expected hostname twitter.com, got %q", blocked.Hostname)
	}
	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", attempts)
	}
}

func TestFetchNonBlockingHostPropagatesError(t *testing.T) {
	underlying := errors.New("dial tcp: connection refused")
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, underlying
	})

	fetcher := newTestFetcher(transport)
	_, err := fetcher.Fetch(context.Background(), "https://example.org/page", 1)
	if err == nil {
		t.Fatal("Expected error after exhausted retries")
	}

	var blocked *BlockedSiteError
	if errors.As(err, &blocked) {
		t.Errorf("Expected raw network error for non-blocking host, got BlockedSiteError")
	}
}

func TestFetchObservesCancellationBetweenAttempts(t *testing.T) {
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := newTestFetcher(transport)
	start := time.Now()
	_, err := fetcher.Fetch(ctx, "https://example.org/page", 3)
	if err == nil {
		t.Fatal("Expected error from cancelled fetch")
	}
	// Must not sit out the 2s backoff once the context is gone
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected prompt cancellation, took %v", elapsed)
	}
}
