package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
)

func newTestDiscoverer(fetcher *Fetcher) *Discoverer {
	return NewDiscoverer(fetcher, fetcher.config, arbor.NewLogger())
}

func TestDiscoverBlockedDomainBeforeNetwork(t *testing.T) {
	seeds := []string{
		"https://www.google.com/search?q=x",
		"https://facebook.com/page",
		"https://mobile.twitter.com/user",
	}

	for _, seed := range seeds {
		t.Run(seed, func(t *testing.T) {
			calls := 0
			transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
				calls++
				return nil, errors.New("unexpected network call")
			})

			discoverer := newTestDiscoverer(newTestFetcher(transport))
			_, err := discoverer.Discover(context.Background(), seed)

			var blocked *BlockedDomainError
			if !errors.As(err, &blocked) {
				t.Fatalf("Expected BlockedDomainError, got %T: %v", err, err)
			}
			if calls != 0 {
				t.Errorf("Expected deny-list rejection before any network call, got %d calls", calls)
			}
		})
	}
}

func TestDiscoverSinglePageWithoutLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No links here at all</p></body></html>`)
	}))
	defer server.Close()

	discoverer := newTestDiscoverer(newTestFetcher(nil))
	urls, err := discoverer.Discover(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected discovery to succeed, got: %v", err)
	}

	if len(urls) != 1 {
		t.Fatalf("Expected exactly the seed, got %d URLs", len(urls))
	}
	if urls[0] != server.URL {
		t.Errorf("Expected seed as sole result, got %q", urls[0])
	}
}

func TestDiscoverSeedFailureStillCountsAsDiscovered(t *testing.T) {
	// A dequeued URL occupies a discovery slot even when its fetch fails
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("host unreachable")
	})

	discoverer := newTestDiscoverer(newTestFetcher(transport))
	urls, err := discoverer.Discover(context.Background(), "https://example.org/")
	if err != nil {
		t.Fatalf("Expected discovery to succeed despite fetch failure, got: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.org/" {
		t.Errorf("Expected seed in result despite fetch failure, got %v", urls)
	}
}

func TestDiscoverCapAndOrdering(t *testing.T) {
	// Every page links onward to fresh pages, so the traversal only stops
	// at the discovery cap
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>")
		prefix := strings.TrimSuffix(r.URL.Path, "/")
		for i := 0; i < 12; i++ {
			fmt.Fprintf(w, `<a href="%s/child-%d">link</a>`, prefix, i)
		}
		// None of these may enter the frontier
		fmt.Fprint(w, `<a href="#section">fragment</a>`)
		fmt.Fprint(w, `<a href="mailto:someone@example.org">mail</a>`)
		fmt.Fprint(w, `<a href="/report.pdf">pdf</a>`)
		fmt.Fprint(w, `<a href="https://elsewhere.example.net/">external</a>`)
		fmt.Fprint(w, "</body></html>")
	}))
	defer server.Close()

	discoverer := newTestDiscoverer(newTestFetcher(nil))
	urls, err := discoverer.Discover(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected discovery to succeed, got: %v", err)
	}

	if len(urls) != discoverer.config.MaxPages {
		t.Errorf("Expected discovery capped at %d URLs, got %d", discoverer.config.MaxPages, len(urls))
	}
	if urls[0] != server.URL {
		t.Errorf("Expected seed as first element, got %q", urls[0])
	}

	seen := make(map[string]bool)
	for _, u := range urls {
		if seen[u] {
			t.Errorf("Duplicate URL in discovered sequence: %q", u)
		}
		seen[u] = true
	}
	if seen[server.URL+"/report.pdf"] {
		t.Error("Non-HTML extension leaked into the frontier")
	}
	if seen["https://elsewhere.example.net/"] {
		t.Error("Cross-domain link leaked into the frontier")
	}
}

func TestDiscoverPerPageLinkCap(t *testing.T) {
	// Only the seed serves links; children are leaf pages. The frontier
	// must admit at most the configured number of links from one page,
	// in document order.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path != "/" {
			fmt.Fprint(w, "<html><body><p>leaf</p></body></html>")
			return
		}
		fmt.Fprint(w, "<html><body>")
		for i := 0; i < 15; i++ {
			fmt.Fprintf(w, `<a href="/child-%d">link</a>`, i)
		}
		fmt.Fprint(w, "</body></html>")
	}))
	defer server.Close()

	discoverer := newTestDiscoverer(newTestFetcher(nil))
	urls, err := discoverer.Discover(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected discovery to succeed, got: %v", err)
	}

	limit := discoverer.config.MaxLinksPerPage
	if len(urls) != limit+1 {
		t.Fatalf("Expected seed plus %d accepted links, got %d URLs", limit, len(urls))
	}
	for i := 0; i < limit; i++ {
		expected := fmt.Sprintf("%s/child-%d", server.URL, i)
		if urls[i+1] != expected {
			t.Errorf("URL %d: expected %q, got %q", i+1, expected, urls[i+1])
		}
	}
}

func mustParse(t *testing.T, rawURL string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("failed to parse URL %s: %v", rawURL, err)
	}
	return parsed
}

func TestNormalizeLinkPrecedence(t *testing.T) {
	seed := mustParse(t, "https://site.example.org/docs/")
	base := mustParse(t, "https://site.example.org/docs/guide/")

	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{"Absolute kept as-is", "https://site.example.org/about", "https://site.example.org/about"},
		{"Protocol-relative gets seed scheme", "//site.example.org/x", "https://site.example.org/x"},
		{"Root-relative gets seed scheme and host", "/pricing", "https://site.example.org/pricing"},
		{"Page-relative resolves against current page", "intro.html", "https://site.example.org/docs/guide/intro.html"},
		{"Mailto dropped", "mailto:a@b.c", ""},
		{"Tel dropped", "tel:+1234", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeLink(tt.href, seed, base); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAcceptLinkFilters(t *testing.T) {
	seed := mustParse(t, "https://site.example.org/")
	discoverer := newTestDiscoverer(newTestFetcher(nil))

	tests := []struct {
		name     string
		link     string
		accepted bool
	}{
		{"Same host accepted", "https://site.example.org/page", true},
		{"Other host rejected", "https://other.example.org/page", false},
		{"Fragment rejected", "https://site.example.org/page#top", false},
		{"PDF rejected", "https://site.example.org/file.pdf", false},
		{"Uppercase extension rejected", "https://site.example.org/IMG.PNG", false},
		{"Non-web scheme rejected", "ftp://site.example.org/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := discoverer.acceptLink(tt.link, seed); got != tt.accepted {
				t.Errorf("acceptLink(%q) = %v, expected %v", tt.link, got, tt.accepted)
			}
		})
	}
}
