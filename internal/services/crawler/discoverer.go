// -----------------------------------------------------------------------
// URL Discoverer - Same-domain breadth-first link discovery
// -----------------------------------------------------------------------

package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/common"
)

// discoveryFetchRetries bounds fetch attempts during discovery; a page
// that stays unreachable simply contributes no outbound links.
const discoveryFetchRetries = 2

// nonHTMLExtensions are path suffixes excluded from the frontier
var nonHTMLExtensions = []string{
	".pdf",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico", ".bmp",
	".zip", ".tar", ".gz", ".rar", ".7z",
	".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".mp3", ".wav", ".ogg",
	".mp4", ".avi", ".mov", ".wmv", ".mkv",
}

// Discoverer performs a bounded breadth-first traversal of same-domain
// links starting at a seed URL
type Discoverer struct {
	fetcher *Fetcher
	config  *common.CrawlerConfig
	logger  arbor.ILogger
}

// NewDiscoverer creates a new URL discoverer
func NewDiscoverer(fetcher *Fetcher, config *common.CrawlerConfig, logger arbor.ILogger) *Discoverer {
	return &Discoverer{
		fetcher: fetcher,
		config:  config,
		logger:  logger,
	}
}

// Discover returns the ordered sequence of same-domain URLs reachable from
// the seed, capped at the configured maximum. The seed is always first.
//
// A dequeued URL counts as discovered even when its fetch later fails; it
// occupies a discovery slot and surfaces as an error record downstream.
// Fetch and parse failures during traversal are swallowed - that URL just
// contributes no new links.
func (d *Discoverer) Discover(ctx context.Context, seedURL string) ([]string, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %s: %w", seedURL, err)
	}

	// Deny-list check happens before any network call
	if hostname := d.deniedHost(seed.Hostname()); hostname != "" {
		d.logger.Warn().
			Str("seed_url", seedURL).
			Str("hostname", hostname).
			Msg("Seed hostname is on the deny-list")
		return nil, &BlockedDomainError{Hostname: hostname}
	}

	visited := make(map[string]bool)
	queued := map[string]bool{seedURL: true}
	frontier := []string{seedURL}
	var discovered []string

	for len(frontier) > 0 && len(discovered) < d.config.MaxPages {
		current := frontier[0]
		frontier = frontier[1:]

		if visited[current] {
			continue
		}
		visited[current] = true
		discovered = append(discovered, current)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, err := d.fetcher.Fetch(ctx, current, discoveryFetchRetries)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			d.logger.Debug().
				Str("url", current).
				Err(err).
				Msg("Discovery fetch failed, continuing with remaining frontier")
			continue
		}
		if !result.OK() {
			d.logger.Debug().
				Str("url", current).
				Int("status_code", result.StatusCode).
				Msg("Discovery fetch returned non-2xx, skipping link scan")
			continue
		}

		links := d.collectLinks(result.Body, current, seed)
		accepted := 0
		for _, link := range links {
			if accepted >= d.config.MaxLinksPerPage {
				break
			}
			if visited[link] || queued[link] {
				continue
			}
			queued[link] = true
			frontier = append(frontier, link)
			accepted++
		}

		d.logger.Debug().
			Str("url", current).
			Int("links_found", len(links)).
			Int("links_enqueued", accepted).
			Int("discovered", len(discovered)).
			Msg("Discovery visited URL")
	}

	if len(discovered) == 0 {
		return nil, ErrNoURLsDiscovered
	}

	d.logger.Info().
		Str("seed_url", seedURL).
		Int("discovered", len(discovered)).
		Msg("Discovery completed")

	return discovered, nil
}

// collectLinks parses the page HTML and returns normalized same-domain
// candidate links in document order
func (d *Discoverer) collectLinks(html, pageURL string, seed *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		d.logger.Debug().Err(err).Str("url", pageURL).Msg("Failed to parse HTML for link discovery")
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = seed
	}

	var links []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		normalized := normalizeLink(href, seed, base)
		if normalized == "" {
			return
		}
		if !d.acceptLink(normalized, seed) {
			return
		}
		links = append(links, normalized)
	})

	return links
}

// normalizeLink resolves a raw href. Precedence: absolute http URLs are
// kept as-is; protocol-relative links take the seed's scheme; root-relative
// links take the seed's scheme and host; anything else resolves against the
// current page URL.
func normalizeLink(href string, seed *url.URL, base *url.URL) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "//"):
		return seed.Scheme + ":" + href
	case strings.HasPrefix(href, "/"):
		return seed.Scheme + "://" + seed.Host + href
	default:
		if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "data:") {
			return ""
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return ""
		}
		return resolved.String()
	}
}

// acceptLink applies the frontier admission filters: same hostname as the
// seed, no fragment marker, no non-HTML extension, no non-web scheme
func (d *Discoverer) acceptLink(link string, seed *url.URL) bool {
	if strings.Contains(link, "#") {
		return false
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	if parsed.Hostname() != seed.Hostname() {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range nonHTMLExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	return true
}

// deniedHost returns the hostname when it matches a deny-list entry,
// empty otherwise. Matching is substring-based so subdomains are caught.
func (d *Discoverer) deniedHost(hostname string) string {
	lowered := strings.ToLower(hostname)
	for _, denied := range d.config.DeniedHosts {
		if strings.Contains(lowered, strings.ToLower(denied)) {
			return hostname
		}
	}
	return ""
}
