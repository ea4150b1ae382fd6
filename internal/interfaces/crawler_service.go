package interfaces

import (
	"context"

	"github.com/ternarybob/lustro/internal/models"
)

// EventSink receives crawl events synchronously, in emission order.
// The crawl does not proceed until the sink returns, so transports that
// stream events (SSE) see the exact sequence the crawl produced.
type EventSink func(event models.CrawlEvent)

// CrawlerService runs same-domain crawls from a seed URL
type CrawlerService interface {
	// Crawl discovers same-domain URLs from the seed and crawls each one,
	// delivering the ordered event sequence to sink. The returned summary
	// mirrors the terminal event. A non-nil error means the run ended with
	// a crawl_error event (no URLs, blocked domain, panic, cancellation).
	Crawl(ctx context.Context, seedURL string, sink EventSink) (*models.CrawlSummary, error)

	// CrawlOne fetches and extracts a single URL without discovery,
	// returning the persisted page record. Never returns a nil page.
	CrawlOne(ctx context.Context, url string) (*models.Page, error)

	// Close cleanly shuts down the crawler service
	Close() error
}
