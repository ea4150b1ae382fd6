// -----------------------------------------------------------------------
// Crawler Service - Public entry point wiring the crawl pipeline
// -----------------------------------------------------------------------

package crawler

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/common"
	"github.com/ternarybob/lustro/internal/interfaces"
	"github.com/ternarybob/lustro/internal/models"
)

// Service implements interfaces.CrawlerService on top of the fetcher,
// extractor, discoverer, and orchestrator pipeline
type Service struct {
	fetcher      *Fetcher
	extractor    *ContentExtractor
	discoverer   *Discoverer
	pageCrawler  *PageCrawler
	orchestrator *Orchestrator
	logger       arbor.ILogger
}

// NewService creates a fully wired crawler service
func NewService(config *common.CrawlerConfig, storage interfaces.PageStorage, events interfaces.EventService, logger arbor.ILogger) *Service {
	fetcher := NewFetcher(config, logger)
	extractor := NewContentExtractor(config, logger)
	discoverer := NewDiscoverer(fetcher, config, logger)
	pageCrawler := NewPageCrawler(fetcher, extractor, storage, config, logger)
	orchestrator := NewOrchestrator(discoverer, pageCrawler, events, config, logger)

	return &Service{
		fetcher:      fetcher,
		extractor:    extractor,
		discoverer:   discoverer,
		pageCrawler:  pageCrawler,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Crawl runs a full discovery-then-crawl pass from the seed URL,
// delivering ordered events to sink
func (s *Service) Crawl(ctx context.Context, seedURL string, sink interfaces.EventSink) (*models.CrawlSummary, error) {
	return s.orchestrator.Run(ctx, seedURL, sink)
}

// CrawlOne crawls a single URL without discovery
func (s *Service) CrawlOne(ctx context.Context, pageURL string) (*models.Page, error) {
	page := s.pageCrawler.CrawlOne(ctx, pageURL)
	return page, nil
}

// Close cleanly shuts down the crawler service
func (s *Service) Close() error {
	s.logger.Debug().Msg("Crawler service closed")
	return nil
}
