// -----------------------------------------------------------------------
// Page Crawler - Single-URL crawl producing a persisted page record
// -----------------------------------------------------------------------

package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/common"
	"github.com/ternarybob/lustro/internal/interfaces"
	"github.com/ternarybob/lustro/internal/models"
)

// PageCrawler crawls a single URL into a page record. It never signals an
// error outward; every failure is captured into an error-status record.
type PageCrawler struct {
	fetcher   *Fetcher
	extractor *ContentExtractor
	storage   interfaces.PageStorage
	config    *common.CrawlerConfig
	logger    arbor.ILogger
}

// NewPageCrawler creates a new page crawler
func NewPageCrawler(fetcher *Fetcher, extractor *ContentExtractor, storage interfaces.PageStorage, config *common.CrawlerConfig, logger arbor.ILogger) *PageCrawler {
	return &PageCrawler{
		fetcher:   fetcher,
		extractor: extractor,
		storage:   storage,
		config:    config,
		logger:    logger,
	}
}

// CrawlOne fetches a URL, extracts its content, and persists the resulting
// record. Both the completed and the error outcome are saved before return.
func (pc *PageCrawler) CrawlOne(ctx context.Context, pageURL string) *models.Page {
	now := time.Now()
	page := &models.Page{
		ID:        common.NewPageID(),
		URL:       pageURL,
		Status:    models.PageStatusCrawling,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := pc.fetcher.Fetch(ctx, pageURL, pc.config.RetryAttempts)
	if err != nil {
		return pc.fail(ctx, page, err.Error())
	}

	if !result.OK() {
		statusErr := &HTTPStatusError{
			StatusCode: result.StatusCode,
			Status:     result.Status,
			URL:        pageURL,
		}
		return pc.fail(ctx, page, statusErr.Error())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.Body))
	if err != nil {
		return pc.fail(ctx, page, "failed to parse HTML: "+err.Error())
	}

	page.Title = pc.extractor.ExtractTitle(doc)
	page.Content = pc.extractor.ExtractContent(doc)
	page.Summary = pc.extractor.Summarize(page.Content)
	page.WordCount = pc.extractor.WordCount(page.Content)
	page.Status = models.PageStatusCompleted
	page.CrawledAt = time.Now()
	page.UpdatedAt = page.CrawledAt

	pc.persist(ctx, page)

	pc.logger.Info().
		Str("url", pageURL).
		Str("page_id", page.ID).
		Str("title", page.Title).
		Int("word_count", page.WordCount).
		Msg("Page crawled")

	return page
}

// fail converts a crawl failure into a persisted error record
func (pc *PageCrawler) fail(ctx context.Context, page *models.Page, message string) *models.Page {
	page.Status = models.PageStatusError
	page.Error = message
	page.Content = ""
	page.WordCount = 0
	page.CrawledAt = time.Now()
	page.UpdatedAt = page.CrawledAt

	pc.persist(ctx, page)

	pc.logger.Warn().
		Str("url", page.URL).
		Str("page_id", page.ID).
		Str("error", message).
		Msg("Page crawl failed")

	return page
}

// persist saves the record; storage failures are logged, never propagated
func (pc *PageCrawler) persist(ctx context.Context, page *models.Page) {
	if pc.storage == nil {
		return
	}
	if err := pc.storage.SavePage(ctx, page); err != nil {
		pc.logger.Error().
			Str("page_id", page.ID).
			Str("url", page.URL).
			Err(err).
			Msg("Failed to persist page record")
	}
}
