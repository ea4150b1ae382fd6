// -----------------------------------------------------------------------
// Crawl Orchestrator - Discovery then sequential per-page crawling
// -----------------------------------------------------------------------

package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/common"
	"github.com/ternarybob/lustro/internal/interfaces"
	"github.com/ternarybob/lustro/internal/models"
)

// Orchestrator drives a crawl run: discovery, then strictly sequential
// per-page crawling with progress events after every step.
//
// Event ordering is guaranteed: {progress, [progress, page]xN, complete}
// on success, or the prefix of that sequence followed by a single error
// event on failure. Events are delivered synchronously to the sink and
// fanned out asynchronously to the event bus.
type Orchestrator struct {
	discoverer  *Discoverer
	pageCrawler *PageCrawler
	events      interfaces.EventService
	config      *common.CrawlerConfig
	logger      arbor.ILogger
}

// NewOrchestrator creates a new crawl orchestrator
func NewOrchestrator(discoverer *Discoverer, pageCrawler *PageCrawler, events interfaces.EventService, config *common.CrawlerConfig, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		discoverer:  discoverer,
		pageCrawler: pageCrawler,
		events:      events,
		config:      config,
		logger:      logger,
	}
}

// Run executes a full crawl from the seed URL. State machine:
// Discovering -> Crawling -> Completed, with Aborted reachable from either
// active state. A panic escaping the loop is recovered and reported as the
// run's final error event; the run never crashes its host.
func (o *Orchestrator) Run(ctx context.Context, seedURL string, sink interfaces.EventSink) (summary *models.CrawlSummary, err error) {
	started := time.Now()
	state := models.CrawlStateDiscovering

	defer func() {
		if r := recover(); r != nil {
			stack := common.GetStackTrace()
			o.logger.Error().
				Str("seed_url", seedURL).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", stack).
				Msg("Crawl run panicked")
			err = fmt.Errorf("crawl failed unexpectedly: %v", r)
			// The sink itself may be the panic source; a second panic
			// here must not escape the recovery
			func() {
				defer func() { _ = recover() }()
				o.emitError(ctx, sink, err)
			}()
			summary = nil
		}
	}()

	o.logger.Info().
		Str("seed_url", seedURL).
		Str("state", string(state)).
		Msg("Crawl run starting")

	urls, err := o.discoverer.Discover(ctx, seedURL)
	if err != nil {
		state = models.CrawlStateAborted
		o.logger.Warn().
			Str("seed_url", seedURL).
			Str("state", string(state)).
			Err(err).
			Msg("Crawl aborted during discovery")
		o.emitError(ctx, sink, err)
		return nil, err
	}

	total := len(urls)
	o.emit(ctx, sink, models.CrawlEvent{
		Type: models.CrawlEventProgress,
		Progress: &models.CrawlProgress{
			TotalURLs:     total,
			CompletedURLs: 0,
			CurrentURL:    seedURL,
		},
	})

	state = models.CrawlStateCrawling
	completed := 0

	for i, pageURL := range urls {
		if ctx.Err() != nil {
			state = models.CrawlStateAborted
			o.emitError(ctx, sink, ctx.Err())
			return nil, ctx.Err()
		}

		o.emit(ctx, sink, models.CrawlEvent{
			Type: models.CrawlEventProgress,
			Progress: &models.CrawlProgress{
				TotalURLs:     total,
				CompletedURLs: completed,
				CurrentURL:    pageURL,
			},
		})

		page := o.pageCrawler.CrawlOne(ctx, pageURL)
		completed++

		o.emit(ctx, sink, models.CrawlEvent{
			Type: models.CrawlEventPage,
			Page: page,
		})

		// Politeness delay between successive pages, cancellable
		if i < len(urls)-1 && o.config.PageDelay > 0 {
			select {
			case <-ctx.Done():
				state = models.CrawlStateAborted
				o.emitError(ctx, sink, ctx.Err())
				return nil, ctx.Err()
			case <-time.After(o.config.PageDelay):
			}
		}
	}

	state = models.CrawlStateCompleted
	result := &models.CrawlSummary{
		SeedURL:    seedURL,
		TotalPages: completed,
		Duration:   time.Since(started),
		FinishedAt: time.Now(),
	}

	o.emit(ctx, sink, models.CrawlEvent{
		Type:     models.CrawlEventComplete,
		Complete: result,
	})

	o.logger.Info().
		Str("seed_url", seedURL).
		Str("state", string(state)).
		Int("total_pages", completed).
		Dur("duration", result.Duration).
		Msg("Crawl run completed")

	return result, nil
}

// emit delivers an event to the sink synchronously and fans it out to the
// event bus without blocking the run
func (o *Orchestrator) emit(ctx context.Context, sink interfaces.EventSink, event models.CrawlEvent) {
	if sink != nil {
		sink(event)
	}

	if o.events != nil {
		busEvent := interfaces.Event{
			Type:    interfaces.EventType(event.Type),
			Payload: event,
		}
		common.SafeGo(o.logger, "publishCrawlEvent", func() {
			if err := o.events.Publish(ctx, busEvent); err != nil {
				o.logger.Warn().Err(err).Msg("Failed to publish crawl event")
			}
		})
	}
}

// emitError reports a run-fatal error exactly once
func (o *Orchestrator) emitError(ctx context.Context, sink interfaces.EventSink, err error) {
	o.emit(ctx, sink, models.CrawlEvent{
		Type:  models.CrawlEventError,
		Error: err.Error(),
	})
}
