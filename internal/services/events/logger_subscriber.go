package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/interfaces"
	"github.com/ternarybob/lustro/internal/models"
)

// NewLoggerSubscriber creates an event handler that logs crawl events
// with their milestone fields
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		logEvent := logger.Debug().Str("event_type", string(event.Type))

		if crawlEvent, ok := event.Payload.(models.CrawlEvent); ok {
			switch crawlEvent.Type {
			case models.CrawlEventProgress:
				if crawlEvent.Progress != nil {
					logEvent = logEvent.
						Int("total_urls", crawlEvent.Progress.TotalURLs).
						Int("completed_urls", crawlEvent.Progress.CompletedURLs).
						Str("current_url", crawlEvent.Progress.CurrentURL)
				}
			case models.CrawlEventPage:
				if crawlEvent.Page != nil {
					logEvent = logEvent.
						Str("page_id", crawlEvent.Page.ID).
						Str("url", crawlEvent.Page.URL).
						Str("status", string(crawlEvent.Page.Status))
				}
			case models.CrawlEventComplete:
				if crawlEvent.Complete != nil {
					logEvent = logEvent.Int("total_pages", crawlEvent.Complete.TotalPages)
				}
			case models.CrawlEventError:
				logEvent = logEvent.Str("error", crawlEvent.Error)
			}
		}

		logEvent.Msg("Crawl event published")
		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all known event types
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	eventTypes := []interfaces.EventType{
		interfaces.EventCrawlProgress,
		interfaces.EventCrawlPage,
		interfaces.EventCrawlComplete,
		interfaces.EventCrawlError,
	}

	for _, eventType := range eventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	return nil
}
