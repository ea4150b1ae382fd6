package events

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/interfaces"
	"github.com/ternarybob/lustro/internal/models"
)

func TestPublishSyncDeliversToSubscribers(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var delivered int64
	handler := func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt64(&delivered, 1)
		return nil
	}

	if err := service.Subscribe(interfaces.EventCrawlComplete, handler); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	event := interfaces.Event{
		Type: interfaces.EventCrawlComplete,
		Payload: models.CrawlEvent{
			Type:     models.CrawlEventComplete,
			Complete: &models.CrawlSummary{TotalPages: 3},
		},
	}

	if err := service.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("PublishSync failed: %v", err)
	}
	if atomic.LoadInt64(&delivered) != 1 {
		t.Errorf("Expected 1 delivery, got %d", delivered)
	}

	// Publishing a type with no subscribers is a no-op
	if err := service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventCrawlError}); err != nil {
		t.Errorf("Expected no error for unsubscribed type, got %v", err)
	}
}

func TestUnsubscribeRemovesHandler(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var delivered int64
	handler := func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt64(&delivered, 1)
		return nil
	}

	if err := service.Subscribe(interfaces.EventCrawlPage, handler); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := service.Unsubscribe(interfaces.EventCrawlPage, handler); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	if err := service.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventCrawlPage}); err != nil {
		t.Fatalf("PublishSync failed: %v", err)
	}
	if atomic.LoadInt64(&delivered) != 0 {
		t.Errorf("Expected no deliveries after unsubscribe, got %d", delivered)
	}

	// Unsubscribing again reports the handler as unknown
	if err := service.Unsubscribe(interfaces.EventCrawlPage, handler); err == nil {
		t.Error("Expected error unsubscribing a handler that is not registered")
	}
}

func TestSubscribeRejectsNilHandler(t *testing.T) {
	service := NewService(arbor.NewLogger())
	if err := service.Subscribe(interfaces.EventCrawlPage, nil); err == nil {
		t.Error("Expected error for nil handler")
	}
}

func TestLoggerSubscriberHandlesAllEventShapes(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(logger)

	if err := SubscribeLoggerToAllEvents(service, logger); err != nil {
		t.Fatalf("SubscribeLoggerToAllEvents failed: %v", err)
	}

	events := []interfaces.Event{
		{Type: interfaces.EventCrawlProgress, Payload: models.CrawlEvent{
			Type:     models.CrawlEventProgress,
			Progress: &models.CrawlProgress{TotalURLs: 5, CompletedURLs: 1, CurrentURL: "https://example.org"},
		}},
		{Type: interfaces.EventCrawlPage, Payload: models.CrawlEvent{
			Type: models.CrawlEventPage,
			Page: &models.Page{ID: "page_1", URL: "https://example.org", Status: models.PageStatusCompleted},
		}},
		{Type: interfaces.EventCrawlError, Payload: models.CrawlEvent{
			Type:  models.CrawlEventError,
			Error: "boom",
		}},
	}

	for _, event := range events {
		if err := service.PublishSync(context.Background(), event); err != nil {
			t.Errorf("PublishSync(%s) failed: %v", event.Type, err)
		}
	}
}
