package models

import (
	"encoding/json"
	"time"
)

// CrawlState represents the state of a crawl run
type CrawlState string

const (
	CrawlStateDiscovering CrawlState = "discovering"
	CrawlStateCrawling    CrawlState = "crawling"
	CrawlStateCompleted   CrawlState = "completed"
	CrawlStateAborted     CrawlState = "aborted"
)

// CrawlProgress is a point-in-time snapshot of a running crawl.
// TotalURLs is fixed after discovery; CompletedURLs counts pages that
// have reached a terminal record, successful or not.
type CrawlProgress struct {
	TotalURLs     int    `json:"total_urls"`
	CompletedURLs int    `json:"completed_urls"`
	CurrentURL    string `json:"current_url,omitempty"`
}

// CrawlRequest is the body of a crawl invocation
type CrawlRequest struct {
	URL string `json:"url"`
}

// CrawlEventType identifies the kind of a crawl event
type CrawlEventType string

const (
	CrawlEventProgress CrawlEventType = "crawl_progress"
	CrawlEventPage     CrawlEventType = "crawl_page"
	CrawlEventComplete CrawlEventType = "crawl_complete"
	CrawlEventError    CrawlEventType = "crawl_error"
)

// CrawlEvent is a single entry in a crawl's ordered event stream.
// Exactly one of Progress, Page, Complete, Error is set, matching Type.
type CrawlEvent struct {
	Type     CrawlEventType `json:"type"`
	Progress *CrawlProgress `json:"progress,omitempty"`
	Page     *Page          `json:"page,omitempty"`
	Complete *CrawlSummary  `json:"complete,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// CrawlSummary is the payload of a crawl_complete event
type CrawlSummary struct {
	SeedURL    string        `json:"seed_url"`
	TotalPages int           `json:"total_pages"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finished_at"`
}

// ToJSON serializes the event for transports that carry raw payloads
func (e *CrawlEvent) ToJSON() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
