package models

import (
	"time"
)

// PageStatus represents the lifecycle state of a crawled page
type PageStatus string

const (
	PageStatusPending   PageStatus = "pending"
	PageStatusCrawling  PageStatus = "crawling"
	PageStatusCompleted PageStatus = "completed"
	PageStatusError     PageStatus = "error"
)

// Page represents the structured result of crawling a single URL.
//
// Invariant: exactly one of the two terminal shapes holds —
// Status == completed with Content populated and Error empty, or
// Status == error with Error populated and Content empty.
// CrawledAt is set once, when the record reaches either terminal state.
type Page struct {
	ID        string     `json:"id"` // page_{uuid}
	URL       string     `json:"url"`
	Title     string     `json:"title"`      // <=200 chars, "Untitled Page" fallback
	Content   string     `json:"content"`    // cleaned main-body text, <=15000 chars
	Summary   string     `json:"summary"`    // <=300 chars plus terminal period/ellipsis
	WordCount int        `json:"word_count"` // non-negative
	Status    PageStatus `json:"status"`
	CrawledAt time.Time  `json:"crawled_at,omitempty"`
	// Error contains a concise description of why the crawl failed.
	// Only populated when Status is 'error'.
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCompleted reports whether the page reached the completed terminal state.
func (p *Page) IsCompleted() bool {
	return p.Status == PageStatusCompleted
}

// PageUpdate is a partial update applied to a stored page.
// Nil fields are left untouched; last write wins per field.
type PageUpdate struct {
	Title     *string     `json:"title,omitempty"`
	Content   *string     `json:"content,omitempty"`
	Summary   *string     `json:"summary,omitempty"`
	WordCount *int        `json:"word_count,omitempty"`
	Status    *PageStatus `json:"status,omitempty"`
	Error     *string     `json:"error,omitempty"`
}

// Apply merges the non-nil fields of the update into the page.
func (u *PageUpdate) Apply(p *Page) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Summary != nil {
		p.Summary = *u.Summary
	}
	if u.WordCount != nil {
		p.WordCount = *u.WordCount
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Error != nil {
		p.Error = *u.Error
	}
}
