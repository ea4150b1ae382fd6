package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/common"
	"github.com/ternarybob/lustro/internal/interfaces"
	"github.com/ternarybob/lustro/internal/models"
)

// CrawlHandler handles crawl HTTP requests
type CrawlHandler struct {
	crawlerService interfaces.CrawlerService
	config         *common.Config
	logger         arbor.ILogger
}

// NewCrawlHandler creates a new crawl handler
func NewCrawlHandler(crawlerService interfaces.CrawlerService, config *common.Config, logger arbor.ILogger) *CrawlHandler {
	return &CrawlHandler{
		crawlerService: crawlerService,
		config:         config,
		logger:         logger,
	}
}

// CrawlStreamHandler handles POST /api/crawl - runs a site crawl and streams
// progress over Server-Sent Events. Events arrive in crawl order: an initial
// progress event, then per-page progress and page pairs, then a single
// complete or error event.
func (h *CrawlHandler) CrawlStreamHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse crawl request body")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	seedURL := strings.TrimSpace(req.URL)
	if seedURL == "" {
		WriteError(w, http.StatusBadRequest, "URL is required")
		return
	}
	if !h.allowURL(w, seedURL) {
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Flush headers immediately to trigger the client's EventSource.onopen
	flusher.Flush()

	h.logger.Info().Str("url", seedURL).Msg("Starting crawl stream")

	// The sink is called synchronously from the crawl loop, so events are
	// written to the stream in the order they occur.
	sink := func(event models.CrawlEvent) {
		h.sendEvent(w, flusher, event)
	}

	summary, err := h.crawlerService.Crawl(r.Context(), seedURL, sink)
	if err != nil {
		// The failure was already delivered to the client as an error event
		h.logger.Warn().Err(err).Str("url", seedURL).Msg("Crawl finished with error")
		return
	}

	h.logger.Info().
		Str("url", seedURL).
		Int("total_pages", summary.TotalPages).
		Msg("Crawl stream completed")
}

// CrawlPageHandler handles POST /api/pages/crawl - crawls a single URL
// without discovery and returns the stored page record.
func (h *CrawlHandler) CrawlPageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.CrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse crawl request body")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pageURL := strings.TrimSpace(req.URL)
	if pageURL == "" {
		WriteError(w, http.StatusBadRequest, "URL is required")
		return
	}
	if !h.allowURL(w, pageURL) {
		return
	}

	page, err := h.crawlerService.CrawlOne(r.Context(), pageURL)
	if err != nil {
		h.logger.Error().Err(err).Str("url", pageURL).Msg("Single page crawl failed")
		WriteError(w, http.StatusInternalServerError, "Failed to crawl page")
		return
	}

	h.logger.Debug().
		Str("url", pageURL).
		Str("page_id", page.ID).
		Str("status", string(page.Status)).
		Msg("Single page crawl finished")

	WriteJSON(w, http.StatusOK, page)
}

// allowURL rejects local test URLs outside development mode. Writes the
// rejection response itself and reports whether the request may proceed.
func (h *CrawlHandler) allowURL(w http.ResponseWriter, rawURL string) bool {
	if common.IsTestURL(rawURL) && !h.config.AllowTestURLs() {
		h.logger.Warn().
			Str("url", rawURL).
			Str("environment", h.config.Environment).
			Msg("Test URL rejected in production mode")
		WriteError(w, http.StatusBadRequest, "Test URLs are not allowed in production mode")
		return false
	}
	return true
}

// sendEvent writes an SSE event to the response
func (h *CrawlHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, event models.CrawlEvent) {
	jsonData, err := event.ToJSON()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal SSE event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", event.Type)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}
