package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Crawl
	mux.HandleFunc("/api/crawl", s.app.CrawlHandler.CrawlStreamHandler) // POST - crawl a site, stream events over SSE

	// API routes - Pages
	mux.HandleFunc("/api/pages/crawl", s.app.CrawlHandler.CrawlPageHandler) // POST - crawl a single URL
	mux.HandleFunc("/api/pages", s.app.PageHandler.ListPagesHandler)        // GET - list stored pages
	mux.HandleFunc("/api/pages/", s.app.PageHandler.PageByIDHandler)        // GET/PATCH/DELETE /{id}, GET /{id}/pdf

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
