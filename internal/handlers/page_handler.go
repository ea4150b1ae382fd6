package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/interfaces"
	"github.com/ternarybob/lustro/internal/models"
)

// PageHandler handles stored page HTTP requests
type PageHandler struct {
	storage    interfaces.PageStorage
	pdfService interfaces.PDFService
	logger     arbor.ILogger
}

// NewPageHandler creates a new page handler
func NewPageHandler(storage interfaces.PageStorage, pdfService interfaces.PDFService, logger arbor.ILogger) *PageHandler {
	return &PageHandler{
		storage:    storage,
		pdfService: pdfService,
		logger:     logger,
	}
}

// ListPagesHandler handles GET /api/pages - lists stored page records
func (h *PageHandler) ListPagesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit, offset := GetListParams(r)

	pages, err := h.storage.ListPages(r.Context(), &interfaces.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list pages")
		WriteError(w, http.StatusInternalServerError, "Failed to list pages")
		return
	}

	total, err := h.storage.CountPages(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to count pages")
		WriteError(w, http.StatusInternalServerError, "Failed to count pages")
		return
	}

	h.logger.Debug().Int("count", len(pages)).Int("total", total).Msg("Listed pages")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pages":  pages,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// PageByIDHandler dispatches /api/pages/{id} and /api/pages/{id}/pdf by method
func (h *PageHandler) PageByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, isPDF := extractPageID(r.URL.Path)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing page id")
		return
	}

	if isPDF {
		h.exportPDF(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getPage(w, r, id)
	case http.MethodDelete:
		h.deletePage(w, r, id)
	case http.MethodPatch:
		h.updatePage(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PageHandler) getPage(w http.ResponseWriter, r *http.Request, id string) {
	page, err := h.storage.GetPage(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrPageNotFound) {
			WriteError(w, http.StatusNotFound, "Page not found")
			return
		}
		h.logger.Error().Err(err).Str("page_id", id).Msg("Failed to get page")
		WriteError(w, http.StatusInternalServerError, "Failed to retrieve page")
		return
	}

	WriteJSON(w, http.StatusOK, page)
}

func (h *PageHandler) deletePage(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.storage.DeletePage(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Str("page_id", id).Msg("Failed to delete page")
		WriteError(w, http.StatusInternalServerError, "Failed to delete page")
		return
	}

	h.logger.Debug().Str("page_id", id).Msg("Deleted page")
	WriteSuccess(w, "Page deleted successfully")
}

func (h *PageHandler) updatePage(w http.ResponseWriter, r *http.Request, id string) {
	var update models.PageUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse update request body")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.storage.UpdatePage(r.Context(), id, &update); err != nil {
		if errors.Is(err, interfaces.ErrPageNotFound) {
			WriteError(w, http.StatusNotFound, "Page not found")
			return
		}
		h.logger.Error().Err(err).Str("page_id", id).Msg("Failed to update page")
		WriteError(w, http.StatusInternalServerError, "Failed to update page")
		return
	}

	page, err := h.storage.GetPage(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("page_id", id).Msg("Failed to reload updated page")
		WriteError(w, http.StatusInternalServerError, "Failed to retrieve updated page")
		return
	}

	h.logger.Debug().Str("page_id", id).Msg("Updated page")
	WriteJSON(w, http.StatusOK, page)
}

// exportPDF handles GET /api/pages/{id}/pdf
func (h *PageHandler) exportPDF(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	page, err := h.storage.GetPage(r.Context(), id)
	if err != nil {
		if errors.Is(err, interfaces.ErrPageNotFound) {
			WriteError(w, http.StatusNotFound, "Page not found")
			return
		}
		h.logger.Error().Err(err).Str("page_id", id).Msg("Failed to get page for PDF export")
		WriteError(w, http.StatusInternalServerError, "Failed to retrieve page")
		return
	}

	pdfBytes, err := h.pdfService.RenderPage(page)
	if err != nil {
		h.logger.Error().Err(err).Str("page_id", id).Msg("Failed to render page PDF")
		WriteError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdfFilename(page)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)

	h.logger.Debug().Str("page_id", id).Int("pdf_size", len(pdfBytes)).Msg("Exported page PDF")
}

// extractPageID parses /api/pages/{id} and /api/pages/{id}/pdf paths
func extractPageID(path string) (id string, isPDF bool) {
	const prefix = "/api/pages/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}

	rest := strings.Trim(path[len(prefix):], "/")
	if suffix, ok := strings.CutSuffix(rest, "/pdf"); ok {
		return suffix, true
	}
	if strings.Contains(rest, "/") {
		return "", false
	}
	return rest, false
}

// pdfFilename derives a safe download filename from the page title
func pdfFilename(page *models.Page) string {
	name := strings.TrimSpace(page.Title)
	if name == "" {
		name = page.ID
	}

	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == ' ', c == '-', c == '_':
			b.WriteRune('-')
		}
	}

	safe := strings.Trim(b.String(), "-")
	if safe == "" {
		safe = page.ID
	}
	if len(safe) > 60 {
		safe = safe[:60]
	}
	return safe + ".pdf"
}
