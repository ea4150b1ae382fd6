package interfaces

import "github.com/ternarybob/lustro/internal/models"

// PDFService renders stored page records to PDF
type PDFService interface {
	// RenderPage renders a page record to a PDF byte slice
	RenderPage(page *models.Page) ([]byte, error)
}
