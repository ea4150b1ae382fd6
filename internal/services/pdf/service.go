package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/interfaces"
	"github.com/ternarybob/lustro/internal/models"
)

// Service implements interfaces.PDFService
type Service struct {
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.PDFService = (*Service)(nil)

// NewService creates a new PDF service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// RenderPage renders a crawled page record as a PDF byte slice
func (s *Service) RenderPage(page *models.Page) ([]byte, error) {
	if page == nil {
		return nil, fmt.Errorf("page is required")
	}

	s.logger.Debug().
		Str("page_id", page.ID).
		Str("url", page.URL).
		Int("content_len", len(page.Content)).
		Msg("Rendering page to PDF")

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.SetTitle(page.Title, true)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")

	// Title
	doc.SetFont("Arial", "B", 16)
	doc.MultiCell(0, 8, tr(page.Title), "", "L", false)
	doc.Ln(2)

	// Source URL and metadata line
	doc.SetFont("Arial", "", 9)
	doc.SetTextColor(100, 100, 100)
	doc.MultiCell(0, 5, tr(page.URL), "", "L", false)
	meta := fmt.Sprintf("%d words", page.WordCount)
	if !page.CrawledAt.IsZero() {
		meta += " | crawled " + page.CrawledAt.Format("2006-01-02 15:04 MST")
	}
	doc.CellFormat(0, 5, tr(meta), "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)

	doc.Ln(2)
	doc.Line(15, doc.GetY(), 195, doc.GetY())
	doc.Ln(4)

	// Summary block, when present and distinct from the body
	if summary := strings.TrimSpace(page.Summary); summary != "" {
		doc.SetFont("Arial", "I", 10)
		doc.SetFillColor(245, 245, 245)
		doc.MultiCell(0, 5, tr(summary), "", "L", true)
		doc.SetFillColor(255, 255, 255)
		doc.Ln(4)
	}

	// Body content
	doc.SetFont("Arial", "", 10)
	if page.Status == models.PageStatusError && page.Error != "" {
		doc.SetTextColor(150, 30, 30)
		doc.MultiCell(0, 5, tr("Crawl failed: "+page.Error), "", "L", false)
		doc.SetTextColor(0, 0, 0)
	} else {
		for _, paragraph := range splitParagraphs(page.Content) {
			doc.MultiCell(0, 5, tr(paragraph), "", "L", false)
			doc.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		s.logger.Error().Err(err).Str("page_id", page.ID).Msg("Failed to generate PDF output")
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Str("page_id", page.ID).Msg("PDF generated successfully")
	return buf.Bytes(), nil
}

// splitParagraphs breaks extracted content into renderable chunks.
// Extracted content is whitespace-normalized, so paragraphs are
// approximated by splitting long text on sentence boundaries.
func splitParagraphs(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	if blocks := strings.Split(content, "\n"); len(blocks) > 1 {
		var out []string
		for _, block := range blocks {
			if block = strings.TrimSpace(block); block != "" {
				out = append(out, block)
			}
		}
		return out
	}

	return []string{content}
}
