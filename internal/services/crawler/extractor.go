// -----------------------------------------------------------------------
// Content Extractor - Heuristic main-content extraction from HTML
// -----------------------------------------------------------------------

package crawler

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lustro/internal/common"
)

const (
	maxTitleChars   = 200
	maxSummaryChars = 300

	// Content-container candidates shorter than this are treated as
	// boilerplate shells and skipped in favor of the next selector.
	minContentChars = 100

	defaultTitle = "Untitled Page"
)

// noiseSelectors are removed from the document before content extraction
var noiseSelectors = []string{
	"script", "style", "noscript", "iframe",
	"nav", "header", "footer", "aside",
	".sidebar", "#sidebar",
	".menu", "#menu",
	".navigation", ".navbar",
	".ad", ".ads", ".advertisement",
	".social", ".share", ".social-share",
	".comments", "#comments", ".comment",
	".cookie-banner", ".popup",
}

// contentSelectors are tried in priority order; the first whose text
// exceeds minContentChars wins
var contentSelectors = []string{
	"main",
	"article",
	"[role='main']",
	".content",
	".main-content",
	".post-content",
	".entry-content",
	".article-content",
	".article-body",
	"#content",
	"#main",
	"#main-content",
	".container",
	".wrapper",
	"body",
}

// boilerplatePhrases are stripped from extracted content case-insensitively
var boilerplatePhrases = []string{
	"Skip to main content",
	"Skip to content",
	"Menu",
	"Search",
}

var (
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n+`)
)

// ContentExtractor derives cleaned text, title, summary, and word count
// from a parsed HTML document
type ContentExtractor struct {
	config *common.CrawlerConfig
	logger arbor.ILogger
}

// NewContentExtractor creates a new content extractor
func NewContentExtractor(config *common.CrawlerConfig, logger arbor.ILogger) *ContentExtractor {
	return &ContentExtractor{
		config: config,
		logger: logger,
	}
}

// ExtractTitle extracts the page title. Resolution order, first non-empty
// wins: <title> -> first <h1> -> og:title -> meta title -> "Untitled Page".
// The result is capped at 200 characters.
func (e *ContentExtractor) ExtractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return truncate(title, maxTitleChars)
	}

	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return truncate(h1, maxTitleChars)
	}

	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		if trimmed := strings.TrimSpace(ogTitle); trimmed != "" {
			return truncate(trimmed, maxTitleChars)
		}
	}

	if metaTitle, exists := doc.Find("meta[name='title']").Attr("content"); exists {
		if trimmed := strings.TrimSpace(metaTitle); trimmed != "" {
			return truncate(trimmed, maxTitleChars)
		}
	}

	return defaultTitle
}

// ExtractContent strips noise elements, then walks a priority list of
// content-container selectors and returns the first candidate with more
// than 100 characters of text. Falls back to the full body text when no
// candidate qualifies. The result is normalized and capped at the
// configured content limit.
func (e *ContentExtractor) ExtractContent(doc *goquery.Document) string {
	// Noise removal mutates the document; callers re-parse if they need
	// the original tree afterwards.
	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	var raw string
	for _, selector := range contentSelectors {
		candidate := doc.Find(selector).First()
		if candidate.Length() == 0 {
			continue
		}
		text := candidate.Text()
		if len(strings.TrimSpace(text)) > minContentChars {
			raw = text
			break
		}
	}

	if raw == "" {
		raw = doc.Find("body").Text()
	}

	cleaned := e.normalize(raw)
	return truncate(cleaned, e.config.MaxContentChars)
}

// normalize collapses whitespace and strips boilerplate phrases
func (e *ContentExtractor) normalize(text string) string {
	text = strings.ReplaceAll(text, "\t", " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n")

	for _, phrase := range boilerplatePhrases {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(phrase))
		if err != nil {
			continue
		}
		text = re.ReplaceAllString(text, "")
	}

	// Re-collapse whitespace opened up by phrase removal
	text = whitespaceRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	var kept []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}

	return strings.TrimSpace(strings.Join(kept, " "))
}

// Summarize builds a short summary: splits the content on sentence-ending
// punctuation, keeps fragments longer than 20 characters, and joins the
// first 3 with ". ". Results over 300 characters are truncated with an
// ellipsis; shorter results get a trailing period.
func (e *ContentExtractor) Summarize(text string) string {
	fragments := splitSentences(text)

	var qualified []string
	for _, fragment := range fragments {
		trimmed := strings.TrimSpace(fragment)
		if len(trimmed) > 20 {
			qualified = append(qualified, trimmed)
			if len(qualified) == 3 {
				break
			}
		}
	}

	summary := strings.TrimSpace(strings.Join(qualified, ". "))
	if summary == "" {
		// No fragment long enough; fall back to the content itself so
		// short pages still carry a summary
		summary = strings.TrimSpace(strings.TrimRight(text, ".!? "))
		if summary == "" {
			return ""
		}
	}

	if utf8.RuneCountInString(summary) > maxSummaryChars {
		return truncate(summary, maxSummaryChars) + "..."
	}
	return summary + "."
}

// WordCount counts whitespace-delimited non-empty tokens
func (e *ContentExtractor) WordCount(text string) int {
	return len(strings.Fields(text))
}

// splitSentences splits text on sentence-ending punctuation
func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}

// truncate caps a string at max runes. Cutting on a rune boundary keeps
// truncated multi-byte text valid UTF-8.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
