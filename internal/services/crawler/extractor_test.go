package crawler

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse test HTML: %v", err)
	}
	return doc
}

func newTestExtractor() *ContentExtractor {
	return NewContentExtractor(testCrawlerConfig(), arbor.NewLogger())
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "Title tag wins",
			html:     `<html><head><title>Page Title</title></head><body><h1>Heading</h1></body></html>`,
			expected: "Page Title",
		},
		{
			name:     "Falls back to h1",
			html:     `<html><head></head><body><h1>Heading Title</h1></body></html>`,
			expected: "Heading Title",
		},
		{
			name:     "Falls back to og:title",
			html:     `<html><head><meta property="og:title" content="OG Title"></head><body></body></html>`,
			expected: "OG Title",
		},
		{
			name:     "Falls back to meta title",
			html:     `<html><head><meta name="title" content="Meta Title"></head><body></body></html>`,
			expected: "Meta Title",
		},
		{
			name:     "No title sources",
			html:     `<html><head></head><body><p>Just text</p></body></html>`,
			expected: "Untitled Page",
		},
		{
			name:     "Whitespace-only title falls through",
			html:     `<html><head><title>   </title></head><body><h1>Real Title</h1></body></html>`,
			expected: "Real Title",
		},
	}

	extractor := newTestExtractor()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.html)
			if got := extractor.ExtractTitle(doc); got != tt.expected {
				t.Errorf("Expected title %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractTitleTruncation(t *testing.T) {
	long := strings.Repeat("a", 500)
	doc := parseDoc(t, "<html><head><title>"+long+"</title></head><body></body></html>")

	got := newTestExtractor().ExtractTitle(doc)
	if len(got) != maxTitleChars {
		t.Errorf("Expected title capped at %d chars, got %d", maxTitleChars, len(got))
	}
}

func TestExtractContentPrefersMainContainer(t *testing.T) {
	body := strings.Repeat("Relevant article text. ", 10)
	html := `<html><body>
		<nav>Navigation junk that should vanish</nav>
		<main>` + body + `</main>
		<footer>Footer junk</footer>
	</body></html>`

	content := newTestExtractor().ExtractContent(parseDoc(t, html))

	if !strings.Contains(content, "Relevant article text.") {
		t.Errorf("Expected main content, got %q", content)
	}
	if strings.Contains(content, "Navigation junk") || strings.Contains(content, "Footer junk") {
		t.Errorf("Expected noise elements removed, got %q", content)
	}
}

func TestExtractContentFallsBackToBody(t *testing.T) {
	// No container exceeds the 100-char threshold, so the full body wins
	html := `<html><body><main>Hello world. This works.</main></body></html>`

	content := newTestExtractor().ExtractContent(parseDoc(t, html))
	if content != "Hello world. This works." {
		t.Errorf("Expected body fallback content, got %q", content)
	}
}

func TestExtractContentStripsScriptsAndBoilerplate(t *testing.T) {
	body := strings.Repeat("Real content sentence here. ", 10)
	html := `<html><body><article>
		Skip to main content
		<script>var x = "script payload";</script>
		<style>.c { color: red }</style>
		` + body + `
	</article></body></html>`

	content := newTestExtractor().ExtractContent(parseDoc(t, html))

	if strings.Contains(content, "script payload") || strings.Contains(content, "color: red") {
		t.Errorf("Expected scripts and styles removed, got %q", content)
	}
	if strings.Contains(strings.ToLower(content), "skip to main content") {
		t.Errorf("Expected boilerplate phrase stripped, got %q", content)
	}
}

func TestExtractContentTruncation(t *testing.T) {
	body := strings.Repeat("word ", 10000)
	html := `<html><body><main>` + body + `</main></body></html>`

	limit := testCrawlerConfig().MaxContentChars
	content := newTestExtractor().ExtractContent(parseDoc(t, html))
	if len(content) > limit {
		t.Errorf("Expected content capped at %d chars, got %d", limit, len(content))
	}
}

func TestExtractContentHonorsConfiguredCap(t *testing.T) {
	cfg := testCrawlerConfig()
	cfg.MaxContentChars = 60
	extractor := NewContentExtractor(cfg, arbor.NewLogger())

	body := strings.Repeat("Lots of article text here. ", 20)
	html := `<html><body><main>` + body + `</main></body></html>`

	content := extractor.ExtractContent(parseDoc(t, html))
	if utf8.RuneCountInString(content) != 60 {
		t.Errorf("Expected content capped at 60 chars, got %d", utf8.RuneCountInString(content))
	}
}

func TestTruncationPreservesMultibyteRunes(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("héllo wörld ", 100))
	doc := parseDoc(t, "<html><head><title>"+long+"</title></head><body></body></html>")

	title := newTestExtractor().ExtractTitle(doc)
	if !utf8.ValidString(title) {
		t.Errorf("Expected valid UTF-8 title after truncation, got %q", title)
	}
	if n := utf8.RuneCountInString(title); n != maxTitleChars {
		t.Errorf("Expected title capped at %d runes, got %d", maxTitleChars, n)
	}

	summary := newTestExtractor().Summarize(strings.Repeat("ü", 400))
	if !utf8.ValidString(summary) {
		t.Errorf("Expected valid UTF-8 summary after truncation, got %q", summary)
	}
	if !strings.HasSuffix(summary, "...") {
		t.Errorf("Expected ellipsis suffix, got %q", summary)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(summary, "...")); n != maxSummaryChars {
		t.Errorf("Expected summary capped at %d runes, got %d", maxSummaryChars, n)
	}
}

func TestSummarize(t *testing.T) {
	extractor := newTestExtractor()

	t.Run("Uses qualifying fragments only", func(t *testing.T) {
		content := "Short. This is sentence two which is long enough. Another long enough sentence here. A fourth one."
		summary := extractor.Summarize(content)

		expected := "This is sentence two which is long enough. Another long enough sentence here."
		if summary != expected {
			t.Errorf("Expected summary %q, got %q", expected, summary)
		}
	})

	t.Run("Caps at three fragments", func(t *testing.T) {
		content := "This is the first long sentence of them all. Here comes the second long sentence now. And a third long sentence follows it. A fourth long sentence must not appear."
		summary := extractor.Summarize(content)

		if strings.Contains(summary, "fourth") {
			t.Errorf("Expected at most 3 fragments, got %q", summary)
		}
		if !strings.HasSuffix(summary, ".") {
			t.Errorf("Expected terminal period, got %q", summary)
		}
	})

	t.Run("Truncates long summaries with ellipsis", func(t *testing.T) {
		content := strings.Repeat("x", 400) + ". " + strings.Repeat("y", 400) + "."
		summary := extractor.Summarize(content)

		if len(summary) != maxSummaryChars+3 {
			t.Errorf("Expected %d chars plus ellipsis, got %d", maxSummaryChars, len(summary))
		}
		if !strings.HasSuffix(summary, "...") {
			t.Errorf("Expected ellipsis suffix, got %q", summary)
		}
	})

	t.Run("Short content falls back to itself", func(t *testing.T) {
		summary := extractor.Summarize("Hello world. This works.")
		if summary == "" {
			t.Error("Expected non-empty summary for short content")
		}
		if !strings.HasSuffix(summary, ".") {
			t.Errorf("Expected terminal period, got %q", summary)
		}
	})

	t.Run("Empty content yields empty summary", func(t *testing.T) {
		if summary := extractor.Summarize(""); summary != "" {
			t.Errorf("Expected empty summary, got %q", summary)
		}
	})
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"Simple sentence", "Hello world. This works.", 4},
		{"Leading and trailing spaces", "  Hello   world  ", 2},
		{"Empty string", "", 0},
		{"Whitespace only", "   \t\n  ", 0},
		{"Mixed whitespace", "one\ttwo\nthree four", 4},
	}

	extractor := newTestExtractor()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractor.WordCount(tt.text); got != tt.expected {
				t.Errorf("Expected %d words, got %d", tt.expected, got)
			}
		})
	}
}
