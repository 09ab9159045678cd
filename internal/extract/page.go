// Package extract fetches web pages and turns them into classifier input
// and raw page signals.
package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Page is a parsed HTML document
type Page struct {
	URL   string
	Title string

	// Text is the visible text of the whole document
	Text string

	// ArticleText prefers <article> or <main> over the whole body
	ArticleText string

	// ScriptSources are the resolved src attributes of <script> elements
	ScriptSources []string
	Iframes       int
	AdSlots       int
}

// Parse parses htmlContent served from sourceURL
func Parse(htmlContent, sourceURL string) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parse source URL: %w", err)
	}

	page := &Page{
		URL:  sourceURL,
		Text: visibleText(doc),
	}

	if title := findFirst(doc, "title"); title != nil {
		page.Title = strings.TrimSpace(visibleText(title))
	}

	if main := findFirst(doc, "article", "main"); main != nil {
		page.ArticleText = visibleText(main)
	}
	if page.ArticleText == "" {
		if body := findFirst(doc, "body"); body != nil {
			page.ArticleText = visibleText(body)
		} else {
			page.ArticleText = page.Text
		}
	}

	collectSignals(doc, base, page)
	return page, nil
}

// ClassifierText returns the text to classify, bounded to MaxTextChars
func (p *Page) ClassifierText() string {
	text := p.ArticleText
	if p.Title != "" && !strings.HasPrefix(text, p.Title) {
		text = p.Title + ". " + text
	}
	return truncate(strings.TrimSpace(text), MaxTextChars)
}

// ExternalScripts counts scripts served from a host other than the page's
func (p *Page) ExternalScripts() int {
	base, err := url.Parse(p.URL)
	if err != nil {
		return 0
	}
	host := strings.ToLower(base.Hostname())

	count := 0
	for _, src := range p.ScriptSources {
		parsed, err := url.Parse(src)
		if err != nil {
			continue
		}
		if h := strings.ToLower(parsed.Hostname()); h != "" && h != host {
			count++
		}
	}
	return count
}

// Extractor fetches a page and returns its classifier text
type Extractor struct {
	fetcher *Fetcher
}

// NewExtractor creates an extractor over fetcher
func NewExtractor(fetcher *Fetcher) *Extractor {
	return &Extractor{fetcher: fetcher}
}

// FetchPage fetches and parses rawURL
func (e *Extractor) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	result, err := e.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return Parse(result.HTML, result.FinalURL)
}

// ExtractText returns the readable text of rawURL
func (e *Extractor) ExtractText(ctx context.Context, rawURL string) (string, error) {
	page, err := e.FetchPage(ctx, rawURL)
	if err != nil {
		return "", err
	}
	text := page.ClassifierText()
	if text == "" {
		return "", fmt.Errorf("no readable text found on %s", rawURL)
	}
	return text, nil
}
