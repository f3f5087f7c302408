// Package webarticle imports web pages as readable books. Article HTML is
// reduced to its readable text with readability extraction, then split into
// synthetic pages so the reader can paginate it like a transcribed PDF.
package webarticle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	folio "github.com/prasetyo/folio"
)

// ParagraphsPerPage is how many paragraphs a synthetic page holds.
const ParagraphsPerPage = 12

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Article is an imported web page, already paginated.
type Article struct {
	Title  string
	Byline string
	URL    string
	Pages  []folio.PageContent
}

// Content packages the article as a completed book aggregate.
func (a *Article) Content(bookID string) folio.BookContent {
	return folio.BookContent{
		BookID:     bookID,
		Pages:      a.Pages,
		TotalPages: len(a.Pages),
		Status:     folio.StatusCompleted,
	}
}

// Importer fetches URLs and converts them to articles.
type Importer struct {
	client *http.Client
	logger *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithClient replaces the default HTTP client.
func WithClient(c *http.Client) Option {
	return func(i *Importer) { i.client = c }
}

// WithLogger attaches a logger for fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(i *Importer) { i.logger = l }
}

// New creates an Importer with a 15-second timeout.
func New(opts ...Option) *Importer {
	i := &Importer{
		client: &http.Client{Timeout: 15 * time.Second},
		logger: slog.New(discardHandler{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import downloads a URL and converts it to a paginated article.
func (i *Importer) Import(ctx context.Context, rawURL string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; FolioReader/1.0)")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	i.logger.Debug("article fetched", "url", rawURL, "bytes", len(body))
	return FromHTML(string(body), rawURL)
}

// FromHTML extracts the readable content of an HTML document and splits it
// into synthetic pages. The article title, when present, opens the first
// page as a heading block.
func FromHTML(htmlContent, pageURL string) (*Article, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid article URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(htmlContent), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}

	paragraphs := splitParagraphs(article.TextContent)
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("no readable content at %s", pageURL)
	}

	title := strings.TrimSpace(article.Title)
	return &Article{
		Title:  title,
		Byline: strings.TrimSpace(article.Byline),
		URL:    pageURL,
		Pages:  paginate(title, paragraphs),
	}, nil
}

// splitParagraphs breaks extracted text on blank lines, collapsing internal
// whitespace per paragraph.
func splitParagraphs(text string) []string {
	var out []string
	for _, chunk := range strings.Split(text, "\n") {
		p := strings.Join(strings.Fields(chunk), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// paginate folds paragraphs into fixed-size pages. Pages are numbered from
// 1; the title becomes a heading block at the top of page 1.
func paginate(title string, paragraphs []string) []folio.PageContent {
	var pages []folio.PageContent
	now := time.Now().UTC()

	for start := 0; start < len(paragraphs); start += ParagraphsPerPage {
		end := start + ParagraphsPerPage
		if end > len(paragraphs) {
			end = len(paragraphs)
		}

		page := folio.PageContent{
			PageNumber:  len(pages) + 1,
			Blocks:      []folio.ContentBlock{},
			ExtractedAt: now,
		}
		if len(pages) == 0 && title != "" {
			page.Blocks = append(page.Blocks, folio.ContentBlock{
				Type:    folio.BlockHeading,
				Content: title,
				Order:   0,
			})
		}
		for _, p := range paragraphs[start:end] {
			page.Blocks = append(page.Blocks, folio.ContentBlock{
				Type:    folio.BlockParagraph,
				Content: p,
				Order:   len(page.Blocks),
			})
		}

		texts := make([]string, 0, len(page.Blocks))
		for _, b := range page.Blocks {
			texts = append(texts, b.Content)
		}
		page.TextContent = strings.Join(texts, "\n\n")

		pages = append(pages, page)
	}
	return pages
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
