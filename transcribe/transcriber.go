package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	folio "github.com/prasetyo/folio"
)

// Option configures a Transcriber.
type Option func(*Transcriber)

// WithImages toggles embedded-image extraction. Enabled by default.
func WithImages(enabled bool) Option {
	return func(t *Transcriber) { t.extractImages = enabled }
}

// WithPreserveLayout records the caller's layout preference. The current
// extraction heuristics do not consult it; the option is reserved so the
// knob stays part of the API.
func WithPreserveLayout(enabled bool) Option {
	return func(t *Transcriber) { t.preserveLayout = enabled }
}

// WithProgress sets the single progress observer for runs of this
// Transcriber. Events are delivered synchronously: once before the page
// loop, once after every page, once on completion.
func WithProgress(fn func(folio.TranscriptionProgress)) Option {
	return func(t *Transcriber) { t.onProgress = fn }
}

// WithLogger sets a structured logger. When set, page and image failures
// are logged with book/page context. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transcriber) { t.logger = l }
}

// Transcriber drives the page loop across a whole document, isolating
// per-page failures and producing one PageContent per page.
type Transcriber struct {
	sink           ImageSink
	extractImages  bool
	preserveLayout bool
	onProgress     func(folio.TranscriptionProgress)
	logger         *slog.Logger
}

// nopLogger discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Transcriber that uploads extracted images through sink.
// Pass a nil sink only with WithImages(false).
func New(sink ImageSink, opts ...Option) *Transcriber {
	t := &Transcriber{
		sink:           sink,
		extractImages:  true,
		preserveLayout: true,
		logger:         nopLogger,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Transcribe processes every page of doc in document order and returns one
// PageContent per page. A page whose extraction fails becomes an empty
// placeholder, so len(result) always equals doc.NumPages() on success; the
// only errors returned are context cancellation. Document-open failures
// happen before this call, in the accessor.
func (t *Transcriber) Transcribe(ctx context.Context, doc Document, bookID string) ([]folio.PageContent, error) {
	total := doc.NumPages()
	t.progress(folio.TranscriptionProgress{
		BookID: bookID, CurrentPage: 0, TotalPages: total, Status: folio.StatusProcessing,
	})

	pages := make([]folio.PageContent, 0, total)
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := t.transcribePage(ctx, doc, bookID, n)
		if err != nil {
			pageErr := &folio.ErrPageExtraction{PageNumber: n, Err: err}
			t.logger.Warn("transcribe: page failed, inserting placeholder",
				"book_id", bookID, "page", n, "error", pageErr)
			content = placeholderPage(n)
		}
		pages = append(pages, content)

		t.progress(folio.TranscriptionProgress{
			BookID: bookID, CurrentPage: n, TotalPages: total, Status: folio.StatusProcessing,
		})
	}

	t.progress(folio.TranscriptionProgress{
		BookID: bookID, CurrentPage: total, TotalPages: total, Status: folio.StatusCompleted,
	})
	return pages, nil
}

// transcribePage extracts one page's text and image blocks and assembles
// them. Any error here makes the whole page a placeholder; image-level
// failures are already absorbed inside extractImages.
func (t *Transcriber) transcribePage(ctx context.Context, doc Document, bookID string, n int) (folio.PageContent, error) {
	page, err := doc.Page(n)
	if err != nil {
		return folio.PageContent{}, fmt.Errorf("load page: %w", err)
	}

	runs, err := page.TextRuns(ctx)
	if err != nil {
		return folio.PageContent{}, fmt.Errorf("text runs: %w", err)
	}
	_, pageHeight := page.Size()
	textBlocks, plain := ReconstructText(runs, pageHeight)

	var imageBlocks []folio.ContentBlock
	if t.extractImages {
		imageBlocks, err = extractImages(ctx, page, bookID, t.sink, t.logger)
		if err != nil {
			return folio.PageContent{}, err
		}
	}

	return assemblePage(n, textBlocks, imageBlocks, plain), nil
}

// assemblePage merges a page's text and image blocks into the final
// PageContent. Orders never collide: text blocks use low integers, image
// blocks start at ImageOrderBase.
func assemblePage(pageNumber int, textBlocks, imageBlocks []folio.ContentBlock, plain string) folio.PageContent {
	blocks := make([]folio.ContentBlock, 0, len(textBlocks)+len(imageBlocks))
	blocks = append(blocks, textBlocks...)
	blocks = append(blocks, imageBlocks...)
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Order < blocks[j].Order })

	return folio.PageContent{
		PageNumber:  pageNumber,
		Blocks:      blocks,
		TextContent: plain,
		HasImages:   len(imageBlocks) > 0,
		ExtractedAt: time.Now().UTC(),
	}
}

// placeholderPage is substituted for a page whose extraction failed,
// preserving the run's total page count.
func placeholderPage(pageNumber int) folio.PageContent {
	return folio.PageContent{
		PageNumber:  pageNumber,
		Blocks:      []folio.ContentBlock{},
		TextContent: "",
		HasImages:   false,
		ExtractedAt: time.Now().UTC(),
	}
}

func (t *Transcriber) progress(p folio.TranscriptionProgress) {
	if t.onProgress != nil {
		t.onProgress(p)
	}
}

// ExtractTextOnly is the fast path for search indexing and TTS: text runs
// only, no images, no block structure. Pages are delimited with a literal
// "--- Page N ---" marker. Pages that fail to extract contribute only
// their marker.
func ExtractTextOnly(ctx context.Context, doc Document) (string, error) {
	var sb strings.Builder
	for n := 1; n <= doc.NumPages(); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "--- Page %d ---", n)

		page, err := doc.Page(n)
		if err != nil {
			continue
		}
		runs, err := page.TextRuns(ctx)
		if err != nil {
			continue
		}
		_, pageHeight := page.Size()
		if _, plain := ReconstructText(runs, pageHeight); plain != "" {
			sb.WriteByte('\n')
			sb.WriteString(plain)
		}
	}
	return sb.String(), nil
}
