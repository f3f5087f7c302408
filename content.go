package folio

import "time"

// BlockType identifies the kind of a content block.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockText      BlockType = "text"
	BlockImage     BlockType = "image"
)

// ImageOrderBase is the reading-order offset applied to image blocks.
// Text blocks on a page are ordered 0..n-1; image blocks are ordered
// ImageOrderBase+i so they always sort after the page's text. Downstream
// rendering relies on images trailing text, so this is a contract, not an
// implementation detail.
const ImageOrderBase = 1000

// ContentBounds is the position and size of a block in the page's
// top-left-origin coordinate space. PDF native space is bottom-left-origin;
// bounds are converted at extraction time. Width and height are approximate
// for text blocks (derived from run metrics, not true layout).
type ContentBounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ContentStyle carries optional styling hints for text blocks.
// FontWeight is a heuristic derived from font size, not a true weight
// reading. FontFamily, FontStyle and Color are reserved for future
// enrichment and left empty by the transcription core.
type ContentStyle struct {
	FontSize   int    `json:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
	FontFamily string `json:"fontFamily,omitempty"`
	FontStyle  string `json:"fontStyle,omitempty"`
	Color      string `json:"color,omitempty"`
}

// ContentBlock is one unit of structured page content. Type discriminates
// the union: heading/paragraph/text blocks carry Content and Style, image
// blocks carry Src and Alt. Every block has a page-unique Order that
// reflects intended reading order.
type ContentBlock struct {
	Type    BlockType     `json:"type"`
	Content string        `json:"content,omitempty"`
	Src     string        `json:"src,omitempty"`
	Alt     string        `json:"alt,omitempty"`
	Bounds  ContentBounds `json:"bounds"`
	Style   *ContentStyle `json:"style,omitempty"`
	Order   int           `json:"order"`
}

// IsText reports whether the block contributes to a page's plain text.
func (b ContentBlock) IsText() bool {
	return b.Type == BlockHeading || b.Type == BlockParagraph || b.Type == BlockText
}

// PageContent is the structured transcription of one page. Instances are
// created once per transcription run and never patched; re-transcription
// produces a new instance.
type PageContent struct {
	PageNumber  int            `json:"pageNumber"`
	Blocks      []ContentBlock `json:"blocks"`
	TextContent string         `json:"textContent"`
	HasImages   bool           `json:"hasImages"`
	ExtractedAt time.Time      `json:"extractedAt"`
}

// Empty reports whether the page is a placeholder produced after a failed
// extraction. Callers should fall back to rendering the rasterized page.
func (p PageContent) Empty() bool {
	return len(p.Blocks) == 0 && p.TextContent == ""
}

// BookContent is the full per-book transcription aggregate. For a completed
// run len(Pages) always equals TotalPages; failed pages are represented as
// empty placeholders, never omitted.
type BookContent struct {
	BookID     string              `json:"bookId"`
	Pages      []PageContent       `json:"pages"`
	TotalPages int                 `json:"totalPages"`
	Status     TranscriptionStatus `json:"status"`
}

// Book is the library metadata record for a stored book.
type Book struct {
	ID         string
	Title      string
	Author     string
	TotalPages int
	Status     TranscriptionStatus
	CreatedAt  int64
	UpdatedAt  int64
}

// TranscriptionStatus is the lifecycle state of a transcription run.
type TranscriptionStatus string

const (
	StatusNotStarted TranscriptionStatus = "not-started"
	StatusProcessing TranscriptionStatus = "processing"
	StatusCompleted  TranscriptionStatus = "completed"
	StatusFailed     TranscriptionStatus = "failed"
)

// TranscriptionProgress is an ephemeral event emitted while a run is in
// flight. It is observed by a progress callback and never persisted.
// Per-page failures do not surface here as StatusFailed; only a document
// that cannot be opened fails a run, and that is reported via the returned
// error, not a progress event.
type TranscriptionProgress struct {
	BookID      string
	CurrentPage int
	TotalPages  int
	Status      TranscriptionStatus
	Err         error
}

// SearchResult is one occurrence of a query within a page's text content.
// Position is the rune offset of the match in TextContent; Snippet holds
// up to 50 runes of context on each side, ellipsized when truncated.
type SearchResult struct {
	PageNumber int    `json:"pageNumber"`
	Snippet    string `json:"snippet"`
	Position   int    `json:"position"`
}
