// Package transcribe converts PDF documents into structured, reflowable
// page content: paragraphs and headings clustered from positioned text
// runs, plus embedded raster images re-encoded and uploaded to an image
// sink. It is the core pipeline behind the reader's "enhanced" text pages,
// full-text search, and text-to-speech.
//
// The pipeline consumes the Document/Page accessor interfaces defined here
// (implemented for real PDFs by the pdfdoc subpackage) so the heuristics
// stay testable against synthetic documents.
package transcribe

import "context"

// TextRun is one positioned glyph run from a page's content stream.
// X and Y are in PDF native space (bottom-left origin, unscaled page
// units); the reconstructor converts to top-left screen space. FontSize is
// the horizontal scale of the run's text matrix, an approximation of the
// rendered size.
type TextRun struct {
	Text     string
	X, Y     float64
	Width    float64
	Height   float64
	FontSize float64
	FontName string
}

// OperatorKind is the closed set of drawing operators the image extractor
// recognizes. Everything that does not paint a raster image maps to
// OpOther, which isolates the underlying library's operator encoding to
// the accessor implementation.
type OperatorKind int

const (
	OpOther OperatorKind = iota
	// OpPaintImage paints an image XObject whose stream decodes to a raw
	// pixel buffer (RGB or RGBA).
	OpPaintImage
	// OpPaintJPEG paints a DCT-encoded image XObject whose stream is
	// already a standalone JPEG.
	OpPaintJPEG
)

// Operator is one entry of a page's drawing-operator list, in painting
// order. Image holds the XObject resource name for paint operators and is
// empty for OpOther.
type Operator struct {
	Kind  OperatorKind
	Image string
}

// ImageObject is a resolved image XObject. For OpPaintImage operators Data
// is the decoded pixel buffer and Encoded is false; for OpPaintJPEG
// operators Data is the raw JPEG stream and Encoded is true.
type ImageObject struct {
	Data    []byte
	Width   int
	Height  int
	Encoded bool
}

// Page exposes one page of an open document. All accessor calls may hit
// the underlying parser lazily and are therefore fallible.
type Page interface {
	// Number returns the 1-based page number.
	Number() int
	// Size returns the page width and height in unscaled page units.
	Size() (width, height float64)
	// TextRuns returns the page's text runs in content-stream order.
	TextRuns(ctx context.Context) ([]TextRun, error)
	// Operators returns the page's drawing-operator list in painting order.
	Operators(ctx context.Context) ([]Operator, error)
	// ImageObject resolves an image XObject by resource name.
	ImageObject(ctx context.Context, name string) (ImageObject, error)
}

// Document is an open PDF exposed as a sequence of pages.
type Document interface {
	// NumPages returns the total page count.
	NumPages() int
	// Page returns the n-th page, 1-based.
	Page(n int) (Page, error)
	// Close releases parser resources. Pages must not be used after Close.
	Close() error
}

// ImageSink durably stores an extracted page image and returns a
// retrievable URL. Index is the zero-based extraction index within the
// page. Implementations must tolerate repeated and concurrent calls within
// a run; idempotency is not required. An error, or an empty URL, means the
// image contributes no block; the page's text is unaffected.
type ImageSink interface {
	UploadImage(ctx context.Context, data []byte, bookID string, pageNumber, index int) (string, error)
}

// ImageSinkFunc adapts a function to the ImageSink interface.
type ImageSinkFunc func(ctx context.Context, data []byte, bookID string, pageNumber, index int) (string, error)

func (f ImageSinkFunc) UploadImage(ctx context.Context, data []byte, bookID string, pageNumber, index int) (string, error) {
	return f(ctx, data, bookID, pageNumber, index)
}
