package folio

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when a book does not exist.
var ErrNotFound = errors.New("folio: not found")

// PageMatch is one store-side full-text search hit.
type PageMatch struct {
	BookID     string
	PageNumber int
	Snippet    string
}

// Store persists the library: book metadata plus transcribed page content,
// one row per (book, page), with the page's plain text indexed for
// full-text search.
type Store interface {
	// --- Books ---
	SaveBook(ctx context.Context, book Book) error
	GetBook(ctx context.Context, id string) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	DeleteBook(ctx context.Context, id string) error
	UpdateBookStatus(ctx context.Context, id string, status TranscriptionStatus) error

	// --- Page content ---
	// SavePages replaces a book's transcription wholesale; page content is
	// immutable per run, so partial updates are never needed.
	SavePages(ctx context.Context, bookID string, pages []PageContent) error
	GetPages(ctx context.Context, bookID string) ([]PageContent, error)
	// SearchPages runs store-side full-text search over page text.
	// An empty bookID searches the whole library.
	SearchPages(ctx context.Context, bookID, query string, limit int) ([]PageMatch, error)

	// --- Lifecycle ---
	Init(ctx context.Context) error
	Close() error
}
