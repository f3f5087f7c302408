// Package blob provides image sinks for extracted page images.
//
// LocalStore is the only implementation shipped: it writes JPEGs under a
// root directory and returns URLs built from a configurable base, which is
// enough for a single-user reader serving its own media directory. Remote
// object stores can be plugged in by implementing transcribe.ImageSink.
package blob

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prasetyo/folio/transcribe"
)

// Option configures a LocalStore.
type Option func(*LocalStore)

// WithBaseURL sets the URL prefix for returned image URLs, e.g.
// "https://media.example.com/books". Without it, file:// URLs pointing at
// the stored files are returned.
func WithBaseURL(base string) Option {
	return func(s *LocalStore) { s.baseURL = strings.TrimRight(base, "/") }
}

// WithLogger sets a structured logger for upload operations.
func WithLogger(l *slog.Logger) Option {
	return func(s *LocalStore) { s.logger = l }
}

// LocalStore implements transcribe.ImageSink on the local filesystem.
// Files land at {root}/{bookID}/page{N}-img{I}.jpg. Uploads for the same
// (book, page, index) overwrite, so re-transcription does not accumulate
// stale files.
type LocalStore struct {
	root    string
	baseURL string
	logger  *slog.Logger
}

var _ transcribe.ImageSink = (*LocalStore)(nil)

// nopLogger discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// NewLocalStore creates a LocalStore rooted at dir. The directory is
// created on first upload, not here.
func NewLocalStore(dir string, opts ...Option) *LocalStore {
	s := &LocalStore{root: dir, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// UploadImage stores the encoded image and returns its URL. Safe for
// concurrent calls: each (book, page, index) triple maps to a distinct
// path and writes go through a temp file rename.
func (s *LocalStore) UploadImage(ctx context.Context, data []byte, bookID string, pageNumber, index int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	name := fmt.Sprintf("page%d-img%d.jpg", pageNumber, index)
	dir := filepath.Join(s.root, bookID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize image: %w", err)
	}

	url := s.url(bookID, name, path)
	s.logger.Debug("blob: image stored",
		"book_id", bookID, "page", pageNumber, "index", index, "bytes", len(data), "url", url)
	return url, nil
}

func (s *LocalStore) url(bookID, name, path string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + bookID + "/" + name
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}
