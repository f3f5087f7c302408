// Package sqlite implements folio.Store using pure-Go SQLite with an FTS5
// index over page text. Zero CGO required.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	folio "github.com/prasetyo/folio"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreOption configures a SQLite Store.
type StoreOption func(*Store)

// WithLogger sets a structured logger for the store.
// When set, the store emits debug logs for every operation including
// timing, row counts, and key parameters. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store implements folio.Store backed by a local SQLite file.
// Page blocks are stored as JSON; full-text search runs over an FTS5
// shadow table kept in sync with the page rows.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ folio.Store = (*Store)(nil)

// nopLogger is a logger that discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Store using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...StoreOption) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// DB exposes the underlying handle so callers can share the serialized
// connection.
func (s *Store) DB() *sql.DB { return s.db }

// Init creates all required tables and the FTS index.
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	s.logger.Debug("sqlite: init started")
	tables := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT,
			total_pages INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'not-started',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS book_pages (
			book_id TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			content TEXT NOT NULL,
			text_content TEXT NOT NULL,
			has_images INTEGER NOT NULL DEFAULT 0,
			extracted_at TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (book_id, page_number)
		)`,
	}
	for _, ddl := range tables {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(book_id UNINDEXED, page_number UNINDEXED, text_content)`)
	if err != nil {
		return fmt.Errorf("create fts table: %w", err)
	}

	s.logger.Debug("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// SaveBook inserts or fully replaces a book's metadata row.
func (s *Store) SaveBook(ctx context.Context, book folio.Book) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (id, title, author, total_pages, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			total_pages = excluded.total_pages,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		book.ID, book.Title, book.Author, book.TotalPages, string(book.Status), book.CreatedAt, book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	s.logger.Debug("sqlite: book saved", "book_id", book.ID, "duration", time.Since(start))
	return nil
}

// GetBook returns a book by id, or folio.ErrNotFound.
func (s *Store) GetBook(ctx context.Context, id string) (folio.Book, error) {
	var b folio.Book
	var status string
	var author sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, total_pages, status, created_at, updated_at FROM books WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &author, &b.TotalPages, &status, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return folio.Book{}, folio.ErrNotFound
	}
	if err != nil {
		return folio.Book{}, fmt.Errorf("get book: %w", err)
	}
	b.Author = author.String
	b.Status = folio.TranscriptionStatus(status)
	return b, nil
}

// ListBooks returns all books, newest first.
func (s *Store) ListBooks(ctx context.Context) ([]folio.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, author, total_pages, status, created_at, updated_at FROM books ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []folio.Book
	for rows.Next() {
		var b folio.Book
		var status string
		var author sql.NullString
		if err := rows.Scan(&b.ID, &b.Title, &author, &b.TotalPages, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.Author = author.String
		b.Status = folio.TranscriptionStatus(status)
		books = append(books, b)
	}
	return books, rows.Err()
}

// DeleteBook removes a book, its pages, and its FTS rows.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM pages_fts WHERE book_id = ?`,
		`DELETE FROM book_pages WHERE book_id = ?`,
		`DELETE FROM books WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateBookStatus sets the transcription status on a book's metadata row.
func (s *Store) UpdateBookStatus(ctx context.Context, id string, status folio.TranscriptionStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE books SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), folio.NowUnix(), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return folio.ErrNotFound
	}
	return nil
}

// SavePages replaces a book's page content wholesale in one transaction.
// A transcription run produces the full page set, so there is no partial
// update path.
func (s *Store) SavePages(ctx context.Context, bookID string, pages []folio.PageContent) error {
	start := time.Now()
	s.logger.Debug("sqlite: save pages", "book_id", bookID, "pages", len(pages))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save pages: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_pages WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("clear pages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pages_fts WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("clear pages fts: %w", err)
	}

	now := folio.NowUnix()
	for _, p := range pages {
		blocksJSON, err := json.Marshal(p.Blocks)
		if err != nil {
			return fmt.Errorf("marshal page %d blocks: %w", p.PageNumber, err)
		}
		hasImages := 0
		if p.HasImages {
			hasImages = 1
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO book_pages (book_id, page_number, content, text_content, has_images, extracted_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			bookID, p.PageNumber, string(blocksJSON), p.TextContent, hasImages,
			p.ExtractedAt.UTC().Format(time.RFC3339Nano), now)
		if err != nil {
			return fmt.Errorf("insert page %d: %w", p.PageNumber, err)
		}
		if p.TextContent != "" {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO pages_fts (book_id, page_number, text_content) VALUES (?, ?, ?)`,
				bookID, p.PageNumber, p.TextContent)
			if err != nil {
				return fmt.Errorf("insert page %d fts: %w", p.PageNumber, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save pages: %w", err)
	}
	s.logger.Debug("sqlite: save pages ok", "book_id", bookID, "pages", len(pages), "duration", time.Since(start))
	return nil
}

// GetPages returns a book's page content ordered by page number.
func (s *Store) GetPages(ctx context.Context, bookID string) ([]folio.PageContent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page_number, content, text_content, has_images, extracted_at
		 FROM book_pages WHERE book_id = ? ORDER BY page_number`, bookID)
	if err != nil {
		return nil, fmt.Errorf("get pages: %w", err)
	}
	defer rows.Close()

	var pages []folio.PageContent
	for rows.Next() {
		var p folio.PageContent
		var blocksJSON, extractedAt string
		var hasImages int
		if err := rows.Scan(&p.PageNumber, &blocksJSON, &p.TextContent, &hasImages, &extractedAt); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		if err := json.Unmarshal([]byte(blocksJSON), &p.Blocks); err != nil {
			return nil, fmt.Errorf("unmarshal page %d blocks: %w", p.PageNumber, err)
		}
		p.HasImages = hasImages != 0
		if t, err := time.Parse(time.RFC3339Nano, extractedAt); err == nil {
			p.ExtractedAt = t
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// SearchPages performs full-text search over page text using FTS5.
// An empty bookID searches every book. Results order by FTS5 rank.
func (s *Store) SearchPages(ctx context.Context, bookID, query string, limit int) ([]folio.PageMatch, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 20
	}

	q := `SELECT book_id, page_number, snippet(pages_fts, 2, '', '', '...', 24)
		FROM pages_fts WHERE text_content MATCH ?`
	args := []any{query}
	if bookID != "" {
		q += ` AND book_id = ?`
		args = append(args, bookID)
	}
	q += ` ORDER BY rank LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search pages: %w", err)
	}
	defer rows.Close()

	var matches []folio.PageMatch
	for rows.Next() {
		var m folio.PageMatch
		if err := rows.Scan(&m.BookID, &m.PageNumber, &m.Snippet); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	s.logger.Debug("sqlite: search pages ok", "query", query, "returned", len(matches), "duration", time.Since(start))
	return matches, rows.Err()
}
