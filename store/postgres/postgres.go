// Package postgres implements folio.Store using PostgreSQL with
// tsvector/GIN full-text search over page text.
//
// Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool; Close here is a
// no-op kept for the folio.Store contract.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	folio "github.com/prasetyo/folio"
)

// Store implements folio.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ folio.Store = (*Store)(nil)

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Init creates all required tables and indexes.
// Safe to call multiple times (all statements are idempotent).
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			total_pages INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'not-started',
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS book_pages (
			book_id TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			content JSONB NOT NULL,
			text_content TEXT NOT NULL,
			has_images BOOLEAN NOT NULL DEFAULT FALSE,
			extracted_at TIMESTAMPTZ NOT NULL,
			updated_at BIGINT NOT NULL,
			PRIMARY KEY (book_id, page_number)
		)`,
		`CREATE INDEX IF NOT EXISTS book_pages_fts_idx ON book_pages USING gin(to_tsvector('english', text_content))`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}
	return nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *Store) Close() error { return nil }

// SaveBook inserts or fully replaces a book's metadata row.
func (s *Store) SaveBook(ctx context.Context, book folio.Book) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO books (id, title, author, total_pages, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			total_pages = EXCLUDED.total_pages,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		book.ID, book.Title, book.Author, book.TotalPages, string(book.Status), book.CreatedAt, book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save book: %w", err)
	}
	return nil
}

// GetBook returns a book by id, or folio.ErrNotFound.
func (s *Store) GetBook(ctx context.Context, id string) (folio.Book, error) {
	var b folio.Book
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, author, total_pages, status, created_at, updated_at FROM books WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.TotalPages, &status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return folio.Book{}, folio.ErrNotFound
	}
	if err != nil {
		return folio.Book{}, fmt.Errorf("get book: %w", err)
	}
	b.Status = folio.TranscriptionStatus(status)
	return b, nil
}

// ListBooks returns all books, newest first.
func (s *Store) ListBooks(ctx context.Context) ([]folio.Book, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, author, total_pages, status, created_at, updated_at FROM books ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []folio.Book
	for rows.Next() {
		var b folio.Book
		var status string
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.TotalPages, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.Status = folio.TranscriptionStatus(status)
		books = append(books, b)
	}
	return books, rows.Err()
}

// DeleteBook removes a book and its pages.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM book_pages WHERE book_id = $1`, id); err != nil {
		return fmt.Errorf("delete pages: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return tx.Commit(ctx)
}

// UpdateBookStatus sets the transcription status on a book's metadata row.
func (s *Store) UpdateBookStatus(ctx context.Context, id string, status folio.TranscriptionStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE books SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), folio.NowUnix(), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return folio.ErrNotFound
	}
	return nil
}

// SavePages replaces a book's page content wholesale in one transaction.
// A transcription run produces the full page set, so there is no partial
// update path.
func (s *Store) SavePages(ctx context.Context, bookID string, pages []folio.PageContent) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save pages: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM book_pages WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("clear pages: %w", err)
	}

	now := folio.NowUnix()
	for _, p := range pages {
		blocksJSON, err := json.Marshal(p.Blocks)
		if err != nil {
			return fmt.Errorf("marshal page %d blocks: %w", p.PageNumber, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO book_pages (book_id, page_number, content, text_content, has_images, extracted_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			bookID, p.PageNumber, blocksJSON, p.TextContent, p.HasImages, p.ExtractedAt.UTC(), now)
		if err != nil {
			return fmt.Errorf("insert page %d: %w", p.PageNumber, err)
		}
	}
	return tx.Commit(ctx)
}

// GetPages returns a book's page content ordered by page number.
func (s *Store) GetPages(ctx context.Context, bookID string) ([]folio.PageContent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT page_number, content, text_content, has_images, extracted_at
		 FROM book_pages WHERE book_id = $1 ORDER BY page_number`, bookID)
	if err != nil {
		return nil, fmt.Errorf("get pages: %w", err)
	}
	defer rows.Close()

	var pages []folio.PageContent
	for rows.Next() {
		var p folio.PageContent
		var blocksJSON []byte
		var extractedAt time.Time
		if err := rows.Scan(&p.PageNumber, &blocksJSON, &p.TextContent, &p.HasImages, &extractedAt); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		if err := json.Unmarshal(blocksJSON, &p.Blocks); err != nil {
			return nil, fmt.Errorf("unmarshal page %d blocks: %w", p.PageNumber, err)
		}
		p.ExtractedAt = extractedAt
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// SearchPages performs full-text search over page text using
// tsvector/tsquery against the GIN index from Init, with ts_headline
// snippets. An empty bookID searches every book. Results order by
// ts_rank descending.
func (s *Store) SearchPages(ctx context.Context, bookID, query string, limit int) ([]folio.PageMatch, error) {
	if limit <= 0 {
		limit = 20
	}

	q := `SELECT book_id, page_number,
	             ts_headline('english', text_content, plainto_tsquery('english', $1), 'MaxWords=24, StartSel=, StopSel=')
	      FROM book_pages
	      WHERE to_tsvector('english', text_content) @@ plainto_tsquery('english', $1)`
	args := []any{query}
	if bookID != "" {
		q += ` AND book_id = $2`
		args = append(args, bookID)
	}
	q += fmt.Sprintf(` ORDER BY ts_rank(to_tsvector('english', text_content), plainto_tsquery('english', $1)) DESC LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, q, args...)
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
	return matches, rows.Err()
}
