package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	folio "github.com/prasetyo/folio"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "test.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testBook(id, title string) folio.Book {
	now := folio.NowUnix()
	return folio.Book{ID: id, Title: title, Author: "Tester", Status: folio.StatusNotStarted, CreatedAt: now, UpdatedAt: now}
}

func testPages(n int) []folio.PageContent {
	pages := make([]folio.PageContent, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, folio.PageContent{
			PageNumber: i,
			Blocks: []folio.ContentBlock{{
				Type:    folio.BlockParagraph,
				Content: "page body text",
				Order:   0,
			}},
			TextContent: "page body text",
			ExtractedAt: time.Now().UTC(),
		})
	}
	return pages
}

func TestInitIdempotent(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "init.db"))
	defer s.Close()
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("second Init: %v", err)
	}
}

func TestSaveAndGetBook(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	book := testBook(folio.NewID(), "Moby Dick")
	if err := s.SaveBook(ctx, book); err != nil {
		t.Fatalf("SaveBook: %v", err)
	}

	got, err := s.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Moby Dick" || got.Author != "Tester" || got.Status != folio.StatusNotStarted {
		t.Errorf("got %+v", got)
	}

	// Upsert: saving again replaces metadata.
	book.Title = "Moby-Dick; or, The Whale"
	book.TotalPages = 5
	if err := s.SaveBook(ctx, book); err != nil {
		t.Fatalf("SaveBook upsert: %v", err)
	}
	got, _ = s.GetBook(ctx, book.ID)
	if got.Title != "Moby-Dick; or, The Whale" || got.TotalPages != 5 {
		t.Errorf("after upsert: %+v", got)
	}
}

func TestGetBookNotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetBook(context.Background(), "missing"); !errors.Is(err, folio.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateBookStatus(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	book := testBook(folio.NewID(), "A")
	s.SaveBook(ctx, book)

	if err := s.UpdateBookStatus(ctx, book.ID, folio.StatusCompleted); err != nil {
		t.Fatalf("UpdateBookStatus: %v", err)
	}
	got, _ := s.GetBook(ctx, book.ID)
	if got.Status != folio.StatusCompleted {
		t.Errorf("status = %q", got.Status)
	}

	if err := s.UpdateBookStatus(ctx, "missing", folio.StatusFailed); !errors.Is(err, folio.ErrNotFound) {
		t.Errorf("missing book err = %v, want ErrNotFound", err)
	}
}

func TestListBooksNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := testBook("a", "First")
	a.CreatedAt = 1000
	b := testBook("b", "Second")
	b.CreatedAt = 2000
	s.SaveBook(ctx, a)
	s.SaveBook(ctx, b)

	books, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 2 || books[0].ID != "b" || books[1].ID != "a" {
		t.Errorf("books = %+v", books)
	}
}

func TestSaveAndGetPages(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	bookID := folio.NewID()

	pages := testPages(3)
	pages[1].Blocks = append(pages[1].Blocks, folio.ContentBlock{
		Type: folio.BlockImage, Src: "file:///img.jpg", Alt: "Image from page 2",
		Bounds: folio.ContentBounds{Width: 10, Height: 10}, Order: folio.ImageOrderBase,
	})
	pages[1].HasImages = true

	if err := s.SavePages(ctx, bookID, pages); err != nil {
		t.Fatalf("SavePages: %v", err)
	}

	got, err := s.GetPages(ctx, bookID)
	if err != nil {
		t.Fatalf("GetPages: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d pages", len(got))
	}
	for i, p := range got {
		if p.PageNumber != i+1 {
			t.Errorf("page %d number = %d", i, p.PageNumber)
		}
	}
	if !got[1].HasImages || len(got[1].Blocks) != 2 {
		t.Errorf("page 2 = %+v", got[1])
	}
	if got[1].Blocks[1].Type != folio.BlockImage || got[1].Blocks[1].Src != "file:///img.jpg" {
		t.Errorf("image block round-trip = %+v", got[1].Blocks[1])
	}
	if got[0].ExtractedAt.IsZero() {
		t.Error("ExtractedAt lost in round-trip")
	}
}

func TestSavePagesReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	bookID := "book-1"

	if err := s.SavePages(ctx, bookID, testPages(5)); err != nil {
		t.Fatal(err)
	}
	if err := s.SavePages(ctx, bookID, testPages(2)); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPages(ctx, bookID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d pages after replace, want 2", len(got))
	}
}

func TestSearchPages(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	pages := []folio.PageContent{
		{PageNumber: 1, Blocks: []folio.ContentBlock{}, TextContent: "the white whale surfaced", ExtractedAt: time.Now()},
		{PageNumber: 2, Blocks: []folio.ContentBlock{}, TextContent: "nothing relevant here", ExtractedAt: time.Now()},
		{PageNumber: 3, Blocks: []folio.ContentBlock{}, TextContent: "the whale returned again", ExtractedAt: time.Now()},
	}
	if err := s.SavePages(ctx, "book-1", pages); err != nil {
		t.Fatal(err)
	}
	other := []folio.PageContent{
		{PageNumber: 1, Blocks: []folio.ContentBlock{}, TextContent: "a whale in another book", ExtractedAt: time.Now()},
	}
	if err := s.SavePages(ctx, "book-2", other); err != nil {
		t.Fatal(err)
	}

	matches, err := s.SearchPages(ctx, "book-1", "whale", 10)
	if err != nil {
		t.Fatalf("SearchPages: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	for _, m := range matches {
		if m.BookID != "book-1" {
			t.Errorf("match from wrong book: %+v", m)
		}
	}

	all, err := s.SearchPages(ctx, "", "whale", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("library-wide search got %d matches, want 3", len(all))
	}
}

func TestDeleteBook(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	book := testBook("b1", "Doomed")
	s.SaveBook(ctx, book)
	s.SavePages(ctx, "b1", testPages(2))

	if err := s.DeleteBook(ctx, "b1"); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if _, err := s.GetBook(ctx, "b1"); !errors.Is(err, folio.ErrNotFound) {
		t.Errorf("book still present: %v", err)
	}
	pages, err := s.GetPages(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 0 {
		t.Errorf("%d pages survived delete", len(pages))
	}
	if matches, _ := s.SearchPages(ctx, "", "page", 10); len(matches) != 0 {
		t.Errorf("%d fts rows survived delete", len(matches))
	}
}
