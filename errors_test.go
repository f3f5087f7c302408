package folio

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrDocumentOpen(t *testing.T) {
	inner := errors.New("not a PDF header")
	e := &ErrDocumentOpen{Source: "book.pdf", Err: inner}

	want := "open document book.pdf: not a PDF header"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(e, inner) {
		t.Error("expected ErrDocumentOpen to unwrap to the parse error")
	}
}

func TestErrDocumentOpenAs(t *testing.T) {
	var err error = fmt.Errorf("transcribe: %w", &ErrDocumentOpen{Source: "x", Err: errors.New("bad xref")})

	var openErr *ErrDocumentOpen
	if !errors.As(err, &openErr) {
		t.Fatal("errors.As should find ErrDocumentOpen through wrapping")
	}
	if openErr.Source != "x" {
		t.Errorf("source = %q", openErr.Source)
	}
}

func TestErrPageExtraction(t *testing.T) {
	inner := errors.New("content stream truncated")
	e := &ErrPageExtraction{PageNumber: 7, Err: inner}

	want := "page 7: content stream truncated"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(e, inner) {
		t.Error("expected ErrPageExtraction to unwrap to the extraction error")
	}
}
