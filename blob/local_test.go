package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreUpload(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir)

	url, err := s.UploadImage(context.Background(), []byte("jpegdata"), "book-1", 3, 0)
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Errorf("url = %q, want file:// prefix", url)
	}

	path := filepath.Join(dir, "book-1", "page3-img0.jpg")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "jpegdata" {
		t.Errorf("stored data = %q", data)
	}
}

func TestLocalStoreBaseURL(t *testing.T) {
	s := NewLocalStore(t.TempDir(), WithBaseURL("https://media.example.com/books/"))

	url, err := s.UploadImage(context.Background(), []byte("x"), "b1", 1, 2)
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if url != "https://media.example.com/books/b1/page1-img2.jpg" {
		t.Errorf("url = %q", url)
	}
}

func TestLocalStoreOverwrite(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	ctx := context.Background()

	if _, err := s.UploadImage(ctx, []byte("first"), "b", 1, 0); err != nil {
		t.Fatal(err)
	}
	url, err := s.UploadImage(ctx, []byte("second"), "b", 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("data = %q, want re-uploaded content", data)
	}
}

func TestLocalStoreRejectsEmpty(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	if _, err := s.UploadImage(context.Background(), nil, "b", 1, 0); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestLocalStoreCancelled(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.UploadImage(ctx, []byte("x"), "b", 1, 0); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
