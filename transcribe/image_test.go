package transcribe

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"testing"

	folio "github.com/prasetyo/folio"
)

func TestRawToRGBAFormats(t *testing.T) {
	w, h := 4, 2

	t.Run("rgba passes through", func(t *testing.T) {
		src := rgbaBuf(w, h)
		img, ok := rawToRGBA(src, w, h)
		if !ok {
			t.Fatal("rejected valid RGBA buffer")
		}
		if !bytes.Equal(img.Pix, src) {
			t.Error("RGBA buffer modified on passthrough")
		}
	})

	t.Run("rgb gains opaque alpha", func(t *testing.T) {
		src := make([]byte, w*h*3)
		for i := 0; i < len(src); i += 3 {
			src[i], src[i+1], src[i+2] = 1, 2, 3
		}
		img, ok := rawToRGBA(src, w, h)
		if !ok {
			t.Fatal("rejected valid RGB buffer")
		}
		if len(img.Pix) != w*h*4 {
			t.Fatalf("pix length = %d, want %d", len(img.Pix), w*h*4)
		}
		for i := 0; i < len(img.Pix); i += 4 {
			if img.Pix[i] != 1 || img.Pix[i+1] != 2 || img.Pix[i+2] != 3 {
				t.Fatalf("pixel %d = %v, want [1 2 3]", i/4, img.Pix[i:i+3])
			}
			if img.Pix[i+3] != 0xFF {
				t.Fatalf("pixel %d alpha = %d, want 255", i/4, img.Pix[i+3])
			}
		}
	})

	t.Run("other lengths rejected", func(t *testing.T) {
		for _, n := range []int{0, 1, w * h, w*h*3 - 1, w*h*4 + 1} {
			if _, ok := rawToRGBA(make([]byte, n), w, h); ok {
				t.Errorf("accepted buffer of length %d", n)
			}
		}
	})

	t.Run("zero dimensions rejected", func(t *testing.T) {
		if _, ok := rawToRGBA(nil, 0, 10); ok {
			t.Error("accepted zero width")
		}
	})
}

func TestExtractImagesUploadsAndOrders(t *testing.T) {
	page := &fakePage{
		number: 3, width: 612, height: 792,
		ops: []Operator{
			{Kind: OpOther},
			{Kind: OpPaintImage, Image: "Im0"},
			{Kind: OpOther},
			{Kind: OpPaintJPEG, Image: "Im1"},
		},
		images: map[string]ImageObject{
			"Im0": {Data: rgbaBuf(10, 10), Width: 10, Height: 10},
			"Im1": {Data: []byte("\xff\xd8jpegbytes"), Width: 32, Height: 16, Encoded: true},
		},
	}
	sink := &memorySink{}

	blocks, err := extractImages(context.Background(), page, "book-1", sink, nopLogger)
	if err != nil {
		t.Fatalf("extractImages: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}

	if blocks[0].Order != folio.ImageOrderBase || blocks[1].Order != folio.ImageOrderBase+1 {
		t.Errorf("orders = %d, %d", blocks[0].Order, blocks[1].Order)
	}
	for _, b := range blocks {
		if b.Type != folio.BlockImage {
			t.Errorf("type = %q", b.Type)
		}
		if b.Alt != "Image from page 3" {
			t.Errorf("alt = %q", b.Alt)
		}
		if b.Src == "" {
			t.Error("empty src")
		}
	}
	if blocks[0].Bounds.Width != 10 || blocks[0].Bounds.Height != 10 {
		t.Errorf("bounds = %+v", blocks[0].Bounds)
	}
	if blocks[0].Bounds.X != 0 || blocks[0].Bounds.Y != 0 {
		t.Errorf("image position should be zero, got %+v", blocks[0].Bounds)
	}

	if len(sink.calls) != 2 {
		t.Fatalf("sink called %d times, want 2", len(sink.calls))
	}
	// Raw pixels are re-encoded as JPEG before upload.
	if _, err := jpeg.Decode(bytes.NewReader(sink.calls[0].data)); err != nil {
		t.Errorf("first upload is not a valid JPEG: %v", err)
	}
	// Already-encoded streams pass through untouched.
	if !bytes.Equal(sink.calls[1].data, []byte("\xff\xd8jpegbytes")) {
		t.Error("encoded JPEG stream was modified")
	}
	if sink.calls[0].index != 0 || sink.calls[1].index != 1 {
		t.Errorf("indices = %d, %d", sink.calls[0].index, sink.calls[1].index)
	}
}

func TestExtractImagesSkipsFailures(t *testing.T) {
	page := &fakePage{
		number: 1, width: 612, height: 792,
		ops: []Operator{
			{Kind: OpPaintImage, Image: "Broken"},
			{Kind: OpPaintImage, Image: "Odd"},
			{Kind: OpPaintImage, Image: "Good"},
		},
		images: map[string]ImageObject{
			// Length matches neither RGB nor RGBA: expected unsupported case.
			"Odd":  {Data: make([]byte, 7), Width: 5, Height: 5},
			"Good": {Data: rgbaBuf(5, 5), Width: 5, Height: 5},
		},
		imageErr: map[string]error{"Broken": errors.New("bad xref")},
	}
	sink := &memorySink{}

	blocks, err := extractImages(context.Background(), page, "book-1", sink, nopLogger)
	if err != nil {
		t.Fatalf("extractImages: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	// Extraction index advances across skipped images, so the surviving
	// block keeps its painting position.
	if blocks[0].Order != folio.ImageOrderBase+2 {
		t.Errorf("order = %d, want %d", blocks[0].Order, folio.ImageOrderBase+2)
	}
}

func TestExtractImagesSinkFailure(t *testing.T) {
	page := &fakePage{
		number: 1, width: 612, height: 792,
		ops:    []Operator{{Kind: OpPaintImage, Image: "Im0"}},
		images: map[string]ImageObject{"Im0": {Data: rgbaBuf(2, 2), Width: 2, Height: 2}},
	}

	for _, sink := range []*memorySink{{failAll: true}, {decline: true}} {
		blocks, err := extractImages(context.Background(), page, "b", sink, nopLogger)
		if err != nil {
			t.Fatalf("extractImages: %v", err)
		}
		if len(blocks) != 0 {
			t.Errorf("sink failure should drop the block, got %d", len(blocks))
		}
	}
}
