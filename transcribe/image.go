package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"

	folio "github.com/prasetyo/folio"
)

// jpegQuality is the re-encode quality for extracted raster images.
const jpegQuality = 85

// extractImages walks the page's operator list, re-encodes every embedded
// raster it can decode, and uploads each through the sink. Failures are
// per-image: a broken or unsupported image is logged (or, for unexpected
// pixel-buffer sizes, silently skipped as an expected case) and never
// aborts the page. Only an unreadable operator list fails the page.
func extractImages(ctx context.Context, page Page, bookID string, sink ImageSink, logger *slog.Logger) ([]folio.ContentBlock, error) {
	ops, err := page.Operators(ctx)
	if err != nil {
		return nil, fmt.Errorf("operator list: %w", err)
	}

	pageNumber := page.Number()
	var blocks []folio.ContentBlock
	index := 0
	for _, op := range ops {
		if op.Kind != OpPaintImage && op.Kind != OpPaintJPEG {
			continue
		}
		block, ok := extractOne(ctx, page, op, bookID, pageNumber, index, sink, logger)
		index++
		if ok {
			blocks = append(blocks, block)
		}
	}
	return blocks, nil
}

func extractOne(ctx context.Context, page Page, op Operator, bookID string, pageNumber, index int, sink ImageSink, logger *slog.Logger) (folio.ContentBlock, bool) {
	obj, err := page.ImageObject(ctx, op.Image)
	if err != nil {
		logger.Warn("transcribe: resolve image failed",
			"book_id", bookID, "page", pageNumber, "image", op.Image, "error", err)
		return folio.ContentBlock{}, false
	}

	data := obj.Data
	if !obj.Encoded {
		img, ok := rawToRGBA(obj.Data, obj.Width, obj.Height)
		if !ok {
			// Buffer length matches neither RGBA nor RGB: an expected
			// unsupported pixel format (CMYK, indexed, 1-bit), not an error.
			return folio.ContentBlock{}, false
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			logger.Warn("transcribe: encode image failed",
				"book_id", bookID, "page", pageNumber, "image", op.Image, "error", err)
			return folio.ContentBlock{}, false
		}
		data = buf.Bytes()
	}

	url, err := sink.UploadImage(ctx, data, bookID, pageNumber, index)
	if err != nil {
		logger.Warn("transcribe: upload image failed",
			"book_id", bookID, "page", pageNumber, "index", index, "error", err)
		return folio.ContentBlock{}, false
	}
	if url == "" {
		// Sink declined the image; contribute no block.
		return folio.ContentBlock{}, false
	}

	return folio.ContentBlock{
		Type:   folio.BlockImage,
		Src:    url,
		Alt:    fmt.Sprintf("Image from page %d", pageNumber),
		Bounds: folio.ContentBounds{Width: float64(obj.Width), Height: float64(obj.Height)},
		Order:  folio.ImageOrderBase + index,
	}, true
}

// rawToRGBA interprets a decoded pixel buffer for a width×height image.
// A buffer of width*height*4 bytes is RGBA and passes through; one of
// width*height*3 bytes is RGB and gets full-opacity alpha inserted. Any
// other length is unsupported and rejected.
func rawToRGBA(data []byte, width, height int) (*image.RGBA, bool) {
	if width <= 0 || height <= 0 {
		return nil, false
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	switch len(data) {
	case width * height * 4:
		copy(img.Pix, data)
	case width * height * 3:
		for src, dst := 0, 0; src < len(data); src, dst = src+3, dst+4 {
			img.Pix[dst] = data[src]
			img.Pix[dst+1] = data[src+1]
			img.Pix[dst+2] = data[src+2]
			img.Pix[dst+3] = 0xFF
		}
	default:
		return nil, false
	}
	return img, true
}
