package pdfdoc

import (
	"context"

	folio "github.com/prasetyo/folio"
	"github.com/prasetyo/folio/transcribe"
)

// TranscribeBytes opens a PDF from memory and runs a full transcription.
// It is the one-call entry point for callers that do not need to hold the
// document open.
func TranscribeBytes(ctx context.Context, data []byte, bookID string, sink transcribe.ImageSink, opts ...transcribe.Option) ([]folio.PageContent, error) {
	doc, err := Open(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return transcribe.New(sink, opts...).Transcribe(ctx, doc, bookID)
}

// ExtractText opens a PDF from memory and returns its page-delimited plain
// text without image extraction or block structure.
func ExtractText(ctx context.Context, data []byte) (string, error) {
	doc, err := Open(data)
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return transcribe.ExtractTextOnly(ctx, doc)
}
