package folio

import "fmt"

// ErrDocumentOpen reports a PDF that could not be opened or parsed at all.
// This is the only error class that crosses the transcription boundary;
// everything below it degrades to placeholder pages.
type ErrDocumentOpen struct {
	Source string
	Err    error
}

func (e *ErrDocumentOpen) Error() string {
	return fmt.Sprintf("open document %s: %v", e.Source, e.Err)
}

func (e *ErrDocumentOpen) Unwrap() error { return e.Err }

// ErrPageExtraction reports a single page whose text or image extraction
// failed. The orchestrator converts it to an empty placeholder page; it
// surfaces only through logs, never as a run failure.
type ErrPageExtraction struct {
	PageNumber int
	Err        error
}

func (e *ErrPageExtraction) Error() string {
	return fmt.Sprintf("page %d: %v", e.PageNumber, e.Err)
}

func (e *ErrPageExtraction) Unwrap() error { return e.Err }
