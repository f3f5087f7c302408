package transcribe

import (
	"context"
	"fmt"
	"sync"
)

// fakePage implements Page for pipeline tests.
type fakePage struct {
	number        int
	width, height float64
	runs          []TextRun
	runsErr       error
	ops           []Operator
	opsErr        error
	images        map[string]ImageObject
	imageErr      map[string]error
}

func (p *fakePage) Number() int                   { return p.number }
func (p *fakePage) Size() (float64, float64)      { return p.width, p.height }
func (p *fakePage) TextRuns(context.Context) ([]TextRun, error) {
	return p.runs, p.runsErr
}
func (p *fakePage) Operators(context.Context) ([]Operator, error) {
	return p.ops, p.opsErr
}
func (p *fakePage) ImageObject(_ context.Context, name string) (ImageObject, error) {
	if err, ok := p.imageErr[name]; ok {
		return ImageObject{}, err
	}
	obj, ok := p.images[name]
	if !ok {
		return ImageObject{}, fmt.Errorf("unknown xobject %q", name)
	}
	return obj, nil
}

// fakeDoc implements Document over a fixed page list.
type fakeDoc struct {
	pages   []*fakePage
	pageErr map[int]error
	closed  bool
}

func (d *fakeDoc) NumPages() int { return len(d.pages) }

func (d *fakeDoc) Page(n int) (Page, error) {
	if err, ok := d.pageErr[n]; ok {
		return nil, err
	}
	if n < 1 || n > len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", n)
	}
	return d.pages[n-1], nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

// sinkCall records one UploadImage invocation.
type sinkCall struct {
	data       []byte
	bookID     string
	pageNumber int
	index      int
}

// memorySink implements ImageSink, recording calls and minting stable URLs.
type memorySink struct {
	mu      sync.Mutex
	calls   []sinkCall
	failAll bool
	decline bool
}

func (s *memorySink) UploadImage(_ context.Context, data []byte, bookID string, pageNumber, index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{data: data, bookID: bookID, pageNumber: pageNumber, index: index})
	if s.failAll {
		return "", fmt.Errorf("sink unavailable")
	}
	if s.decline {
		return "", nil
	}
	return fmt.Sprintf("mem://%s/page%d-img%d.jpg", bookID, pageNumber, index), nil
}

// run builds a TextRun at the given PDF-space position.
func run(text string, y, fontSize float64) TextRun {
	return TextRun{Text: text, X: 72, Y: y, Width: 200, FontSize: fontSize, FontName: "F1"}
}

// rgbaBuf returns a width*height*4 buffer with a fixed fill.
func rgbaBuf(w, h int) []byte {
	buf := make([]byte, w*h*4)
	for i := 0; i < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = 10, 20, 30, 0xFF
	}
	return buf
}
