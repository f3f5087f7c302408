// Package pdfdoc implements the transcribe.Document accessor for real PDF
// files.
//
// Two pure-Go parsers back the adapter: ledongthuc/pdf supplies positioned
// text runs (glyph string, x/y, width, font size), and pdfcpu supplies the
// drawing-operator side: page content streams and image XObject streams.
// The mapping from raw content-stream operators to the closed
// transcribe.OperatorKind enum lives in this package and nowhere else, so
// swapping either library touches only this adapter.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	ledong "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	folio "github.com/prasetyo/folio"
	"github.com/prasetyo/folio/transcribe"
)

// Document is an open PDF implementing transcribe.Document.
type Document struct {
	reader *ledong.Reader
	pctx   *model.Context
	pages  int
}

var _ transcribe.Document = (*Document)(nil)

// Open parses a PDF from memory. Failures here are document-level and
// fatal: the caller gets *folio.ErrDocumentOpen and no partial result.
func Open(data []byte) (*Document, error) {
	return open(data, "buffer")
}

// OpenFile parses a PDF from disk.
func OpenFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &folio.ErrDocumentOpen{Source: path, Err: err}
	}
	return open(data, path)
}

func open(data []byte, source string) (*Document, error) {
	reader, err := ledong.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &folio.ErrDocumentOpen{Source: source, Err: fmt.Errorf("parse: %w", err)}
	}

	conf := model.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &folio.ErrDocumentOpen{Source: source, Err: fmt.Errorf("pdfcpu read: %w", err)}
	}

	pages := reader.NumPage()
	if pctx.PageCount < pages {
		// The two parsers disagree on page count for damaged trees; trust
		// the smaller so every page is addressable by both.
		pages = pctx.PageCount
	}
	return &Document{reader: reader, pctx: pctx, pages: pages}, nil
}

// NumPages returns the document's page count.
func (d *Document) NumPages() int { return d.pages }

// Page returns the n-th page, 1-based.
func (d *Document) Page(n int) (transcribe.Page, error) {
	if n < 1 || n > d.pages {
		return nil, fmt.Errorf("page %d out of range [1,%d]", n, d.pages)
	}
	lp := d.reader.Page(n)
	if lp.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object", n)
	}
	return &page{doc: d, n: n, lpage: lp}, nil
}

// Close releases parser state. Both backends are pure Go with no handles
// to free; Close exists to satisfy transcribe.Document.
func (d *Document) Close() error {
	d.reader = nil
	d.pctx = nil
	return nil
}

// page implements transcribe.Page lazily against both parsers.
type page struct {
	doc   *Document
	n     int
	lpage ledong.Page

	xobjects types.Dict // resolved XObject resource dict, cached
}

var _ transcribe.Page = (*page)(nil)

func (p *page) Number() int { return p.n }

// Size returns the page MediaBox dimensions, walking the parent chain for
// inherited attributes. Falls back to US Letter when absent.
func (p *page) Size() (float64, float64) {
	for v := p.lpage.V; !v.IsNull(); v = v.Key("Parent") {
		mb := v.Key("MediaBox")
		if mb.IsNull() || mb.Len() < 4 {
			continue
		}
		w := numeric(mb.Index(2)) - numeric(mb.Index(0))
		h := numeric(mb.Index(3)) - numeric(mb.Index(1))
		if w > 0 && h > 0 {
			return w, h
		}
	}
	return 612, 792
}

func numeric(v ledong.Value) float64 {
	switch v.Kind() {
	case ledong.Integer:
		return float64(v.Int64())
	case ledong.Real:
		return v.Float64()
	}
	return 0
}

// TextRuns returns the page's text runs in content-stream order. The
// underlying lexer panics on malformed streams; that is converted to an
// error so a broken page degrades to a placeholder instead of killing the
// run.
func (p *page) TextRuns(_ context.Context) (runs []transcribe.TextRun, err error) {
	defer func() {
		if r := recover(); r != nil {
			runs = nil
			err = fmt.Errorf("page %d content: %v", p.n, r)
		}
	}()

	content := p.lpage.Content()
	runs = make([]transcribe.TextRun, 0, len(content.Text))
	for _, t := range content.Text {
		runs = append(runs, transcribe.TextRun{
			Text:     t.S,
			X:        t.X,
			Y:        t.Y,
			Width:    t.W,
			FontSize: t.FontSize,
			FontName: t.Font,
		})
	}
	return runs, nil
}

// Operators returns the page's drawing operators in painting order,
// reduced to the closed enum the image extractor consumes. Only `/Name Do`
// invocations of image XObjects survive the mapping; everything else is
// OpOther.
func (p *page) Operators(_ context.Context) ([]transcribe.Operator, error) {
	r, err := pdfcpu.ExtractPageContent(p.doc.pctx, p.n)
	if err != nil {
		return nil, fmt.Errorf("page %d content stream: %w", p.n, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("page %d content stream: %w", p.n, err)
	}

	var ops []transcribe.Operator
	for _, name := range scanPaintOps(data) {
		sd, err := p.xobjectStream(name)
		if err != nil {
			// Unresolvable XObject: keep the slot as a non-image op so
			// painting order of the rest is unaffected.
			ops = append(ops, transcribe.Operator{Kind: transcribe.OpOther})
			continue
		}
		ops = append(ops, transcribe.Operator{Kind: classify(sd), Image: name})
	}
	return ops, nil
}

// classify maps an XObject stream to an operator kind: DCT-encoded image
// XObjects paint as ready-made JPEGs, every other image subtype as a raw
// pixel buffer, and non-image XObjects (forms) as OpOther.
func classify(sd *types.StreamDict) transcribe.OperatorKind {
	subtype, found := sd.Find("Subtype")
	if !found {
		return transcribe.OpOther
	}
	if name, ok := subtype.(types.Name); !ok || name != "Image" {
		return transcribe.OpOther
	}
	for _, f := range streamFilters(sd) {
		if f == "DCTDecode" {
			return transcribe.OpPaintJPEG
		}
	}
	return transcribe.OpPaintImage
}

// ImageObject resolves an image XObject by resource name. For DCT streams
// the raw JPEG bytes are returned as-is; for everything else the stream is
// decoded so the extractor can interpret the pixel buffer.
func (p *page) ImageObject(_ context.Context, name string) (transcribe.ImageObject, error) {
	sd, err := p.xobjectStream(name)
	if err != nil {
		return transcribe.ImageObject{}, err
	}

	obj := transcribe.ImageObject{}
	if w := sd.IntEntry("Width"); w != nil {
		obj.Width = *w
	}
	if h := sd.IntEntry("Height"); h != nil {
		obj.Height = *h
	}

	if classify(sd) == transcribe.OpPaintJPEG {
		obj.Data = sd.Raw
		obj.Encoded = true
		return obj, nil
	}

	if err := sd.Decode(); err != nil {
		return transcribe.ImageObject{}, fmt.Errorf("decode %s: %w", name, err)
	}
	obj.Data = sd.Content
	return obj, nil
}

// xobjectStream looks up the page's XObject resource dict and
// dereferences the named entry to its stream dict.
func (p *page) xobjectStream(name string) (*types.StreamDict, error) {
	if p.xobjects == nil {
		xo, err := pageXObjects(p.doc.pctx, p.n)
		if err != nil {
			return nil, err
		}
		p.xobjects = xo
	}

	entry, ok := p.xobjects[name]
	if !ok {
		return nil, fmt.Errorf("xobject %q not in page %d resources", name, p.n)
	}
	o, err := p.doc.pctx.Dereference(entry)
	if err != nil {
		return nil, fmt.Errorf("xobject %q: %w", name, err)
	}
	sd, ok := o.(types.StreamDict)
	if !ok {
		return nil, fmt.Errorf("xobject %q: not a stream", name)
	}
	return &sd, nil
}

// pageXObjects resolves the XObject sub-dictionary of a page's resources,
// honoring inherited page attributes.
func pageXObjects(pctx *model.Context, pageNr int) (types.Dict, error) {
	pageDict, _, inhPAttrs, err := pctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("page %d dict: %w", pageNr, err)
	}

	res := inhPAttrs.Resources
	if res == nil {
		if d, err := pctx.DereferenceDict(pageDict["Resources"]); err == nil {
			res = d
		}
	}
	if res == nil {
		return types.Dict{}, nil
	}
	xo, err := pctx.DereferenceDict(res["XObject"])
	if err != nil || xo == nil {
		return types.Dict{}, nil
	}
	return xo, nil
}

// streamFilters returns the stream's filter names from its dict entry,
// handling both the single-name and array forms.
func streamFilters(sd *types.StreamDict) []string {
	f, found := sd.Find("Filter")
	if !found {
		return nil
	}
	switch v := f.(type) {
	case types.Name:
		return []string{v.Value()}
	case types.Array:
		var names []string
		for _, e := range v {
			if n, ok := e.(types.Name); ok {
				names = append(names, n.Value())
			}
		}
		return names
	}
	return nil
}
