package transcribe

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	folio "github.com/prasetyo/folio"
)

// Tunables for the paragraph/heading heuristics. Kept as named constants
// so the thresholds stay visible and testable in isolation.
const (
	// HeadingFontSizeThreshold classifies a block as a heading when its
	// representative font size is strictly greater than this, in unscaled
	// page units. Size 14 is a paragraph; 15 is a heading.
	HeadingFontSizeThreshold = 14

	// ParagraphGapMultiplier scales the current run's font size to the
	// vertical gap that ends a paragraph.
	ParagraphGapMultiplier = 1.5
)

// ReconstructText clusters a page's text runs into paragraph and heading
// blocks using vertical-gap heuristics, in content-stream order. It
// returns the blocks with 0-based reading order assigned, plus the page's
// plain text (trimmed block contents joined by blank lines).
//
// The heuristic assumes single-column, top-to-bottom emission order.
// Multi-column layouts and out-of-order content streams produce
// interleaved paragraphs; that is a documented limitation, not a bug.
func ReconstructText(runs []TextRun, pageHeight float64) ([]folio.ContentBlock, string) {
	var blocks []folio.ContentBlock
	var buf paragraphBuffer

	flush := func() {
		if b, ok := buf.block(len(blocks)); ok {
			blocks = append(blocks, b)
		}
		buf.reset()
	}

	for _, run := range runs {
		text := norm.NFC.String(run.Text)
		if strings.TrimSpace(text) == "" {
			continue
		}

		// PDF space is bottom-left origin; flip to top-left screen space.
		screenY := pageHeight - run.Y

		if !buf.empty() && math.Abs(screenY-buf.lastY) > ParagraphGapMultiplier*run.FontSize {
			flush()
		}
		buf.add(run, text, screenY)
	}
	flush()

	var plain strings.Builder
	for i, b := range blocks {
		if i > 0 {
			plain.WriteString("\n\n")
		}
		plain.WriteString(b.Content)
	}
	return blocks, plain.String()
}

// paragraphBuffer accumulates runs belonging to the current paragraph.
type paragraphBuffer struct {
	text     strings.Builder
	started  bool
	x        float64
	topY     float64
	lastY    float64
	maxWidth float64
	fontSize float64
}

func (p *paragraphBuffer) empty() bool { return !p.started }

func (p *paragraphBuffer) add(run TextRun, text string, screenY float64) {
	if !p.started {
		p.started = true
		p.x = run.X
		p.topY = screenY
		// First run of the block is its representative font size.
		p.fontSize = run.FontSize
	} else if p.text.Len() > 0 {
		p.text.WriteByte(' ')
	}
	p.text.WriteString(text)
	p.lastY = screenY
	if run.Width > p.maxWidth {
		p.maxWidth = run.Width
	}
}

func (p *paragraphBuffer) reset() {
	p.text.Reset()
	p.started = false
	p.maxWidth = 0
}

// block finalizes the buffer into a content block with the given reading
// order. Returns false when the buffer holds no printable text.
func (p *paragraphBuffer) block(order int) (folio.ContentBlock, bool) {
	content := strings.TrimSpace(p.text.String())
	if !p.started || content == "" {
		return folio.ContentBlock{}, false
	}

	blockType := folio.BlockParagraph
	if p.fontSize > HeadingFontSizeThreshold {
		blockType = folio.BlockHeading
	}
	weight := "normal"
	if blockType == folio.BlockHeading {
		weight = "bold"
	}

	// Bounds are approximations from run metrics: width is the widest run,
	// height spans from the first to the last run plus one line.
	height := p.lastY - p.topY + p.fontSize
	if height < p.fontSize {
		height = p.fontSize
	}
	return folio.ContentBlock{
		Type:    blockType,
		Content: content,
		Bounds: folio.ContentBounds{
			X:      p.x,
			Y:      p.topY,
			Width:  p.maxWidth,
			Height: height,
		},
		Style: &folio.ContentStyle{
			FontSize:   int(math.Round(p.fontSize)),
			FontWeight: weight,
		},
		Order: order,
	}, true
}
