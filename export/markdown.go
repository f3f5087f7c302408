// Package export renders transcribed book content as Markdown and
// reader-view HTML.
package export

import (
	"fmt"
	"strings"

	folio "github.com/prasetyo/folio"
)

// PageMarkdown renders a single page's blocks as Markdown. Headings become
// "##" sections, images become image links, everything else is a paragraph.
func PageMarkdown(page folio.PageContent) string {
	var b strings.Builder
	for _, block := range page.Blocks {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		switch block.Type {
		case folio.BlockHeading:
			b.WriteString("## ")
			b.WriteString(block.Content)
		case folio.BlockImage:
			fmt.Fprintf(&b, "![%s](%s)", block.Alt, block.Src)
		default:
			b.WriteString(block.Content)
		}
	}
	return b.String()
}

// BlocksToMarkdown renders a sequence of pages as one Markdown document,
// with thematic breaks between pages. Placeholder pages contribute nothing
// but the break.
func BlocksToMarkdown(pages []folio.PageContent) string {
	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		parts = append(parts, PageMarkdown(page))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// PageHTML renders a page's blocks directly as reader-view HTML, without a
// Markdown round trip. Image blocks become figures with the alt text as
// caption.
func PageHTML(page folio.PageContent) string {
	var b strings.Builder
	for _, block := range page.Blocks {
		switch block.Type {
		case folio.BlockHeading:
			b.WriteString("<h2>")
			b.WriteString(htmlEscape(block.Content))
			b.WriteString("</h2>\n")
		case folio.BlockImage:
			fmt.Fprintf(&b, "<figure><img src=\"%s\" alt=\"%s\"><figcaption>%s</figcaption></figure>\n",
				htmlEscape(block.Src), htmlEscape(block.Alt), htmlEscape(block.Alt))
		default:
			b.WriteString("<p>")
			b.WriteString(htmlEscape(block.Content))
			b.WriteString("</p>\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// htmlEscape escapes <, >, & and double quotes.
func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
