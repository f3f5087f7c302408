package transcribe

import (
	"strings"
	"unicode"

	folio "github.com/prasetyo/folio"
)

// snippetContext is the number of runes of context kept on each side of a
// search match.
const snippetContext = 50

// WordCount returns the total whitespace-delimited word count across all
// pages' text content. Placeholder pages contribute zero.
func WordCount(pages []folio.PageContent) int {
	count := 0
	for _, p := range pages {
		count += len(strings.Fields(p.TextContent))
	}
	return count
}

// SearchInContent performs a case-insensitive substring search across each
// page's text content and returns every occurrence, not just the first.
// Positions are rune offsets into the page's TextContent; snippets carry
// up to snippetContext runes of context on each side, ellipsized when
// truncated at a true string boundary.
func SearchInContent(pages []folio.PageContent, query string) []folio.SearchResult {
	needle := foldRunes([]rune(query))
	if len(needle) == 0 {
		return nil
	}

	var results []folio.SearchResult
	for _, page := range pages {
		text := []rune(page.TextContent)
		haystack := foldRunes(text)

		// Advance one rune past each match start so overlapping
		// occurrences are all found.
		for pos := indexRunes(haystack, needle, 0); pos >= 0; pos = indexRunes(haystack, needle, pos+1) {
			results = append(results, folio.SearchResult{
				PageNumber: page.PageNumber,
				Snippet:    snippet(text, pos, len(needle)),
				Position:   pos,
			})
		}
	}
	return results
}

// foldRunes lowercases rune-by-rune, preserving a 1:1 index mapping with
// the original text (strings.ToLower can change rune counts for some
// locales' mappings).
func foldRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

// indexRunes returns the first index >= from where needle occurs in
// haystack, or -1.
func indexRunes(haystack, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// snippet extracts the match plus surrounding context from the original
// (unfolded) text, ellipsizing truncated ends.
func snippet(text []rune, pos, matchLen int) string {
	start := pos - snippetContext
	if start < 0 {
		start = 0
	}
	end := pos + matchLen + snippetContext
	if end > len(text) {
		end = len(text)
	}

	var sb strings.Builder
	if start > 0 {
		sb.WriteString("...")
	}
	sb.WriteString(string(text[start:end]))
	if end < len(text) {
		sb.WriteString("...")
	}
	return sb.String()
}
