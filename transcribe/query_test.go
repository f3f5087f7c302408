package transcribe

import (
	"strings"
	"testing"

	folio "github.com/prasetyo/folio"
)

func page(n int, text string) folio.PageContent {
	return folio.PageContent{PageNumber: n, TextContent: text}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name  string
		pages []folio.PageContent
		want  int
	}{
		{"two pages", []folio.PageContent{page(1, "alpha beta"), page(2, "gamma")}, 3},
		{"empty pages", []folio.PageContent{page(1, ""), page(2, "   ")}, 0},
		{"no pages", nil, 0},
		{"extra whitespace", []folio.PageContent{page(1, "  one\n\ntwo   three ")}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.pages); got != tt.want {
				t.Errorf("WordCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSearchFindsAllOccurrences(t *testing.T) {
	text := "the cat sat. the cat ran. one more cat here."
	results := SearchInContent([]folio.PageContent{page(1, text)}, "cat")
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wantPositions := []int{4, 17, 35}
	for i, r := range results {
		if r.PageNumber != 1 {
			t.Errorf("result %d page = %d", i, r.PageNumber)
		}
		if r.Position != wantPositions[i] {
			t.Errorf("result %d position = %d, want %d", i, r.Position, wantPositions[i])
		}
		if !strings.Contains(strings.ToLower(r.Snippet), "cat") {
			t.Errorf("result %d snippet = %q", i, r.Snippet)
		}
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	results := SearchInContent([]folio.PageContent{page(1, "Moby Dick and MOBY dick")}, "moby")
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestSearchAcrossPages(t *testing.T) {
	pages := []folio.PageContent{
		page(1, "whale on page one"),
		page(2, "no match here"),
		page(3, "whale again, and whale once more"),
	}
	results := SearchInContent(pages, "whale")
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].PageNumber != 1 || results[1].PageNumber != 3 || results[2].PageNumber != 3 {
		t.Errorf("page numbers = %d, %d, %d", results[0].PageNumber, results[1].PageNumber, results[2].PageNumber)
	}
}

func TestSearchSnippetEllipsis(t *testing.T) {
	long := strings.Repeat("a", 100) + "needle" + strings.Repeat("b", 100)
	results := SearchInContent([]folio.PageContent{page(1, long)}, "needle")
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	s := results[0].Snippet
	if !strings.HasPrefix(s, "...") || !strings.HasSuffix(s, "...") {
		t.Errorf("snippet not ellipsized on both sides: %q", s)
	}
	if !strings.Contains(s, "needle") {
		t.Errorf("snippet missing match: %q", s)
	}

	// Match at the string start: no leading ellipsis.
	results = SearchInContent([]folio.PageContent{page(1, "needle then trailing text")}, "needle")
	if strings.HasPrefix(results[0].Snippet, "...") {
		t.Errorf("unexpected leading ellipsis: %q", results[0].Snippet)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	if got := SearchInContent([]folio.PageContent{page(1, "text")}, ""); got != nil {
		t.Errorf("empty query returned %d results", len(got))
	}
}

func TestSearchOverlappingMatches(t *testing.T) {
	// "aaa" contains "aa" twice when the cursor advances one rune per match.
	results := SearchInContent([]folio.PageContent{page(1, "aaa")}, "aa")
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}
