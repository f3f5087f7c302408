package pdfdoc

import (
	"errors"
	"reflect"
	"testing"

	folio "github.com/prasetyo/folio"
)

func TestScanPaintOps(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []string
	}{
		{
			"single image",
			"q 100 0 0 80 36 500 cm /Im0 Do Q",
			[]string{"Im0"},
		},
		{
			"multiple images in order",
			"/Im1 Do\n/Fm0 Do\n/Im2 Do",
			[]string{"Im1", "Fm0", "Im2"},
		},
		{
			"no images",
			"BT /F1 12 Tf 72 700 Td (Hello World) Tj ET",
			nil,
		},
		{
			"Do inside string literal ignored",
			"BT (watch /Im9 Do nothing) Tj ET /Im0 Do",
			[]string{"Im0"},
		},
		{
			"Do inside comment ignored",
			"% /Im9 Do\n/Im0 Do",
			[]string{"Im0"},
		},
		{
			"nested parens in string",
			"(a (nested) paren \\) escape) Tj /Im3 Do",
			[]string{"Im3"},
		},
		{
			"inline image data skipped",
			"BI /W 2 /H 2 ID \x00\x01Do\x02 EI /Im4 Do",
			[]string{"Im4"},
		},
		{
			"newline separated",
			"/Im0\nDo",
			[]string{"Im0"},
		},
		{
			"empty stream",
			"",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanPaintOps([]byte(tt.stream))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("scanPaintOps(%q) = %v, want %v", tt.stream, got, tt.want)
			}
		})
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	_, err := Open([]byte("not a pdf at all"))
	if err == nil {
		t.Fatal("expected error opening garbage bytes")
	}
	var openErr *folio.ErrDocumentOpen
	if !errors.As(err, &openErr) {
		t.Fatalf("err = %T, want *folio.ErrDocumentOpen", err)
	}
}

func TestOpenRejectsEmpty(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Fatal("expected error opening empty buffer")
	}
}
