package render

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	fn := (&Renderer{}).templateFuncs()["truncate"].(func(string, int) string)

	tests := []struct {
		name   string
		in     string
		length int
		want   string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"cut with ellipsis", "hello world", 5, "hello..."},
		{"multibyte cut on rune boundary", strings.Repeat("é", 10), 5, "ééééé..."},
		{"empty", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fn(tt.in, tt.length)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.length, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.length)
			}
		})
	}
}
