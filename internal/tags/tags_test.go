package tags

import "testing"

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3", 3},
		{"3/12", 3},
		{" 7 ", 7},
		{"", 0},
		{"abc", 0},
		{"-2", 0},
	}

	for _, tt := range tests {
		if got := parseNumber(tt.in); got != tt.want {
			t.Errorf("parseNumber(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"2003", 2003},
		{"2003-04-01", 2003},
		{"1999/12/31", 1999},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		if got := parseYear(tt.in); got != tt.want {
			t.Errorf("parseYear(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFirstAndClean(t *testing.T) {
	if got := first([]string{"", "  ", "A", "B"}); got != "A" {
		t.Errorf("first() = %q, want A", got)
	}
	if got := first(nil); got != "" {
		t.Errorf("first(nil) = %q, want empty", got)
	}

	got := clean([]string{" A ", "", "B"})
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("clean() = %v", got)
	}
}

func TestExtractUnparseableFile(t *testing.T) {
	r := New()
	if _, err := r.Extract("/does/not/exist.mp3", "audio/mpeg"); err == nil {
		t.Error("Expected error for missing file")
	}
}
