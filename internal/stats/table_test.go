package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Emotion", "Hit Rate", "Hits"}
	rows := [][]string{
		{"Joy", "97.50%", "12"},
		{"Surprise", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Emotion  Hit Rate Hits" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Joy        97.50%   12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Surprise    8.00%    3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableCountsWideRunes(t *testing.T) {
	lines := formatTable([]string{"A", "B"}, [][]string{{"日本", "x"}, {"abc", "y"}}, nil)
	if lines[1] != "日本 x" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "abc  y" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}
