package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestChartRender(t *testing.T) {
	var buf bytes.Buffer
	err := Chart{Width: 12, Height: 4}.Render(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
		{Name: "empty"},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") || strings.Contains(out, "empty") {
		t.Fatalf("unexpected legend: %q", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected %d lines of output, got %d", 6, len(lines))
	}
	if !strings.HasPrefix(lines[1], "4.0 │ ") {
		t.Fatalf("expected top label of 4.0, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[4], "0.0 │ ") {
		t.Fatalf("expected bottom label of 0.0, got %q", lines[4])
	}
}

func TestChartRenderNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := (Chart{}).Render(&buf, "Nothing", nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestChartWidthFor(t *testing.T) {
	if got := ChartWidthFor(80); got != 80-6-3 {
		t.Fatalf("expected width %d, got %d", 71, got)
	}
	if got := ChartWidthFor(0); got != minChartWidth {
		t.Fatalf("expected min width %d, got %d", minChartWidth, got)
	}
	if got := ChartWidthFor(12); got != minChartWidth {
		t.Fatalf("expected min width %d, got %d", minChartWidth, got)
	}
}
