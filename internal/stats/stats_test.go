package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/model"
)

func TestRunMetrics(t *testing.T) {
	total, rate, burst := RunMetrics(model.RunAggregate{ActiveMs: 9000, PenaltyMs: 2000, TotalMs: 11000, Hits: 2, Misses: 1})
	if total != 11*time.Second {
		t.Fatalf("unexpected total: %v", total)
	}
	if rate < 0.66 || rate > 0.67 {
		t.Fatalf("unexpected hit rate: %v", rate)
	}
	if burst != 3*time.Second {
		t.Fatalf("unexpected burst: %v", burst)
	}

	_, rate, burst = RunMetrics(model.RunAggregate{})
	if rate != 0 || burst != 0 {
		t.Fatalf("expected zero metrics for empty run, got %v %v", rate, burst)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	same := MovingAverage([]float64{1, 5}, 0)
	if same[0] != 1 || same[1] != 5 {
		t.Fatalf("window <= 1 should copy values, got %v", same)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
}

func TestWeakestEmotions(t *testing.T) {
	aggs := []model.EmotionAggregate{
		{Target: emotion.Joy, Attempts: 4, Hits: 4},
		{Target: emotion.Fear, Attempts: 4, Hits: 1},
		{Target: emotion.Disgust, Attempts: 2, Hits: 1},
		{Target: emotion.Anger},
	}
	weak := WeakestEmotions(aggs, 2)
	if len(weak) != 2 || weak[0] != emotion.Fear || weak[1] != emotion.Disgust {
		t.Fatalf("unexpected weakest emotions: %v", weak)
	}
	if all := WeakestEmotions(aggs, 0); len(all) != 3 {
		t.Fatalf("expected all attempted emotions, got %v", all)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	runs := []model.RunAggregate{
		{ActiveMs: 10000, PenaltyMs: 2000, TotalMs: 12000, Hits: 6, Misses: 1},
		{ActiveMs: 8000, PenaltyMs: 0, TotalMs: 8000, Hits: 6},
	}
	aggs := []model.EmotionAggregate{{Target: emotion.Fear, Attempts: 3, Hits: 2}}
	if err := RenderSummary(&buf, runs, aggs); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Runs: 2", "Best: 00:00:08.00", "Average: 00:00:10.00", "Avg Penalty: 1.0s", "Weakest: Fear"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderSummary(&buf, nil, nil); err != nil {
		t.Fatalf("render empty summary: %v", err)
	}
	if !strings.Contains(buf.String(), "No runs found.") {
		t.Fatalf("unexpected empty summary: %q", buf.String())
	}
}

func TestRenderEmotionTableSortsWeakestFirst(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.EmotionAggregate{
		{Target: emotion.Joy, Attempts: 2, Hits: 2, BurstSumMs: 3000},
		{Target: emotion.Fear, Attempts: 2, Hits: 1, BurstSumMs: 5000, TopConfusion: emotion.Surprise},
	}
	if err := RenderEmotionTable(&buf, aggs); err != nil {
		t.Fatalf("render table: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected title, header and two rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[2], "Fear") || !strings.Contains(lines[2], "50.00%") || !strings.Contains(lines[2], "Surprise") {
		t.Fatalf("unexpected first row: %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "Joy") || !strings.HasSuffix(lines[3], "-") {
		t.Fatalf("unexpected second row: %q", lines[3])
	}
}

func TestRenderCurve(t *testing.T) {
	var buf bytes.Buffer
	runs := []model.RunAggregate{{TotalMs: 12000, PenaltyMs: 2000}, {TotalMs: 9000}, {TotalMs: 7000}}
	if err := RenderCurveWithSize(&buf, runs, 1, 40, 4, false); err != nil {
		t.Fatalf("render curve: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Trend: ") || !strings.Contains(out, "Run Times (s)") {
		t.Fatalf("unexpected curve output:\n%s", out)
	}
}
