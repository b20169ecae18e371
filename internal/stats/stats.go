// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/game"
	"github.com/verte-zerg/emorun/internal/model"
)

const sparkChars = " .:-=+*#%@"

// RunMetrics computes total time, hit rate, and mean burst for a run.
func RunMetrics(run model.RunAggregate) (total time.Duration, hitRate float64, avgBurst time.Duration) {
	total = time.Duration(run.TotalMs) * time.Millisecond
	attempts := run.Hits + run.Misses
	if attempts == 0 {
		return total, 0, 0
	}
	hitRate = float64(run.Hits) / float64(attempts)
	avgBurst = time.Duration(run.ActiveMs/int64(attempts)) * time.Millisecond
	return total, hitRate, avgBurst
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary of the runs.
func RenderSummary(w io.Writer, runs []model.RunAggregate, aggs []model.EmotionAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	var totalSum, penaltySum time.Duration
	var hitRateSum float64
	best := time.Duration(math.MaxInt64)
	for _, r := range runs {
		total, hitRate, _ := RunMetrics(r)
		totalSum += total
		penaltySum += time.Duration(r.PenaltyMs) * time.Millisecond
		hitRateSum += hitRate
		if total < best {
			best = total
		}
	}
	count := len(runs)
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", count),
		fmt.Sprintf("Best: %s", game.FormatDuration(best)),
		fmt.Sprintf("Average: %s", game.FormatDuration(totalSum/time.Duration(count))),
		fmt.Sprintf("Avg Penalty: %.1fs", (penaltySum / time.Duration(count)).Seconds()),
		fmt.Sprintf("Avg Hit Rate: %.2f%%", hitRateSum/float64(count)*100),
	}
	if weak := WeakestEmotions(aggs, 1); len(weak) > 0 {
		lines = append(lines, fmt.Sprintf("Weakest: %s", emotion.Display(weak[0])))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurve prints the total-time learning curve.
func RenderCurve(w io.Writer, runs []model.RunAggregate, window int) error {
	return RenderCurveWithSize(w, runs, window, 0, defaultChartHeight, false)
}

// RenderCurveWithSize prints the total-time curve sized to a given total width.
func RenderCurveWithSize(w io.Writer, runs []model.RunAggregate, window, totalWidth, height int, useColor bool) error {
	if len(runs) == 0 {
		return nil
	}
	totals := make([]float64, len(runs))
	penalties := make([]float64, len(runs))
	for i, r := range runs {
		totals[i] = float64(r.TotalMs) / 1000
		penalties[i] = float64(r.PenaltyMs) / 1000
	}
	totals = MovingAverage(totals, window)
	penalties = MovingAverage(penalties, window)

	if _, err := fmt.Fprintf(w, "Trend: %s\n", Sparkline(totals)); err != nil {
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = ChartWidthFor(totalWidth)
	}
	return Chart{Width: width, Height: height, Color: useColor}.Render(w, "Run Times (s)", []Series{
		{Name: "Total", Values: totals},
		{Name: "Penalty", Values: penalties},
	})
}

// RenderEmotionTable prints per-target aggregates, weakest first.
func RenderEmotionTable(w io.Writer, aggs []model.EmotionAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No emotion stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Emotion"); err != nil {
		return err
	}

	headers := []string{"Emotion", "Hit Rate", "Avg Burst (s)", "Attempts", "Hits", "Confused With"}
	tableRows := make([][]string, 0, len(aggs))
	for _, agg := range sortByHitRate(aggs) {
		avgBurst := 0.0
		if agg.Attempts > 0 {
			avgBurst = float64(agg.BurstSumMs) / float64(agg.Attempts) / 1000
		}
		confusion := "-"
		if agg.TopConfusion != "" {
			confusion = emotion.Display(agg.TopConfusion)
		}
		tableRows = append(tableRows, []string{
			emotion.Display(agg.Target),
			fmt.Sprintf("%.2f%%", hitRate(agg)*100),
			fmt.Sprintf("%.2f", avgBurst),
			fmt.Sprintf("%d", agg.Attempts),
			fmt.Sprintf("%d", agg.Hits),
			confusion,
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func sortByHitRate(aggs []model.EmotionAggregate) []model.EmotionAggregate {
	sorted := make([]model.EmotionAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		hi, hj := hitRate(sorted[i]), hitRate(sorted[j])
		if hi == hj {
			return sorted[i].Target < sorted[j].Target
		}
		return hi < hj
	})
	return sorted
}

func minMax(values []float64) (float64, float64) {
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}
