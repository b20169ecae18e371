package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "emorun.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleRun(id, classifier string, ended time.Time, total time.Duration) model.Run {
	return model.Run{
		ID:         id,
		StartedAt:  ended.Add(-time.Minute),
		EndedAt:    ended,
		Classifier: classifier,
		Active:     total - 2*time.Second,
		Penalty:    2 * time.Second,
		Attempts: []model.Attempt{
			{Seq: 1, Target: emotion.Fear, Predicted: emotion.Surprise, Burst: time.Second, TextLen: 10},
			{Seq: 2, Target: emotion.Fear, Failure: "classification failed: offline", Burst: time.Second, TextLen: 7},
			{Seq: 3, Target: emotion.Fear, Predicted: emotion.Fear, Hit: true, Burst: total - 4*time.Second, TextLen: 14},
		},
	}
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := st.InsertRun(ctx, sampleRun("a", "lexicon", base, 20*time.Second))
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if _, err := st.InsertRun(ctx, sampleRun("b", "openai", base.Add(time.Hour), 15*time.Second)); err != nil {
		t.Fatalf("insert run: %v", err)
	}

	runs, err := st.ListRuns(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	got := runs[0]
	if got.RunID != first || got.UUID != "a" || got.Classifier != "lexicon" {
		t.Fatalf("unexpected first run: %+v", got)
	}
	if got.TotalMs != 20000 || got.PenaltyMs != 2000 || got.ActiveMs != 18000 {
		t.Fatalf("unexpected durations: %+v", got)
	}
	if got.Hits != 1 || got.Misses != 2 {
		t.Fatalf("unexpected hit counts: %+v", got)
	}
	if !got.EndedAt.Equal(base) {
		t.Fatalf("unexpected end time: %v", got.EndedAt)
	}

	since := base.Add(30 * time.Minute)
	filtered, err := st.ListRuns(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list runs since: %v", err)
	}
	if len(filtered) != 1 || filtered[0].UUID != "b" {
		t.Fatalf("unexpected since filter result: %+v", filtered)
	}

	byClassifier, err := st.ListRuns(ctx, model.StatsConfig{Classifier: "lexicon"})
	if err != nil {
		t.Fatalf("list runs by classifier: %v", err)
	}
	if len(byClassifier) != 1 || byClassifier[0].UUID != "a" {
		t.Fatalf("unexpected classifier filter result: %+v", byClassifier)
	}
}

func TestInsertRunRejectsDuplicateID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	run := sampleRun("dup", "lexicon", time.Now(), 10*time.Second)
	if _, err := st.InsertRun(ctx, run); err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if _, err := st.InsertRun(ctx, run); err == nil {
		t.Fatalf("expected duplicate run id to fail")
	}
	runs, err := st.ListRuns(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected failed insert to roll back, got %d runs", len(runs))
	}
}

func TestBestRun(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.BestRun(ctx, ""); err != nil || ok {
		t.Fatalf("expected no best run on empty store, got ok=%v err=%v", ok, err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, total := range []time.Duration{30 * time.Second, 12 * time.Second, 18 * time.Second} {
		classifier := "lexicon"
		if i == 1 {
			classifier = "openai"
		}
		run := sampleRun(string(rune('a'+i)), classifier, base.Add(time.Duration(i)*time.Minute), total)
		if _, err := st.InsertRun(ctx, run); err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}

	best, ok, err := st.BestRun(ctx, "")
	if err != nil || !ok {
		t.Fatalf("best run: ok=%v err=%v", ok, err)
	}
	if best.TotalMs != 12000 {
		t.Fatalf("expected overall best of 12s, got %d", best.TotalMs)
	}
	best, ok, err = st.BestRun(ctx, "lexicon")
	if err != nil || !ok {
		t.Fatalf("best lexicon run: ok=%v err=%v", ok, err)
	}
	if best.TotalMs != 18000 {
		t.Fatalf("expected lexicon best of 18s, got %d", best.TotalMs)
	}
}

func TestListEmotionAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := st.InsertRun(ctx, sampleRun("a", "lexicon", base, 10*time.Second))
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	aggs, err := st.ListEmotionAggregates(ctx, []int64{id})
	if err != nil {
		t.Fatalf("list aggregates: %v", err)
	}
	if len(aggs) != 1 {
		t.Fatalf("expected one target aggregate, got %+v", aggs)
	}
	agg := aggs[0]
	if agg.Target != emotion.Fear || agg.Attempts != 3 || agg.Hits != 1 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	if agg.BurstSumMs != 8000 {
		t.Fatalf("expected burst sum of 8000ms, got %d", agg.BurstSumMs)
	}
	if agg.TopConfusion != emotion.Surprise {
		t.Fatalf("expected surprise confusion, got %q", agg.TopConfusion)
	}

	empty, err := st.ListEmotionAggregates(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no aggregates for no runs, got %+v err=%v", empty, err)
	}
}
