package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/model"
	"github.com/verte-zerg/emorun/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "emorun.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		run := model.Run{
			ID:         "run-" + string(rune('a'+i)),
			StartedAt:  start,
			EndedAt:    start.Add(30 * time.Second),
			Classifier: "lexicon",
			Active:     10 * time.Second,
			Penalty:    2 * time.Second,
			Attempts: []model.Attempt{
				{Seq: 1, Target: emotion.Joy, Predicted: emotion.Neutral, Burst: 4 * time.Second, TextLen: 12},
				{Seq: 2, Target: emotion.Joy, Predicted: emotion.Joy, Hit: true, Burst: 6 * time.Second, TextLen: 9},
			},
		}
		id, err := st.InsertRun(ctx, run)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Classifier:  "lexicon",
		Last:        2,
		CurveWindow: 1,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(report.Runs))
	}
	if report.Runs[0].RunID != ids[1] || report.Runs[1].RunID != ids[2] {
		t.Fatalf("unexpected run ids: %+v", report.Runs)
	}
	if len(report.WindowRunIDs) != 1 || report.WindowRunIDs[0] != ids[2] {
		t.Fatalf("unexpected window run ids: %v", report.WindowRunIDs)
	}
	if len(report.EmotionsAll) != 1 || report.EmotionsAll[0].Attempts != 4 {
		t.Fatalf("unexpected aggregates for all runs: %+v", report.EmotionsAll)
	}
	if len(report.EmotionsWindow) != 1 || report.EmotionsWindow[0].Attempts != 2 {
		t.Fatalf("unexpected aggregates for window runs: %+v", report.EmotionsWindow)
	}

	other, err := BuildReport(ctx, st, model.StatsConfig{Classifier: "openai"})
	if err != nil {
		t.Fatalf("build filtered report: %v", err)
	}
	if len(other.Runs) != 0 || len(other.EmotionsAll) != 0 {
		t.Fatalf("expected empty report for other classifier, got %+v", other)
	}
}
