package stats

import (
	"context"

	"github.com/verte-zerg/emorun/internal/model"
	"github.com/verte-zerg/emorun/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs         []model.RunAggregate
	WindowRunIDs []int64
	EmotionsAll  []model.EmotionAggregate
	// EmotionsWindow covers only the most recent CurveWindow runs.
	EmotionsWindow []model.EmotionAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}

	windowIDs := lastRunIDs(runs, cfg.CurveWindow)
	all, err := st.ListEmotionAggregates(ctx, runIDs(runs))
	if err != nil {
		return Report{}, err
	}
	window, err := st.ListEmotionAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Runs:           runs,
		WindowRunIDs:   windowIDs,
		EmotionsAll:    all,
		EmotionsWindow: window,
	}, nil
}

func runIDs(runs []model.RunAggregate) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	return ids
}

func lastRunIDs(runs []model.RunAggregate, window int) []int64 {
	if window <= 0 || len(runs) <= window {
		return runIDs(runs)
	}
	return runIDs(runs[len(runs)-window:])
}
