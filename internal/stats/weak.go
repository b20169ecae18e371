package stats

import (
	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/model"
)

// WeakestEmotions returns up to top targets with the lowest hit rate.
func WeakestEmotions(aggs []model.EmotionAggregate, top int) []emotion.Kind {
	candidates := make([]model.EmotionAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Attempts > 0 {
			candidates = append(candidates, agg)
		}
	}
	candidates = sortByHitRate(candidates)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]emotion.Kind, 0, top)
	for _, agg := range candidates[:top] {
		out = append(out, agg.Target)
	}
	return out
}

func hitRate(agg model.EmotionAggregate) float64 {
	if agg.Attempts == 0 {
		return 1.0
	}
	return float64(agg.Hits) / float64(agg.Attempts)
}
