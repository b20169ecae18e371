// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/verte-zerg/emorun/internal/emotion"
)

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Classifier  string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Attempt records one classified submission within a run.
type Attempt struct {
	Seq       int
	Target    emotion.Kind
	Predicted emotion.Kind
	Hit       bool
	Burst     time.Duration
	TextLen   int
	// Failure holds the classifier error text when the call failed.
	Failure string
}

// Run captures a completed speedrun.
type Run struct {
	ID         string
	StartedAt  time.Time
	EndedAt    time.Time
	Classifier string
	Active     time.Duration
	Penalty    time.Duration
	Attempts   []Attempt
}

// Total returns the final displayed time of the run.
func (r Run) Total() time.Duration {
	return r.Active + r.Penalty
}

// Hits counts successful attempts.
func (r Run) Hits() int {
	n := 0
	for _, a := range r.Attempts {
		if a.Hit {
			n++
		}
	}
	return n
}

// Misses counts failed attempts.
func (r Run) Misses() int {
	return len(r.Attempts) - r.Hits()
}

// RunAggregate summarizes a stored run for reporting.
type RunAggregate struct {
	RunID      int64
	UUID       string
	EndedAt    time.Time
	Classifier string
	ActiveMs   int64
	PenaltyMs  int64
	TotalMs    int64
	Hits       int
	Misses     int
}

// EmotionAggregate aggregates attempts for one target emotion across runs.
type EmotionAggregate struct {
	Target       emotion.Kind
	Attempts     int
	Hits         int
	BurstSumMs   int64
	TopConfusion emotion.Kind
}
