package game

import (
	"fmt"
	"time"

	"github.com/verte-zerg/emorun/internal/emotion"
)

// Default game settings.
const (
	DefaultMinChars = 3
	DefaultPenalty  = 2 * time.Second
)

// Config holds the tunable rules of a run.
type Config struct {
	// MinChars is the longest trimmed input that is still rejected as too short.
	MinChars int
	Penalty  time.Duration
	Targets  []emotion.Kind
}

// DefaultConfig returns the standard rules.
func DefaultConfig() Config {
	return Config{
		MinChars: DefaultMinChars,
		Penalty:  DefaultPenalty,
		Targets:  emotion.Targets(),
	}
}

// Validate checks that the rules describe a playable run.
func (c Config) Validate() error {
	if c.MinChars < 0 {
		return fmt.Errorf("min chars must be >= 0")
	}
	if c.Penalty < 0 {
		return fmt.Errorf("penalty must be >= 0")
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target emotion is required")
	}
	seen := make(map[emotion.Kind]struct{}, len(c.Targets))
	for _, k := range c.Targets {
		if !k.Valid() {
			return fmt.Errorf("unknown target emotion %q", k)
		}
		if k == emotion.Neutral {
			return fmt.Errorf("neutral cannot be a target emotion")
		}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("duplicate target emotion %q", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Shuffler orders the target set for a new run.
type Shuffler interface {
	Shuffle(kinds []emotion.Kind) []emotion.Kind
}
