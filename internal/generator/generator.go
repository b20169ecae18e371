// Package generator builds shuffled target orders.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/emorun/internal/emotion"
)

// Generator produces random permutations of target emotions.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Generator with a fixed seed.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Shuffle returns a uniformly random permutation of kinds. The input is not modified.
func (g *Generator) Shuffle(kinds []emotion.Kind) []emotion.Kind {
	out := make([]emotion.Kind, len(kinds))
	copy(out, kinds)
	for i := len(out) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
