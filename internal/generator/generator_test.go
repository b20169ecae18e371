package generator

import (
	"sort"
	"testing"

	"github.com/verte-zerg/emorun/internal/emotion"
)

func TestShuffleIsPermutation(t *testing.T) {
	gen := NewWithSeed(42)
	input := emotion.Targets()
	original := append([]emotion.Kind(nil), input...)

	for i := 0; i < 50; i++ {
		out := gen.Shuffle(input)
		if len(out) != len(input) {
			t.Fatalf("expected %d kinds, got %d", len(input), len(out))
		}
		if !samePermutation(out, original) {
			t.Fatalf("shuffle is not a permutation: %v", out)
		}
	}
	for i := range input {
		if input[i] != original[i] {
			t.Fatalf("input was modified: %v", input)
		}
	}
}

func TestShuffleVariesOrder(t *testing.T) {
	gen := NewWithSeed(7)
	input := emotion.Targets()
	orders := map[string]struct{}{}
	for i := 0; i < 30; i++ {
		orders[emotion.JoinList(gen.Shuffle(input))] = struct{}{}
	}
	if len(orders) < 2 {
		t.Fatalf("expected different orders across shuffles, got %d", len(orders))
	}
}

func TestShuffleSameSeedSameOrder(t *testing.T) {
	a := NewWithSeed(99).Shuffle(emotion.Targets())
	b := NewWithSeed(99).Shuffle(emotion.Targets())
	if emotion.JoinList(a) != emotion.JoinList(b) {
		t.Fatalf("expected equal orders for equal seeds: %v vs %v", a, b)
	}
}

func samePermutation(a, b []emotion.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	as := make([]string, len(a))
	bs := make([]string, len(b))
	for i := range a {
		as[i] = string(a[i])
		bs[i] = string(b[i])
	}
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
