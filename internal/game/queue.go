package game

import "github.com/verte-zerg/emorun/internal/emotion"

// Queue is the ordered list of target emotions still to be matched.
type Queue struct {
	remaining []emotion.Kind
}

// NewQueue builds a queue that keeps the given order.
func NewQueue(kinds ...emotion.Kind) *Queue {
	return &Queue{remaining: append([]emotion.Kind(nil), kinds...)}
}

// ShuffleQueue builds a queue from a random permutation of set.
func ShuffleQueue(set []emotion.Kind, s Shuffler) *Queue {
	return &Queue{remaining: s.Shuffle(set)}
}

// Peek returns the current target.
func (q *Queue) Peek() (emotion.Kind, bool) {
	if len(q.remaining) == 0 {
		return "", false
	}
	return q.remaining[0], true
}

// PopIfMatches removes the front target when label equals it.
func (q *Queue) PopIfMatches(label emotion.Kind) bool {
	front, ok := q.Peek()
	if !ok || front != label {
		return false
	}
	q.remaining = q.remaining[1:]
	return true
}

// Len returns the number of targets left.
func (q *Queue) Len() int {
	return len(q.remaining)
}

// Remaining returns a copy of the targets left, front first.
func (q *Queue) Remaining() []emotion.Kind {
	return append([]emotion.Kind(nil), q.remaining...)
}
