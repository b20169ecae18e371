package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/generator"
)

func TestQueuePopIfMatches(t *testing.T) {
	t.Parallel()

	q := NewQueue(emotion.Joy, emotion.Anger)
	front, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, emotion.Joy, front)

	assert.False(t, q.PopIfMatches(emotion.Anger))
	assert.Equal(t, []emotion.Kind{emotion.Joy, emotion.Anger}, q.Remaining())

	assert.True(t, q.PopIfMatches(emotion.Joy))
	assert.True(t, q.PopIfMatches(emotion.Anger))
	assert.Equal(t, 0, q.Len())

	_, ok = q.Peek()
	assert.False(t, ok)
	assert.False(t, q.PopIfMatches(emotion.Joy))
}

func TestShuffleQueueUsesWholeSet(t *testing.T) {
	t.Parallel()

	set := emotion.Targets()
	q := ShuffleQueue(set, generator.NewWithSeed(1))
	assert.ElementsMatch(t, set, q.Remaining())
}

func TestQueueRemainingIsACopy(t *testing.T) {
	t.Parallel()

	q := NewQueue(emotion.Fear)
	rem := q.Remaining()
	rem[0] = emotion.Joy
	front, _ := q.Peek()
	assert.Equal(t, emotion.Fear, front)
}
