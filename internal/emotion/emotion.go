// Package emotion defines the emotion vocabulary shared by the classifier and the game.
package emotion

import (
	"fmt"
	"strings"
)

// Kind is a single emotion label.
type Kind string

// Emotion labels produced by classifiers.
const (
	Anger    Kind = "anger"
	Disgust  Kind = "disgust"
	Fear     Kind = "fear"
	Joy      Kind = "joy"
	Neutral  Kind = "neutral"
	Sadness  Kind = "sadness"
	Surprise Kind = "surprise"
)

var vocabulary = []Kind{Anger, Disgust, Fear, Joy, Neutral, Sadness, Surprise}

// Ekman's six basic emotions. Neutral can be predicted but is never a target.
var targets = []Kind{Anger, Disgust, Fear, Joy, Sadness, Surprise}

var displayNames = map[Kind]string{
	Anger:    "Anger 😡",
	Disgust:  "Disgust 🤢",
	Fear:     "Fear 😨",
	Joy:      "Joy 😀",
	Neutral:  "Neutral 😐",
	Sadness:  "Sadness 😭",
	Surprise: "Surprise 😲",
}

var aliases = map[string]Kind{
	"angry":     Anger,
	"annoyance": Anger,
	"rage":      Anger,
	"disgusted": Disgust,
	"afraid":    Fear,
	"scared":    Fear,
	"fearful":   Fear,
	"happy":     Joy,
	"happiness": Joy,
	"joyful":    Joy,
	"none":      Neutral,
	"calm":      Neutral,
	"sad":       Sadness,
	"sorrow":    Sadness,
	"surprised": Surprise,
}

// Vocabulary returns every label a classifier may produce.
func Vocabulary() []Kind {
	return append([]Kind(nil), vocabulary...)
}

// Targets returns the default set of target emotions.
func Targets() []Kind {
	return append([]Kind(nil), targets...)
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k belongs to the vocabulary.
func (k Kind) Valid() bool {
	_, ok := displayNames[k]
	return ok
}

// Display returns the player-facing label with its emoji.
func Display(k Kind) string {
	if name, ok := displayNames[k]; ok {
		return name
	}
	return string(k)
}

// Parse normalizes a raw classifier label into a Kind.
func Parse(label string) (Kind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	normalized = strings.Trim(normalized, ".!\"'`*")
	if normalized == "" {
		return "", false
	}
	kind := Kind(normalized)
	if kind.Valid() {
		return kind, true
	}
	if alias, ok := aliases[normalized]; ok {
		return alias, true
	}
	return "", false
}

// ParseList parses a comma-separated list of labels. Duplicates are rejected.
func ParseList(value string) ([]Kind, error) {
	parts := strings.Split(value, ",")
	kinds := make([]Kind, 0, len(parts))
	seen := make(map[Kind]struct{}, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, ok := Parse(part)
		if !ok {
			return nil, fmt.Errorf("unknown emotion %q", part)
		}
		if _, dup := seen[kind]; dup {
			return nil, fmt.Errorf("duplicate emotion %q", part)
		}
		seen[kind] = struct{}{}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("emotion list is empty")
	}
	return kinds, nil
}

// JoinList renders kinds as a comma-separated list.
func JoinList(kinds []Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}
