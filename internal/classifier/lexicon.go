package classifier

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/verte-zerg/emorun/internal/emotion"
)

// Lexicon is an offline keyword classifier.
type Lexicon struct {
	words map[string]emotion.Kind
}

var lexiconWords = map[emotion.Kind][]string{
	emotion.Anger: {
		"angry", "anger", "furious", "rage", "mad", "hate", "annoyed", "annoying", "irritated",
		"livid", "outraged", "pissed", "infuriating", "resent", "fuming",
	},
	emotion.Disgust: {
		"disgust", "disgusting", "gross", "revolting", "nasty", "vile", "sick", "yuck", "ew",
		"repulsive", "nauseating", "rotten", "filthy", "eww",
	},
	emotion.Fear: {
		"afraid", "scared", "fear", "terrified", "frightened", "anxious", "nervous", "panic",
		"worried", "dread", "horror", "creepy", "terror", "spooked",
	},
	emotion.Joy: {
		"happy", "joy", "great", "glad", "love", "wonderful", "delighted", "excited", "awesome",
		"amazing", "fantastic", "cheerful", "yay", "fun", "thrilled", "good",
	},
	emotion.Sadness: {
		"sad", "unhappy", "cry", "crying", "tears", "miss", "lonely", "depressed", "heartbroken",
		"grief", "sorrow", "miserable", "lost", "gloomy", "hopeless",
	},
	emotion.Surprise: {
		"wow", "surprised", "surprise", "unexpected", "shocked", "whoa", "omg", "astonished",
		"suddenly", "unbelievable", "incredible", "stunned",
	},
}

// NewLexicon returns the built-in keyword classifier.
func NewLexicon() *Lexicon {
	words := make(map[string]emotion.Kind)
	for kind, list := range lexiconWords {
		for _, w := range list {
			words[w] = kind
		}
	}
	return &Lexicon{words: words}
}

// Classify implements Classifier. Text with no known keyword is neutral; ties
// go to the emotion whose keyword appeared last.
func (l *Lexicon) Classify(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	scores := map[emotion.Kind]int{}
	last := map[emotion.Kind]int{}
	tokens := tokenize(text)
	for i, tok := range tokens {
		kind, ok := l.words[tok]
		if !ok {
			continue
		}
		scores[kind]++
		last[kind] = i
	}
	if len(scores) == 0 {
		return string(emotion.Neutral), nil
	}
	kinds := make([]emotion.Kind, 0, len(scores))
	for k := range scores {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if scores[kinds[i]] == scores[kinds[j]] {
			return last[kinds[i]] > last[kinds[j]]
		}
		return scores[kinds[i]] > scores[kinds[j]]
	})
	return string(kinds[0]), nil
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
