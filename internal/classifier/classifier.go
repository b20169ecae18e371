// Package classifier provides emotion classifiers for player text.
package classifier

import (
	"context"
	"fmt"
	"strings"
)

// Classifier labels text with one emotion from the vocabulary. Implementations
// must be interchangeable.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Warmer is implemented by classifiers that need preparation before play.
type Warmer interface {
	Warmup(ctx context.Context) error
}

// Func adapts a function to Classifier.
type Func func(ctx context.Context, text string) (string, error)

// Classify implements Classifier.
func (f Func) Classify(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Backend names.
const (
	BackendLexicon = "lexicon"
	BackendOpenAI  = "openai"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	APIKey  string
	Model   string
	BaseURL string
}

// New builds the classifier selected by cfg.Backend.
func New(cfg Config) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendLexicon:
		return NewLexicon(), nil
	case BackendOpenAI:
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown classifier %q (available: %s, %s)", cfg.Backend, BackendLexicon, BackendOpenAI)
	}
}

// Warmup prepares c when it implements Warmer.
func Warmup(ctx context.Context, c Classifier) error {
	if w, ok := c.(Warmer); ok {
		return w.Warmup(ctx)
	}
	return nil
}
