package game

import (
	"context"
	"fmt"

	"github.com/verte-zerg/emorun/internal/classifier"
	"github.com/verte-zerg/emorun/internal/emotion"
)

// Result is the single outcome of a submitted classification.
type Result struct {
	Seq   uint64
	Text  string
	Label emotion.Kind
	Err   error
}

// Resolved reports whether the classifier produced a usable label.
func (r Result) Resolved() bool {
	return r.Err == nil
}

// Handle yields exactly one Result and is never closed.
type Handle <-chan Result

// Gateway admits one classification request at a time.
//
// Submit and Settle must be called from the same goroutine; only the
// classifier call itself runs elsewhere.
type Gateway struct {
	classifier classifier.Classifier
	seq        uint64
	inFlight   bool
}

// NewGateway wraps c.
func NewGateway(c classifier.Classifier) *Gateway {
	return &Gateway{classifier: c}
}

// Submit starts classifying text in a new goroutine.
func (g *Gateway) Submit(ctx context.Context, text string) (Handle, error) {
	if g.inFlight {
		return nil, ErrAlreadyInFlight
	}
	g.inFlight = true
	g.seq++
	seq := g.seq
	ch := make(chan Result, 1)
	go func() {
		ch <- g.classify(ctx, seq, text)
	}()
	return ch, nil
}

// Settle accepts res as the answer to the pending request. It returns false
// for results that do not belong to it.
func (g *Gateway) Settle(res Result) bool {
	if !g.inFlight || res.Seq != g.seq {
		return false
	}
	g.inFlight = false
	return true
}

// InFlight reports whether a request is pending.
func (g *Gateway) InFlight() bool {
	return g.inFlight
}

func (g *Gateway) classify(ctx context.Context, seq uint64, text string) (res Result) {
	res = Result{Seq: seq, Text: text}
	defer func() {
		if r := recover(); r != nil {
			res.Label = ""
			res.Err = fmt.Errorf("%w: classifier panic: %v", ErrClassificationFailed, r)
		}
	}()
	label, err := g.classifier.Classify(ctx, text)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrClassificationFailed, err)
		return res
	}
	kind, ok := emotion.Parse(label)
	if !ok {
		res.Err = fmt.Errorf("%w: unknown label %q", ErrClassificationFailed, label)
		return res
	}
	res.Label = kind
	return res
}
