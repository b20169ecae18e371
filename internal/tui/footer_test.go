package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/emorun/internal/classifier"
	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/game"
)

func TestRenderFooterFormats(t *testing.T) {
	m := newTestModel(t, "joy", emotion.Joy)
	m.lastTotal = 12340 * time.Millisecond
	m.hasLast = true
	m.bestTotal = 9500 * time.Millisecond
	m.hasBest = true

	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Last 00:00:12.34", "Best 00:00:09.50", "lexicon", "esc quit"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	if strings.Contains(out, "left") {
		t.Fatalf("remaining count should be hidden while loading: %s", out)
	}
}

func newTestModel(t *testing.T, label string, targets ...emotion.Kind) *Model {
	t.Helper()
	cfg := game.DefaultConfig()
	cfg.Targets = targets
	c := classifier.Func(func(context.Context, string) (string, error) {
		return label, nil
	})
	machine := game.NewMachine(cfg, game.NewGateway(c))
	return NewModel(context.Background(), machine, c, Options{Backend: "lexicon"})
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
