package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/model"
	"github.com/verte-zerg/emorun/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "emorun.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestEmptyStoreShowsNoRuns(t *testing.T) {
	m := NewModel(openStore(t), model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	if !strings.Contains(view, "No runs found.") {
		t.Fatalf("expected empty notice:\n%s", view)
	}
	if !strings.Contains(view, "classifier=any") {
		t.Fatalf("expected settings summary:\n%s", view)
	}
}

func TestRunsTabListsNewestFirst(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, total := range []time.Duration{20 * time.Second, 14 * time.Second} {
		run := model.Run{
			ID:         string(rune('a' + i)),
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			EndedAt:    base.Add(time.Duration(i)*time.Hour + time.Minute),
			Classifier: "lexicon",
			Active:     total,
			Attempts: []model.Attempt{
				{Seq: 1, Target: emotion.Joy, Predicted: emotion.Joy, Hit: true, Burst: total, TextLen: 8},
			},
		}
		if _, err := st.InsertRun(ctx, run); err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}

	m := NewModel(st, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	rows := m.tables[tabRuns].Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][2] != "00:00:14.00" || rows[1][2] != "00:00:20.00" {
		t.Fatalf("unexpected run order: %v", rows)
	}
	if emotions := m.tables[tabEmotions].Rows(); len(emotions) != 1 || emotions[0][1] != "100.0%" {
		t.Fatalf("unexpected emotion rows: %v", emotions)
	}

	overview := m.View()
	if !strings.Contains(overview, "00:00:14.00") || !strings.Contains(overview, "Run Times (s)") {
		t.Fatalf("expected best time and curve in overview:\n%s", overview)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabRuns {
		t.Fatalf("expected runs tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected navigation to wrap around, got %d", m.activeTab)
	}
}

func TestParseFilter(t *testing.T) {
	inputs := make([]textinput.Model, 4)
	for i := range inputs {
		inputs[i] = textinput.New()
	}
	inputs[filterClassifier].SetValue(" openai ")
	inputs[filterSince].SetValue("2026-01-31")
	inputs[filterLast].SetValue("10")
	inputs[filterWindow].SetValue("")

	cfg, err := parseFilter(inputs)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cfg.Classifier != "openai" || cfg.Last != 10 || cfg.CurveWindow != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Since == nil || cfg.Since.Format("2006-01-02") != "2026-01-31" {
		t.Fatalf("unexpected since: %v", cfg.Since)
	}

	inputs[filterWindow].SetValue("0")
	if _, err := parseFilter(inputs); err == nil {
		t.Fatalf("expected error for zero window")
	}
	inputs[filterWindow].SetValue("3")
	inputs[filterSince].SetValue("31/01/2026")
	if _, err := parseFilter(inputs); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct {
		in, next, prev int
	}{
		{in: 1, next: 5, prev: 1},
		{in: 5, next: 10, prev: 1},
		{in: 7, next: 10, prev: 5},
		{in: 10, next: 15, prev: 5},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d): expected %d, got %d", tc.in, tc.next, got)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d): expected %d, got %d", tc.in, tc.prev, got)
		}
	}
}
