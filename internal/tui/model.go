// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/verte-zerg/emorun/internal/classifier"
	"github.com/verte-zerg/emorun/internal/game"
	"github.com/verte-zerg/emorun/internal/model"
	"github.com/verte-zerg/emorun/internal/store"
)

// DefaultTick is the display refresh interval.
const DefaultTick = 50 * time.Millisecond

const warmupTimeout = 30 * time.Second

var (
	targetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	timerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A")).
			Padding(0, 1)
)

type warmedMsg struct {
	err error
}

type tickMsg time.Time

type classifiedMsg struct {
	result game.Result
}

type savedMsg struct {
	total time.Duration
	err   error
}

// Options configures the game UI.
type Options struct {
	// Store persists completed runs; nil disables saving.
	Store *store.Store
	// Backend names the classifier in saved runs and the footer.
	Backend string
	Tick    time.Duration
	Logger  *zap.SugaredLogger
}

// Model implements the Bubble Tea game UI.
type Model struct {
	ctx        context.Context
	machine    *game.Machine
	classifier classifier.Classifier
	store      *store.Store
	backend    string
	tick       time.Duration
	log        *zap.SugaredLogger

	input   textinput.Model
	spinner spinner.Model

	width  int
	height int

	err error

	lastTotal time.Duration
	hasLast   bool
	bestTotal time.Duration
	hasBest   bool
}

// NewModel constructs the game UI around a machine in PhaseLoading.
func NewModel(ctx context.Context, machine *game.Machine, c classifier.Classifier, opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "type something that feels like the target..."
	input.Prompt = "› "
	input.CharLimit = 280

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	m := &Model{
		ctx:        ctx,
		machine:    machine,
		classifier: c,
		store:      opts.Store,
		backend:    opts.Backend,
		tick:       opts.Tick,
		log:        opts.Logger,
		input:      input,
		spinner:    sp,
	}
	if m.tick <= 0 {
		m.tick = DefaultTick
	}
	if m.log == nil {
		m.log = zap.NewNop().Sugar()
	}
	m.loadFooterStats()
	return m
}

// Err returns the bootstrap error that ended the program, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return batch(m.warmup(), m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, min(60, msg.Width-8))
		return m, nil
	case warmedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to load classifier: %w", msg.err)
			m.log.Errorw("classifier warm-up failed", "backend", m.backend, "error", msg.err)
			return m, tea.Quit
		}
		m.log.Infow("classifier ready", "backend", m.backend)
		cmd := m.apply(m.machine.Handle(m.ctx, game.ReadyToPlay{}))
		return m, batch(cmd, m.tickCmd())
	case tickMsg:
		return m, m.tickCmd()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case classifiedMsg:
		return m, m.apply(m.machine.Handle(m.ctx, game.Classified{Result: msg.result}))
	case savedMsg:
		if msg.err != nil {
			m.log.Errorw("failed to save run", "error", msg.err)
			return m, nil
		}
		if !m.hasBest || msg.total < m.bestTotal {
			m.bestTotal = msg.total
			m.hasBest = true
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	// Cursor blink messages.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m, m.apply(m.machine.Handle(m.ctx, game.Submit{}))
	}
	if !m.machine.Display().InputEnabled {
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		return m, batch(cmd, m.apply(m.machine.Handle(m.ctx, game.TextChanged{Text: after})))
	}
	return m, cmd
}

// apply carries out the side effects of a handled event.
func (m *Model) apply(eff game.Effect) tea.Cmd {
	var cmds []tea.Cmd
	if eff.Err != nil && !game.IsRejection(eff.Err) {
		m.log.Errorw("event failed", "error", eff.Err)
	}
	if eff.ResetInput {
		m.input.Reset()
	}
	if eff.Await != nil {
		cmds = append(cmds, awaitClassification(eff.Await))
	}
	if eff.Completed != nil {
		run := *eff.Completed
		run.Classifier = m.backend
		m.lastTotal = run.Total()
		m.hasLast = true
		cmds = append(cmds, m.saveRun(run))
	}
	switch {
	case !m.machine.Display().InputEnabled:
		m.input.Blur()
	case !m.input.Focused():
		cmds = append(cmds, m.input.Focus())
	}
	return batch(cmds...)
}

func (m *Model) warmup() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, warmupTimeout)
		defer cancel()
		return warmedMsg{err: classifier.Warmup(ctx, m.classifier)}
	}
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func awaitClassification(h game.Handle) tea.Cmd {
	return func() tea.Msg {
		return classifiedMsg{result: <-h}
	}
}

func (m *Model) saveRun(run model.Run) tea.Cmd {
	if m.store == nil {
		return func() tea.Msg {
			return savedMsg{total: run.Total()}
		}
	}
	st := m.store
	return func() tea.Msg {
		_, err := st.InsertRun(m.ctx, run)
		return savedMsg{total: run.Total(), err: err}
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	ctx := m.ctx
	runs, err := m.store.ListRuns(ctx, model.StatsConfig{Classifier: m.backend})
	if err != nil {
		m.log.Warnw("failed to load run history", "error", err)
		return
	}
	if len(runs) == 0 {
		return
	}
	m.lastTotal = time.Duration(runs[len(runs)-1].TotalMs) * time.Millisecond
	m.hasLast = true
	best, ok, err := m.store.BestRun(ctx, m.backend)
	if err != nil {
		m.log.Warnw("failed to load best run", "error", err)
		return
	}
	if ok {
		m.bestTotal = time.Duration(best.TotalMs) * time.Millisecond
		m.hasBest = true
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error()) + "\n"
	}
	content := m.renderBoard()
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderBoard() string {
	d := m.machine.Display()
	status := d.Status
	switch d.Phase {
	case game.PhaseLoading, game.PhaseAwaiting:
		status = m.spinner.View() + " " + status
	}
	if m.width > 0 {
		status = runewidth.Truncate(status, m.width-2, "…")
	}

	lines := []string{}
	if d.Target != "" {
		lines = append(lines, targetStyle.Render(d.Target))
	}
	lines = append(lines,
		timerStyle.Render(d.TimeText),
		statusStyle.Render(status),
	)
	if d.Phase != game.PhaseLoading && d.Phase != game.PhaseComplete {
		lines = append(lines, inputBoxStyle.Render(m.input.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderFooter() string {
	d := m.machine.Display()
	segments := []string{}
	if d.Phase != game.PhaseLoading {
		segments = append(segments, fmt.Sprintf("%d left", d.Remaining))
	}
	if m.hasLast {
		segments = append(segments, "Last "+game.FormatDuration(m.lastTotal))
	}
	if m.hasBest {
		segments = append(segments, "Best "+game.FormatDuration(m.bestTotal))
	}
	if m.backend != "" {
		segments = append(segments, m.backend)
	}
	segments = append(segments, "esc quit")
	return footerStyle.Render(strings.Join(segments, "  ·  "))
}

func batch(cmds ...tea.Cmd) tea.Cmd {
	valid := cmds[:0]
	for _, cmd := range cmds {
		if cmd != nil {
			valid = append(valid, cmd)
		}
	}
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	default:
		return tea.Batch(valid...)
	}
}
