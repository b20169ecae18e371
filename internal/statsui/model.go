// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/game"
	"github.com/verte-zerg/emorun/internal/model"
	"github.com/verte-zerg/emorun/internal/stats"
	"github.com/verte-zerg/emorun/internal/store"
)

const (
	tabOverview = iota
	tabEmotions
	tabRuns
)

const plotHeight = 10

const (
	filterClassifier = iota
	filterSince
	filterLast
	filterWindow
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	tables    map[int]*table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	emotions := newTable(emotionColumns())
	runs := newTable(runColumns())
	m := &Model{
		store:    st,
		cfg:      cfg,
		tabs:     []string{"Overview", "Emotions", "Runs"},
		overview: viewport.New(0, 0),
		tables:   map[int]*table.Model{tabEmotions: &emotions, tabRuns: &runs},
	}
	m.filterInputs = []textinput.Model{
		newFilterInput("Classifier: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/":
			return m.startFilter()
		}
		if t, ok := m.tables[m.activeTab]; ok {
			var cmd tea.Cmd
			*t, cmd = t.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.overview, cmd = m.overview.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func newTable(columns []table.Column) table.Model {
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	t.SetStyles(styles)
	return t
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range m.tables {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
	}
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	for tab, t := range m.tables {
		if tab == m.activeTab {
			t.Focus()
		} else {
			t.Blur()
		}
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		style := inactiveNavStyle
		if i == m.activeTab {
			style = activeNavStyle
		}
		parts = append(parts, style.Render(tab))
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + headerStyle.Render(runewidth.Truncate(m.filterSummary(), m.width, "..."))
}

func (m *Model) filterSummary() string {
	classifier := m.cfg.Classifier
	if classifier == "" {
		classifier = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("Settings: classifier=%s  since=%s  last=%s  window=%d", classifier, since, last, m.cfg.CurveWindow)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if len(m.report.Runs) == 0 {
		return "No runs found."
	}
	if t, ok := m.tables[m.activeTab]; ok {
		return tableStyle.Render(t.View())
	}
	return m.overview.View()
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.tables[tabEmotions].SetRows(emotionRows(report.EmotionsWindow))
	m.tables[tabRuns].SetRows(runRows(report.Runs))
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	runs := m.report.Runs
	if len(runs) == 0 {
		m.overview.SetContent("No runs found.")
		return
	}
	var buf bytes.Buffer
	if err := stats.RenderCurveWithSize(&buf, runs, m.cfg.CurveWindow, width, plotHeight, true); err != nil {
		m.overview.SetContent(fmt.Sprintf("Failed to render curve: %v", err))
		return
	}
	m.overview.SetContent(renderCards(runs, m.report.EmotionsAll, width) + "\n\n" + strings.TrimRight(buf.String(), "\n"))
}

func renderCards(runs []model.RunAggregate, aggs []model.EmotionAggregate, width int) string {
	best := runs[0].TotalMs
	var sum, penalty int64
	for _, r := range runs {
		best = min(best, r.TotalMs)
		sum += r.TotalMs
		penalty += r.PenaltyMs
	}
	count := int64(len(runs))
	weakest := "-"
	if weak := stats.WeakestEmotions(aggs, 1); len(weak) > 0 {
		weakest = emotion.Display(weak[0])
	}
	cards := []string{
		metricCard("Runs", strconv.Itoa(len(runs))),
		metricCard("Best", game.FormatDuration(msDuration(best))),
		metricCard("Average", game.FormatDuration(msDuration(sum/count))),
		metricCard("Avg Penalty", fmt.Sprintf("%.1fs", msDuration(penalty/count).Seconds())),
		metricCard("Weakest", weakest),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func emotionColumns() []table.Column {
	return []table.Column{
		{Title: "Emotion", Width: 14},
		{Title: "Hit Rate", Width: 9},
		{Title: "Avg Burst (s)", Width: 13},
		{Title: "Attempts", Width: 8},
		{Title: "Confused With", Width: 14},
	}
}

func emotionRows(aggs []model.EmotionAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		rate, burst := 0.0, 0.0
		if agg.Attempts > 0 {
			rate = float64(agg.Hits) / float64(agg.Attempts) * 100
			burst = float64(agg.BurstSumMs) / float64(agg.Attempts) / 1000
		}
		confusion := "-"
		if agg.TopConfusion != "" {
			confusion = emotion.Display(agg.TopConfusion)
		}
		rows = append(rows, table.Row{
			emotion.Display(agg.Target),
			fmt.Sprintf("%.1f%%", rate),
			fmt.Sprintf("%.2f", burst),
			strconv.Itoa(agg.Attempts),
			confusion,
		})
	}
	return rows
}

func runColumns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Classifier", Width: 10},
		{Title: "Total", Width: 11},
		{Title: "Penalty", Width: 8},
		{Title: "Hits", Width: 4},
		{Title: "Misses", Width: 6},
	}
}

// runRows lists runs newest first.
func runRows(runs []model.RunAggregate) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		rows = append(rows, table.Row{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Classifier,
			game.FormatDuration(msDuration(r.TotalMs)),
			fmt.Sprintf("%.1fs", msDuration(r.PenaltyMs).Seconds()),
			strconv.Itoa(r.Hits),
			strconv.Itoa(r.Misses),
		})
	}
	return rows
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.filterInputs[filterClassifier].SetValue(m.cfg.Classifier)
	m.filterInputs[filterSince].SetValue("")
	if m.cfg.Since != nil {
		m.filterInputs[filterSince].SetValue(m.cfg.Since.Format("2006-01-02"))
	}
	m.filterInputs[filterLast].SetValue("")
	if m.cfg.Last > 0 {
		m.filterInputs[filterLast].SetValue(strconv.Itoa(m.cfg.Last))
	}
	m.filterInputs[filterWindow].SetValue(strconv.Itoa(m.cfg.CurveWindow))
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := parseFilter(m.filterInputs)
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func parseFilter(inputs []textinput.Model) (model.StatsConfig, error) {
	var cfg model.StatsConfig
	cfg.Classifier = strings.TrimSpace(inputs[filterClassifier].Value())

	if sinceInput := strings.TrimSpace(inputs[filterSince].Value()); sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &parsed
	}

	if lastInput := strings.TrimSpace(inputs[filterLast].Value()); lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return cfg, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		cfg.Last = parsed
	}

	cfg.CurveWindow = 1
	if windowInput := strings.TrimSpace(inputs[filterWindow].Value()); windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil || parsed < 1 {
			return cfg, fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		cfg.CurveWindow = parsed
	}
	return cfg, nil
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
