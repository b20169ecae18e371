// Package game implements the speedrun session: target queue, clock,
// classification gateway and the state machine that drives them.
package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/emorun/internal/emotion"
	"github.com/verte-zerg/emorun/internal/generator"
	"github.com/verte-zerg/emorun/internal/model"
)

// Phase is the state of a session.
type Phase int

// Session phases.
const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseTyping
	PhaseAwaiting
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseTyping:
		return "typing"
	case PhaseAwaiting:
		return "awaiting-classification"
	case PhaseComplete:
		return "complete"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// Event is an input to the state machine.
type Event interface {
	event()
}

// ReadyToPlay signals that the classifier is warm.
type ReadyToPlay struct{}

// TextChanged carries the current content of the text field.
type TextChanged struct {
	Text string
}

// Submit is the player pressing enter.
type Submit struct{}

// Classified delivers a gateway result.
type Classified struct {
	Result Result
}

func (ReadyToPlay) event() {}
func (TextChanged) event() {}
func (Submit) event()      {}
func (Classified) event()  {}

// Effect tells the caller what to do after an event was handled.
type Effect struct {
	// Await is set when a classification was dispatched; its result must be
	// fed back as a Classified event.
	Await Handle
	// ResetInput asks the presentation layer to clear the text field.
	ResetInput bool
	// Completed is set on the transition into PhaseComplete.
	Completed *model.Run
	// Err reports a recoverable rejection such as ErrTooShort.
	Err error
	// Ignored is true when the event is not valid in the current phase.
	Ignored bool
}

// Display is the read-only state published to the presentation layer.
type Display struct {
	Phase        Phase
	Target       string
	TimeText     string
	Status       string
	InputEnabled bool
	Remaining    int
	Penalty      time.Duration
}

// CompleteBanner replaces the target label once the queue is empty.
const CompleteBanner = "🎉 RUN COMPLETE! 🥳"

const (
	statusLoading    = "Loading classifier..."
	statusReady      = "Ready! Start typing..."
	statusTyping     = "Speedrun in progress..."
	statusTooShort   = "Input too short..."
	statusPredicting = "Predicting..."
	statusHit        = "✅ Hit!"
)

// Machine is the single owner of session state. It is not safe for
// concurrent use; every method must run on the event loop goroutine.
type Machine struct {
	cfg      Config
	gateway  *Gateway
	shuffler Shuffler
	now      func() time.Time
	logger   *zap.SugaredLogger

	phase        Phase
	queue        *Queue
	clock        Clock
	text         string
	status       string
	inputEnabled bool

	pendingTarget emotion.Kind
	pendingBurst  time.Duration

	runID     string
	startedAt time.Time
	attempts  []model.Attempt
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithShuffler overrides how target orders are produced.
func WithShuffler(s Shuffler) Option {
	return func(m *Machine) {
		m.shuffler = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// NewMachine returns a machine in PhaseLoading.
func NewMachine(cfg Config, gateway *Gateway, opts ...Option) *Machine {
	m := &Machine{
		cfg:      cfg,
		gateway:  gateway,
		shuffler: generator.New(),
		now:      time.Now,
		logger:   zap.NewNop().Sugar(),
		phase:    PhaseLoading,
		queue:    NewQueue(),
		status:   statusLoading,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handle applies ev and reports the side effects the caller must carry out.
func (m *Machine) Handle(ctx context.Context, ev Event) Effect {
	var eff Effect
	switch ev := ev.(type) {
	case ReadyToPlay:
		eff = m.onReady()
	case TextChanged:
		eff = m.onTextChanged(ev.Text)
	case Submit:
		eff = m.onSubmit(ctx)
	case Classified:
		eff = m.onClassified(ev.Result)
	default:
		eff = Effect{Ignored: true}
	}
	if eff.Ignored {
		m.logger.Debugw("event ignored", "event", fmt.Sprintf("%T", ev), "phase", m.phase.String())
	}
	return eff
}

func (m *Machine) onReady() Effect {
	if m.phase != PhaseLoading {
		return Effect{Ignored: true}
	}
	m.reset()
	return Effect{ResetInput: true}
}

func (m *Machine) onTextChanged(text string) Effect {
	switch m.phase {
	case PhaseReady:
		m.text = text
		if text == "" || m.queue.Len() == 0 {
			return Effect{}
		}
		now := m.now()
		if err := m.clock.StartBurst(now); err != nil {
			m.logger.Errorw("failed to start burst", "error", err)
			return Effect{}
		}
		if m.startedAt.IsZero() {
			m.startedAt = now
		}
		m.transition(PhaseTyping)
		m.status = statusTyping
		return Effect{}
	case PhaseTyping:
		m.text = text
		return Effect{}
	default:
		return Effect{Ignored: true}
	}
}

func (m *Machine) onSubmit(ctx context.Context) Effect {
	switch m.phase {
	case PhaseComplete:
		m.reset()
		return Effect{ResetInput: true}
	case PhaseTyping:
	default:
		return Effect{Ignored: true}
	}

	trimmed := strings.TrimSpace(m.text)
	if utf8.RuneCountInString(trimmed) <= m.cfg.MinChars {
		m.status = statusTooShort
		return Effect{Err: ErrTooShort}
	}
	if m.gateway.InFlight() {
		m.logger.Errorw("submission while classification pending", "phase", m.phase.String())
		return Effect{Err: ErrAlreadyInFlight, Ignored: true}
	}
	target, _ := m.queue.Peek()
	burst, err := m.clock.EndBurst(m.now())
	if err != nil {
		m.logger.Errorw("failed to end burst", "error", err)
	}
	handle, err := m.gateway.Submit(ctx, trimmed)
	if err != nil {
		m.logger.Errorw("failed to submit classification", "error", err)
		return Effect{Err: err}
	}
	m.pendingTarget = target
	m.pendingBurst = burst
	m.inputEnabled = false
	m.status = statusPredicting
	m.transition(PhaseAwaiting)
	m.logger.Debugw("classification submitted", "target", target.String(), "burst", burst, "chars", utf8.RuneCountInString(trimmed))
	return Effect{Await: handle}
}

func (m *Machine) onClassified(res Result) Effect {
	if m.phase != PhaseAwaiting {
		return Effect{Ignored: true}
	}
	if !m.gateway.Settle(res) {
		m.logger.Warnw("dropping stale classification", "seq", res.Seq)
		return Effect{Ignored: true}
	}

	hit := res.Resolved() && m.queue.PopIfMatches(res.Label)
	attempt := model.Attempt{
		Seq:       len(m.attempts) + 1,
		Target:    m.pendingTarget,
		Predicted: res.Label,
		Hit:       hit,
		Burst:     m.pendingBurst,
		TextLen:   utf8.RuneCountInString(res.Text),
	}
	switch {
	case hit:
		m.status = statusHit
	case res.Err != nil:
		m.clock.AddPenalty(m.cfg.Penalty)
		attempt.Failure = res.Err.Error()
		m.status = fmt.Sprintf("❌ Miss! (+%s) Classifier failed", formatSeconds(m.cfg.Penalty))
		m.logger.Warnw("classification failed", "error", res.Err)
	default:
		m.clock.AddPenalty(m.cfg.Penalty)
		m.status = fmt.Sprintf("❌ Miss! (+%s) AI felt %s", formatSeconds(m.cfg.Penalty), emotion.Display(res.Label))
	}
	m.attempts = append(m.attempts, attempt)
	m.logger.Debugw("classification settled", "target", attempt.Target.String(), "predicted", attempt.Predicted.String(), "hit", hit)

	m.text = ""
	m.inputEnabled = true
	m.pendingTarget = ""
	m.pendingBurst = 0
	if m.queue.Len() > 0 {
		m.transition(PhaseReady)
		return Effect{ResetInput: true}
	}

	m.transition(PhaseComplete)
	m.inputEnabled = false
	m.status = fmt.Sprintf("%.1fs in penalties. Press ENTER to play again!", m.clock.Penalty().Seconds())
	run := m.finishRun()
	m.logger.Infow("run complete", "run", run.ID, "total", FormatDuration(run.Total()), "hits", run.Hits(), "misses", run.Misses())
	return Effect{ResetInput: true, Completed: &run}
}

func (m *Machine) reset() {
	m.queue = ShuffleQueue(m.cfg.Targets, m.shuffler)
	m.clock = Clock{}
	m.text = ""
	m.inputEnabled = true
	m.status = statusReady
	m.pendingTarget = ""
	m.pendingBurst = 0
	m.runID = uuid.NewString()
	m.startedAt = time.Time{}
	m.attempts = nil
	m.transition(PhaseReady)
	m.logger.Infow("run ready", "run", m.runID, "targets", emotion.JoinList(m.queue.Remaining()))
}

func (m *Machine) finishRun() model.Run {
	now := m.now()
	started := m.startedAt
	if started.IsZero() {
		started = now
	}
	return model.Run{
		ID:        m.runID,
		StartedAt: started,
		EndedAt:   now,
		Active:    m.clock.Accumulated(),
		Penalty:   m.clock.Penalty(),
		Attempts:  append([]model.Attempt(nil), m.attempts...),
	}
}

func (m *Machine) transition(next Phase) {
	if m.phase == next {
		return
	}
	m.logger.Debugw("phase change", "from", m.phase.String(), "to", next.String())
	m.phase = next
}

// Display returns the state to render at the current time.
func (m *Machine) Display() Display {
	d := Display{
		Phase:        m.phase,
		TimeText:     FormatDuration(m.clock.Snapshot(m.now())),
		Status:       m.status,
		InputEnabled: m.inputEnabled,
		Remaining:    m.queue.Len(),
		Penalty:      m.clock.Penalty(),
	}
	switch m.phase {
	case PhaseLoading:
	case PhaseComplete:
		d.Target = CompleteBanner
	default:
		if target, ok := m.queue.Peek(); ok {
			d.Target = emotion.Display(target)
		}
	}
	return d
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Remaining returns the targets left, front first.
func (m *Machine) Remaining() []emotion.Kind { return m.queue.Remaining() }

// Accumulated returns the active time of completed bursts.
func (m *Machine) Accumulated() time.Duration { return m.clock.Accumulated() }

// Penalty returns the total penalty.
func (m *Machine) Penalty() time.Duration { return m.clock.Penalty() }

// Text returns the text last reported by TextChanged.
func (m *Machine) Text() string { return m.text }

// Config returns the rules of the machine.
func (m *Machine) Config() Config { return m.cfg }

// IsRejection reports whether err is a recoverable input rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrTooShort) || errors.Is(err, ErrAlreadyInFlight)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
