package session

import (
	"context"
	"sync"

	"github.com/prepdesk/prepdesk/internal/domain/shared"
	"github.com/prepdesk/prepdesk/internal/domain/srs"
	"github.com/prepdesk/prepdesk/pkg/logger"
)

// Outcome is the grading result shown as feedback for one item.
type Outcome struct {
	Correct       bool
	Explanation   string
	CorrectAnswer string
}

// GradeFunc grades a submitted answer. It is the machine's only suspending
// call; implementations handle their own retry policy and return transient
// or permanent grading errors per the shared taxonomy.
type GradeFunc func(ctx context.Context, item Item, answer string, timeSpentSeconds int) (Outcome, error)

// RateFunc receives a vocabulary self-rating. It is invoked synchronously
// after the rating is recorded; implementations feed the scheduler and
// persist the updated card best-effort.
type RateFunc func(item Item, rating srs.Rating, timeSpentSeconds int)

// MachineConfig wires the per-subject capabilities into a machine.
// Grade is nil for pure flashcard sessions; OnRate is nil for graded ones.
type MachineConfig struct {
	Grade       GradeFunc
	OnRate      RateFunc
	Persistence Persistence // optional; finalize reports the summary to it
	Logger      *logger.Logger

	// OnComplete, when set, receives the final summary exactly once.
	// It runs with the machine locked and must not call back into it.
	OnComplete func(Summary)
}

// Machine drives one session through its lifecycle. All exported methods are
// safe for concurrent use; the state mutex is released only across the
// grading call, and a generation counter discards grading results that
// arrive after the session ended.
type Machine struct {
	mu sync.Mutex

	s       *Session
	grade   GradeFunc
	onRate  RateFunc
	persist Persistence
	onDone  func(Summary)
	log     *logger.Logger

	// gen increments whenever the session leaves the Submitting state by
	// force (end or timeout); an in-flight grading result with a stale
	// generation is discarded.
	gen uint64

	// itemStart is ElapsedSeconds at the moment the current item was
	// presented; timeSpent per answer derives from it.
	itemStart int

	lastOutcome *Outcome
	summary     *Summary
	timedOut    bool
	ticker      *Ticker
}

// NewMachine creates a machine for the given session.
func NewMachine(s *Session, cfg MachineConfig) *Machine {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Machine{
		s:       s,
		grade:   cfg.Grade,
		onRate:  cfg.OnRate,
		persist: cfg.Persistence,
		onDone:  cfg.OnComplete,
		log:     log.With(logger.SessionID(s.ID), logger.Subject(string(s.Subject))),
	}
}

// AttachTicker registers the ticker driving this machine so that finalizing
// the session stops it.
func (m *Machine) AttachTicker(t *Ticker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticker = t
}

// Start transitions Configuring -> Loading -> Presenting. It requires a
// non-empty resolved item list and resets the elapsed clock.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.s.Status != StatusConfiguring {
		return shared.NewDomainError("session", "Start", shared.ErrStateTransition, "session already started")
	}
	if len(m.s.Items) == 0 {
		return shared.ErrNoItems
	}

	m.s.Status = StatusLoading
	m.s.ElapsedSeconds = 0
	m.s.CurrentIndex = 0
	m.itemStart = 0
	m.s.Status = StatusPresenting

	m.log.Info("session started", logger.Int("items", len(m.s.Items)), logger.Int("time_limit", m.s.TimeLimitSeconds))
	return nil
}

// Tick adds one second of elapsed time. It only counts while the session is
// in Presenting or Feedback and not paused, so ticks delivered while paused
// or mid-submission are no-ops. When a time limit is set and reached, the
// session is forced to end regardless of remaining items.
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.s.Paused {
		return
	}
	if m.s.Status != StatusPresenting && m.s.Status != StatusFeedback {
		return
	}

	m.s.ElapsedSeconds++

	if m.s.TimeLimitSeconds > 0 && m.s.ElapsedSeconds >= m.s.TimeLimitSeconds {
		m.timedOut = true
		m.log.Info("time limit reached, ending session", logger.Int("elapsed", m.s.ElapsedSeconds))
		m.finalizeLocked(context.Background())
	}
}

// Pause suspends the timer. Pausing is only possible while an item is being
// presented, never during submission or feedback.
func (m *Machine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.s.Status != StatusPresenting {
		if m.s.Status.IsTerminal() {
			return shared.ErrSessionCompleted
		}
		return shared.ErrNotPausable
	}
	if m.s.Paused {
		return shared.ErrNotPausable
	}
	m.s.Paused = true
	return nil
}

// Resume clears the paused flag.
func (m *Machine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.s.Paused {
		return shared.ErrNotPaused
	}
	m.s.Paused = false
	return nil
}

// SubmitAnswer validates the value and routes it through the grading
// capability. Valid only while Presenting and not paused. On success the
// answer is recorded and the session moves to Feedback; a grading failure
// returns the session to Presenting so the learner can resubmit or move on.
func (m *Machine) SubmitAnswer(ctx context.Context, value string) error {
	m.mu.Lock()

	if err := m.checkAnswerableLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.grade == nil {
		m.mu.Unlock()
		return shared.ErrGradingUnsupported
	}

	item := m.s.Items[m.s.CurrentIndex]
	if err := validateAnswer(item, value); err != nil {
		m.mu.Unlock()
		return err
	}

	m.s.Status = StatusSubmitting
	gen := m.gen
	spent := m.s.ElapsedSeconds - m.itemStart

	// The mutex is released across the grading call so end() stays callable
	// while a submission is in flight.
	m.mu.Unlock()
	outcome, err := m.grade(ctx, item, value, spent)
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != gen || m.s.Status.IsTerminal() {
		// The session ended while grading; the late result is discarded
		// and must not resurrect a completed session.
		m.log.Debug("discarding grading result for ended session", logger.ItemID(item.ID))
		return nil
	}

	if err != nil {
		m.s.Status = StatusPresenting
		m.log.Warn("grading failed", logger.ItemID(item.ID), logger.Err(err))
		return err
	}

	correct := outcome.Correct
	m.s.Answers = append(m.s.Answers, AnswerRecord{
		ItemID:           item.ID,
		Submitted:        value,
		Correct:          &correct,
		TimeSpentSeconds: spent,
	})
	m.lastOutcome = &outcome
	m.s.Status = StatusFeedback
	return nil
}

// RateCurrent records a vocabulary self-rating for the current item and
// moves to Feedback. The rating is forwarded to the scheduler hook.
func (m *Machine) RateCurrent(rating srs.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkAnswerableLocked(); err != nil {
		return err
	}
	if m.onRate == nil {
		return shared.ErrRatingUnsupported
	}
	if !rating.IsValid() {
		return shared.ErrInvalidRating
	}

	item := m.s.Items[m.s.CurrentIndex]
	spent := m.s.ElapsedSeconds - m.itemStart
	r := rating
	m.s.Answers = append(m.s.Answers, AnswerRecord{
		ItemID:           item.ID,
		TimeSpentSeconds: spent,
		Rating:           &r,
	})
	m.lastOutcome = nil
	m.s.Status = StatusFeedback

	m.onRate(item, rating, spent)
	return nil
}

// Advance moves from Feedback to the next item, or finalizes the session
// when the last item has been answered.
func (m *Machine) Advance() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.s.Status != StatusFeedback {
		if m.s.Status.IsTerminal() {
			return shared.ErrSessionCompleted
		}
		return shared.ErrNotInFeedback
	}

	if m.s.CurrentIndex+1 < len(m.s.Items) {
		m.s.CurrentIndex++
		m.itemStart = m.s.ElapsedSeconds
		m.lastOutcome = nil
		m.s.Status = StatusPresenting
		return nil
	}

	m.finalizeLocked(context.Background())
	return nil
}

// End finalizes the session from any non-terminal state. It discards any
// in-flight submission result and always succeeds: ending a session is never
// blocked by a pending network call.
func (m *Machine) End(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.s.Status.IsTerminal() {
		return shared.ErrSessionCompleted
	}
	m.finalizeLocked(ctx)
	return nil
}

// finalizeLocked computes the summary, hands it to persistence, and moves to
// Completed. Persistence failure is reported, not fatal. Caller holds mu.
func (m *Machine) finalizeLocked(ctx context.Context) {
	m.gen++
	m.s.Paused = false
	m.s.Status = StatusFinalizing

	if m.ticker != nil {
		m.ticker.Stop()
	}

	sum := m.s.summary()
	if m.persist != nil {
		if err := m.persist.End(ctx, m.s.ID, sum); err != nil {
			m.log.Error("failed to persist session summary", logger.Err(err))
		}
	}

	m.summary = &sum
	m.s.Status = StatusCompleted

	if m.onDone != nil {
		m.onDone(sum)
	}

	m.log.Info("session completed",
		logger.Int("attempted", sum.QuestionsAttempted),
		logger.Int("correct", sum.QuestionsCorrect),
		logger.Int("elapsed", sum.ElapsedSeconds))
}

// checkAnswerableLocked verifies the session accepts an answer right now.
func (m *Machine) checkAnswerableLocked() error {
	if m.s.Status.IsTerminal() {
		return shared.ErrSessionCompleted
	}
	if m.s.Paused {
		return shared.ErrSessionPaused
	}
	if m.s.Status != StatusPresenting {
		return shared.ErrNotPresenting
	}
	return nil
}

// Status returns the current lifecycle state.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Status
}

// IsPaused reports whether the timer is suspended.
func (m *Machine) IsPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Paused
}

// Elapsed returns the counted seconds.
func (m *Machine) Elapsed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.ElapsedSeconds
}

// TimedOut reports whether the session ended by hitting its time limit.
func (m *Machine) TimedOut() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timedOut
}

// CurrentItem returns the item being presented, if any.
func (m *Machine) CurrentItem() (Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Status != StatusPresenting && m.s.Status != StatusFeedback && m.s.Status != StatusSubmitting {
		return Item{}, false
	}
	if m.s.CurrentIndex >= len(m.s.Items) {
		return Item{}, false
	}
	return m.s.Items[m.s.CurrentIndex], true
}

// Answers returns a copy of the recorded answers in presentation order.
func (m *Machine) Answers() []AnswerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AnswerRecord, len(m.s.Answers))
	copy(out, m.s.Answers)
	return out
}

// ItemCount returns the number of items in the session.
func (m *Machine) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.s.Items)
}

// LastOutcome returns the feedback for the most recent graded answer.
func (m *Machine) LastOutcome() (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastOutcome == nil {
		return Outcome{}, false
	}
	return *m.lastOutcome, true
}

// Summary returns the completed-session summary once the session is done.
func (m *Machine) Summary() (Summary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summary == nil {
		return Summary{}, false
	}
	return *m.summary, true
}

// Progress returns the current incremental progress snapshot.
func (m *Machine) Progress() Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.progress()
}

// Session returns the session's identity fields for collaborators.
func (m *Machine) SessionID() string { return m.s.ID }

// UserID returns the owning user.
func (m *Machine) UserID() string { return m.s.UserID }
