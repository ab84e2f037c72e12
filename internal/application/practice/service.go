package practice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/prepdesk/prepdesk/internal/domain/session"
	"github.com/prepdesk/prepdesk/internal/domain/shared"
	"github.com/prepdesk/prepdesk/internal/domain/srs"
	"github.com/prepdesk/prepdesk/pkg/logger"
	"github.com/prepdesk/prepdesk/pkg/timeutil"
)

// Service builds and runs practice sessions. It resolves items, orders the
// vocabulary queue through the scheduler, wires the submission pipeline into
// the machine, and forwards progress events to the external recorder.
type Service struct {
	items    ItemProvider
	pipeline *Pipeline
	sessions session.Persistence
	cards    srs.ReviewCardStore
	drafts   DraftStore
	hints    HintTracker
	bus      EventBus
	log      *logger.Logger
	clock    timeutil.Clock
	tick     time.Duration
}

// ServiceConfig configures the practice service. ItemProvider and Pipeline
// are required; persistence collaborators are optional and best-effort.
type ServiceConfig struct {
	Items        ItemProvider
	Pipeline     *Pipeline
	Sessions     session.Persistence
	Cards        srs.ReviewCardStore
	Drafts       DraftStore
	Hints        HintTracker
	Bus          EventBus
	Progress     ProgressRecorder
	Logger       *logger.Logger
	Clock        timeutil.Clock
	TickInterval time.Duration // test hook; defaults to one second
}

// NewService creates the practice service. When both a bus and a progress
// recorder are supplied, grading events are forwarded to the recorder as
// best-effort counter updates.
func NewService(cfg ServiceConfig) *Service {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = time.Second
	}

	s := &Service{
		items:    cfg.Items,
		pipeline: cfg.Pipeline,
		sessions: cfg.Sessions,
		cards:    cfg.Cards,
		drafts:   cfg.Drafts,
		hints:    cfg.Hints,
		bus:      cfg.Bus,
		log:      log,
		clock:    clock,
		tick:     tick,
	}

	if cfg.Bus != nil && cfg.Progress != nil {
		recorder := cfg.Progress
		err := cfg.Bus.Subscribe(shared.EventAnswerGraded, func(ctx context.Context, e shared.Event) {
			graded, ok := e.(shared.AnswerGradedEvent)
			if !ok {
				return
			}
			update := ProgressUpdate{
				UserID:    graded.UserID,
				SessionID: graded.SessionID,
				Attempted: 1,
			}
			if graded.Correct {
				update.Correct = 1
			}
			if err := recorder.Record(ctx, update); err != nil {
				log.Warn("progress recorder failed", logger.SessionID(graded.SessionID), logger.Err(err))
			}
		})
		if err != nil {
			log.Warn("could not subscribe progress forwarder", logger.Err(err))
		}
	}

	return s
}

// StartSession resolves the item list, creates the session record, and
// returns a started machine. On an item load failure the session never
// leaves Configuring and the error is returned to the caller.
func (s *Service) StartSession(ctx context.Context, cfg session.Config) (*session.Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	items, err := s.items.FetchItems(ctx, cfg)
	if err != nil {
		return nil, shared.WrapError("session", "Load", shared.ErrExternalService, "failed to fetch items", err)
	}
	if len(items) == 0 {
		return nil, shared.ErrNoItems
	}
	if cfg.ItemCount > 0 && len(items) > cfg.ItemCount {
		items = items[:cfg.ItemCount]
	}

	var cardsByItem map[string]srs.Card
	if cfg.Subject == session.SubjectVocabulary {
		items, cardsByItem = s.buildVocabularyQueue(ctx, cfg.UserID, items)
	}

	sessionID := s.createSessionRecord(ctx, cfg)
	sess := session.New(sessionID, cfg, items)

	machineCfg := session.MachineConfig{
		Persistence: s.sessions,
		Logger:      s.log,
		OnComplete:  s.completionPublisher(cfg.UserID),
	}
	if s.gradedEnabled(cfg) {
		machineCfg.Grade = s.gradeFunc(cfg.UserID, sessionID)
	}
	if s.ratingEnabled(cfg) {
		machineCfg.OnRate = s.rateFunc(cfg.UserID, sessionID, cardsByItem)
	}

	m := session.NewMachine(sess, machineCfg)
	if err := m.Start(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// RunTicker starts the per-second ticker driving the machine and returns it.
// The ticker stops when the session finalizes or the context is cancelled.
func (s *Service) RunTicker(ctx context.Context, m *session.Machine) *session.Ticker {
	t := session.NewTicker(s.tick)
	m.AttachTicker(t)
	go t.Run(ctx, m.Tick)
	return t
}

// RevealHint records hint usage for the current item, best-effort.
func (s *Service) RevealHint(ctx context.Context, m *session.Machine, hintIndex int) {
	if s.hints == nil {
		return
	}
	item, ok := m.CurrentItem()
	if !ok {
		return
	}
	if err := s.hints.RecordHintUsage(ctx, m.SessionID(), item.ID, hintIndex, m.Elapsed()); err != nil {
		s.log.Debug("hint tracker failed", logger.SessionID(m.SessionID()), logger.Err(err))
	}
}

// SaveDraft stores in-progress answer text for the current item, best-effort.
func (s *Service) SaveDraft(ctx context.Context, m *session.Machine, text string) {
	if s.drafts == nil {
		return
	}
	item, ok := m.CurrentItem()
	if !ok {
		return
	}
	if err := s.drafts.Save(ctx, m.UserID(), item.ID, text); err != nil {
		s.log.Warn("draft save failed", logger.ItemID(item.ID), logger.Err(err))
	}
}

// LoadDraft returns any stored draft for the current item. A store failure
// yields an empty draft.
func (s *Service) LoadDraft(ctx context.Context, m *session.Machine) string {
	if s.drafts == nil {
		return ""
	}
	item, ok := m.CurrentItem()
	if !ok {
		return ""
	}
	text, err := s.drafts.Load(ctx, m.UserID(), item.ID)
	if err != nil {
		s.log.Debug("draft load failed", logger.ItemID(item.ID), logger.Err(err))
		return ""
	}
	return text
}

// SyncProgress reports the machine's current progress to session
// persistence, best-effort.
func (s *Service) SyncProgress(ctx context.Context, m *session.Machine) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Update(ctx, m.SessionID(), m.Progress()); err != nil {
		s.log.Warn("progress sync failed", logger.SessionID(m.SessionID()), logger.Err(err))
	}
}

func (s *Service) gradedEnabled(cfg session.Config) bool {
	if cfg.Subject != session.SubjectVocabulary {
		return true
	}
	return cfg.ReviewMode == session.ModeQuiz || cfg.ReviewMode == session.ModeMixed
}

func (s *Service) ratingEnabled(cfg session.Config) bool {
	return cfg.Subject == session.SubjectVocabulary &&
		(cfg.ReviewMode == session.ModeFlashcards || cfg.ReviewMode == session.ModeMixed)
}

func (s *Service) gradeFunc(userID, sessionID string) session.GradeFunc {
	return func(ctx context.Context, item session.Item, answer string, spent int) (session.Outcome, error) {
		return s.pipeline.Submit(ctx, userID, sessionID, item, answer, spent)
	}
}

// completionPublisher emits a completion event once the machine finalizes.
// Returns nil when no bus is wired so the machine skips the hook entirely.
func (s *Service) completionPublisher(userID string) func(session.Summary) {
	if s.bus == nil {
		return nil
	}
	return func(sum session.Summary) {
		event := shared.SessionCompletedEvent{
			BaseEvent: shared.BaseEvent{
				Type:        shared.EventSessionCompleted,
				Timestamp:   s.clock.Now(),
				AggregateId: sum.SessionID,
			},
			UserID:             userID,
			SessionID:          sum.SessionID,
			QuestionsAttempted: sum.QuestionsAttempted,
			QuestionsCorrect:   sum.QuestionsCorrect,
			ElapsedSeconds:     sum.ElapsedSeconds,
		}
		if err := s.bus.Publish(context.Background(), event); err != nil {
			s.log.Debug("completion event publish failed", logger.SessionID(sum.SessionID), logger.Err(err))
		}
	}
}

// rateFunc feeds self-ratings into the scheduler and persists the updated
// card. A card store failure keeps the in-memory card state authoritative
// for the rest of the session.
func (s *Service) rateFunc(userID, sessionID string, cardsByItem map[string]srs.Card) session.RateFunc {
	return func(item session.Item, rating srs.Rating, spent int) {
		ctx := context.Background()
		now := s.clock.Now()

		card, ok := cardsByItem[item.ID]
		if !ok {
			card = srs.NewCard(item.ID, now)
		}

		updated, err := srs.Rate(card, rating, now)
		if err != nil {
			s.log.Error("scheduler rejected rating", logger.ItemID(item.ID), logger.Err(err))
			return
		}
		cardsByItem[item.ID] = updated

		if s.cards != nil {
			if err := s.cards.Save(ctx, userID, updated); err != nil {
				s.log.Warn("card save failed, keeping in-memory state",
					logger.ItemID(item.ID), logger.Err(err))
			}
		}

		if s.bus != nil {
			event := shared.CardRatedEvent{
				BaseEvent: shared.BaseEvent{
					Type:        shared.EventCardRated,
					Timestamp:   now,
					AggregateId: sessionID,
				},
				UserID:       userID,
				SessionID:    sessionID,
				ItemID:       item.ID,
				Rating:       rating.String(),
				IntervalDays: updated.IntervalDays,
			}
			if err := s.bus.Publish(ctx, event); err != nil {
				s.log.Debug("card rated event publish failed", logger.Err(err))
			}
		}
	}
}

// buildVocabularyQueue orders the fetched items by card due-ness. Items seen
// for the first time get a default card due immediately; the stable ordering
// keeps provider order for ties.
func (s *Service) buildVocabularyQueue(ctx context.Context, userID string, items []session.Item) ([]session.Item, map[string]srs.Card) {
	now := s.clock.Now()

	cardsByItem := make(map[string]srs.Card, len(items))
	if s.cards != nil {
		stored, err := s.cards.LoadAll(ctx, userID)
		if err != nil {
			s.log.Warn("card load failed, starting with fresh cards", logger.UserID(userID), logger.Err(err))
		} else {
			for _, c := range stored {
				cardsByItem[c.ItemID] = c
			}
		}
	}

	itemByID := make(map[string]session.Item, len(items))
	queue := make([]srs.Card, 0, len(items))
	for _, item := range items {
		itemByID[item.ID] = item
		card, ok := cardsByItem[item.ID]
		if !ok {
			card = srs.NewCard(item.ID, now)
		}
		queue = append(queue, card)
	}

	ordered := srs.OrderDue(queue)
	out := make([]session.Item, 0, len(ordered))
	for _, c := range ordered {
		out = append(out, itemByID[c.ItemID])
	}
	return out, cardsByItem
}

// createSessionRecord asks persistence for a session ID, falling back to a
// locally generated one when the store is unavailable.
func (s *Service) createSessionRecord(ctx context.Context, cfg session.Config) string {
	if s.sessions != nil {
		id, err := s.sessions.Create(ctx, cfg)
		if err == nil && id != "" {
			return id
		}
		if err != nil {
			s.log.Warn("session create failed, using local id", logger.Err(err))
		}
	}
	return uuid.NewString()
}
