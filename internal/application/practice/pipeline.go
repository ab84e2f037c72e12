package practice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/prepdesk/prepdesk/internal/domain/session"
	"github.com/prepdesk/prepdesk/internal/domain/shared"
	"github.com/prepdesk/prepdesk/pkg/logger"
	"github.com/prepdesk/prepdesk/pkg/retry"
	"github.com/prepdesk/prepdesk/pkg/timeutil"
)

// Pipeline is the answer submission pipeline: it sends an answer to the
// external grader under the retry policy, preserves attempts that exhaust
// their retries, and emits best-effort progress updates on success.
type Pipeline struct {
	grader Grader
	policy retry.Policy
	sink   FailedAttemptSink
	bus    EventBus
	log    *logger.Logger
	clock  timeutil.Clock
}

// PipelineConfig configures a Pipeline. Grader is required; everything else
// has a working default or is optional.
type PipelineConfig struct {
	Grader Grader
	Policy retry.Policy      // zero value -> retry.GraderPolicy()
	Sink   FailedAttemptSink // optional; failed attempts are dropped with a log entry if nil
	Bus    EventBus          // optional
	Logger *logger.Logger
	Clock  timeutil.Clock
}

// NewPipeline creates the submission pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	policy := cfg.Policy
	if policy.MaxAttempts == 0 {
		policy = retry.GraderPolicy()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &Pipeline{
		grader: cfg.Grader,
		policy: policy,
		sink:   cfg.Sink,
		bus:    cfg.Bus,
		log:    log,
		clock:  clock,
	}
}

// Submit grades one answer. Transient grader failures are retried per the
// policy; a permanent failure returns immediately. When the retry budget is
// exhausted the attempt is stashed for later replay and the transient error
// is returned so the caller can show a retry/offline notice - the session
// itself never halts on a grading failure.
func (p *Pipeline) Submit(ctx context.Context, userID, sessionID string, item session.Item, answer string, timeSpentSeconds int) (session.Outcome, error) {
	policy := p.policy
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		p.log.Warn("grading attempt failed, retrying",
			logger.SessionID(sessionID),
			logger.ItemID(item.ID),
			logger.Attempt(attempt),
			logger.F("delay", delay.String()),
			logger.Err(err))
	}

	result, err := retry.DoWithData(ctx, policy, func(ctx context.Context) (GradeResult, error) {
		return p.grader.Submit(ctx, item.ID, answer, timeSpentSeconds)
	})
	if err != nil {
		if shared.IsTransientGrading(err) {
			p.preserveFailedAttempt(ctx, userID, sessionID, item.ID, answer, timeSpentSeconds, err)
		}
		return session.Outcome{}, err
	}

	p.recordSuccess(ctx, userID, sessionID, item.ID, result)

	return session.Outcome{
		Correct:       result.Correct,
		Explanation:   result.Explanation,
		CorrectAnswer: result.CorrectAnswer,
	}, nil
}

// preserveFailedAttempt stashes an answer whose grading ran out of retries.
func (p *Pipeline) preserveFailedAttempt(ctx context.Context, userID, sessionID, itemID, answer string, timeSpentSeconds int, cause error) {
	attempt := FailedAttempt{
		ID:               uuid.NewString(),
		SessionID:        sessionID,
		ItemID:           itemID,
		Answer:           answer,
		TimeSpentSeconds: timeSpentSeconds,
		Reason:           cause.Error(),
		At:               p.clock.Now(),
	}

	if p.sink == nil {
		p.log.Warn("no failed-attempt sink configured, dropping attempt",
			logger.SessionID(sessionID), logger.ItemID(itemID))
		return
	}
	if err := p.sink.Stash(ctx, userID, attempt); err != nil {
		p.log.Error("failed to preserve failed attempt",
			logger.SessionID(sessionID), logger.ItemID(itemID), logger.Err(err))
		return
	}
	p.log.Info("preserved failed grading attempt for replay",
		logger.SessionID(sessionID), logger.ItemID(itemID))
}

// recordSuccess publishes the best-effort progress side channel. A publish
// failure is logged and never surfaced to the learner.
func (p *Pipeline) recordSuccess(ctx context.Context, userID, sessionID, itemID string, result GradeResult) {
	if p.bus == nil {
		return
	}
	event := shared.AnswerGradedEvent{
		BaseEvent: shared.BaseEvent{
			Type:        shared.EventAnswerGraded,
			Timestamp:   p.clock.Now(),
			AggregateId: sessionID,
		},
		UserID:    userID,
		SessionID: sessionID,
		ItemID:    itemID,
		Correct:   result.Correct,
	}
	if err := p.bus.Publish(ctx, event); err != nil {
		p.log.Warn("failed to publish grading event",
			logger.SessionID(sessionID), logger.Err(err))
	}
}
