// Package practice orchestrates practice sessions: it resolves item lists,
// wires per-subject capabilities into the session machine, runs the answer
// submission pipeline, and feeds vocabulary ratings into the scheduler.
package practice

import (
	"context"
	"time"

	"github.com/prepdesk/prepdesk/internal/domain/session"
	"github.com/prepdesk/prepdesk/internal/domain/shared"
)

// GradeResult is the grader's verdict for one answer.
type GradeResult struct {
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// ItemProvider resolves the ordered item list for a session configuration.
// A provider failure surfaces as a load error and the session never leaves
// Configuring.
type ItemProvider interface {
	FetchItems(ctx context.Context, cfg session.Config) ([]session.Item, error)
}

// Grader submits an answer for external grading. Implementations mark
// transient failures with retry.Retryable and permanent ones with
// retry.Permanent so the pipeline can apply its policy.
type Grader interface {
	Submit(ctx context.Context, itemID, answer string, timeSpentSeconds int) (GradeResult, error)
}

// ProgressUpdate carries incremental attempted/correct counters. Attempted
// and Correct are deltas for one grading event.
type ProgressUpdate struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
}

// ProgressRecorder receives best-effort progress updates. Failures are
// logged only, never surfaced to the learner and never retried beyond the
// grading call's own policy.
type ProgressRecorder interface {
	Record(ctx context.Context, update ProgressUpdate) error
}

// HintTracker records hint usage, best-effort; failures are ignored.
type HintTracker interface {
	RecordHintUsage(ctx context.Context, sessionID, itemID string, hintIndex, timeSpentSeconds int) error
}

// DraftStore persists in-progress answer text keyed by (user, item). Any
// key-value store will do; failures are logged and non-fatal.
type DraftStore interface {
	Load(ctx context.Context, userID, itemID string) (string, error)
	Save(ctx context.Context, userID, itemID, text string) error
}

// FailedAttempt preserves an answer whose grading exhausted its retries so
// it can be inspected or replayed later instead of being silently dropped.
type FailedAttempt struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	ItemID           string    `json:"item_id"`
	Answer           string    `json:"answer"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	Reason           string    `json:"reason"`
	At               time.Time `json:"at"`
}

// FailedAttemptSink stores failed attempts per user.
type FailedAttemptSink interface {
	Stash(ctx context.Context, userID string, attempt FailedAttempt) error
}

// EventBus is the slice of the messaging bus the practice layer needs.
type EventBus interface {
	Publish(ctx context.Context, event shared.Event) error
	Subscribe(eventType shared.EventType, handler func(ctx context.Context, event shared.Event)) error
}
