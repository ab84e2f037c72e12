package shared

import "time"

// EventType represents the type of domain event.
type EventType string

// Domain event types published on the engine's event bus.
const (
	// Session events
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"

	// Grading events
	EventAnswerGraded  EventType = "grading.answer_graded"
	EventGradingFailed EventType = "grading.failed"

	// Review events
	EventCardRated EventType = "review.card_rated"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event.
func (e BaseEvent) EventType() EventType { return e.Type }

// OccurredAt implements Event.
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// AggregateID implements Event.
func (e BaseEvent) AggregateID() string { return e.AggregateId }

// AnswerGradedEvent is published after each successful grading.
type AnswerGradedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	ItemID    string `json:"item_id"`
	Correct   bool   `json:"correct"`
}

// SessionCompletedEvent is published when a session reaches Completed.
type SessionCompletedEvent struct {
	BaseEvent
	UserID             string `json:"user_id"`
	SessionID          string `json:"session_id"`
	QuestionsAttempted int    `json:"questions_attempted"`
	QuestionsCorrect   int    `json:"questions_correct"`
	ElapsedSeconds     int    `json:"elapsed_seconds"`
}

// CardRatedEvent is published after a vocabulary self-rating.
type CardRatedEvent struct {
	BaseEvent
	UserID       string `json:"user_id"`
	SessionID    string `json:"session_id"`
	ItemID       string `json:"item_id"`
	Rating       string `json:"rating"`
	IntervalDays int    `json:"interval_days"`
}
