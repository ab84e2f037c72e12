// Package session implements the practice session lifecycle: a state machine
// driving timed item traversal, answering, pausing, and completion uniformly
// across subjects. The machine consumes a per-second Ticker and delegates
// grading and self-rating to capabilities injected by the application layer.
package session

import (
	"strconv"
	"strings"

	"github.com/prepdesk/prepdesk/internal/domain/shared"
	"github.com/prepdesk/prepdesk/internal/domain/srs"
)

// Subject identifies a practice subject.
type Subject string

const (
	SubjectMath       Subject = "math"
	SubjectEnglish    Subject = "english"
	SubjectVocabulary Subject = "vocabulary"
)

// IsValid checks that the subject is one the engine knows.
func (s Subject) IsValid() bool {
	switch s {
	case SubjectMath, SubjectEnglish, SubjectVocabulary:
		return true
	default:
		return false
	}
}

// ReviewMode selects how a vocabulary session presents its items.
type ReviewMode string

const (
	// ModeFlashcards shows cards for self-rating through the scheduler.
	ModeFlashcards ReviewMode = "flashcards"
	// ModeQuiz grades typed answers through the grading pipeline.
	ModeQuiz ReviewMode = "quiz"
	// ModeMixed makes both paths available; the caller picks per item.
	ModeMixed ReviewMode = "mixed"
)

// IsValid checks that the review mode is known.
func (m ReviewMode) IsValid() bool {
	switch m {
	case ModeFlashcards, ModeQuiz, ModeMixed:
		return true
	default:
		return false
	}
}

// ItemKind describes the expected answer format of an item.
type ItemKind string

const (
	KindText    ItemKind = "text"
	KindNumeric ItemKind = "numeric"
	KindChoice  ItemKind = "choice"
)

// Item is one practice item reference. Authoring and rendering of item
// content are external concerns; the engine only needs identity, the answer
// format, and optional choices and hints.
type Item struct {
	ID      string   `json:"id"`
	Kind    ItemKind `json:"kind"`
	Topic   string   `json:"topic,omitempty"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices,omitempty"`
	Hints   []string `json:"hints,omitempty"`
}

// Config is the immutable input to session creation.
type Config struct {
	UserID           string     `json:"user_id"`
	Subject          Subject    `json:"subject"`
	Topics           []string   `json:"topics,omitempty"`
	ItemCount        int        `json:"item_count"`
	TimeLimitSeconds int        `json:"time_limit_seconds"` // 0 = unlimited
	ReviewMode       ReviewMode `json:"review_mode,omitempty"`
}

// Validate checks the configuration before a session is created.
func (c Config) Validate() error {
	if !c.Subject.IsValid() {
		return shared.NewDomainError("session", "Validate", shared.ErrInvalidInput, "unknown subject")
	}
	if c.ItemCount <= 0 {
		return shared.NewDomainError("session", "Validate", shared.ErrInvalidInput, "item count must be positive")
	}
	if c.TimeLimitSeconds < 0 {
		return shared.NewDomainError("session", "Validate", shared.ErrInvalidInput, "time limit cannot be negative")
	}
	if c.Subject == SubjectVocabulary && !c.ReviewMode.IsValid() {
		return shared.NewDomainError("session", "Validate", shared.ErrInvalidInput, "vocabulary sessions require a review mode")
	}
	return nil
}

// Status is the session lifecycle state.
type Status string

const (
	StatusConfiguring Status = "configuring"
	StatusLoading     Status = "loading"
	StatusPresenting  Status = "presenting"
	StatusSubmitting  Status = "submitting"
	StatusFeedback    Status = "feedback"
	StatusFinalizing  Status = "finalizing"
	StatusCompleted   Status = "completed"
)

// IsTerminal reports whether the session has finished.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// AnswerRecord is one graded or self-rated response. Records are appended in
// presentation order and never mutated after creation.
type AnswerRecord struct {
	ItemID           string      `json:"item_id"`
	Submitted        string      `json:"submitted,omitempty"`
	Correct          *bool       `json:"correct,omitempty"` // absent for self-rated items
	TimeSpentSeconds int         `json:"time_spent_seconds"`
	Rating           *srs.Rating `json:"rating,omitempty"` // set for self-rated items
}

// Session is one practice attempt. It is mutated only by the Machine.
type Session struct {
	ID               string
	UserID           string
	Subject          Subject
	ReviewMode       ReviewMode
	Status           Status
	Items            []Item
	CurrentIndex     int
	ElapsedSeconds   int
	TimeLimitSeconds int
	Answers          []AnswerRecord
	Paused           bool
}

// New creates a session in Configuring with the resolved item list.
func New(id string, cfg Config, items []Item) *Session {
	return &Session{
		ID:               id,
		UserID:           cfg.UserID,
		Subject:          cfg.Subject,
		ReviewMode:       cfg.ReviewMode,
		Status:           StatusConfiguring,
		Items:            items,
		TimeLimitSeconds: cfg.TimeLimitSeconds,
		Answers:          make([]AnswerRecord, 0, len(items)),
	}
}

// Summary is the completed-session result handed to persistence.
type Summary struct {
	SessionID          string  `json:"session_id"`
	Subject            Subject `json:"subject"`
	QuestionsAttempted int     `json:"questions_attempted"`
	QuestionsCorrect   int     `json:"questions_correct"`
	ElapsedSeconds     int     `json:"elapsed_seconds"`
}

// Progress is the incremental state reported to persistence mid-session.
type Progress struct {
	CurrentIndex   int `json:"current_index"`
	ElapsedSeconds int `json:"elapsed_seconds"`
	Attempted      int `json:"attempted"`
	Correct        int `json:"correct"`
}

func (s *Session) summary() Summary {
	correct := 0
	for _, a := range s.Answers {
		if a.Correct != nil && *a.Correct {
			correct++
		}
	}
	return Summary{
		SessionID:          s.ID,
		Subject:            s.Subject,
		QuestionsAttempted: len(s.Answers),
		QuestionsCorrect:   correct,
		ElapsedSeconds:     s.ElapsedSeconds,
	}
}

func (s *Session) progress() Progress {
	sum := s.summary()
	return Progress{
		CurrentIndex:   s.CurrentIndex,
		ElapsedSeconds: s.ElapsedSeconds,
		Attempted:      sum.QuestionsAttempted,
		Correct:        sum.QuestionsCorrect,
	}
}

// validateAnswer checks a submitted value against the item's answer format.
// Invalid input is reported synchronously and never advances state.
func validateAnswer(item Item, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return shared.ErrEmptyAnswer
	}

	switch item.Kind {
	case KindNumeric:
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return shared.ErrMalformedAnswer
		}
	case KindChoice:
		for i, choice := range item.Choices {
			if strings.EqualFold(trimmed, choice) || trimmed == strconv.Itoa(i+1) {
				return nil
			}
		}
		return shared.ErrMalformedAnswer
	}
	return nil
}
