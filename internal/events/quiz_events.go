package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

type QuizEventType string

const (
	EventQuizActivated     QuizEventType = "quiz.activated"
	EventQuizDeactivated   QuizEventType = "quiz.deactivated"
	EventLiveQuestionShown QuizEventType = "quiz.live.question_shown"
	EventLiveRevealed      QuizEventType = "quiz.live.answer_revealed"
	EventQuizEnded         QuizEventType = "quiz.ended"
)

// QuizEvent is the envelope published for every quiz lifecycle transition.
type QuizEvent struct {
	ID        string        `json:"id"`
	Type      QuizEventType `json:"type"`
	Source    string        `json:"source"`
	Version   string        `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
	Data      interface{}   `json:"data"`
}

type QuizActivatedEvent struct {
	QuizID   uint   `json:"quiz_id"`
	Title    string `json:"title"`
	QuizType string `json:"quiz_type"`
}

type LiveQuestionShownEvent struct {
	QuizID     uint      `json:"quiz_id"`
	QuestionID uint      `json:"question_id"`
	Position   int       `json:"position"`
	StartedAt  time.Time `json:"started_at"`
}

type LiveRevealedEvent struct {
	QuizID     uint `json:"quiz_id"`
	QuestionID uint `json:"question_id"`
}

type QuizEndedEvent struct {
	QuizID uint `json:"quiz_id"`
}

// NewQuizEvent builds a versioned event envelope.
func NewQuizEvent(eventType QuizEventType, data interface{}) *QuizEvent {
	return &QuizEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Source:    "clan-quiz-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
