package models

import (
	"time"

	"gorm.io/datatypes"
)

type IntegrityEventType string

const (
	EventTabSwitch      IntegrityEventType = "tab_switch"
	EventFullscreenExit IntegrityEventType = "fullscreen_exit"
)

// IntegrityEvent is an advisory signal reported by a participant's client
// during an attempt. Events are surfaced to the host and mirrored as counters
// on the leaderboard projection; they never block submission or change scores.
type IntegrityEvent struct {
	ID        uint               `json:"id" gorm:"primaryKey"`
	AttemptID uint               `json:"attempt_id" gorm:"not null;index"`
	Type      IntegrityEventType `json:"type" gorm:"not null;index"`

	// QuestionID, when set, is the question active at the time of the event.
	QuestionID *uint          `json:"question_id"`
	Data       datatypes.JSON `json:"data" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Attempt QuizAttempt `json:"attempt" gorm:"foreignKey:AttemptID"`
}

func (IntegrityEvent) TableName() string {
	return "quiz_integrity_events"
}
