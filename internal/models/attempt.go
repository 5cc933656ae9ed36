package models

import "time"

// QuizAttempt is one participant's single run through a quiz. The composite
// unique index on (quiz_id, user_id) is what prevents duplicate attempts;
// creation goes through an ON CONFLICT upsert, never a check-then-insert.
type QuizAttempt struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	QuizID uint `json:"quiz_id" gorm:"not null;uniqueIndex:idx_quiz_attempts_quiz_user,priority:1"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_quiz_attempts_quiz_user,priority:2"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	Submitted   bool       `json:"submitted" gorm:"default:false;index"`
	SubmittedAt *time.Time `json:"submitted_at"`

	// Score accumulates the points awarded per answer.
	Score int `json:"score" gorm:"not null;default:0"`

	// Advisory integrity counter; never affects scoring.
	TabSwitchCount int `json:"tab_switch_count" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz    Quiz         `json:"quiz" gorm:"foreignKey:QuizID"`
	User    QuizUser     `json:"user" gorm:"foreignKey:UserID"`
	Answers []QuizAnswer `json:"answers" gorm:"foreignKey:AttemptID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// QuizAnswer records one selection within an attempt. At most one answer
// exists per (attempt, question), enforced by the unique index together
// with insert-or-nothing conflict handling.
type QuizAnswer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;uniqueIndex:idx_quiz_answers_attempt_question,priority:1"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_quiz_answers_attempt_question,priority:2"`

	Selected  AnswerOption `json:"selected" gorm:"not null;size:1"`
	IsCorrect bool         `json:"is_correct" gorm:"not null"`

	// ResponseTime is the latency in seconds between the question becoming
	// active and the submission.
	ResponseTime  float64 `json:"response_time" gorm:"not null"`
	PointsAwarded int     `json:"points_awarded" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Question QuizQuestion `json:"question" gorm:"foreignKey:QuestionID"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
