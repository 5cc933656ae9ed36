package models

import "time"

// AnswerOption identifies one of the four fixed options of a question.
type AnswerOption string

const (
	OptionA AnswerOption = "a"
	OptionB AnswerOption = "b"
	OptionC AnswerOption = "c"
	OptionD AnswerOption = "d"
)

// Valid reports whether o names one of the four options.
func (o AnswerOption) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

type QuizQuestion struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	QuizID uint `json:"quiz_id" gorm:"not null;index:idx_quiz_questions_quiz_position,unique,priority:1"`

	// Position is the 1-based ordinal within the quiz.
	Position int    `json:"position" gorm:"not null;index:idx_quiz_questions_quiz_position,unique,priority:2" validate:"required,min=1"`
	Text     string `json:"text" gorm:"not null;type:text" validate:"required,min=1"`

	// The four options are named columns rather than a keyed lookup so a
	// selection is always checked against a real field.
	OptionA string `json:"option_a" gorm:"not null" validate:"required"`
	OptionB string `json:"option_b" gorm:"not null" validate:"required"`
	OptionC string `json:"option_c" gorm:"not null" validate:"required"`
	OptionD string `json:"option_d" gorm:"not null" validate:"required"`

	CorrectOption AnswerOption `json:"correct_option" gorm:"not null;size:1" validate:"required,answer_option"`

	Points    int `json:"points" gorm:"not null;default:10" validate:"min=1,max=100"`
	TimeLimit int `json:"time_limit" gorm:"not null;default:30" validate:"min=5,max=600"` // seconds

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OptionText returns the display text for the given option.
func (q *QuizQuestion) OptionText(o AnswerOption) (string, bool) {
	switch o {
	case OptionA:
		return q.OptionA, true
	case OptionB:
		return q.OptionB, true
	case OptionC:
		return q.OptionC, true
	case OptionD:
		return q.OptionD, true
	}
	return "", false
}

// IsCorrect reports whether the selected option is the correct one.
func (q *QuizQuestion) IsCorrect(o AnswerOption) bool {
	return o.Valid() && o == q.CorrectOption
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
