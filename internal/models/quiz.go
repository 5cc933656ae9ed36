package models

import (
	"time"

	"gorm.io/gorm"
)

type QuizType string

const (
	QuizSelfPaced QuizType = "self_paced"
	QuizLive      QuizType = "live"
)

type Quiz struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	Title       string   `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string  `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Type        QuizType `json:"type" gorm:"not null;default:self_paced;index" validate:"omitempty,quiz_type"`

	// TimeLimit is the whole-quiz limit in seconds for self-paced quizzes.
	// Live quizzes time each question individually.
	TimeLimit int  `json:"time_limit" gorm:"not null;default:600" validate:"min=10,max=7200"`
	IsActive  bool `json:"is_active" gorm:"default:false;index"`

	// Live session fields, owned by the host. CurrentQuestionID, when set,
	// must reference a question belonging to this quiz.
	IsLiveActive      bool       `json:"is_live_active" gorm:"default:false"`
	CurrentQuestionID *uint      `json:"current_question_id"`
	QuestionStartTime *time.Time `json:"question_start_time"`

	// Metadata
	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []QuizQuestion `json:"questions" gorm:"foreignKey:QuizID"`
	Attempts  []QuizAttempt  `json:"attempts" gorm:"foreignKey:QuizID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
	TotalPoints    int `json:"total_points" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
