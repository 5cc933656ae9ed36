package models

import "time"

// QuizUser is a participant account. Duplicate registration is prevented by
// the unique index on username, not by a lookup before insert.
type QuizUser struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Username    string `json:"username" gorm:"not null;size:50;uniqueIndex" validate:"required,min=3,max=50"`
	DisplayName string `json:"display_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`

	PasswordHash string `json:"-" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuizUser) TableName() string {
	return "quiz_users"
}
