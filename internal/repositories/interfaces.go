package repositories

import (
	"time"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Type      *models.QuizType `json:"type"`
	IsActive  *bool            `json:"is_active"`
	CreatedBy *uint            `json:"created_by"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "title"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	Submitted *bool      `json:"submitted"`
	UserID    *uint      `json:"user_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

type LeaderboardFilters struct {
	IncludeHidden bool `json:"include_hidden"`
	Limit         int  `json:"limit"`
}

// ===== SHARED STATISTICS STRUCTS =====

type QuizStats struct {
	TotalAttempts     int     `json:"total_attempts"`
	SubmittedAttempts int     `json:"submitted_attempts"`
	AverageScore      float64 `json:"average_score"`
	TopScore          int     `json:"top_score"`
	QuestionCount     int     `json:"question_count"`
	TotalPoints       int     `json:"total_points"`
}

type IntegrityCounts struct {
	TabSwitches     int `json:"tab_switches"`
	FullscreenExits int `json:"fullscreen_exits"`
}
