package models

import "time"

// LeaderboardEntry is the live per-participant score projection for a quiz.
// It is continuously overwritten as answers land, not an immutable ledger.
type LeaderboardEntry struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	QuizID uint `json:"quiz_id" gorm:"not null;uniqueIndex:idx_quiz_leaderboard_quiz_user,priority:1"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex:idx_quiz_leaderboard_quiz_user,priority:2"`

	DisplayName string `json:"display_name" gorm:"not null;size:100"`

	Score           int     `json:"score" gorm:"not null;default:0"`
	AnswersCount    int     `json:"answers_count" gorm:"not null;default:0"`
	AvgResponseTime float64 `json:"avg_response_time" gorm:"not null;default:0"`

	// Host-controlled visibility flags.
	Hidden  bool `json:"hidden" gorm:"default:false"`
	Removed bool `json:"removed" gorm:"default:false;index"`

	// Advisory integrity signals surfaced to the host.
	TabSwitchCount      int `json:"tab_switch_count" gorm:"not null;default:0"`
	FullscreenExitCount int `json:"fullscreen_exit_count" gorm:"not null;default:0"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (LeaderboardEntry) TableName() string {
	return "quiz_leaderboard"
}
