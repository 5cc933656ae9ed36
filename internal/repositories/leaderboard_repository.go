package repositories

import (
	"context"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
)

// LeaderboardRepository interface for the live score projection.
type LeaderboardRepository interface {
	// Upsert overwrites the projection row for (quiz, user), inserting it on
	// first contact. The projection is continuously rewritten as answers
	// land; it is not append-only.
	Upsert(ctx context.Context, entry *models.LeaderboardEntry) error

	GetByQuiz(ctx context.Context, quizID uint, filters LeaderboardFilters) ([]*models.LeaderboardEntry, error)
	GetByQuizAndUser(ctx context.Context, quizID, userID uint) (*models.LeaderboardEntry, error)

	// Host-controlled visibility.
	SetHidden(ctx context.Context, quizID, userID uint, hidden bool) error
	SetRemoved(ctx context.Context, quizID, userID uint, removed bool) error

	// Integrity counters, incremented atomically in the database.
	IncrementTabSwitches(ctx context.Context, quizID, userID uint) error
	IncrementFullscreenExits(ctx context.Context, quizID, userID uint) error
}
