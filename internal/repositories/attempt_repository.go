package repositories

import (
	"context"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
)

// AttemptRepository interface for attempt and answer operations.
type AttemptRepository interface {
	// GetOrCreate returns the attempt for (quiz, user), creating it if none
	// exists. Creation is an ON CONFLICT DO NOTHING insert keyed by the
	// unique (quiz_id, user_id) index, so two racing clients converge on
	// the same row.
	GetOrCreate(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error)

	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	GetByIDWithAnswers(ctx context.Context, id uint) (*models.QuizAttempt, error)
	GetByQuizAndUser(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error)
	GetByQuiz(ctx context.Context, quizID uint, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)

	// InsertAnswer inserts the answer unless one already exists for the same
	// (attempt, question). Returns inserted=false on conflict; duplicates
	// are a silent no-op for callers.
	InsertAnswer(ctx context.Context, answer *models.QuizAnswer) (inserted bool, err error)
	GetAnswers(ctx context.Context, attemptID uint) ([]*models.QuizAnswer, error)

	AddScore(ctx context.Context, id uint, delta int) error
	MarkSubmitted(ctx context.Context, id uint) error
	IncrementTabSwitches(ctx context.Context, id uint) error

	// CalculateScore invokes the calculate_quiz_score database function for
	// the self-paced finalization path.
	CalculateScore(ctx context.Context, attemptID uint) (int, error)
}
