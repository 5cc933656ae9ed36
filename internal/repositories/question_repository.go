package repositories

import (
	"context"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
)

// QuestionRepository interface for quiz question operations.
type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.QuizQuestion, error)
	GetByQuiz(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error) // ordered by position

	// ReplaceForQuiz deletes every question of the quiz and recreates the
	// given set in one transaction. Question edits always go through a full
	// replace; individual questions are immutable once a session starts.
	ReplaceForQuiz(ctx context.Context, quizID uint, questions []*models.QuizQuestion) error

	// NextAfter returns the question following the given position, or a
	// not-found error past the end of the quiz.
	NextAfter(ctx context.Context, quizID uint, position int) (*models.QuizQuestion, error)

	CountByQuiz(ctx context.Context, quizID uint) (int64, error)
}
