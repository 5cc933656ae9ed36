package repositories

import (
	"context"
	"time"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
)

// QuizRepository interface for quiz-specific operations.
type QuizRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error // Soft delete

	// Query operations
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetActive(ctx context.Context, quizType *models.QuizType) ([]*models.Quiz, error)

	// Activation management
	SetActive(ctx context.Context, id uint, active bool) error

	// Live session state. SetLiveState writes the three live fields in one
	// update so participants never observe a partially advanced row.
	SetLiveState(ctx context.Context, id uint, questionID *uint, startTime *time.Time, liveActive bool) error

	// Statistics
	GetStats(ctx context.Context, id uint) (*QuizStats, error)

	// Validation helpers
	HasAttempts(ctx context.Context, id uint) (bool, error)
}
