package repositories

import (
	"context"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
)

// UserRepository interface for quiz user accounts.
type UserRepository interface {
	// Create inserts the user. A username collision surfaces as a duplicate
	// error from the unique index, not from a prior existence check.
	Create(ctx context.Context, user *models.QuizUser) error

	GetByID(ctx context.Context, id uint) (*models.QuizUser, error)
	GetByUsername(ctx context.Context, username string) (*models.QuizUser, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.QuizUser, error)
}
