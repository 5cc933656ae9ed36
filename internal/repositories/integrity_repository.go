package repositories

import (
	"context"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
)

// IntegrityRepository interface for advisory integrity events.
type IntegrityRepository interface {
	Create(ctx context.Context, event *models.IntegrityEvent) error
	GetByAttempt(ctx context.Context, attemptID uint) ([]*models.IntegrityEvent, error)
	CountByAttempt(ctx context.Context, attemptID uint) (*IntegrityCounts, error)
}
