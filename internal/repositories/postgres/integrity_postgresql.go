package postgres

import (
	"context"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type IntegrityPostgreSQL struct {
	db *gorm.DB
}

func NewIntegrityPostgreSQL(db *gorm.DB) repositories.IntegrityRepository {
	return &IntegrityPostgreSQL{db: db}
}

func (i *IntegrityPostgreSQL) Create(ctx context.Context, event *models.IntegrityEvent) error {
	return i.db.WithContext(ctx).Create(event).Error
}

func (i *IntegrityPostgreSQL) GetByAttempt(ctx context.Context, attemptID uint) ([]*models.IntegrityEvent, error) {
	var events []*models.IntegrityEvent
	if err := i.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (i *IntegrityPostgreSQL) CountByAttempt(ctx context.Context, attemptID uint) (*repositories.IntegrityCounts, error) {
	counts := &repositories.IntegrityCounts{}

	var tabSwitches, fullscreenExits int64
	if err := i.db.WithContext(ctx).Model(&models.IntegrityEvent{}).
		Where("attempt_id = ? AND type = ?", attemptID, models.EventTabSwitch).
		Count(&tabSwitches).Error; err != nil {
		return nil, err
	}
	if err := i.db.WithContext(ctx).Model(&models.IntegrityEvent{}).
		Where("attempt_id = ? AND type = ?", attemptID, models.EventFullscreenExit).
		Count(&fullscreenExits).Error; err != nil {
		return nil, err
	}

	counts.TabSwitches = int(tabSwitches)
	counts.FullscreenExits = int(fullscreenExits)
	return counts, nil
}
