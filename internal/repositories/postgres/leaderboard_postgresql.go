package postgres

import (
	"context"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaderboardPostgreSQL struct {
	db *gorm.DB
}

func NewLeaderboardPostgreSQL(db *gorm.DB) repositories.LeaderboardRepository {
	return &LeaderboardPostgreSQL{db: db}
}

// Upsert overwrites the score projection keyed by (quiz_id, user_id).
// Visibility flags are deliberately excluded from the update set so a
// host's hide/remove decision survives subsequent answer writes.
func (l *LeaderboardPostgreSQL) Upsert(ctx context.Context, entry *models.LeaderboardEntry) error {
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "quiz_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "score", "answers_count", "avg_response_time",
				"tab_switch_count", "fullscreen_exit_count", "updated_at",
			}),
		}).
		Create(entry).Error
}

func (l *LeaderboardPostgreSQL) GetByQuiz(ctx context.Context, quizID uint, filters repositories.LeaderboardFilters) ([]*models.LeaderboardEntry, error) {
	var entries []*models.LeaderboardEntry
	query := l.db.WithContext(ctx).
		Where("quiz_id = ? AND removed = false", quizID)
	if !filters.IncludeHidden {
		query = query.Where("hidden = false")
	}
	query = query.Order("score DESC, avg_response_time ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (l *LeaderboardPostgreSQL) GetByQuizAndUser(ctx context.Context, quizID, userID uint) (*models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	if err := l.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (l *LeaderboardPostgreSQL) SetHidden(ctx context.Context, quizID, userID uint, hidden bool) error {
	return l.updateFlag(ctx, quizID, userID, "hidden", hidden)
}

func (l *LeaderboardPostgreSQL) SetRemoved(ctx context.Context, quizID, userID uint, removed bool) error {
	return l.updateFlag(ctx, quizID, userID, "removed", removed)
}

func (l *LeaderboardPostgreSQL) updateFlag(ctx context.Context, quizID, userID uint, column string, value bool) error {
	result := l.db.WithContext(ctx).Model(&models.LeaderboardEntry{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (l *LeaderboardPostgreSQL) IncrementTabSwitches(ctx context.Context, quizID, userID uint) error {
	return l.db.WithContext(ctx).Model(&models.LeaderboardEntry{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Update("tab_switch_count", gorm.Expr("tab_switch_count + 1")).Error
}

func (l *LeaderboardPostgreSQL) IncrementFullscreenExits(ctx context.Context, quizID, userID uint) error {
	return l.db.WithContext(ctx).Model(&models.LeaderboardEntry{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Update("fullscreen_exit_count", gorm.Expr("fullscreen_exit_count + 1")).Error
}
