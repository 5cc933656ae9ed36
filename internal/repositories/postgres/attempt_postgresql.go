package postgres

import (
	"context"
	"time"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

// GetOrCreate resolves the one attempt per (quiz, user). The insert carries
// ON CONFLICT DO NOTHING on the composite unique index, so two clients
// racing to create the attempt both land on the same row; the follow-up
// select reads whichever insert won.
func (a *AttemptPostgreSQL) GetOrCreate(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error) {
	attempt := &models.QuizAttempt{
		QuizID:    quizID,
		UserID:    userID,
		StartedAt: time.Now().UTC(),
	}
	if err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "quiz_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(attempt).Error; err != nil {
		return nil, err
	}

	return a.GetByQuizAndUser(ctx, quizID, userID)
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithAnswers(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Preload("Answers").
		Preload("Answers.Question").
		Preload("User").
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByQuizAndUser(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	var attempts []*models.QuizAttempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.QuizAttempt{}).Where("quiz_id = ?", quizID)
	if filters.Submitted != nil {
		query = query.Where("submitted = ?", *filters.Submitted)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, "started_at", "desc", filters.Limit, filters.Offset)
	if err := query.Preload("User").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// InsertAnswer relies on the (attempt_id, question_id) unique index: a
// second submit for the same question inserts nothing and reports
// inserted=false.
func (a *AttemptPostgreSQL) InsertAnswer(ctx context.Context, answer *models.QuizAnswer) (bool, error) {
	result := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
			DoNothing: true,
		}).
		Create(answer)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (a *AttemptPostgreSQL) GetAnswers(ctx context.Context, attemptID uint) ([]*models.QuizAnswer, error) {
	var answers []*models.QuizAnswer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("created_at ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (a *AttemptPostgreSQL) AddScore(ctx context.Context, id uint, delta int) error {
	return a.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("id = ?", id).
		Update("score", gorm.Expr("score + ?", delta)).Error
}

func (a *AttemptPostgreSQL) MarkSubmitted(ctx context.Context, id uint) error {
	now := time.Now().UTC()
	return a.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("id = ? AND submitted = false", id).
		Updates(map[string]interface{}{
			"submitted":    true,
			"submitted_at": now,
		}).Error
}

func (a *AttemptPostgreSQL) IncrementTabSwitches(ctx context.Context, id uint) error {
	return a.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("id = ?", id).
		Update("tab_switch_count", gorm.Expr("tab_switch_count + 1")).Error
}

// CalculateScore defers to the calculate_quiz_score database function used
// by the self-paced finalization path.
func (a *AttemptPostgreSQL) CalculateScore(ctx context.Context, attemptID uint) (int, error) {
	var score int
	if err := a.db.WithContext(ctx).
		Raw("SELECT calculate_quiz_score(?)", attemptID).
		Scan(&score).Error; err != nil {
		return 0, err
	}
	return score, nil
}
