package postgres

import (
	"context"
	"time"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Create(quiz).Error
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&quiz, id).Error; err != nil {
		return nil, err
	}
	quiz.QuestionsCount = len(quiz.Questions)
	for _, question := range quiz.Questions {
		quiz.TotalPoints += question.Points
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) Update(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Save(quiz).Error
}

func (q *QuizPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Quiz{}, id).Error
}

func (q *QuizPostgreSQL) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	var quizzes []*models.Quiz
	var total int64

	query := q.db.WithContext(ctx).Model(&models.Quiz{})
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}
	return quizzes, total, nil
}

func (q *QuizPostgreSQL) GetActive(ctx context.Context, quizType *models.QuizType) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	query := q.db.WithContext(ctx).Where("is_active = true")
	if quizType != nil {
		query = query.Where("type = ?", *quizType)
	}
	if err := query.Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (q *QuizPostgreSQL) SetActive(ctx context.Context, id uint, active bool) error {
	return q.db.WithContext(ctx).Model(&models.Quiz{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// SetLiveState writes all three live fields in a single UPDATE so a poll
// never observes a question id without its start time.
func (q *QuizPostgreSQL) SetLiveState(ctx context.Context, id uint, questionID *uint, startTime *time.Time, liveActive bool) error {
	return q.db.WithContext(ctx).Model(&models.Quiz{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_question_id": questionID,
			"question_start_time": startTime,
			"is_live_active":      liveActive,
		}).Error
}

func (q *QuizPostgreSQL) GetStats(ctx context.Context, id uint) (*repositories.QuizStats, error) {
	var stats repositories.QuizStats

	var questionCount int64
	var totalPoints int64
	if err := q.db.WithContext(ctx).Model(&models.QuizQuestion{}).
		Where("quiz_id = ?", id).
		Count(&questionCount).Error; err != nil {
		return nil, err
	}
	q.db.WithContext(ctx).Model(&models.QuizQuestion{}).
		Where("quiz_id = ?", id).
		Select("COALESCE(SUM(points), 0)").
		Scan(&totalPoints)

	var totalAttempts, submittedAttempts int64
	if err := q.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("quiz_id = ?", id).
		Count(&totalAttempts).Error; err != nil {
		return nil, err
	}
	if err := q.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND submitted = true", id).
		Count(&submittedAttempts).Error; err != nil {
		return nil, err
	}

	var avgScore float64
	var topScore int
	q.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND submitted = true", id).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avgScore)
	q.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("quiz_id = ?", id).
		Select("COALESCE(MAX(score), 0)").
		Scan(&topScore)

	stats = repositories.QuizStats{
		TotalAttempts:     int(totalAttempts),
		SubmittedAttempts: int(submittedAttempts),
		AverageScore:      avgScore,
		TopScore:          topScore,
		QuestionCount:     int(questionCount),
		TotalPoints:       int(totalPoints),
	}
	return &stats, nil
}

func (q *QuizPostgreSQL) HasAttempts(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := q.db.WithContext(ctx).Model(&models.QuizAttempt{}).
		Where("quiz_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
