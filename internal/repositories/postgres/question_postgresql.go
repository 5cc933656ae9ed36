package postgres

import (
	"context"
	"fmt"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizQuestion, error) {
	var question models.QuizQuestion
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByQuiz(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error) {
	var questions []*models.QuizQuestion
	if err := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// ReplaceForQuiz deletes and recreates the quiz's question set atomically.
func (q *QuestionPostgreSQL) ReplaceForQuiz(ctx context.Context, quizID uint, questions []*models.QuizQuestion) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quizID).Delete(&models.QuizQuestion{}).Error; err != nil {
			return fmt.Errorf("failed to delete existing questions: %w", err)
		}
		for i, question := range questions {
			question.ID = 0
			question.QuizID = quizID
			question.Position = i + 1
			if err := tx.Create(question).Error; err != nil {
				return fmt.Errorf("failed to create question at position %d: %w", i+1, err)
			}
		}
		return nil
	})
}

func (q *QuestionPostgreSQL) NextAfter(ctx context.Context, quizID uint, position int) (*models.QuizQuestion, error) {
	var question models.QuizQuestion
	if err := q.db.WithContext(ctx).
		Where("quiz_id = ? AND position > ?", quizID, position).
		Order("position ASC").
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) CountByQuiz(ctx context.Context, quizID uint) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).Model(&models.QuizQuestion{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count, err
}
