package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lethinkj/clan-quiz-service/internal/events"
	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

type quizService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewQuizService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) QuizService {
	return &quizService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, createdBy uint) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz := &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		TimeLimit:   req.TimeLimit,
		CreatedBy:   createdBy,
	}
	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created",
		"quiz_id", quiz.ID,
		"title", quiz.Title,
		"type", quiz.Type)
	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz with questions: %w", err)
	}
	return quiz, nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.IsLiveActive {
		return nil, ErrQuizNotEditable
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	s.logger.Info("Quiz updated", "quiz_id", quiz.ID)
	return quiz, nil
}

func (s *quizService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	hasAttempts, err := s.repo.Quiz().HasAttempts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check attempts: %w", err)
	}
	if hasAttempts {
		return ErrQuizNotDeletable
	}

	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.logger.Info("Quiz deleted", "quiz_id", id)
	return nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	quizzes, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, total, nil
}

func (s *quizService) SetActive(ctx context.Context, id uint, active bool) error {
	quiz, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if active {
		count, err := s.repo.Question().CountByQuiz(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count questions: %w", err)
		}
		if count == 0 {
			return ErrQuizNoQuestions
		}
	}

	if err := s.repo.Quiz().SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("failed to set quiz active state: %w", err)
	}

	eventType := events.EventQuizActivated
	if !active {
		eventType = events.EventQuizDeactivated
	}
	event := events.NewQuizEvent(eventType, events.QuizActivatedEvent{
		QuizID:   quiz.ID,
		Title:    quiz.Title,
		QuizType: string(quiz.Type),
	})
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish quiz activation event",
			"quiz_id", id,
			"error", err)
	}

	s.logger.Info("Quiz active state changed", "quiz_id", id, "active", active)
	return nil
}

func (s *quizService) GetStats(ctx context.Context, id uint) (*repositories.QuizStats, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	stats, err := s.repo.Quiz().GetStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz stats: %w", err)
	}
	return stats, nil
}
