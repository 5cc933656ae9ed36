package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lethinkj/clan-quiz-service/internal/cache"
	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

type questionService struct {
	repo       repositories.Repository
	answerKeys cache.AnswerKeyCache
	logger     *slog.Logger
	validator  *utils.Validator
}

func NewQuestionService(repo repositories.Repository, answerKeys cache.AnswerKeyCache, logger *slog.Logger, validator *utils.Validator) QuestionService {
	return &questionService{
		repo:       repo,
		answerKeys: answerKeys,
		logger:     logger,
		validator:  validator,
	}
}

// Replace swaps the quiz's entire question set. The original edit model is
// delete-and-recreate, which keeps questions immutable once a session has
// started against them.
func (s *questionService) Replace(ctx context.Context, quizID uint, req *ReplaceQuestionsRequest) ([]*models.QuizQuestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.IsLiveActive {
		return nil, ErrQuizNotEditable
	}

	questions := make([]*models.QuizQuestion, len(req.Questions))
	for i, input := range req.Questions {
		points := input.Points
		if points == 0 {
			points = 10
		}
		timeLimit := input.TimeLimit
		if timeLimit == 0 {
			timeLimit = 30
		}
		questions[i] = &models.QuizQuestion{
			QuizID:        quizID,
			Position:      i + 1,
			Text:          input.Text,
			OptionA:       input.OptionA,
			OptionB:       input.OptionB,
			OptionC:       input.OptionC,
			OptionD:       input.OptionD,
			CorrectOption: input.CorrectOption,
			Points:        points,
			TimeLimit:     timeLimit,
		}
	}

	if err := s.repo.Question().ReplaceForQuiz(ctx, quizID, questions); err != nil {
		return nil, fmt.Errorf("failed to replace questions: %w", err)
	}

	if s.answerKeys != nil {
		if err := s.answerKeys.Invalidate(ctx, quizID); err != nil {
			s.logger.Warn("Failed to invalidate answer key cache",
				"quiz_id", quizID,
				"error", err)
		}
	}

	s.logger.Info("Quiz questions replaced",
		"quiz_id", quizID,
		"question_count", len(questions))
	return questions, nil
}

func (s *questionService) GetForQuiz(ctx context.Context, quizID, questionID uint) (*models.QuizQuestion, error) {
	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.QuizID != quizID {
		return nil, ErrQuestionNotInQuiz
	}
	return question, nil
}

func (s *questionService) ListByQuiz(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	questions, err := s.repo.Question().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}
