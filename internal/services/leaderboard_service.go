package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
)

type leaderboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewLeaderboardService(repo repositories.Repository, logger *slog.Logger) LeaderboardService {
	return &leaderboardService{
		repo:   repo,
		logger: logger,
	}
}

func (s *leaderboardService) Get(ctx context.Context, quizID uint, includeHidden bool) ([]*models.LeaderboardEntry, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	entries, err := s.repo.Leaderboard().GetByQuiz(ctx, quizID, repositories.LeaderboardFilters{
		IncludeHidden: includeHidden,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

func (s *leaderboardService) SetHidden(ctx context.Context, quizID, userID uint, hidden bool) error {
	if err := s.repo.Leaderboard().SetHidden(ctx, quizID, userID, hidden); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLeaderboardEntryNotFound
		}
		return fmt.Errorf("failed to update leaderboard entry: %w", err)
	}
	s.logger.Info("Leaderboard entry visibility changed",
		"quiz_id", quizID,
		"user_id", userID,
		"hidden", hidden)
	return nil
}

func (s *leaderboardService) Remove(ctx context.Context, quizID, userID uint) error {
	if err := s.repo.Leaderboard().SetRemoved(ctx, quizID, userID, true); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLeaderboardEntryNotFound
		}
		return fmt.Errorf("failed to remove leaderboard entry: %w", err)
	}
	s.logger.Info("Leaderboard entry removed",
		"quiz_id", quizID,
		"user_id", userID)
	return nil
}
