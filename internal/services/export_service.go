package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportResults(ctx context.Context, quizID uint) ([]byte, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	entries, err := s.repo.Leaderboard().GetByQuiz(ctx, quizID, repositories.LeaderboardFilters{
		IncludeHidden: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Rank", "Display Name", "Score", "Answers", "Avg Response Time (s)",
		"Tab Switches", "Fullscreen Exits", "Hidden",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, entry := range entries {
		row := []interface{}{
			rowIndex + 1,
			entry.DisplayName,
			entry.Score,
			entry.AnswersCount,
			entry.AvgResponseTime,
			entry.TabSwitchCount,
			entry.FullscreenExitCount,
			entry.Hidden,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Results exported",
		"quiz_id", quizID,
		"quiz_title", quiz.Title,
		"entries", len(entries))
	return buf.Bytes(), nil
}
