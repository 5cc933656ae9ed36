package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lethinkj/clan-quiz-service/internal/cache"
	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

type attemptService struct {
	repo       repositories.Repository
	answerKeys cache.AnswerKeyCache
	logger     *slog.Logger
	validator  *utils.Validator
}

func NewAttemptService(repo repositories.Repository, answerKeys cache.AnswerKeyCache, logger *slog.Logger, validator *utils.Validator) AttemptService {
	return &attemptService{
		repo:       repo,
		answerKeys: answerKeys,
		logger:     logger,
		validator:  validator,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) StartOrResume(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if !quiz.IsActive {
		return nil, ErrQuizNotActive
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	attempt, err := s.repo.Attempt().GetOrCreate(ctx, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to start attempt: %w", err)
	}

	// Seed the projection so integrity counters have a row to land on
	// before the first answer arrives.
	if err := s.refreshLeaderboard(ctx, attempt, user.DisplayName); err != nil {
		s.logger.Error("Failed to seed leaderboard entry",
			"quiz_id", quizID,
			"user_id", userID,
			"error", err)
	}

	s.logger.Info("Attempt started or resumed",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"user_id", userID)
	return attempt, nil
}

func (s *attemptService) SubmitAnswer(ctx context.Context, quizID, userID uint, req *SubmitAnswerRequest) (*AnswerResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attempt, err := s.repo.Attempt().GetByQuizAndUser(ctx, quizID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.Submitted {
		return nil, ErrAttemptAlreadySubmitted
	}

	key, err := s.answerKey(ctx, quizID, req.QuestionID)
	if err != nil {
		return nil, err
	}

	isCorrect := req.Selected == key.Correct
	points := Score(isCorrect, req.ResponseTime, float64(key.TimeLimit))

	answer := &models.QuizAnswer{
		AttemptID:     attempt.ID,
		QuestionID:    key.QuestionID,
		Selected:      req.Selected,
		IsCorrect:     isCorrect,
		ResponseTime:  req.ResponseTime,
		PointsAwarded: points,
	}
	inserted, err := s.repo.Attempt().InsertAnswer(ctx, answer)
	if err != nil {
		return nil, fmt.Errorf("failed to insert answer: %w", err)
	}
	if !inserted {
		// Already answered; duplicate submits are a silent no-op.
		return &AnswerResult{
			QuestionID:    key.QuestionID,
			Correct:       isCorrect,
			CorrectOption: key.Correct,
			PointsAwarded: 0,
			TotalScore:    attempt.Score,
			Duplicate:     true,
		}, nil
	}

	if points > 0 {
		if err := s.repo.Attempt().AddScore(ctx, attempt.ID, points); err != nil {
			return nil, fmt.Errorf("failed to add score: %w", err)
		}
		attempt.Score += points
	}

	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.refreshLeaderboard(ctx, attempt, user.DisplayName); err != nil {
		s.logger.Error("Failed to refresh leaderboard entry",
			"attempt_id", attempt.ID,
			"error", err)
	}

	s.logger.Info("Answer submitted",
		"attempt_id", attempt.ID,
		"question_id", key.QuestionID,
		"correct", isCorrect,
		"points", points)

	return &AnswerResult{
		QuestionID:    key.QuestionID,
		Correct:       isCorrect,
		CorrectOption: key.Correct,
		PointsAwarded: points,
		TotalScore:    attempt.Score,
	}, nil
}

// answerKey resolves scoring data through the cache when one is configured,
// falling back to the question table so cache trouble never blocks answers.
func (s *attemptService) answerKey(ctx context.Context, quizID, questionID uint) (*cache.AnswerKey, error) {
	if s.answerKeys != nil {
		key, err := s.answerKeys.Get(ctx, quizID, questionID)
		if err == nil {
			return key, nil
		}
		if err != cache.ErrKeyNotFound {
			s.logger.Warn("Answer key cache unavailable",
				"quiz_id", quizID,
				"question_id", questionID,
				"error", err)
		}
	}

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
	return &cache.AnswerKey{
		QuestionID: question.ID,
		Correct:    question.CorrectOption,
		Points:     question.Points,
		TimeLimit:  question.TimeLimit,
	}, nil
}

func (s *attemptService) Submit(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByQuizAndUser(ctx, quizID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.Submitted {
		return nil, ErrAttemptAlreadySubmitted
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	// Self-paced attempts are rescored authoritatively by the database
	// function; the live path accumulated its score per answer.
	if quiz.Type == models.QuizSelfPaced {
		score, err := s.repo.Attempt().CalculateScore(ctx, attempt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate score: %w", err)
		}
		if delta := score - attempt.Score; delta != 0 {
			if err := s.repo.Attempt().AddScore(ctx, attempt.ID, delta); err != nil {
				return nil, fmt.Errorf("failed to store calculated score: %w", err)
			}
			attempt.Score = score
		}
	}

	if err := s.repo.Attempt().MarkSubmitted(ctx, attempt.ID); err != nil {
		return nil, fmt.Errorf("failed to mark attempt submitted: %w", err)
	}
	attempt.Submitted = true
	now := time.Now().UTC()
	attempt.SubmittedAt = &now

	user, err := s.repo.User().GetByID(ctx, userID)
	if err == nil {
		if err := s.refreshLeaderboard(ctx, attempt, user.DisplayName); err != nil {
			s.logger.Error("Failed to refresh leaderboard on submit",
				"attempt_id", attempt.ID,
				"error", err)
		}
	}

	s.logger.Info("Attempt submitted",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"score", attempt.Score)
	return attempt, nil
}

// ===== INTEGRITY TRACKING =====

// ReportIntegrityEvent records an advisory signal. It never blocks
// submission and never changes the score.
func (s *attemptService) ReportIntegrityEvent(ctx context.Context, quizID, userID uint, req *IntegrityEventRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	attempt, err := s.repo.Attempt().GetOrCreate(ctx, quizID, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve attempt: %w", err)
	}

	event := &models.IntegrityEvent{
		AttemptID:  attempt.ID,
		Type:       req.Type,
		QuestionID: req.QuestionID,
	}
	if err := s.repo.Integrity().Create(ctx, event); err != nil {
		return fmt.Errorf("failed to record integrity event: %w", err)
	}

	switch req.Type {
	case models.EventTabSwitch:
		if err := s.repo.Attempt().IncrementTabSwitches(ctx, attempt.ID); err != nil {
			return fmt.Errorf("failed to increment tab switches: %w", err)
		}
		if err := s.repo.Leaderboard().IncrementTabSwitches(ctx, quizID, userID); err != nil {
			s.logger.Warn("Failed to increment leaderboard tab switches",
				"quiz_id", quizID,
				"user_id", userID,
				"error", err)
		}
	case models.EventFullscreenExit:
		if err := s.repo.Leaderboard().IncrementFullscreenExits(ctx, quizID, userID); err != nil {
			s.logger.Warn("Failed to increment leaderboard fullscreen exits",
				"quiz_id", quizID,
				"user_id", userID,
				"error", err)
		}
	}

	s.logger.Info("Integrity event recorded",
		"attempt_id", attempt.ID,
		"type", req.Type)
	return nil
}

// ===== GET OPERATIONS =====

func (s *attemptService) GetByIDWithAnswers(ctx context.Context, attemptID, userID uint) (*models.QuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByIDWithAnswers(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, NewPermissionError(userID, attemptID, "attempt", "read", "not owned by user")
	}
	return attempt, nil
}

// ===== HELPERS =====

// refreshLeaderboard recomputes and overwrites the participant's projection
// row from the attempt's answers and integrity counters.
func (s *attemptService) refreshLeaderboard(ctx context.Context, attempt *models.QuizAttempt, displayName string) error {
	answers, err := s.repo.Attempt().GetAnswers(ctx, attempt.ID)
	if err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}

	responseTimes := make([]float64, len(answers))
	for i, answer := range answers {
		responseTimes[i] = answer.ResponseTime
	}

	counts, err := s.repo.Integrity().CountByAttempt(ctx, attempt.ID)
	if err != nil {
		return fmt.Errorf("failed to count integrity events: %w", err)
	}

	entry := &models.LeaderboardEntry{
		QuizID:              attempt.QuizID,
		UserID:              attempt.UserID,
		DisplayName:         displayName,
		Score:               attempt.Score,
		AnswersCount:        len(answers),
		AvgResponseTime:     AverageResponseTime(responseTimes),
		TabSwitchCount:      counts.TabSwitches,
		FullscreenExitCount: counts.FullscreenExits,
		UpdatedAt:           time.Now().UTC(),
	}
	return s.repo.Leaderboard().Upsert(ctx, entry)
}
