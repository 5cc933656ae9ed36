package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lethinkj/clan-quiz-service/internal/events"
	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/realtime"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
)

// RevealGrace is how long consumers should wait after a reveal before
// reading the leaderboard, so late answer writes can land first.
const RevealGrace = 1500 * time.Millisecond

type hostService struct {
	repo        repositories.Repository
	broadcaster realtime.Broadcaster
	publisher   events.EventPublisher
	logger      *slog.Logger
}

func NewHostService(repo repositories.Repository, broadcaster realtime.Broadcaster, publisher events.EventPublisher, logger *slog.Logger) HostService {
	return &hostService{
		repo:        repo,
		broadcaster: broadcaster,
		publisher:   publisher,
		logger:      logger,
	}
}

// ===== LIVE LIFECYCLE =====

func (s *hostService) ShowQuestion(ctx context.Context, quizID, questionID uint) (*HostView, error) {
	quiz, err := s.liveQuiz(ctx, quizID)
	if err != nil {
		return nil, err
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

	startedAt := time.Now().UTC()
	if err := s.repo.Quiz().SetLiveState(ctx, quizID, &question.ID, &startedAt, true); err != nil {
		return nil, fmt.Errorf("failed to set live state: %w", err)
	}
	quiz.CurrentQuestionID = &question.ID
	quiz.QuestionStartTime = &startedAt
	quiz.IsLiveActive = true

	s.broadcast(ctx, realtime.LiveState{
		QuizID:            quizID,
		IsLiveActive:      true,
		CurrentQuestionID: &question.ID,
		QuestionStartTime: &startedAt,
	})
	s.publish(ctx, events.NewQuizEvent(events.EventLiveQuestionShown, events.LiveQuestionShownEvent{
		QuizID:     quizID,
		QuestionID: question.ID,
		Position:   question.Position,
		StartedAt:  startedAt,
	}))

	s.logger.Info("Question shown",
		"quiz_id", quizID,
		"question_id", question.ID,
		"position", question.Position)
	return s.view(ctx, quiz, question, false)
}

func (s *hostService) ShowFirstQuestion(ctx context.Context, quizID uint) (*HostView, error) {
	questions, err := s.repo.Question().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrQuizNoQuestions
	}
	return s.ShowQuestion(ctx, quizID, questions[0].ID)
}

// RevealAnswer freezes the countdown and keeps the current question pinned
// so participants see the correct option until the host moves on.
func (s *hostService) RevealAnswer(ctx context.Context, quizID uint) (*HostView, error) {
	quiz, err := s.liveQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CurrentQuestionID == nil {
		return nil, ErrNoActiveQuestion
	}

	question, err := s.repo.Question().GetByID(ctx, *quiz.CurrentQuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current question: %w", err)
	}

	if err := s.repo.Quiz().SetLiveState(ctx, quizID, quiz.CurrentQuestionID, quiz.QuestionStartTime, false); err != nil {
		return nil, fmt.Errorf("failed to set live state: %w", err)
	}
	quiz.IsLiveActive = false

	s.broadcast(ctx, realtime.LiveState{
		QuizID:            quizID,
		IsLiveActive:      false,
		CurrentQuestionID: quiz.CurrentQuestionID,
		QuestionStartTime: quiz.QuestionStartTime,
	})
	s.publish(ctx, events.NewQuizEvent(events.EventLiveRevealed, events.LiveRevealedEvent{
		QuizID:     quizID,
		QuestionID: question.ID,
	}))

	s.logger.Info("Answer revealed",
		"quiz_id", quizID,
		"question_id", question.ID)
	return s.view(ctx, quiz, question, false)
}

func (s *hostService) NextQuestion(ctx context.Context, quizID uint) (*HostView, error) {
	quiz, err := s.liveQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CurrentQuestionID == nil {
		return s.ShowFirstQuestion(ctx, quizID)
	}

	current, err := s.repo.Question().GetByID(ctx, *quiz.CurrentQuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current question: %w", err)
	}

	next, err := s.repo.Question().NextAfter(ctx, quizID, current.Position)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Past the last question; the quiz stays open until the host
			// ends it explicitly.
			return s.view(ctx, quiz, current, true)
		}
		return nil, fmt.Errorf("failed to get next question: %w", err)
	}
	return s.ShowQuestion(ctx, quizID, next.ID)
}

func (s *hostService) EndQuiz(ctx context.Context, quizID uint) error {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}
	if !quiz.IsActive {
		return ErrQuizEnded
	}

	if err := s.repo.Quiz().SetLiveState(ctx, quizID, nil, nil, false); err != nil {
		return fmt.Errorf("failed to clear live state: %w", err)
	}
	if err := s.repo.Quiz().SetActive(ctx, quizID, false); err != nil {
		return fmt.Errorf("failed to deactivate quiz: %w", err)
	}

	s.broadcast(ctx, realtime.LiveState{
		QuizID: quizID,
		Ended:  true,
	})
	s.publish(ctx, events.NewQuizEvent(events.EventQuizEnded, events.QuizEndedEvent{
		QuizID: quizID,
	}))

	s.logger.Info("Quiz ended", "quiz_id", quizID)
	return nil
}

// ===== HELPERS =====

func (s *hostService) liveQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if quiz.Type != models.QuizLive {
		return nil, ErrQuizNotLive
	}
	if !quiz.IsActive {
		return nil, ErrQuizNotActive
	}
	return quiz, nil
}

func (s *hostService) view(ctx context.Context, quiz *models.Quiz, question *models.QuizQuestion, ended bool) (*HostView, error) {
	count, err := s.repo.Question().CountByQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	view := &HostView{
		Quiz:          quiz,
		QuestionCount: int(count),
		Ended:         ended,
	}
	if question != nil {
		view.CurrentQuestion = question
		view.QuestionNumber = question.Position
	}
	return view, nil
}

// Broadcast and event failures never roll back a transition that is already
// durable in the quiz row; pollers pick it up within the poll interval.
func (s *hostService) broadcast(ctx context.Context, state realtime.LiveState) {
	if err := s.broadcaster.Publish(ctx, state); err != nil {
		s.logger.Error("Failed to broadcast live state",
			"quiz_id", state.QuizID,
			"error", err)
	}
}

func (s *hostService) publish(ctx context.Context, event *events.QuizEvent) {
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish quiz event",
			"type", event.Type,
			"error", err)
	}
}
