package services

import (
	"errors"
	"fmt"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Quiz specific errors
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotActive    = errors.New("quiz is not active")
	ErrQuizNotLive      = errors.New("quiz is not a live quiz")
	ErrQuizNotEditable  = errors.New("quiz cannot be edited while a live session is running")
	ErrQuizNoQuestions  = errors.New("quiz has no questions")
	ErrQuizEnded        = errors.New("quiz has ended")
	ErrQuizNotDeletable = errors.New("quiz cannot be deleted - has existing attempts")

	// Question specific errors
	ErrQuestionNotFound   = errors.New("question not found")
	ErrQuestionNotInQuiz  = errors.New("question does not belong to this quiz")
	ErrInvalidOption      = errors.New("invalid answer option")
	ErrNoFurtherQuestions = errors.New("no further questions in quiz")

	// Attempt specific errors
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrAttemptNotOwned         = errors.New("attempt does not belong to this user")

	// Live session errors
	ErrNoActiveQuestion   = errors.New("no question is currently active")
	ErrQuestionTimeExpired = errors.New("question time has expired")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Leaderboard errors
	ErrLeaderboardEntryNotFound = errors.New("leaderboard entry not found")
)

// PermissionError carries the who/what/why of a denied operation.
type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrLeaderboardEntryNotFound)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrAttemptAlreadySubmitted) ||
		errors.Is(err, ErrQuizNotDeletable)
}

// IsPermission checks if error represents a denied operation
func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsInvalidState checks if error represents an operation rejected by the
// quiz or attempt lifecycle rather than by missing data.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrQuizNotActive) ||
		errors.Is(err, ErrQuizNotLive) ||
		errors.Is(err, ErrQuizNotEditable) ||
		errors.Is(err, ErrQuizNoQuestions) ||
		errors.Is(err, ErrQuizEnded) ||
		errors.Is(err, ErrQuestionNotInQuiz) ||
		errors.Is(err, ErrNoActiveQuestion) ||
		errors.Is(err, ErrQuestionTimeExpired) ||
		errors.Is(err, ErrNoFurtherQuestions)
}
