package services

import (
	"context"
	"log/slog"

	"github.com/Lethinkj/clan-quiz-service/internal/cache"
	"github.com/Lethinkj/clan-quiz-service/internal/events"
	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/realtime"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

// ===== REQUEST / RESPONSE STRUCTS =====

type CreateQuizRequest struct {
	Title       string          `json:"title" validate:"required,min=1,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=1000"`
	Type        models.QuizType `json:"type" validate:"required,quiz_type"`
	TimeLimit   int             `json:"time_limit" validate:"required,min=10,max=7200"`
}

type UpdateQuizRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	TimeLimit   *int    `json:"time_limit" validate:"omitempty,min=10,max=7200"`
}

type QuestionInput struct {
	Text          string              `json:"text" validate:"required,min=1"`
	OptionA       string              `json:"option_a" validate:"required"`
	OptionB       string              `json:"option_b" validate:"required"`
	OptionC       string              `json:"option_c" validate:"required"`
	OptionD       string              `json:"option_d" validate:"required"`
	CorrectOption models.AnswerOption `json:"correct_option" validate:"required,answer_option"`
	Points        int                 `json:"points" validate:"omitempty,min=1,max=100"`
	TimeLimit     int                 `json:"time_limit" validate:"omitempty,min=5,max=600"`
}

type ReplaceQuestionsRequest struct {
	Questions []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

type SubmitAnswerRequest struct {
	QuestionID uint                `json:"question_id" validate:"required"`
	Selected   models.AnswerOption `json:"selected" validate:"required,answer_option"`
	// ResponseTime is the latency in seconds between the question becoming
	// active and this submission.
	ResponseTime float64 `json:"response_time" validate:"min=0"`
}

type AnswerResult struct {
	QuestionID    uint                `json:"question_id"`
	Correct       bool                `json:"correct"`
	CorrectOption models.AnswerOption `json:"correct_option"`
	PointsAwarded int                 `json:"points_awarded"`
	TotalScore    int                 `json:"total_score"`
	// Duplicate is true when an answer already existed for this question;
	// the submission was a no-op.
	Duplicate bool `json:"duplicate"`
}

type IntegrityEventRequest struct {
	Type       models.IntegrityEventType `json:"type" validate:"required,oneof=tab_switch fullscreen_exit"`
	QuestionID *uint                     `json:"question_id"`
}

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	Password    string `json:"password" validate:"required,min=6,max=100"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HostView is what the control panel sees after a transition.
type HostView struct {
	Quiz            *models.Quiz         `json:"quiz"`
	CurrentQuestion *models.QuizQuestion `json:"current_question,omitempty"`
	QuestionNumber  int                  `json:"question_number"`
	QuestionCount   int                  `json:"question_count"`
	Ended           bool                 `json:"ended"`
}

// ===== SERVICE INTERFACES =====

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, createdBy uint) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest) (*models.Quiz, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error)
	SetActive(ctx context.Context, id uint, active bool) error
	GetStats(ctx context.Context, id uint) (*repositories.QuizStats, error)
}

type QuestionService interface {
	// Replace swaps the quiz's whole question set; individual edits are not
	// supported once questions exist.
	Replace(ctx context.Context, quizID uint, req *ReplaceQuestionsRequest) ([]*models.QuizQuestion, error)
	ListByQuiz(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error)
	// GetForQuiz returns one question after checking it belongs to the quiz.
	GetForQuiz(ctx context.Context, quizID, questionID uint) (*models.QuizQuestion, error)
}

type AttemptService interface {
	// StartOrResume returns the participant's attempt for the quiz, creating
	// it on first contact.
	StartOrResume(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error)
	SubmitAnswer(ctx context.Context, quizID, userID uint, req *SubmitAnswerRequest) (*AnswerResult, error)
	// Submit finalizes the attempt. Self-paced attempts are rescored through
	// the calculate_quiz_score database function.
	Submit(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error)
	ReportIntegrityEvent(ctx context.Context, quizID, userID uint, req *IntegrityEventRequest) error
	GetByIDWithAnswers(ctx context.Context, attemptID, userID uint) (*models.QuizAttempt, error)
}

// HostService drives the authoritative quiz row through the live session
// lifecycle and publishes each transition on the push channel.
type HostService interface {
	ShowQuestion(ctx context.Context, quizID, questionID uint) (*HostView, error)
	ShowFirstQuestion(ctx context.Context, quizID uint) (*HostView, error)
	RevealAnswer(ctx context.Context, quizID uint) (*HostView, error)
	NextQuestion(ctx context.Context, quizID uint) (*HostView, error)
	EndQuiz(ctx context.Context, quizID uint) error
}

type LeaderboardService interface {
	Get(ctx context.Context, quizID uint, includeHidden bool) ([]*models.LeaderboardEntry, error)
	SetHidden(ctx context.Context, quizID, userID uint, hidden bool) error
	Remove(ctx context.Context, quizID, userID uint) error
}

type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.QuizUser, error)
	Login(ctx context.Context, req *LoginRequest) (*models.QuizUser, error)
	GetByID(ctx context.Context, id uint) (*models.QuizUser, error)
}

type ExportService interface {
	// ExportResults renders the quiz's results as an XLSX workbook.
	ExportResults(ctx context.Context, quizID uint) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Quiz() QuizService
	Question() QuestionService
	Attempt() AttemptService
	Host() HostService
	Leaderboard() LeaderboardService
	User() UserService
	Export() ExportService
}

type serviceManager struct {
	quiz        QuizService
	question    QuestionService
	attempt     AttemptService
	host        HostService
	leaderboard LeaderboardService
	user        UserService
	export      ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	broadcaster realtime.Broadcaster,
	publisher events.EventPublisher,
	answerKeys cache.AnswerKeyCache,
	logger *slog.Logger,
	validator *utils.Validator,
) ServiceManager {
	return &serviceManager{
		quiz:        NewQuizService(repo, publisher, logger, validator),
		question:    NewQuestionService(repo, answerKeys, logger, validator),
		attempt:     NewAttemptService(repo, answerKeys, logger, validator),
		host:        NewHostService(repo, broadcaster, publisher, logger),
		leaderboard: NewLeaderboardService(repo, logger),
		user:        NewUserService(repo, logger, validator),
		export:      NewExportService(repo, logger),
	}
}

func (m *serviceManager) Quiz() QuizService               { return m.quiz }
func (m *serviceManager) Question() QuestionService       { return m.question }
func (m *serviceManager) Attempt() AttemptService         { return m.attempt }
func (m *serviceManager) Host() HostService               { return m.host }
func (m *serviceManager) Leaderboard() LeaderboardService { return m.leaderboard }
func (m *serviceManager) User() UserService               { return m.user }
func (m *serviceManager) Export() ExportService           { return m.export }
