package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Lethinkj/clan-quiz-service/internal/live"
	"github.com/Lethinkj/clan-quiz-service/internal/services"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

type HandlerManager struct {
	quizHandler        *QuizHandler
	attemptHandler     *AttemptHandler
	hostHandler        *HostHandler
	leaderboardHandler *LeaderboardHandler
	userHandler        *UserHandler
	liveHandler        *LiveHandler
	jwtSecret          string
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	watcher *live.Watcher,
	jwtSecret string,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:        NewQuizHandler(serviceManager.Quiz(), serviceManager.Question(), serviceManager.Export(), validator, logger),
		attemptHandler:     NewAttemptHandler(serviceManager.Attempt(), validator, logger),
		hostHandler:        NewHostHandler(serviceManager.Host(), logger),
		leaderboardHandler: NewLeaderboardHandler(serviceManager.Leaderboard(), logger),
		userHandler:        NewUserHandler(serviceManager.User(), jwtSecret, logger),
		liveHandler:        NewLiveHandler(serviceManager.Attempt(), serviceManager.Question(), serviceManager.Leaderboard(), watcher, logger),
		jwtSecret:          jwtSecret,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "clan-quiz-service",
		})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", hm.userHandler.Register)
		auth.POST("/login", hm.userHandler.Login)
	}

	// Authenticated routes
	authed := v1.Group("")
	authed.Use(AuthMiddleware(hm.jwtSecret))
	{
		authed.GET("/me", hm.userHandler.Me)

		quizzes := authed.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:quiz_id", hm.quizHandler.GetQuiz)
			quizzes.GET("/:quiz_id/details", hm.quizHandler.GetQuizWithQuestions)
			quizzes.PUT("/:quiz_id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:quiz_id", hm.quizHandler.DeleteQuiz)
			quizzes.PUT("/:quiz_id/status", hm.quizHandler.SetQuizActive)
			quizzes.GET("/:quiz_id/stats", hm.quizHandler.GetQuizStats)
			quizzes.GET("/:quiz_id/export", hm.quizHandler.ExportResults)

			// Question management
			quizzes.PUT("/:quiz_id/questions", hm.quizHandler.ReplaceQuestions)
			quizzes.GET("/:quiz_id/questions", hm.quizHandler.ListQuestions)

			// Participant attempt flow
			quizzes.POST("/:quiz_id/attempts", hm.attemptHandler.StartAttempt)
			quizzes.POST("/:quiz_id/answers", hm.attemptHandler.SubmitAnswer)
			quizzes.POST("/:quiz_id/submit", hm.attemptHandler.SubmitAttempt)
			quizzes.POST("/:quiz_id/integrity", hm.attemptHandler.ReportIntegrityEvent)

			// Host control panel
			quizzes.POST("/:quiz_id/host/start", hm.hostHandler.StartSession)
			quizzes.POST("/:quiz_id/host/questions/:question_id/show", hm.hostHandler.ShowQuestion)
			quizzes.POST("/:quiz_id/host/reveal", hm.hostHandler.RevealAnswer)
			quizzes.POST("/:quiz_id/host/next", hm.hostHandler.NextQuestion)
			quizzes.POST("/:quiz_id/host/end", hm.hostHandler.EndQuiz)

			// Leaderboard
			quizzes.GET("/:quiz_id/leaderboard", hm.leaderboardHandler.GetLeaderboard)
			quizzes.PUT("/:quiz_id/leaderboard/:user_id/visibility", hm.leaderboardHandler.SetEntryHidden)
			quizzes.DELETE("/:quiz_id/leaderboard/:user_id", hm.leaderboardHandler.RemoveEntry)

			// Live participant gateway
			quizzes.GET("/:quiz_id/live", hm.liveHandler.Join)
		}

		attempts := authed.Group("/attempts")
		{
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
		}
	}
}
