package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Lethinkj/clan-quiz-service/internal/cache"
	"github.com/Lethinkj/clan-quiz-service/internal/config"
	"github.com/Lethinkj/clan-quiz-service/internal/events"
	"github.com/Lethinkj/clan-quiz-service/internal/handlers"
	"github.com/Lethinkj/clan-quiz-service/internal/live"
	"github.com/Lethinkj/clan-quiz-service/internal/realtime"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories/postgres"
	"github.com/Lethinkj/clan-quiz-service/internal/services"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
	"github.com/Lethinkj/clan-quiz-service/pkg"
)

const answerKeyTTL = 10 * time.Minute

// NewServeCmd builds the CLI subcommand that starts the HTTP server.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := runMigrations(db); err != nil {
		return err
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.KafkaTopic,
		Logger:       slogLogger,
	})
	if err != nil {
		return err
	}
	defer publisher.Close()

	repo := postgres.NewGormRepository(db)
	broadcaster := realtime.NewRedisBroadcaster(redisClient, slogLogger)
	answerKeys := cache.NewRedisAnswerKeyCache(redisClient, repo.Question(), answerKeyTTL, slogLogger)
	validator := utils.NewValidator()

	serviceManager := services.NewServiceManager(repo, broadcaster, publisher, answerKeys, slogLogger, validator)
	watcher := live.NewWatcher(broadcaster, live.NewRepositoryStateReader(repo.Quiz()), slogLogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, watcher, cfg.JWTSecret, validator, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("Starting quiz service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("Shutting down server")
	case <-ctx.Done():
		logger.Info("Context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
