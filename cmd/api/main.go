package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/arka-labs/gradeflow-api/internal/config"
	"github.com/arka-labs/gradeflow-api/internal/database"
	"github.com/arka-labs/gradeflow-api/internal/grading"
	"github.com/arka-labs/gradeflow-api/internal/handler"
	"github.com/arka-labs/gradeflow-api/internal/middleware"
	"github.com/arka-labs/gradeflow-api/internal/models"
	"github.com/arka-labs/gradeflow-api/internal/queue"
	"github.com/arka-labs/gradeflow-api/internal/repository"
	"github.com/arka-labs/gradeflow-api/internal/router"
	"github.com/arka-labs/gradeflow-api/internal/service"
	"github.com/arka-labs/gradeflow-api/pkg/scoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Class{}, &models.Course{}, &models.Student{},
		&models.Assessment{}, &models.Question{},
		&models.Solution{}, &models.StudentAnswer{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse redis url for queue: %v", err)
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	assessmentRepo := repository.NewAssessmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	solutionRepo := repository.NewSolutionRepository(db)

	scoringClient, err := scoring.New(scoring.Config{
		BaseURL: cfg.ScoringBaseURL,
		Timeout: cfg.ScoringTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create scoring client: %v", err)
	}

	scorer := service.NewCachedScorer(scoringClient, redisClient, cfg.ScoreCacheTTL, logger)
	resolver := grading.NewResolver(scorer)

	enqueuer := queue.NewEnqueuer(asynqClient, logger)
	dispatcher := service.NewResultDispatcher(redisClient, natsConn, enqueuer, logger)

	gradingService := service.NewGradingService(solutionRepo, assessmentRepo, courseRepo, resolver, dispatcher, logger)

	var gradeEnqueuer service.GradingEnqueuer
	if !cfg.InlineGrading {
		gradeEnqueuer = enqueuer
	}
	solutionService := service.NewSolutionService(solutionRepo, assessmentRepo, validate, gradeEnqueuer, gradingService, logger)
	regradeService := service.NewRegradeService(solutionRepo, assessmentRepo, validate, dispatcher, logger)

	assessmentHandler := handler.NewAssessmentHandler(solutionService, regradeService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app)
	router.Register(app, cfg, router.Dependencies{
		AssessmentHandler: assessmentHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
