package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/arka-labs/gradeflow-api/internal/config"
	"github.com/arka-labs/gradeflow-api/internal/database"
	"github.com/arka-labs/gradeflow-api/internal/grading"
	"github.com/arka-labs/gradeflow-api/internal/mailer"
	"github.com/arka-labs/gradeflow-api/internal/queue"
	"github.com/arka-labs/gradeflow-api/internal/repository"
	"github.com/arka-labs/gradeflow-api/internal/service"
	"github.com/arka-labs/gradeflow-api/pkg/scoring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("process", "worker").Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher.Start(ctx)

	mux := queue.NewMux(queue.Deps{
		Grading: gradingService,
		Mailer:  mailer.NewLogMailer(logger),
		Logger:  logger,
	})
	srv := queue.NewServer(redisOpt, cfg.QueueConcurrency)

	if err := srv.Start(mux); err != nil {
		log.Fatalf("failed to start worker: %v", err)
	}

	<-ctx.Done()
	srv.Shutdown()
	log.Println("worker stopped")
}
