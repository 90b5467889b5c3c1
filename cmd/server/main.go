package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/database"
	"github.com/stemsi/exstem-quizzes/internal/events"
	"github.com/stemsi/exstem-quizzes/internal/handler"
	"github.com/stemsi/exstem-quizzes/internal/logger"
	"github.com/stemsi/exstem-quizzes/internal/repository"
	"github.com/stemsi/exstem-quizzes/internal/router"
	"github.com/stemsi/exstem-quizzes/internal/service"
	"github.com/stemsi/exstem-quizzes/internal/validator"
	"github.com/stemsi/exstem-quizzes/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting quizzes service")

	// ─── Initialize Validator ──────────────────────────────────────────
	if err := validator.Setup(); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up validator")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Grading Events ────────────────────────────────────────────────
	publisher, err := events.NewPublisher(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create grading event publisher")
	}
	defer publisher.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	bus := service.NewRedisBus(rdb)
	gradingRepo := repository.NewGradingRepository(pool)

	authService := service.NewAuthService(cfg)
	specService := service.NewSpecService(bus, cfg.SpecCacheTTL, log)
	gradingService := service.NewGradingService(bus, bus, publisher, log)
	reviewService := service.NewReviewService(gradingRepo, bus, bus, publisher, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	checks := map[string]handler.HealthCheck{
		"postgres": pool.Ping,
		"redis":    bus.Ping,
	}
	handlers := &router.Handlers{
		Exercise: handler.NewExerciseHandler(gradingService, specService, log),
		Grading:  handler.NewGradingHandler(reviewService, log),
		WS:       handler.NewWSHandler(bus, log, cfg.AllowedOrigins),
		System:   handler.NewSystemHandler(checks, bus, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	persistWorker := worker.NewGradingPersistWorker(gradingRepo, rdb, bus, log)
	updateWorker := worker.NewGradingUpdateWorker(rdb, bus, cfg, log)

	wg.Add(2)
	go func() { defer wg.Done(); persistWorker.Start(workerCtx) }()
	go func() { defer wg.Done(); updateWorker.Start(workerCtx) }()

	retention := worker.NewRetentionJob(gradingRepo, cfg.RetentionDays, cfg.RetentionCron, log)
	scheduler, err := retention.Start(workerCtx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule retention job")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the scheduler, then let the workers flush their last batch.
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	workerCancel()
	wg.Wait()

	log.Info().Msg("Shutdown complete")
}
