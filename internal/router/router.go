package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quizzes/internal/config"
	"github.com/stemsi/exstem-quizzes/internal/handler"
	"github.com/stemsi/exstem-quizzes/internal/middleware"
	"github.com/stemsi/exstem-quizzes/internal/response"
	"github.com/stemsi/exstem-quizzes/internal/service"
)

const exportPath = "/api/v1/gradings/export"

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exercise *handler.ExerciseHandler
	Grading  *handler.GradingHandler
	WS       *handler.WSHandler
	System   *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	// XLSX is already a zip archive.
	brotliConfig := middleware.DefaultBrotliConfig
	brotliConfig.Skipper = middleware.SkipPaths(exportPath)
	router.Use(middleware.BrotliWithConfig(brotliConfig))

	router.GET("/health", handlers.System.Health)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)

	// ─── 1. Exercise Service Protocol (No Auth) ────────────────────────
	exercise := router.Group("/api")
	exercise.Use(limiter.Middleware())
	{
		exercise.POST("/grade", handlers.Exercise.Grade)
		exercise.POST("/public-spec", handlers.Exercise.PublicSpec)
		exercise.POST("/model-solution", handlers.Exercise.ModelSolution)
	}

	// ─── 2. Review API (Service JWT) ───────────────────────────────────
	read := router.Group("/api/v1")
	read.Use(limiter.Middleware(), middleware.NoStore(), middleware.RequireServiceJWT(authService, service.ScopeGradingsRead))
	{
		read.GET("/gradings", handlers.Grading.ListGradings)
		read.GET("/gradings/export", handlers.Grading.ExportGradings)
		read.GET("/gradings/:grading_id", handlers.Grading.GetGrading)
		read.GET("/system/metrics", handlers.System.SystemMetricsSSE)
	}

	review := router.Group("/api/v1")
	review.Use(limiter.Middleware(), middleware.NoStore(), middleware.RequireServiceJWT(authService, service.ScopeGradingsReview))
	{
		review.POST("/gradings/:grading_id/review", handlers.Grading.ReviewGrading)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireServiceJWT(authService, service.ScopeGradingsRead))
	{
		wsGroup.GET("/gradings", handlers.WS.GradingStream)
	}

	return router
}
