package router

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/hexsmith/hexsmith/backend/internal/handlers"
	"github.com/hexsmith/hexsmith/backend/internal/middleware"
	"github.com/hexsmith/hexsmith/backend/internal/models"
	"github.com/hexsmith/hexsmith/backend/internal/repositories"
	"github.com/hexsmith/hexsmith/backend/internal/services"
	"github.com/hexsmith/hexsmith/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Info().Msg("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *config.DB, firebaseAuthClient *auth.Client, cfg *config.Config) {
	// AutoMigrate PostgreSQL models
	if err := db.Postgres.AutoMigrate(&models.User{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to auto migrate models")
	}
	log.Info().Msg("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	mongoDB := db.Mongo.Database(cfg.MongoDB)
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	courseRepo := repositories.NewMongoCourseRepository(mongoDB)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)

	// --- Initialize Services ---
	generator := services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	var videoSearcher services.VideoSearcher
	if ys, err := services.NewYoutubeService(context.Background(), cfg.YoutubeAPIKey); err != nil {
		log.Warn().Err(err).Msg("video search disabled")
	} else {
		videoSearcher = ys
	}

	var mailer services.OTPMailer
	if m, err := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass); err != nil {
		log.Warn().Err(err).Msg("OTP email disabled")
	} else {
		mailer = m
	}

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JwtSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Info().Msg("Auth routes configured.")

	// Password reset is reachable without a session
	userHandler := handlers.NewUserHandler(userRepo, mailer)
	public := e.Group("/api/v1")
	userHandler.RegisterPasswordRoutes(public)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Info().Msg("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler.RegisterUserRoutes(api)
	log.Info().Msg("User routes configured.")

	// Course routes
	courseHandler := handlers.NewCourseHandler(courseRepo, generator, videoSearcher)
	courseHandler.RegisterCourseRoutes(api)
	log.Info().Msg("Course routes configured.")

	// Community and notification routes
	communityHandler := handlers.NewCommunityHandler(courseRepo, notificationRepo, userRepo)
	communityHandler.RegisterCommunityRoutes(api)
	log.Info().Msg("Community routes configured.")

	// AI tutor routes
	chatHandler := handlers.NewChatHandler(generator)
	chatHandler.RegisterChatRoutes(api)
	log.Info().Msg("Chat routes configured.")

	log.Info().Msg("All routes configured.")
}
