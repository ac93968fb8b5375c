package main

import (
	"context"
	"os"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/hexsmith/hexsmith/backend/internal/router"
	"github.com/hexsmith/hexsmith/backend/internal/validators"
	"github.com/hexsmith/hexsmith/backend/pkg/config"
	"github.com/hexsmith/hexsmith/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logging
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase for Google sign-in; the rest of the API works without it
	var firebaseAuthClient *auth.Client
	ctx := context.Background()
	if firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath); err != nil {
		log.Warn().Err(err).Msg("Google login disabled")
	} else {
		firebaseAuthClient = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db, firebaseAuthClient, cfg)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
