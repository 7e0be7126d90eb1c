package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fluentlink/fluentlink-be/internal/api"
	"github.com/fluentlink/fluentlink-be/internal/auth"
	"github.com/fluentlink/fluentlink-be/internal/config"
	"github.com/fluentlink/fluentlink-be/internal/database"
	"github.com/fluentlink/fluentlink-be/internal/logger"
	"github.com/fluentlink/fluentlink-be/internal/monitoring"
	"github.com/fluentlink/fluentlink-be/internal/presence"
	"github.com/fluentlink/fluentlink-be/internal/services"
	"github.com/fluentlink/fluentlink-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET_KEY must be set")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db)
	friendService := services.NewFriendService(db, hub)

	// Set up the chat-presence collaborator; absent config means no mirroring.
	var presenceClient presence.Client
	if cfg.PresenceAPIURL != "" {
		presenceClient = presence.NewHTTPClient(cfg.PresenceAPIURL, cfg.PresenceAPIKey)
	}
	mirror := presence.NewMirror(presenceClient, userService)

	syncer, err := presence.NewSyncer(mirror, userService, cfg.PresenceSyncSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid presence sync schedule")
	}
	go syncer.Run()

	// Session issuance and verification
	tokens := auth.NewTokenManager(auth.Config{
		Secret:        []byte(cfg.JWTSecret),
		TokenLifetime: cfg.TokenLifetime,
		CookieSecure:  cfg.CookieSecure,
	})

	collector := monitoring.NewCollector()

	// Set up router
	router := api.NewRouter(cfg.AllowedOrigin, tokens, hub, userService, friendService, mirror, collector)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	syncer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
