package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/snapvault/gallery-server-go/internal/config"
	"github.com/snapvault/gallery-server-go/internal/database"
	"github.com/snapvault/gallery-server-go/internal/handler"
	"github.com/snapvault/gallery-server-go/internal/identity"
	"github.com/snapvault/gallery-server-go/internal/jobs"
	"github.com/snapvault/gallery-server-go/internal/middleware"
	"github.com/snapvault/gallery-server-go/internal/redis"
	"github.com/snapvault/gallery-server-go/internal/repository"
	"github.com/snapvault/gallery-server-go/internal/service"
	"github.com/snapvault/gallery-server-go/internal/sse"
	"github.com/snapvault/gallery-server-go/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	s3Ctx, s3Cancel := context.WithTimeout(context.Background(), config.StorageTimeout)
	s3Client, err := storage.NewS3Client(s3Ctx, cfg.R2Endpoint, cfg.R2AccessKeyID, cfg.R2SecretAccessKey)
	s3Cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build storage client")
	}
	broker := storage.NewBroker(s3Client, cfg.SignedURLTTL())

	organizerRepo := repository.NewOrganizerRepository(db.DB)
	organizerSessionRepo := repository.NewOrganizerSessionRepository(db.DB)
	eventRepo := repository.NewEventRepository(db.DB)
	guestSessionRepo := repository.NewGuestSessionRepository(db.DB)
	uploadRepo := repository.NewUploadRepository(db.DB)

	feed := sse.NewFeed(redisClient)
	defer feed.Close()

	verifier := identity.NewVerifier(cfg.SupabaseURL, cfg.SupabasePublishableKey)
	organizerSessions := service.NewOrganizerSessionService(
		verifier, organizerRepo, organizerSessionRepo, cfg.OrganizerSessionTTLDays,
	)
	guests := service.NewGuestService(
		eventRepo, guestSessionRepo, uploadRepo, broker, feed, cfg.R2MediaBucket,
	)
	gallery := service.NewGalleryService(eventRepo, uploadRepo, broker, cfg.R2MediaBucket)

	authMiddleware := middleware.NewAuthMiddleware(organizerSessions)
	csrfMiddleware := middleware.NewCSRFMiddleware(cfg.CORSAllowedOrigins)
	joinLimitMiddleware := middleware.NewJoinRateLimitMiddleware(redisClient.Client)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	statusJob := jobs.NewEventStatusJob(eventRepo, cfg.EventOpenEarlyHours, cfg.EventCloseLateHours)
	cleanupJob := jobs.NewCleanupJob(organizerSessionRepo, config.SessionCleanupInterval)

	organizerAuthHandler := handler.NewOrganizerAuthHandler(
		organizerSessions, authMiddleware, cfg.OrganizerSessionTTL(), isProduction,
	)
	guestHandler := handler.NewGuestHandler(guests, joinLimitMiddleware, isProduction)
	organizerEventsHandler := handler.NewOrganizerEventsHandler(gallery)
	feedHandler := handler.NewFeedHandler(feed, eventRepo)
	internalHandler := handler.NewInternalHandler(statusJob, cleanupJob)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(securityHeadersMiddleware.Handler)
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/organizer", func(r chi.Router) {
		r.Use(csrfMiddleware.Handler)
		r.Mount("/auth/session", organizerAuthHandler.Routes())
		r.Route("/events", func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Get("/{eventID}/feed", feedHandler.ServeHTTP)
			r.Get("/{eventID}/uploads", organizerEventsHandler.ListUploads)
			r.Delete("/{eventID}/uploads/{uploadID}", organizerEventsHandler.DeleteUpload)
		})
	})

	r.Route("/guest", func(r chi.Router) {
		r.Mount("/", guestHandler.Routes())
	})

	r.Route("/internal", func(r chi.Router) {
		r.Mount("/", internalHandler.Routes())
	})

	if cfg.EnableEventStatusJob {
		statusJob.Start()
		defer statusJob.Stop()
	} else {
		log.Info().Msg("event status job disabled; use POST /internal/event-status-sync")
	}

	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0, // SSE connections stay open indefinitely
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
