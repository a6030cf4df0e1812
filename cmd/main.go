package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gamerpro/gamerpro/chat"
	"github.com/gamerpro/gamerpro/config"
	"github.com/gamerpro/gamerpro/db"
	"github.com/gamerpro/gamerpro/handlers"
	"github.com/gamerpro/gamerpro/middleware"
	"github.com/gamerpro/gamerpro/repositories"
	api "github.com/gamerpro/gamerpro/routes"
	"github.com/gamerpro/gamerpro/services"
	"github.com/gamerpro/gamerpro/staging"
	"github.com/gamerpro/gamerpro/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var fileStorage storage.FileStorage
	if cfg.R2Enabled() {
		fileStorage, err = storage.NewCloudflareR2Storage(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 storage initialized")
	} else {
		logger.Warn("R2 storage not configured, uploads disabled")
	}

	var notifier chat.Notifier = chat.NoopNotifier{}
	if cfg.DiscordEnabled() {
		notifier, err = chat.NewDiscordNotifier(chat.DiscordConfig{
			BotToken:          cfg.DiscordBotToken,
			GuildID:           cfg.DiscordGuildID,
			AnnounceChannelID: cfg.DiscordAnnounceChannelID,
		})
		if err != nil {
			logger.Error("failed to initialize Discord notifier", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Discord notifier initialized")
	}

	lobbyHub := staging.NewHub()
	go lobbyHub.Run()
	logger.Info("lobby hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	qualificationRepo := repositories.NewPostgresQualificationRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	credentialsRepo := repositories.NewPostgresMatchCredentialsRepository(dbConn)
	resultRepo := repositories.NewPostgresMatchResultRepository(dbConn)
	statsRepo := repositories.NewPostgresStatsRepository(dbConn)
	txRunner := repositories.NewSQLTxRunner(dbConn)
	logger.Info("repositories initialized")

	generator := staging.NewGenerator(staging.DefaultGroupCapacity, mrand.NewSource(seed()))

	authService := services.NewAuthService(userRepo)
	teamService := services.NewTeamService(teamRepo, fileStorage)
	tournamentService := services.NewTournamentService(tournamentRepo, fileStorage)
	registrationService := services.NewRegistrationService(registrationRepo, tournamentRepo, teamRepo)
	stagingService := services.NewStagingService(
		txRunner,
		tournamentRepo,
		registrationRepo,
		qualificationRepo,
		groupRepo,
		generator,
		lobbyHub,
		notifier,
		logger,
	)
	matchService := services.NewMatchService(txRunner, matchRepo, credentialsRepo, groupRepo, lobbyHub)
	resultService := services.NewResultService(
		txRunner,
		matchRepo,
		groupRepo,
		tournamentRepo,
		resultRepo,
		qualificationRepo,
		lobbyHub,
	)
	lobbyService := services.NewLobbyService(tournamentRepo, groupRepo, matchRepo, credentialsRepo, qualificationRepo)
	statsService := services.NewStatsService(statsRepo, resultRepo)
	logger.Info("services initialized")

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	teamHandler := handlers.NewTeamHandler(teamService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, registrationService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	stagingHandler := handlers.NewStagingHandler(stagingService)
	matchHandler := handlers.NewMatchHandler(matchService, resultService)
	lobbyHandler := handlers.NewLobbyHandler(lobbyService, resultService)
	dashboardHandler := handlers.NewDashboardHandler(statsService)
	webSocketHandler := handlers.NewWebSocketHandler(lobbyHub, logger)

	var discordHandler *handlers.DiscordInteractionsHandler
	if cfg.DiscordPublicKey != "" {
		discordHandler, err = handlers.NewDiscordInteractionsHandler(cfg.DiscordPublicKey, statsService, tournamentService)
		if err != nil {
			logger.Error("failed to initialize Discord interactions handler", slog.Any("error", err))
			os.Exit(1)
		}
	}
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		teamHandler,
		tournamentHandler,
		registrationHandler,
		stagingHandler,
		matchHandler,
		lobbyHandler,
		dashboardHandler,
		webSocketHandler,
		discordHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// seed draws the group shuffle seed from crypto/rand so draws differ across
// restarts even on hosts with a coarse clock.
func seed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
