package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mauer01/5D-Chess-League-Bot/brackets"
	"github.com/mauer01/5D-Chess-League-Bot/config"
	"github.com/mauer01/5D-Chess-League-Bot/db"
	"github.com/mauer01/5D-Chess-League-Bot/handlers"
	"github.com/mauer01/5D-Chess-League-Bot/repositories"
	api "github.com/mauer01/5D-Chess-League-Bot/routes"
	"github.com/mauer01/5D-Chess-League-Bot/services"
	"github.com/mauer01/5D-Chess-League-Bot/storage"
)

// sweeperInterval is how often stale unconfirmed reports get purged.
const sweeperInterval = 30 * time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	leagueRanges, err := config.LoadLeagueRanges(cfg.LeagueRangesFile)
	if err != nil {
		logger.Error("failed to load league ranges", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("league ranges loaded", slog.Int("count", len(leagueRanges)))

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

	var uploader storage.FileUploader
	if cfg.BackupEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 settings not present, backups disabled")
	}

	wsHub := brackets.NewHub()
	go wsHub.Run()

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	pairingRepo := repositories.NewPostgresPairingRepository(dbConn)
	pendingRepo := repositories.NewPostgresPendingReportRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchHistoryRepository(dbConn)
	eloRepo := repositories.NewPostgresEloHistoryRepository(dbConn)
	txRunner := repositories.NewTxRunner(dbConn)

	playerService := services.NewPlayerService(playerRepo, seasonRepo)
	reportService := services.NewReportService(
		playerRepo,
		seasonRepo,
		pairingRepo,
		pendingRepo,
		matchRepo,
		eloRepo,
		txRunner,
		wsHub,
		logger,
	)
	seasonService := services.NewSeasonService(
		playerRepo,
		seasonRepo,
		pairingRepo,
		txRunner,
		leagueRanges,
		wsHub,
		logger,
	)
	standingsService := services.NewStandingsService(seasonRepo, pairingRepo, matchRepo)

	var backupService services.BackupService
	if uploader != nil {
		backupService = services.NewBackupService(
			playerRepo,
			seasonRepo,
			pairingRepo,
			matchRepo,
			eloRepo,
			uploader,
			logger,
		)
	}

	// Unconfirmed claims expire after the staleness window; sweep them
	// out on a timer so abandoned reports do not pile up.
	go func() {
		ticker := time.NewTicker(sweeperInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := reportService.PurgeStaleReports(context.Background()); err != nil {
				logger.Error("stale report sweep failed", slog.Any("error", err))
			}
		}
	}()

	playerHandler := handlers.NewPlayerHandler(playerService)
	reportHandler := handlers.NewReportHandler(reportService)
	seasonHandler := handlers.NewSeasonHandler(seasonService, standingsService)
	adminHandler := handlers.NewAdminHandler(backupService, reportService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		playerHandler,
		reportHandler,
		seasonHandler,
		adminHandler,
		webSocketHandler,
	)

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
}
