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
	_ "github.com/lib/pq"

	"github.com/sundayleague/match-system/config"
	"github.com/sundayleague/match-system/db"
	"github.com/sundayleague/match-system/handlers"
	"github.com/sundayleague/match-system/notify"
	"github.com/sundayleague/match-system/repositories"
	api "github.com/sundayleague/match-system/routes"
	"github.com/sundayleague/match-system/services"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация WebSocket Hub
	wsHub := notify.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	ratingRepo := repositories.NewPostgresRatingRepository(dbConn)
	voteRepo := repositories.NewPostgresVoteRepository(dbConn)
	proposalRepo := repositories.NewPostgresProposalRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов. Один locker на все сервисы: операции над одним
	// матчем сериализуются независимо от того, через какой сервис они пришли.
	locker := services.NewMatchLocker()

	matchService := services.NewMatchService(matchRepo, rosterRepo, teamRepo, proposalRepo, txRunner, locker)
	rosterService := services.NewRosterService(matchRepo, rosterRepo, teamRepo, txRunner, locker, wsHub)
	scoreService := services.NewScoreService(matchRepo, rosterRepo, teamRepo, playerRepo, txRunner, locker, wsHub)
	ratingService := services.NewRatingService(matchRepo, rosterRepo, teamRepo, playerRepo, ratingRepo, txRunner, locker)
	motmService := services.NewMotmService(matchRepo, rosterRepo, playerRepo, voteRepo, txRunner, locker, wsHub)
	maintenanceService := services.NewMaintenanceService(matchRepo, cfg.PendingMatchTTL, logger)
	logger.Info("Services initialized")

	// Запуск планировщика фоновых проходов обслуживания
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		logger.Info("maintenance sweep scheduler started", slog.Duration("interval", cfg.SweepInterval))

		// Run once immediately at startup, then on ticker
		if _, err := maintenanceService.Sweep(context.Background()); err != nil {
			logger.Error("scheduler: initial sweep failed", slog.Any("error", err))
		}

		for range ticker.C {
			if _, err := maintenanceService.Sweep(context.Background()); err != nil {
				logger.Error("scheduler: periodic sweep failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	matchHandler := handlers.NewMatchHandler(matchService)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	scoreHandler := handlers.NewScoreHandler(scoreService)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	motmHandler := handlers.NewMotmHandler(motmService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		matchHandler,
		rosterHandler,
		scoreHandler,
		ratingHandler,
		motmHandler,
		maintenanceHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
