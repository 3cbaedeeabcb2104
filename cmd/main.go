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

	"github.com/Dosada05/room-system/config"
	"github.com/Dosada05/room-system/db"
	"github.com/Dosada05/room-system/handlers"
	"github.com/Dosada05/room-system/middleware"
	"github.com/Dosada05/room-system/repositories"
	"github.com/Dosada05/room-system/rooms"
	api "github.com/Dosada05/room-system/routes"
	"github.com/Dosada05/room-system/services"
	"github.com/Dosada05/room-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const schedulerInterval = 30 * time.Second // How often the scheduler runs

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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

	// Инициализация архиватора снапшотов (Cloudflare R2)
	archiver, err := storage.NewCloudflareR2Archiver(storage.CloudflareR2ArchiverConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 archiver", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 archiver initialized")

	// Инициализация WebSocket Hub
	wsHub := rooms.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	roomRepo := repositories.NewPostgresRoomRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	roomService := services.NewRoomService(
		roomRepo,
		tournamentRepo,
		rooms.NewGuard(),
		rooms.NewClock(),
		rooms.NewHubProjector(wsHub),
		archiver,
		logger,
	)
	participantService := services.NewParticipantService(
		participantRepo,
		tournamentRepo,
		logger,
	)
	logger.Info("Services initialized")

	// Планировщик: автоблокировка комнат перед стартом и архивация
	// комнат завершившихся турниров
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("Room lifecycle scheduler started", slog.Duration("interval", schedulerInterval))

		runSweep := func() {
			if err := roomService.AutoLockDueRooms(context.Background()); err != nil {
				logger.Error("Scheduler: auto-lock sweep failed", slog.Any("error", err))
			}
			if err := roomService.ArchiveFinishedRooms(context.Background()); err != nil {
				logger.Error("Scheduler: archive sweep failed", slog.Any("error", err))
			}
		}

		// Run once immediately at startup, then on ticker
		runSweep()
		for range ticker.C {
			runSweep()
		}
	}()

	// Инициализация обработчиков HTTP
	auth := middleware.NewAuthenticator(cfg.JWTSecretKey)
	roomHandler := handlers.NewRoomHandler(roomService)
	participantHandler := handlers.NewParticipantHandler(participantService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		auth,
		roomHandler,
		participantHandler,
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
