package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/tutoring-backend/internal/config"
	"github.com/ignatzorin/tutoring-backend/internal/db"
	httpHandlers "github.com/ignatzorin/tutoring-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/tutoring-backend/internal/http/router"
	"github.com/ignatzorin/tutoring-backend/internal/logger"
	"github.com/ignatzorin/tutoring-backend/internal/repository"
	"github.com/ignatzorin/tutoring-backend/internal/service"
	"github.com/ignatzorin/tutoring-backend/internal/storage"
	"github.com/ignatzorin/tutoring-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	postRepo := repository.NewPostRepository(dbConn)
	bidRepo := repository.NewBidRepository(dbConn)
	conversationRepo := repository.NewConversationRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Сервисы.
	cacheService := service.NewCacheService()
	postService := service.NewPostService(postRepo)
	bidService := service.NewBidService(bidRepo, postRepo, cfg.MinBidPrice)
	conversationService := service.NewConversationService(conversationRepo)
	reportService := service.NewReportService(reportRepo, conversationRepo, cfg.ReportableRoomStatuses)
	reviewService := service.NewReviewService(reviewRepo, conversationRepo, cacheService, cfg.ReviewMinRoomStatus)
	statsService := service.NewStatsService(postRepo, bidRepo, conversationRepo, reportRepo, userRepo, cacheService)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()

	notifier := ws.NewEventNotifier(hub)
	bidService.SetNotifier(notifier)
	conversationService.SetNotifier(notifier)
	reportService.SetNotifier(notifier)

	// HTTP хэндлеры.
	postHandler := httpHandlers.NewPostHandler(postService)
	bidHandler := httpHandlers.NewBidHandler(bidService)
	conversationHandler := httpHandlers.NewConversationHandler(conversationService)
	reportHandler := httpHandlers.NewReportHandler(reportService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	statsHandler := httpHandlers.NewStatsHandler(statsService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, photoStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		postHandler,
		bidHandler,
		conversationHandler,
		reportHandler,
		reviewHandler,
		statsHandler,
		mediaHandler,
		wsHandler,
		healthHandler,
		tokenManager,
		userRepo,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
