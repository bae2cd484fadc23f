package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/club-ladder/brackets"
	"github.com/Dosada05/club-ladder/cache"
	"github.com/Dosada05/club-ladder/config"
	"github.com/Dosada05/club-ladder/db"
	"github.com/Dosada05/club-ladder/handlers"
	"github.com/Dosada05/club-ladder/repositories"
	api "github.com/Dosada05/club-ladder/routes"
	"github.com/Dosada05/club-ladder/services"
	"github.com/Dosada05/club-ladder/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver),
	)

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	// Хранилище: Postgres или память
	store, dbConn, err := openStore(appCtx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", slog.Any("error", err))
		os.Exit(1)
	}
	if dbConn != nil {
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
	}

	// Кэш рейтингов (Redis), без него работаем напрямую с хранилищем
	rankingsCache := cache.NewNoopRankingsCache()
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(appCtx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer rdb.Close()
		rankingsCache = cache.NewRedisRankingsCache(rdb, cfg.RankingsCacheTTL)
		logger.Info("rankings cache enabled", slog.Duration("ttl", cfg.RankingsCacheTTL))
	}

	// Архив клубов в Cloudflare R2
	var objects storage.ObjectStore
	if cfg.ArchiveEnabled() {
		objects, err = storage.NewCloudflareR2Store(appCtx, storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 archive store initialized", slog.String("bucket", cfg.R2BucketName))
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(appCtx)
	logger.Info("WebSocket Hub started")

	// Инициализация сервисов
	locks := services.NewClubLocks()
	clubService := services.NewClubService(store, locks, rankingsCache, cfg.SuggestionLimit, logger)
	tournamentService := services.NewTournamentService(store, locks, rankingsCache, wsHub, logger)
	sessionService := services.NewSessionService(clubService, cfg.JWTSecretKey, cfg.JWTTTL)
	archiveService := services.NewArchiveService(store, locks, objects, logger)
	logger.Info("Services initialized")

	if cfg.SeedDemo {
		if err := services.SeedDemoClub(appCtx, store, logger); err != nil {
			logger.Error("failed to seed demo club", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Планировщик архивации
	var scheduler *cron.Cron
	if cfg.ArchiveSchedule != "" {
		scheduler, err = startArchiveScheduler(appCtx, cfg.ArchiveSchedule, archiveService, logger)
		if err != nil {
			logger.Error("failed to start archive scheduler", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(clubService, sessionService),
		Club:       handlers.NewClubHandler(clubService),
		Match:      handlers.NewMatchHandler(clubService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Archive:    handlers.NewArchiveHandler(archiveService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	}, api.Options{
		Verifier:       sessionService,
		Members:        clubService,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
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
			stopApp()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		stopApp()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
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

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories.Store, *sql.DB, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		return repositories.NewMemoryStore(), nil, nil
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx, dbConn); err != nil {
		dbConn.Close()
		return nil, nil, err
	}
	logger.Info("database connection established")
	return repositories.NewPostgresStore(dbConn), dbConn, nil
}

func startArchiveScheduler(ctx context.Context, schedule string, archives services.ArchiveService, logger *slog.Logger) (*cron.Cron, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	scheduler := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	_, err := scheduler.AddFunc(schedule, func() {
		started := time.Now()
		archived, err := archives.ArchiveAll(ctx)
		if err != nil {
			logger.Error("Scheduler: archive run failed", slog.Any("error", err))
			return
		}
		logger.Info("Scheduler: archive run finished",
			slog.Int("clubs", archived),
			slog.Duration("took", time.Since(started)),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid ARCHIVE_SCHEDULE %q: %w", schedule, err)
	}

	scheduler.Start()
	logger.Info("archive scheduler started", slog.String("schedule", schedule))
	return scheduler, nil
}
