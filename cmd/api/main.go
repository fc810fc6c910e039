package main

// @title City Geo Service API
// @version 1.0
// @description Гео-запросы к каталогу городов: фильтр по тегу и статусу, расстояние между городами,
// @description асинхронный поиск городов в радиусе и выгрузка всего каталога.

// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/city-geo-service/docs"
	"github.com/city-geo-service/internal/config"
	httpDelivery "github.com/city-geo-service/internal/delivery/http"
	"github.com/city-geo-service/internal/delivery/http/handler"
	"github.com/city-geo-service/internal/domain/repository"
	"github.com/city-geo-service/internal/pkg/logger"
	"github.com/city-geo-service/internal/repository/cache"
	"github.com/city-geo-service/internal/repository/catalog"
	"github.com/city-geo-service/internal/repository/memory"
	"github.com/city-geo-service/internal/repository/postgres"
	"github.com/city-geo-service/internal/usecase"
	"github.com/city-geo-service/internal/worker"
	"github.com/city-geo-service/internal/worker/janitor"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting City Geo Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.String("job_store", cfg.Area.JobStore),
		zap.Duration("area_delay", cfg.Area.Delay),
	)

	// 3. Load city catalog
	cityCatalog := loadCatalog(cfg, log)
	log.Info("City catalog ready", zap.Int("cities", cityCatalog.Len()))

	// 4. Initialize area job store
	workers := worker.NewWorkerManager(log)
	jobStore, health, closeStore := newJobStore(cfg, log, workers)
	defer closeStore()

	// 5. Initialize Use Cases
	cityUC := usecase.NewCityUseCase(cityCatalog, log)
	areaUC := usecase.NewAreaUseCase(cityCatalog, jobStore, log, cfg.Area.Delay)

	log.Info("Use cases initialized")

	// 6. Initialize HTTP Handlers and Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		handler.NewCityHandler(cityUC, log),
		handler.NewAreaHandler(areaUC, cfg.Server.PublicBaseURL, log),
		health,
	)

	// 7. Start workers and server
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	workers.Start(workersCtx)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Новые запросы больше не принимаются
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	// Отложенные задачи переходят в failed, идущие сканирования дописывают результат
	if err := areaUC.Shutdown(ctx); err != nil {
		log.Error("Area use case shutdown error", zap.Error(err))
	}

	if err := workers.Stop(ctx); err != nil {
		log.Error("Workers shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}

// loadCatalog читает каталог из файла или из PostgreSQL.
// Ошибка загрузки не останавливает сервис: он стартует с пустым каталогом.
func loadCatalog(cfg *config.Config, log *zap.Logger) *memory.CityCatalog {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Catalog.Source != config.CatalogSourcePostgres {
		return catalog.Load(ctx, catalog.NewFileSource(cfg.Catalog.Path), log)
	}

	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Error("Failed to connect to PostgreSQL, starting with empty catalog", zap.Error(err))
		return memory.NewCityCatalog(nil, log)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	return catalog.Load(ctx, postgres.NewCitySource(db), log)
}

// newJobStore создает хранилище задач. Для хранилища в памяти регистрирует
// janitor, который удаляет просроченные задачи.
func newJobStore(
	cfg *config.Config,
	log *zap.Logger,
	workers *worker.WorkerManager,
) (repository.AreaJobRepository, httpDelivery.HealthFunc, func()) {
	if cfg.Area.JobStore == config.JobStoreRedis {
		redisClient, err := cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}

		var pendingTTL time.Duration
		if cfg.Area.Retention > 0 {
			pendingTTL = cfg.Area.Delay + cfg.Area.Retention
		}

		store := cache.NewAreaJobStore(redisClient.Client(), cache.AreaJobStoreOptions{
			PendingTTL: pendingTTL,
			Retention:  cfg.Area.Retention,
		}, log)

		closeFn := func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis", zap.Error(err))
			}
		}
		return store, redisClient.Health, closeFn
	}

	store := memory.NewAreaJobStore(memory.AreaJobStoreOptions{
		Retention: cfg.Area.Retention,
		MaxJobs:   cfg.Area.MaxJobs,
	}, log)

	if cfg.Area.Retention > 0 {
		workers.Register(janitor.NewJobJanitor(store, cfg.Area.SweepInterval, log))
	}

	return store, nil, func() {}
}
