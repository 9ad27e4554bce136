package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/asset-escrow/internal/config"
	"github.com/ignatzorin/asset-escrow/internal/db"
	"github.com/ignatzorin/asset-escrow/internal/domain/repository"
	httpHandlers "github.com/ignatzorin/asset-escrow/internal/http/handlers"
	httpRouter "github.com/ignatzorin/asset-escrow/internal/http/router"
	"github.com/ignatzorin/asset-escrow/internal/infrastructure/persistence"
	"github.com/ignatzorin/asset-escrow/internal/interface/http/handler"
	"github.com/ignatzorin/asset-escrow/internal/logger"
	"github.com/ignatzorin/asset-escrow/internal/observability"
	"github.com/ignatzorin/asset-escrow/internal/pkg/vault"
	"github.com/ignatzorin/asset-escrow/internal/service"
	"github.com/ignatzorin/asset-escrow/internal/usecase/transaction"
	"github.com/ignatzorin/asset-escrow/internal/ws"
)

// store объединяет всё, что нужно от хранилища сервису сделок и сидеру.
type store interface {
	repository.TransactionRepository
	repository.ListingProvider
	repository.ListingWriter
}

// postgresStore склеивает два postgres репозитория в одно хранилище.
type postgresStore struct {
	*persistence.TransactionRepository
	*persistence.ListingRepository
}

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	var (
		dbConn *sqlx.DB
		st     store
	)
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		dbConn, err = db.NewPostgres(ctx, cfg.DatabaseURL, db.PoolOptions{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
		}
		defer safeClose(dbConn)

		if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
			logger.Log.Fatalf("main: ошибка миграций: %v", err)
		}
		st = postgresStore{
			TransactionRepository: persistence.NewTransactionRepository(dbConn),
			ListingRepository:     persistence.NewListingRepository(dbConn),
		}
	default:
		logger.Log.Warn("main: данные хранятся в памяти и будут потеряны при перезапуске")
		st = persistence.NewMemoryStore()
	}

	sealer, err := vault.NewSealer(cfg.CredentialsSecret)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить шифрование учётных данных: %v", err)
	}
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	metrics := observability.NewMetrics()

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()

	transactionService := transaction.NewService(st, st, sealer)
	transactionService.SetNotifier(hub)
	transactionService.SetMetrics(metrics)

	deps := httpRouter.Deps{
		Transactions: handler.NewTransactionHandler(transactionService),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Health:       httpHandlers.NewHealthHandler(dbConn, cfg.StoreDriver),
		Tokens:       tokenManager,
		Metrics:      metrics,
	}
	if !cfg.IsProduction() {
		deps.Seed = httpHandlers.NewSeedHandler(service.NewSeedService(st, tokenManager))
	}

	engine := httpRouter.SetupRouter(cfg, deps)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.Log.WithFields(map[string]interface{}{
		"port":  cfg.HTTPPort,
		"env":   cfg.Env,
		"store": cfg.StoreDriver,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия базы: %v", err)
	}
}
