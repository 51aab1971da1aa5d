package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phegon/phegonbank/internal/config"
	"github.com/phegon/phegonbank/internal/handler"
	"github.com/phegon/phegonbank/internal/logging"
	"github.com/phegon/phegonbank/internal/middleware"
	"github.com/phegon/phegonbank/internal/notification"
	"github.com/phegon/phegonbank/internal/repository"
	"github.com/phegon/phegonbank/internal/service"
	"github.com/phegon/phegonbank/internal/service/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("phegonbank-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	accountSvc := service.NewAccountService(accountRepo, userRepo, notificationRepo, db)
	userSvc := service.NewUserService(userRepo, accountSvc, notificationRepo, db)
	ledgerSvc := ledger.NewService(accountRepo, transactionRepo, notificationRepo, userRepo, db)

	mailer := notification.NewGatewayClient(cfg.MailGatewayURL, cfg.MailFrom)
	dispatcher := notification.NewDispatcher(
		notificationRepo,
		mailer,
		slog.Default().With("component", "dispatcher"),
		time.Duration(cfg.NotifyPollIntervalS)*time.Second,
		cfg.NotifyBatchSize,
	)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	go dispatcher.Start(workerCtx)
	go cleanIdempotencyCache(workerCtx, idempotencyRepo)

	jwtExpiry := time.Duration(cfg.JWTExpiryH) * time.Hour
	authHandler := handler.NewAuthHandler(userRepo, userSvc, cfg.JWTSecret, jwtExpiry)
	accountHandler := handler.NewAccountHandler(accountSvc)
	transactionHandler := handler.NewTransactionHandler(ledgerSvc)
	healthHandler := handler.NewHealthHandler(db)

	authn := middleware.Auth(cfg.JWTSecret)
	idempotent := middleware.Idempotency(idempotencyRepo)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.Handle("POST /api/v1/accounts", authn(http.HandlerFunc(accountHandler.Open)))
	mux.Handle("GET /api/v1/accounts", authn(http.HandlerFunc(accountHandler.List)))
	mux.Handle("GET /api/v1/accounts/{accountNumber}", authn(http.HandlerFunc(accountHandler.Get)))
	mux.Handle("DELETE /api/v1/accounts/{accountNumber}", authn(http.HandlerFunc(accountHandler.Close)))

	mux.Handle("POST /api/v1/transactions", authn(idempotent(http.HandlerFunc(transactionHandler.Create))))
	mux.Handle("GET /api/v1/transactions/{id}", authn(http.HandlerFunc(transactionHandler.Get)))
	mux.Handle("GET /api/v1/transactions/account/{accountNumber}", authn(http.HandlerFunc(transactionHandler.ListForAccount)))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func cleanIdempotencyCache(ctx context.Context, repo *repository.IdempotencyRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := repo.CleanExpired(ctx); err != nil {
				slog.Error("idempotency cache cleanup failed", "error", err)
			} else if n > 0 {
				slog.Info("idempotency cache cleaned", "removed", n)
			}
		}
	}
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var err error
	for i := range 30 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		db, dbErr := repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		cancel()
		if dbErr == nil {
			return db, nil
		}
		err = dbErr
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
