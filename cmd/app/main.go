package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-board/internal/config"
	"github.com/BuzzLyutic/todo-board/internal/handler"
	"github.com/BuzzLyutic/todo-board/internal/repo"
	"github.com/BuzzLyutic/todo-board/internal/service"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Подключаем логгер
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// Подключаем БД
	store, closeStore, err := openStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open the store", zap.String("driver", cfg.DBDriver), zap.Error(err)) // дальнейшая работа теряет смысл
	}
	defer closeStore()

	todoService := service.NewTodoService(store)
	todoHandler := handler.NewTodoHandler(todoService, logger)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(todoHandler, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("driver", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
		return
	}
	logger.Info("Server stopped successfully")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore returns the configured repository and a func releasing it.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.TodoRepository, func(), error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		store, err := repo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Opened SQLite database", zap.String("path", cfg.SQLitePath))
		return store, func() { store.Close() }, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping: %w", err)
		}

		store := repo.NewPostgresRepo(pool)
		if cfg.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		logger.Info("Successfully connected to the Database!")
		return store, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
}
