package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"mykhata/internal/config"
	apphttp "mykhata/internal/http"
	applog "mykhata/internal/log"
	"mykhata/internal/services"
	"mykhata/internal/session"
	"mykhata/internal/store"
	"mykhata/internal/store/csvfile"
	"mykhata/internal/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", applog.FieldError, err)
		return err
	}

	backing, err := openStore(cfg)
	if err != nil {
		logger.Error("storage initialization failed",
			"backend", cfg.DataBackend, applog.FieldError, err)
		return err
	}
	defer backing.Close()
	logger.Info("storage ready", "backend", cfg.DataBackend)

	accounts := services.NewAccountService(backing)
	ledger := services.NewLedgerService(backing, backing)
	sessions := session.NewManager(cfg.SessionTTL)

	srv, err := apphttp.NewServer(":"+cfg.Port, accounts, ledger, sessions, cfg.RateLimitPerMinute)
	if err != nil {
		logger.Error("server initialization failed", applog.FieldError, err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Janitor(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", applog.FieldError, err)
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}

// openStore selects the persistence backend from configuration.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.DataBackend {
	case config.BackendSQLite:
		return sqlite.New(cfg.SQLiteDBPath)
	default:
		return csvfile.New(cfg.DataDir)
	}
}
