package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reforco-escolar/internal/config"
	"reforco-escolar/internal/database"
	"reforco-escolar/internal/logger"
	"reforco-escolar/internal/router"
	"reforco-escolar/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default ./config.yaml if present)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, *configPath)
	stop()
	if err != nil {
		logger.Log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

// run starts the server and blocks until ctx is done or serving fails.
// Every resource opened here is released before it returns.
func run(ctx context.Context, configPath string) error {
	// load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCloser, err := logger.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logCloser.Close()
	lg := logger.Log

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			lg.WithError(err).Warn("close database")
		}
	}()

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	// session store
	var store session.Store
	switch cfg.Session.Backend {
	case "redis":
		client, err := session.NewRedisClient(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		store = session.NewRedisStore(client)
	default:
		store = session.NewGormStore(db)
	}
	lg.WithField("backend", cfg.Session.Backend).Info("session store ready")

	deps := router.NewDeps(cfg, db, store)

	if cfg.App.SeedDemo {
		if err := database.SeedDemo(ctx, db, deps.Hasher); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	if cfg.Session.SweepCron != "" {
		sweeper := session.NewSweeper(store, lg.WithField("component", "session-sweeper"))
		if err := sweeper.Start(cfg.Session.SweepCron); err != nil {
			return err
		}
		defer sweeper.Stop()
	}

	// setup router
	r := router.SetupRouter(cfg, deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		lg.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.WithError(err).Warn("server shutdown")
	}
	if serveErr != nil {
		return fmt.Errorf("run server: %w", serveErr)
	}
	return nil
}
