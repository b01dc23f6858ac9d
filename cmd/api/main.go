package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tasks-api/internal/config"
	"tasks-api/internal/db"
	"tasks-api/internal/httpserver"
	"tasks-api/internal/metrics"
	tokenrepo "tasks-api/internal/repository/csrftoken"
	taskrepo "tasks-api/internal/repository/task"
	"tasks-api/internal/service/csrf"
	tasksvc "tasks-api/internal/service/task"

	"github.com/gin-gonic/gin"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	m := metrics.New()
	csrfManager := csrf.New(tokenrepo.NewPostgres(dbpool),
		csrf.WithTTL(cfg.CSRFTokenTTL),
		csrf.WithLogger(logger),
		csrf.WithRecorder(m),
	)
	taskService := tasksvc.New(taskrepo.NewPostgres(dbpool))

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CSRF:        csrfManager,
		Tasks:       taskService,
		Metrics:     m,
		CORSOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	if cfg.CSRFSweepInterval > 0 {
		logger.Printf("csrf sweep every %s", cfg.CSRFSweepInterval)
		go csrf.NewSweeper(csrfManager, cfg.CSRFSweepInterval, logger).Run(ctx)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s (csrf ttl %s)", cfg.HTTPAddr, csrfManager.TTL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("received shutdown signal")
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
