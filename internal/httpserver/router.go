package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"tasks-api/internal/domain"
	"tasks-api/internal/metrics"
	tasksvc "tasks-api/internal/service/task"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type csrfService interface {
	IssueOrReuse(ctx context.Context, userID int64) (string, error)
	Verify(ctx context.Context, userID int64, token string) error
}

type taskService interface {
	Create(ctx context.Context, in tasksvc.CreateInput) (*domain.Task, error)
	List(ctx context.Context, userID *int64) ([]domain.Task, int, error)
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Deps groups the services the router depends on.
type Deps struct {
	CSRF    csrfService
	Tasks   taskService
	Metrics *metrics.Metrics
	// CORSOrigins lists origins allowed to call the API from a browser.
	// Empty or "*" allows any origin.
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if deps.CSRF == nil {
		return nil, errors.New("csrf service is required")
	}
	if deps.Tasks == nil {
		return nil, errors.New("task service is required")
	}
	if err := registerValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(requestIDMiddleware(), gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if deps.Metrics != nil {
		router.Use(metricsMiddleware(deps.Metrics))
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/csrf-token/:user_id", csrfTokenHandler(deps.CSRF, logger))

	gated := router.Group("/", csrfMiddleware(deps.CSRF, logger))
	gated.GET("/tasks", listTasksHandler(deps.Tasks, logger))
	gated.POST("/task", createTaskHandler(deps.Tasks, logger))
	gated.PATCH("/task/:id", updateTaskHandler(deps.Tasks, logger))
	gated.DELETE("/task/:id", deleteTaskHandler(deps.Tasks, logger))

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", headerCSRFToken, headerUserID, headerRequestID},
		ExposeHeaders: []string{headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
