package task

import (
	"context"

	"tasks-api/internal/domain"
)

// ListFilter narrows task listings. A nil UserID lists every task.
type ListFilter struct {
	UserID *int64
}

// Repository persists and fetches tasks.
type Repository interface {
	Create(ctx context.Context, t domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Task, int, error)
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
}
