package csrftoken

import (
	"context"
	"time"

	"tasks-api/internal/domain"
)

// Repository persists CSRF token records.
//
// Lookups return domain.ErrNotFound when no row matches. Insert returns
// domain.ErrAlreadyExists on a token collision and domain.ErrUserNotFound
// when the user does not exist.
type Repository interface {
	Insert(ctx context.Context, t domain.CSRFToken) (int64, error)
	GetByUserAndToken(ctx context.Context, userID int64, token string) (*domain.CSRFToken, error)
	GetLatestByUser(ctx context.Context, userID int64) (*domain.CSRFToken, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
