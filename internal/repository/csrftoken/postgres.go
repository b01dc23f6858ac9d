package csrftoken

import (
	"context"
	"errors"
	"time"

	"tasks-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by the csrf_tokens table.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Insert(ctx context.Context, t domain.CSRFToken) (int64, error) {
	const q = `
INSERT INTO csrf_tokens (user_id, token, created_at)
VALUES ($1, $2, COALESCE($3, now()))
RETURNING id
`
	var createdAt *time.Time
	if !t.CreatedAt.IsZero() {
		createdAt = &t.CreatedAt
	}
	var id int64
	if err := r.pool.QueryRow(ctx, q, t.UserID, t.Token, createdAt).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return 0, domain.ErrAlreadyExists
			case pgForeignKeyViolation:
				return 0, domain.ErrUserNotFound
			}
		}
		return 0, err
	}
	return id, nil
}

func (r *postgresRepo) GetByUserAndToken(ctx context.Context, userID int64, token string) (*domain.CSRFToken, error) {
	const q = `
SELECT id, user_id, token, created_at
FROM csrf_tokens
WHERE user_id = $1 AND token = $2
LIMIT 1
`
	return scanToken(r.pool.QueryRow(ctx, q, userID, token))
}

func (r *postgresRepo) GetLatestByUser(ctx context.Context, userID int64) (*domain.CSRFToken, error) {
	const q = `
SELECT id, user_id, token, created_at
FROM csrf_tokens
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`
	return scanToken(r.pool.QueryRow(ctx, q, userID))
}

func (r *postgresRepo) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM csrf_tokens WHERE id = $1`, id)
	return err
}

func (r *postgresRepo) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM csrf_tokens WHERE created_at <= $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanToken(row pgx.Row) (*domain.CSRFToken, error) {
	var out domain.CSRFToken
	if err := row.Scan(&out.ID, &out.UserID, &out.Token, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
