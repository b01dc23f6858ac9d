package task

import (
	"context"
	"errors"

	"tasks-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, user_id, title, COALESCE(description, ''), status::text, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, t domain.Task) (*domain.Task, error) {
	status := t.Status
	if status == "" {
		status = domain.TaskStatusPending
	}
	const q = `
INSERT INTO tasks (user_id, title, description, status)
VALUES ($1, $2, $3, $4::text::task_status)
RETURNING ` + taskColumns
	out, err := scanTask(r.pool.QueryRow(ctx, q, t.UserID, t.Title, t.Description, string(status)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, domain.ErrAlreadyExists
			case "23503":
				return nil, domain.ErrUserNotFound
			}
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Task, int, error) {
	q := `
SELECT ` + taskColumns + `, count(*) OVER ()
FROM tasks
WHERE ($1::bigint IS NULL OR user_id = $1)
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, filter.UserID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []domain.Task{}
	total := 0
	for rows.Next() {
		var (
			t      domain.Task
			status string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt, &total); err != nil {
			return nil, 0, err
		}
		t.Status = domain.TaskStatus(status)
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	const q = `
UPDATE tasks
SET title = COALESCE($2, title),
    description = COALESCE($3, description),
    status = COALESCE($4::text::task_status, status),
    updated_at = now()
WHERE id = $1
RETURNING ` + taskColumns
	out, err := scanTask(r.pool.QueryRow(ctx, q, id, patch.Title, patch.Description, status))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t      domain.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	return &t, nil
}
