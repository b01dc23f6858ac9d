package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type userSeed struct {
	Username string
	Password string
	Tasks    []taskSeed
}

type taskSeed struct {
	Title       string
	Description string
	Status      string
}

var demoUsers = []userSeed{
	{
		Username: "alice",
		Password: "alice-demo",
		Tasks: []taskSeed{
			{Title: "Write onboarding doc", Description: "Cover local setup and the CSRF flow", Status: "in_progress"},
			{Title: "Review migrations", Description: "Check indexes on csrf_tokens", Status: "pending"},
		},
	},
	{
		Username: "bob",
		Password: "bob-demo",
		Tasks: []taskSeed{
			{Title: "Ship release notes", Description: "Summarise the task API changes", Status: "completed"},
		},
	},
}

// Apply inserts demo users and tasks for manual testing. It is idempotent via ON CONFLICT.
// Existing password hashes are left as they are.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	for _, u := range demoUsers {
		userID, err := ensureUser(ctx, pool, u.Username, u.Password)
		if err != nil {
			return fmt.Errorf("ensure user %s: %w", u.Username, err)
		}
		for _, t := range u.Tasks {
			if err := upsertTask(ctx, pool, userID, t); err != nil {
				return fmt.Errorf("upsert task %q for %s: %w", t.Title, u.Username, err)
			}
		}
	}
	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, username, password string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	const q = `
INSERT INTO users (username, password_hash)
VALUES ($1, $2)
ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
RETURNING id
`
	var id int64
	if err := pool.QueryRow(ctx, q, username, string(hash)).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func upsertTask(ctx context.Context, pool *pgxpool.Pool, userID int64, t taskSeed) error {
	const q = `
INSERT INTO tasks (user_id, title, description, status)
VALUES ($1, $2, $3, $4::text::task_status)
ON CONFLICT (user_id, title) DO UPDATE
SET description = EXCLUDED.description,
    status = EXCLUDED.status,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, userID, t.Title, t.Description, t.Status)
	return err
}
