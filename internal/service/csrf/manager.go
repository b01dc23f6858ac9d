// Package csrf issues per-user anti-forgery tokens and checks them in front of
// mutating requests.
//
// Tokens live in durable storage and are valid for a fixed window after
// creation. Expired tokens are removed lazily when a lookup finds them; an
// optional Sweeper removes the rest.
package csrf

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"tasks-api/internal/domain"
	tokenrepo "tasks-api/internal/repository/csrftoken"
)

const (
	// DefaultTTL is how long a token stays valid after creation.
	DefaultTTL = 5 * time.Minute

	tokenBytes      = 32
	maxMintAttempts = 5
)

// Recorder receives issuance and gate events, typically for metrics.
type Recorder interface {
	TokenIssued(reused bool)
	GateDecision(outcome Outcome)
}

type nopRecorder struct{}

func (nopRecorder) TokenIssued(bool)     {}
func (nopRecorder) GateDecision(Outcome) {}

// Manager is the sole writer of CSRF token records.
type Manager struct {
	repo     tokenrepo.Repository
	ttl      time.Duration
	now      func() time.Time
	random   io.Reader
	logger   *log.Logger
	recorder Recorder
}

// Option customises a Manager.
type Option func(*Manager)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRandom replaces crypto/rand as the token entropy source.
func WithRandom(r io.Reader) Option {
	return func(m *Manager) { m.random = r }
}

func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// New creates a Manager over repo.
func New(repo tokenrepo.Repository, opts ...Option) *Manager {
	m := &Manager{
		repo:     repo,
		ttl:      DefaultTTL,
		now:      time.Now,
		random:   rand.Reader,
		logger:   log.New(io.Discard, "", 0),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the validity window.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// IssueOrReuse returns the user's most recent token while it is still fresh,
// otherwise it deletes the stale one (if any) and persists a new token.
// The new record is stored before the token is returned.
func (m *Manager) IssueOrReuse(ctx context.Context, userID int64) (string, error) {
	if userID <= 0 {
		return "", domain.ErrUserNotFound
	}
	now := m.now()

	latest, err := m.repo.GetLatestByUser(ctx, userID)
	switch {
	case err == nil:
		if latest.Age(now) < m.ttl {
			m.recorder.TokenIssued(true)
			return latest.Token, nil
		}
		if err := m.repo.DeleteByID(ctx, latest.ID); err != nil {
			return "", storageErr("delete expired token", err)
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return "", storageErr("load latest token", err)
	}

	token, err := m.mint(ctx, userID, now)
	if err != nil {
		return "", err
	}
	m.recorder.TokenIssued(false)
	return token, nil
}

// Verify gates a mutating request. It returns nil when token is a stored,
// unexpired token of userID and leaves the record untouched. An expired match
// is deleted before ErrTokenExpired is returned.
func (m *Manager) Verify(ctx context.Context, userID int64, token string) (err error) {
	defer func() { m.recorder.GateDecision(OutcomeOf(err)) }()

	if token == "" || userID <= 0 {
		return ErrTokenMissing
	}

	rec, err := m.repo.GetByUserAndToken(ctx, userID, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrTokenInvalid
		}
		return storageErr("load token", err)
	}

	if rec.Age(m.now()) >= m.ttl {
		if err := m.repo.DeleteByID(ctx, rec.ID); err != nil {
			m.logger.Printf("csrf: delete expired token id=%d user=%d err=%v", rec.ID, userID, err)
		}
		return ErrTokenExpired
	}
	return nil
}

// SweepExpired deletes every record whose window has closed and reports how
// many were removed. Records still inside their window are never touched.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := m.now().Add(-m.ttl)
	n, err := m.repo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, storageErr("sweep expired tokens", err)
	}
	return n, nil
}

func (m *Manager) mint(ctx context.Context, userID int64, now time.Time) (string, error) {
	for i := 0; i < maxMintAttempts; i++ {
		token, err := randomToken(m.random)
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		_, err = m.repo.Insert(ctx, domain.CSRFToken{
			UserID:    userID,
			Token:     token,
			CreatedAt: now,
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			m.logger.Printf("csrf: token collision for user=%d, retrying", userID)
			continue
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", storageErr("insert token", err)
	}
	return "", errTokenCollision
}

func randomToken(r io.Reader) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
