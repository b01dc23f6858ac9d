package httpserver

import (
	"context"
	"sync"
	"time"

	"tasks-api/internal/domain"
)

// memoryTokens is a minimal csrf_tokens stand-in for handler tests.
type memoryTokens struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]bool
	records []domain.CSRFToken
}

func newMemoryTokens(users ...int64) *memoryTokens {
	m := &memoryTokens{users: map[int64]bool{}}
	for _, u := range users {
		m.users[u] = true
	}
	return m
}

func (m *memoryTokens) Insert(_ context.Context, t domain.CSRFToken) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.users[t.UserID] {
		return 0, domain.ErrUserNotFound
	}
	for _, rec := range m.records {
		if rec.Token == t.Token {
			return 0, domain.ErrAlreadyExists
		}
	}
	m.nextID++
	t.ID = m.nextID
	m.records = append(m.records, t)
	return t.ID, nil
}

func (m *memoryTokens) GetByUserAndToken(_ context.Context, userID int64, token string) (*domain.CSRFToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.UserID == userID && rec.Token == token {
			clone := rec
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryTokens) GetLatestByUser(_ context.Context, userID int64) (*domain.CSRFToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.CSRFToken
	for i := range m.records {
		rec := m.records[i]
		if rec.UserID != userID {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = &rec
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (m *memoryTokens) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	for _, rec := range m.records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	m.records = kept
	return nil
}

func (m *memoryTokens) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	kept := m.records[:0]
	for _, rec := range m.records {
		if rec.CreatedAt.After(cutoff) {
			kept = append(kept, rec)
			continue
		}
		n++
	}
	m.records = kept
	return n, nil
}

func (m *memoryTokens) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
