package csrf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_RemovesExpiredUntilCancelled(t *testing.T) {
	repo := newMemoryTokenRepo(1, 2)
	clock := newFakeClock()
	m := New(repo, WithClock(clock.Now))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stale, err := m.IssueOrReuse(ctx, 1)
	require.NoError(t, err)
	clock.Advance(6 * time.Minute)
	live, err := m.IssueOrReuse(ctx, 2)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		NewSweeper(m, 5*time.Millisecond, nil).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return !repo.has(stale) }, time.Second, 5*time.Millisecond)
	assert.True(t, repo.has(live))

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSweeper_DisabledReturnsImmediately(t *testing.T) {
	done := make(chan struct{})
	go func() {
		NewSweeper(New(newMemoryTokenRepo()), 0, nil).Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled sweeper should return")
	}
}
