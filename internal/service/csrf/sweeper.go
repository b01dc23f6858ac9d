package csrf

import (
	"context"
	"io"
	"log"
	"time"
)

// Sweeper periodically removes expired token records.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   *log.Logger
}

// NewSweeper returns a Sweeper that runs every interval.
func NewSweeper(m *Manager, interval time.Duration, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sweeper{manager: m, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. A non-positive interval returns immediately.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.manager.SweepExpired(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Printf("csrf sweep failed: %v", err)
				continue
			}
			if n > 0 {
				s.logger.Printf("csrf sweep removed %d expired tokens", n)
			}
		}
	}
}
