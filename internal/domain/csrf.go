package domain

import "time"

// CSRFToken is a persisted anti-forgery token bound to a user.
type CSRFToken struct {
	ID        int64
	UserID    int64
	Token     string
	CreatedAt time.Time
}

// Age returns how long ago the token was created relative to now.
func (t CSRFToken) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}
