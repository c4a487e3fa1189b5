package resolving

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UserLimiter caps how many requests each user may make per minute.
type UserLimiter struct {
	mu        sync.Mutex
	limiters  map[int64]*rate.Limiter
	perMinute func() int
}

// NewUserLimiter creates a limiter; perMinute is read on every call so config reloads apply.
func NewUserLimiter(perMinute func() int) *UserLimiter {
	return &UserLimiter{
		limiters:  make(map[int64]*rate.Limiter),
		perMinute: perMinute,
	}
}

// Allow reports whether userID may make another request now. A limit <= 0 allows everything.
func (l *UserLimiter) Allow(userID int64) bool {
	n := l.perMinute()
	if n <= 0 {
		return true
	}
	limit := rate.Every(time.Minute / time.Duration(n))

	l.mu.Lock()
	lim, ok := l.limiters[userID]
	if !ok || lim.Burst() != n || lim.Limit() != limit {
		lim = rate.NewLimiter(limit, n)
		l.limiters[userID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
