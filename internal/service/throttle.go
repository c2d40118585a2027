package service

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

type limiter struct {
	*rate.Limiter
	seen time.Time
}

// Throttle allows one action per interval per user. A limiter idle for a whole
// interval has refilled, so it is dropped and recreated on demand.
type Throttle struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	every     time.Duration
	limiters  map[int64]*limiter
	lastSweep time.Time
}

func NewThrottle(clock clockwork.Clock, every time.Duration) *Throttle {
	return &Throttle{
		clock:     clock,
		every:     every,
		limiters:  make(map[int64]*limiter),
		lastSweep: clock.Now(),
	}
}

func (t *Throttle) Allow(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	t.sweep(now)
	l, ok := t.limiters[userID]
	if !ok {
		l = &limiter{Limiter: rate.NewLimiter(rate.Every(t.every), 1)}
		t.limiters[userID] = l
	}
	l.seen = now
	return l.AllowN(now, 1)
}

func (t *Throttle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < t.every {
		return
	}
	t.lastSweep = now
	for id, l := range t.limiters {
		if now.Sub(l.seen) >= t.every {
			delete(t.limiters, id)
		}
	}
}

func (t *Throttle) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}
