package service

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chucky-1/teadiary/internal/model"
)

// SearchTTL is how long a saved query can be continued.
const SearchTTL = 24 * time.Hour

type savedSearch struct {
	key   int64
	kind  model.SearchKind
	extra string
	at    time.Time
}

// Searches keeps the latest long query of every user, so "show more" keeps
// matching the full text. A newer query replaces the older one.
type Searches struct {
	mu    sync.Mutex
	clock clockwork.Clock
	ttl   time.Duration
	next  int64
	saved map[int64]savedSearch
}

func NewSearches(clock clockwork.Clock, ttl time.Duration) *Searches {
	return &Searches{
		clock: clock,
		ttl:   ttl,
		saved: make(map[int64]savedSearch),
	}
}

// Put stores the query and returns the key for the cursor.
func (s *Searches) Put(userID int64, kind model.SearchKind, extra string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	for id, saved := range s.saved {
		if now.Sub(saved.at) >= s.ttl {
			delete(s.saved, id)
		}
	}
	s.next++
	s.saved[userID] = savedSearch{key: s.next, kind: kind, extra: extra, at: now}
	return s.next
}

// Get returns the query behind a key. A key that was replaced, expired or
// belongs to another search kind is not found.
func (s *Searches) Get(userID, key int64, kind model.SearchKind) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved, ok := s.saved[userID]
	if !ok || saved.key != key || saved.kind != kind || s.clock.Since(saved.at) >= s.ttl {
		return "", false
	}
	return saved.extra, true
}
