// File: store.go
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"scratchCard/internal/card"
	"scratchCard/internal/reveal"
)

var (
	ErrNotFound  = errors.New("session: not found")
	ErrStoreFull = errors.New("session: too many active sessions")
)

// Store keeps live sessions keyed by uuid. Idle sessions expire after the TTL.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
}

// NewStore creates a store. A zero ttl disables expiry and a zero limit disables the cap.
// now defaults to time.Now.
func NewStore(ttl time.Duration, limit int, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      limit,
		now:      now,
	}
}

// Create registers a new session for the given surface and layers.
func (st *Store) Create(surface *reveal.Surface, layers *card.Layers, prize card.Prize) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.sweepLocked()
	if st.max > 0 && len(st.sessions) >= st.max {
		return nil, ErrStoreFull
	}
	now := st.now()
	s := &Session{
		ID:        uuid.New().String(),
		Prize:     prize,
		CreatedAt: now,
		surface:   surface,
		layers:    layers,
		lastSeen:  now,
	}
	st.sessions[s.ID] = s
	return s, nil
}

// Get returns a live session and refreshes its idle timer.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := st.now()
	if st.expired(s, now) {
		delete(st.sessions, id)
		return nil, ErrNotFound
	}
	s.lastSeen = now
	return s, nil
}

// Delete ends a session. Deleting an unknown id returns ErrNotFound.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sweepLocked()
}

// Len returns the number of sessions currently held, expired or not.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) sweepLocked() int {
	if st.ttl <= 0 {
		return 0
	}
	now := st.now()
	n := 0
	for id, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *Store) expired(s *Session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(s.lastSeen) > st.ttl
}
