package state

import (
	"sync"

	"github.com/arklim/riskdash-client/internal/core/domain"
)

// SessionSnapshot is an immutable view of the session state handed to
// readers and subscribers.
type SessionSnapshot struct {
	Identity      *domain.Identity
	Authenticated bool
	Loading       bool
	Initialized   bool
}

// SessionStore holds the current identity and session lifecycle flags. It is
// a pure state container: only the session coordinator mutates it, views read
// snapshots or subscribe to changes.
//
// Authenticated is always derived from identity presence; Initialized flips
// to true once per process and survives Reset, so "logged out but already
// checked" stays distinguishable from "not yet checked".
type SessionStore struct {
	mu            sync.RWMutex
	identity      *domain.Identity
	authenticated bool
	loading       bool
	initialized   bool

	subMu   sync.Mutex
	subs    map[int]func(SessionSnapshot)
	nextSub int
}

// NewSessionStore returns an empty, uninitialized session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{subs: make(map[int]func(SessionSnapshot))}
}

// SetIdentity replaces the stored identity wholesale and derives the
// authenticated flag. Passing nil records the anonymous state.
func (s *SessionStore) SetIdentity(identity *domain.Identity) {
	s.mu.Lock()
	if identity != nil {
		copied := *identity
		s.identity = &copied
	} else {
		s.identity = nil
	}
	s.authenticated = s.identity != nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// SetLoading toggles the loading flag.
func (s *SessionStore) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// SetInitialized marks the store as having completed at least one session
// check cycle. The transition is one-way.
func (s *SessionStore) SetInitialized() {
	s.mu.Lock()
	s.initialized = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Reset clears identity, authentication, and loading while keeping the
// initialized flag. A reset store renders as anonymous, not as "still
// checking".
func (s *SessionStore) Reset() {
	s.mu.Lock()
	s.identity = nil
	s.authenticated = false
	s.loading = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Snapshot returns a copy of the current session state.
func (s *SessionStore) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers a listener invoked with a fresh snapshot after every
// mutation. The returned function removes the subscription.
func (s *SessionStore) Subscribe(fn func(SessionSnapshot)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *SessionStore) snapshotLocked() SessionSnapshot {
	snap := SessionSnapshot{
		Authenticated: s.authenticated,
		Loading:       s.loading,
		Initialized:   s.initialized,
	}
	if s.identity != nil {
		copied := *s.identity
		snap.Identity = &copied
	}
	return snap
}

func (s *SessionStore) notify(snap SessionSnapshot) {
	s.subMu.Lock()
	listeners := make([]func(SessionSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
