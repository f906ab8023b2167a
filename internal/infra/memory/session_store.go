package memory

import (
	"context"
	"sync"
	"time"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Every identity owns a slot with its own mutex so different players never contend.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	mu        sync.Mutex
	session   *app.Session
	expiresAt time.Time
}

// NewSessionStore creates a store; ttl <= 0 keeps abandoned sessions until overwritten.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:   ttl,
		clock: time.Now,
		slots: make(map[string]*slot),
	}
}

// slotFor returns the identity's slot, creating it when create is set. Slots are
// only created by writers that store a session and are never removed, so every
// caller of one identity serializes on the same mutex.
func (s *SessionStore) slotFor(identity string, create bool) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[identity]
	if !ok && create {
		sl = &slot{}
		s.slots[identity] = sl
	}
	return sl
}

func (s *SessionStore) Put(_ context.Context, session *app.Session) error {
	sl := s.slotFor(session.Identity, true)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	s.storeLocked(sl, session)
	return nil
}

func (s *SessionStore) Restore(_ context.Context, session *app.Session) (bool, error) {
	sl := s.slotFor(session.Identity, true)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if s.liveLocked(sl) {
		return false, nil
	}
	s.storeLocked(sl, session)
	return true, nil
}

func (s *SessionStore) Get(_ context.Context, identity string) (*app.Session, error) {
	sl := s.slotFor(identity, false)
	if sl == nil {
		return nil, domain.ErrNoActiveSession
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if !s.liveLocked(sl) {
		return nil, domain.ErrNoActiveSession
	}
	return sl.session.Clone(), nil
}

func (s *SessionStore) Remove(_ context.Context, identity string) error {
	sl := s.slotFor(identity, false)
	if sl == nil {
		return nil
	}
	sl.mu.Lock()
	sl.session = nil
	sl.mu.Unlock()
	return nil
}

func (s *SessionStore) Update(_ context.Context, identity string, fn func(*app.Session) (bool, error)) error {
	sl := s.slotFor(identity, false)
	if sl == nil {
		return domain.ErrNoActiveSession
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if !s.liveLocked(sl) {
		return domain.ErrNoActiveSession
	}

	work := sl.session.Clone()
	keep, err := fn(work)
	if err != nil {
		return err
	}
	if keep {
		sl.session = work
	} else {
		sl.session = nil
	}
	return nil
}

func (s *SessionStore) storeLocked(sl *slot, session *app.Session) {
	sl.session = session.Clone()
	if s.ttl > 0 {
		sl.expiresAt = s.clock().Add(s.ttl)
	}
}

// liveLocked drops an expired session and reports whether one remains.
func (s *SessionStore) liveLocked(sl *slot) bool {
	if sl.session == nil {
		return false
	}
	if s.ttl > 0 && !s.clock().Before(sl.expiresAt) {
		sl.session = nil
		return false
	}
	return true
}
