package services

import (
	"sync"
	"time"

	"dashboard-project/backend/dashboard-service/models"
)

type SessionEvent string

const (
	SignedIn       SessionEvent = "SIGNED_IN"
	SignedOut      SessionEvent = "SIGNED_OUT"
	ProfileUpdated SessionEvent = "PROFILE_UPDATED"
)

type SessionListener func(event SessionEvent, session models.Session)

// SessionStore holds the live sessions. Listeners are called after the
// change, outside the lock, with a copy of the session.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]*models.Session
	listeners map[int]SessionListener
	nextID    int
	now       func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*models.Session),
		listeners: make(map[int]SessionListener),
		now:       time.Now,
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *SessionStore) Subscribe(fn SessionListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) notify(event SessionEvent, session models.Session) {
	s.mu.RLock()
	listeners := make([]SessionListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(event, session)
	}
}

func (s *SessionStore) Put(session models.Session) {
	s.mu.Lock()
	s.sessions[session.ID] = &session
	s.mu.Unlock()
	s.notify(SignedIn, session)
}

// Get returns a copy of the session. Expired sessions are dropped and
// reported as ErrSessionExpired.
func (s *SessionStore) Get(id string) (models.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	var current models.Session
	if ok {
		current = *session
	}
	s.mu.RUnlock()
	if !ok {
		return models.Session{}, ErrSessionExpired
	}
	if current.Expired(s.now()) {
		s.Delete(id)
		return models.Session{}, ErrSessionExpired
	}
	return current, nil
}

func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		s.notify(SignedOut, *session)
	}
	return ok
}

// UpdateProfile replaces the cached profile in every session of the user.
func (s *SessionStore) UpdateProfile(profile models.User) {
	var changed []models.Session
	s.mu.Lock()
	for _, session := range s.sessions {
		if session.UserID == profile.ID {
			session.Profile = profile
			changed = append(changed, *session)
		}
	}
	s.mu.Unlock()

	for _, session := range changed {
		s.notify(ProfileUpdated, session)
	}
}

// RevokeUser closes every session of the user.
func (s *SessionStore) RevokeUser(userID models.ID) int {
	var revoked []models.Session
	s.mu.Lock()
	for id, session := range s.sessions {
		if session.UserID == userID {
			revoked = append(revoked, *session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range revoked {
		s.notify(SignedOut, session)
	}
	return len(revoked)
}

// PurgeExpired removes every expired session and returns how many went.
func (s *SessionStore) PurgeExpired() int {
	now := s.now()
	var expired []models.Session
	s.mu.Lock()
	for id, session := range s.sessions {
		if session.Expired(now) {
			expired = append(expired, *session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		s.notify(SignedOut, session)
	}
	return len(expired)
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
