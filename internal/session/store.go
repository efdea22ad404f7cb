// Package session holds authenticated portal connections for the web front
// end, keyed by opaque tokens carried in a cookie. Credentials themselves
// are never stored; only the already-authenticated connection handle is.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/agobackup/internal/portal"
)

// Session is one logged-in web session.
type Session struct {
	Token     string
	Conn      portal.Connection
	ExpiresAt time.Time
}

// Store is an in-memory session store.
type Store struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates a session store with the given session lifetime.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session for the given connection and returns it.
func (s *Store) Create(conn portal.Connection) *Session {
	sess := &Session{
		Token:     uuid.New().String(),
		Conn:      conn,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session for token, or false if it is unknown or expired.
// Expired sessions are dropped on access.
func (s *Store) Get(token string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, token)
		return nil, false
	}
	return sess, true
}

// Delete removes the session for token, if any.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Len returns the number of live sessions, expired ones included until
// they are touched.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
