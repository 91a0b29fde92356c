package api

import (
	"sync"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/search"

	"github.com/google/uuid"
)

// sessionStore holds the active search sessions by id. One session per
// client context; sessions are created explicitly and live until the process
// restarts.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*search.Session
	factory  func() *search.Session
}

func newSessionStore(factory func() *search.Session) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*search.Session),
		factory:  factory,
	}
}

func (s *sessionStore) create() (string, *search.Session) {
	id := uuid.NewString()
	session := s.factory()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session
	return id, session
}

func (s *sessionStore) get(id string) (*search.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	return session, ok
}
