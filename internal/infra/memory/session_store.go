package memory

import (
	"sync"

	"category-quiz-service/internal/quiz"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*quiz.Engine
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*quiz.Engine),
	}
}

func (s *SessionStore) GetOrCreate(userID string, create func() *quiz.Engine) *quiz.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if engine, ok := s.sessions[userID]; ok {
		return engine
	}
	engine := create()
	s.sessions[userID] = engine
	return engine
}

func (s *SessionStore) Get(userID string) (*quiz.Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	engine, ok := s.sessions[userID]
	return engine, ok
}

func (s *SessionStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
