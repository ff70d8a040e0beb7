package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"category-quiz-service/internal/quiz"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Engines live in a local map; their timers and subscribers are process-bound.
//   - Redis marks which users hold a live session on this instance, so operators
//     (and other replicas) can see who is mid-quiz.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*quiz.Engine
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*quiz.Engine),
	}
}

func (s *SessionStore) GetOrCreate(userID string, create func() *quiz.Engine) *quiz.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if engine, ok := s.sessions[userID]; ok {
		s.touch(userID)
		return engine
	}
	engine := create()
	s.sessions[userID] = engine
	s.touch(userID)
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
	if err := s.client.Del(context.Background(), s.key(userID)).Err(); err != nil {
		log.Printf("clear session marker %s: %v", userID, err)
	}
}

// Live reports whether a liveness marker exists for userID.
func (s *SessionStore) Live(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(userID)).Result()
	return n > 0, err
}

// best-effort liveness marker
func (s *SessionStore) touch(userID string) {
	if err := s.client.Set(context.Background(), s.key(userID), "1", s.ttl).Err(); err != nil {
		log.Printf("mark session %s: %v", userID, err)
	}
}

func (s *SessionStore) key(userID string) string {
	return "quiz:session:" + userID
}
