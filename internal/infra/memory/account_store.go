package memory

import (
	"context"
	"sync"

	"category-quiz-service/internal/domain"
)

// AccountStore is an in-memory implementation of app.AccountStore.
type AccountStore struct {
	mu      sync.RWMutex
	byEmail map[string]domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{byEmail: make(map[string]domain.Account)}
}

func (s *AccountStore) Create(_ context.Context, acc domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[acc.Email]; ok {
		return domain.ErrEmailTaken
	}
	s.byEmail[acc.Email] = acc
	return nil
}

func (s *AccountStore) FindByEmail(_ context.Context, email string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.byEmail[email]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return acc, nil
}

func (s *AccountStore) Delete(_ context.Context, email, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.byEmail[email]; ok && acc.UserID == userID {
		delete(s.byEmail, email)
	}
	return nil
}
