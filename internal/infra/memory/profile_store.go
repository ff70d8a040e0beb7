package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"category-quiz-service/internal/domain"
	"category-quiz-service/internal/leaderboard"
)

// ProfileStore is an in-memory implementation of app.ProfileStore.
// Every mutation happens under one lock, so increments and like toggles are atomic.
type ProfileStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.UserRecord
	history []domain.ScoreSubmission
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{records: make(map[string]domain.UserRecord)}
}

func (s *ProfileStore) Create(_ context.Context, rec domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("create profile %s: already exists", rec.ID)
	}
	s.records[rec.ID] = rec.Clone()
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *ProfileStore) Get(_ context.Context, userID string) (domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID]
	if !ok {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	return rec.Clone(), nil
}

// List returns the roster in creation order.
func (s *ProfileStore) List(_ context.Context) ([]domain.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out, nil
}

func (s *ProfileStore) UpdateProfile(_ context.Context, userID string, upd domain.ProfileUpdate) (domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	rec.FirstName = upd.FirstName
	rec.LastName = upd.LastName
	rec.Email = upd.Email
	rec.BirthDate = upd.BirthDate
	s.records[userID] = rec
	return rec.Clone(), nil
}

func (s *ProfileStore) SetProfilePicture(_ context.Context, userID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	rec.ProfilePictureURL = url
	s.records[userID] = rec
	return nil
}

func (s *ProfileStore) AddScore(_ context.Context, userID string, category domain.Category, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	rec = rec.Clone()
	if rec.Points == nil {
		rec.Points = make(map[domain.Category]int)
	}
	rec.Points[category] += delta
	rec.TotalPoints += delta
	s.records[userID] = rec
	return nil
}

func (s *ProfileStore) AppendScoreEvent(_ context.Context, sub domain.ScoreSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, sub)
	return nil
}

// History returns every appended score event in order.
func (s *ProfileStore) History() []domain.ScoreSubmission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

func (s *ProfileStore) ToggleLike(_ context.Context, targetID, actorID string) (bool, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[targetID]
	if !ok {
		return false, nil, domain.ErrUserNotFound
	}
	likes, liked := leaderboard.ToggleLike(rec.Likes, actorID)
	rec.Likes = likes
	s.records[targetID] = rec
	return liked, slices.Clone(likes), nil
}
