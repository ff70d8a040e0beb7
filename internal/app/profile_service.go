package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"category-quiz-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ProfileStore is the document-per-user profile and score store.
type ProfileStore interface {
	Create(ctx context.Context, rec domain.UserRecord) error
	Get(ctx context.Context, userID string) (domain.UserRecord, error)
	// List returns the full roster in a stable fetch order.
	List(ctx context.Context) ([]domain.UserRecord, error)
	UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (domain.UserRecord, error)
	SetProfilePicture(ctx context.Context, userID, url string) error
	// AddScore adds delta to the category field and to the total in one atomic step.
	AddScore(ctx context.Context, userID string, category domain.Category, delta int) error
	AppendScoreEvent(ctx context.Context, sub domain.ScoreSubmission) error
	// ToggleLike flips actorID in the target's likes, reading the current set at write time.
	ToggleLike(ctx context.Context, targetID, actorID string) (liked bool, likes []string, err error)
}

// ObjectStore uploads files and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// MaxPhotoBytes bounds profile photo uploads.
const MaxPhotoBytes = 5 << 20

// ProfileService manages the signed-in user's own profile.
type ProfileService struct {
	profiles ProfileStore
	objects  ObjectStore
	validate *validator.Validate
	timeout  time.Duration
	now      func() time.Time
}

func NewProfileService(profiles ProfileStore, objects ObjectStore, timeout time.Duration) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		objects:  objects,
		validate: newValidator(),
		timeout:  timeout,
		now:      time.Now,
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (domain.UserRecord, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	return s.profiles.Get(ctx, userID)
}

// Update replaces the editable profile fields; scores and likes are untouched.
func (s *ProfileService) Update(ctx context.Context, userID string, upd domain.ProfileUpdate) (domain.UserRecord, error) {
	upd.Email = strings.TrimSpace(upd.Email)
	if err := validateStruct(s.validate, upd); err != nil {
		return domain.UserRecord{}, err
	}
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	return s.profiles.UpdateProfile(ctx, userID, upd)
}

// PhotoKey names an uploaded profile photo.
func PhotoKey(userID string, at time.Time) string {
	return fmt.Sprintf("%s-%d.jpg", userID, at.UnixMilli())
}

// UploadPhoto stores data as the user's profile picture and returns its public URL.
func (s *ProfileService) UploadPhoto(ctx context.Context, userID string, data []byte) (string, error) {
	if len(data) == 0 || len(data) > MaxPhotoBytes {
		return "", &domain.ValidationError{Field: "photo", Reason: "must be between 1 byte and 5 MiB"}
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", domain.ErrInvalidImage
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.profiles.Get(ctx, userID); err != nil {
		return "", err
	}
	url, err := s.objects.Put(ctx, PhotoKey(userID, s.now()), data, contentType)
	if err != nil {
		return "", domain.Unavailable("upload photo", err)
	}
	if err := s.profiles.SetProfilePicture(ctx, userID, url); err != nil {
		return "", err
	}
	return url, nil
}

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
