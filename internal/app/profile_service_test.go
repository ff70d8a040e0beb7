package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"category-quiz-service/internal/domain"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUpdateProfileKeepsScores(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	_ = h.profiles.Create(ctx, domain.UserRecord{
		ID:          "u1",
		FirstName:   "Ana",
		Points:      map[domain.Category]int{domain.Music: 4},
		TotalPoints: 4,
		Likes:       []string{"u2"},
	})

	rec, err := h.profile.Update(ctx, "u1", domain.ProfileUpdate{
		FirstName: "Ana",
		LastName:  "Horvat",
		Email:     " ana@example.com ",
		BirthDate: "2000-02-29",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec.Email != "ana@example.com" || rec.LastName != "Horvat" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Score(domain.Music.ScoreField()) != 4 || rec.TotalPoints != 4 || len(rec.Likes) != 1 {
		t.Fatalf("profile save must not touch scores or likes: %+v", rec)
	}
}

func TestUpdateProfileRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	_ = h.profiles.Create(ctx, domain.UserRecord{ID: "u1"})

	cases := map[string]domain.ProfileUpdate{
		"birthDate": {FirstName: "A", LastName: "B", Email: "a@b.co", BirthDate: "2001-02-29"},
		"email":     {FirstName: "A", LastName: "B", Email: "not-an-email"},
		"firstName": {LastName: "B", Email: "a@b.co"},
	}
	for field, upd := range cases {
		_, err := h.profile.Update(ctx, "u1", upd)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Field != field {
			t.Fatalf("expected validation error on %s, got %v", field, err)
		}
	}
}

func TestUploadPhotoStoresURL(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	_ = h.profiles.Create(ctx, domain.UserRecord{ID: "u1"})

	url, err := h.profile.UploadPhoto(ctx, "u1", pngHeader)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost/uploads/u1-") || !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("unexpected url %q", url)
	}
	rec, _ := h.profiles.Get(ctx, "u1")
	if rec.ProfilePictureURL != url {
		t.Fatalf("expected profile picture to be persisted, got %q", rec.ProfilePictureURL)
	}
}

func TestUploadPhotoRejectsNonImage(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	_ = h.profiles.Create(ctx, domain.UserRecord{ID: "u1"})

	if _, err := h.profile.UploadPhoto(ctx, "u1", []byte("plain text")); !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	if _, err := h.profile.UploadPhoto(ctx, "ghost", pngHeader); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
