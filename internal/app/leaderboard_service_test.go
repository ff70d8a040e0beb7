package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"category-quiz-service/internal/domain"
)

func seedRoster(t *testing.T, h *harness, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := domain.UserRecord{
			ID:          fmt.Sprintf("u%02d", i),
			FirstName:   "User",
			LastName:    fmt.Sprint(i),
			Points:      map[domain.Category]int{domain.Sport: i},
			TotalPoints: n - i,
		}
		if err := h.profiles.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed %s: %v", rec.ID, err)
		}
	}
}

func TestLeaderboardPageRanksByField(t *testing.T) {
	h := newHarness(nil)
	seedRoster(t, h, 12)

	page, err := h.boards.Page(context.Background(), domain.Sport.ScoreField(), 0, "")
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.TotalPages != 2 || len(page.Entries) != 10 {
		t.Fatalf("expected 2 pages of 10, got %d pages, %d entries", page.TotalPages, len(page.Entries))
	}
	if page.Entries[0].UserID != "u11" || page.Entries[0].Rank != 1 || page.Entries[0].Score != 11 {
		t.Fatalf("unexpected leader %+v", page.Entries[0])
	}

	last, err := h.boards.Page(context.Background(), domain.TotalPoints, 1, "")
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(last.Entries) != 2 || last.Entries[0].Rank != 11 || last.Entries[1].UserID != "u11" {
		t.Fatalf("unexpected last page %+v", last.Entries)
	}
}

func TestLeaderboardPageClampsOutOfRange(t *testing.T) {
	h := newHarness(nil)
	seedRoster(t, h, 3)

	page, err := h.boards.Page(context.Background(), domain.TotalPoints, 7, "")
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Index != 0 || len(page.Entries) != 3 {
		t.Fatalf("expected clamp to first page, got %+v", page)
	}
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	h := newHarness(nil)
	seedRoster(t, h, 2)

	first, err := h.boards.ToggleLike(ctx, "u00", "u01")
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !first.Liked || first.Likes != 1 {
		t.Fatalf("expected liked with 1 like, got %+v", first)
	}

	page, _ := h.boards.Page(ctx, domain.TotalPoints, 0, "u01")
	if !page.Entries[0].LikedByViewer {
		t.Fatalf("expected viewer like marked on %+v", page.Entries[0])
	}

	second, err := h.boards.ToggleLike(ctx, "u00", "u01")
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if second.Liked || second.Likes != 0 {
		t.Fatalf("expected like removed, got %+v", second)
	}
	rec, _ := h.profiles.Get(ctx, "u00")
	if len(rec.Likes) != 0 {
		t.Fatalf("expected no likes left, got %v", rec.Likes)
	}
}

func TestToggleLikeUnknownTarget(t *testing.T) {
	h := newHarness(nil)
	if _, err := h.boards.ToggleLike(context.Background(), "ghost", "u1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
