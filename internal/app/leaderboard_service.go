package app

import (
	"context"
	"time"

	"category-quiz-service/internal/domain"
	"category-quiz-service/internal/leaderboard"
	"category-quiz-service/internal/metrics"
)

// LeaderboardService ranks the full roster client-side and manages likes.
type LeaderboardService struct {
	profiles ProfileStore
	timeout  time.Duration
	pageSize int
}

func NewLeaderboardService(profiles ProfileStore, timeout time.Duration) *LeaderboardService {
	return &LeaderboardService{profiles: profiles, timeout: timeout, pageSize: leaderboard.DefaultPageSize}
}

// LoadRoster fetches every user record. There is no server-side filtering or paging.
func (s *LeaderboardService) LoadRoster(ctx context.Context) ([]domain.UserRecord, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	roster, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	return roster, nil
}

// Page loads the roster, ranks it by field and returns the clamped page.
func (s *LeaderboardService) Page(ctx context.Context, field domain.ScoreField, page int, viewerID string) (leaderboard.Page, error) {
	roster, err := s.LoadRoster(ctx)
	if err != nil {
		return leaderboard.Page{}, err
	}
	view := leaderboard.Rank(roster, field)
	return leaderboard.Paginate(view, field, page, s.pageSize, viewerID), nil
}

// LikeResult reports the target's like state after a toggle.
type LikeResult struct {
	TargetID string `json:"targetId"`
	Liked    bool   `json:"liked"`
	Likes    int    `json:"likes"`
}

// ToggleLike likes or unlikes target on behalf of actor.
func (s *LeaderboardService) ToggleLike(ctx context.Context, targetID, actorID string) (LikeResult, error) {
	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()
	liked, likes, err := s.profiles.ToggleLike(ctx, targetID, actorID)
	if err != nil {
		return LikeResult{}, err
	}
	action := "unlike"
	if liked {
		action = "like"
	}
	metrics.LikesToggled.WithLabelValues(action).Inc()
	return LikeResult{TargetID: targetID, Liked: liked, Likes: len(likes)}, nil
}
