package leaderboard

import (
	"slices"
	"sort"

	"category-quiz-service/internal/domain"
)

// DefaultPageSize is the number of entries per leaderboard page.
const DefaultPageSize = 10

// Rank orders a roster snapshot by field, descending. Ties keep fetch order.
// The input slice is not modified.
func Rank(roster []domain.UserRecord, field domain.ScoreField) []domain.UserRecord {
	view := slices.Clone(roster)
	sort.SliceStable(view, func(i, j int) bool {
		return view[i].Score(field) > view[j].Score(field)
	})
	return view
}

// Entry is one ranked row of a page.
type Entry struct {
	Rank              int    `json:"rank"`
	UserID            string `json:"userId"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	ProfilePictureURL string `json:"profilePicture,omitempty"`
	Score             int    `json:"score"`
	Likes             int    `json:"likes"`
	LikedByViewer     bool   `json:"likedByViewer"`
}

// Page is a slice of a ranked view.
type Page struct {
	Field      domain.ScoreField `json:"field"`
	Index      int               `json:"page"`
	Size       int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
	Entries    []Entry           `json:"entries"`
}

// PageCount returns how many pages a view of n entries spans; an empty view has one empty page.
func PageCount(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Clamp limits pageIndex to the valid range for a view of n entries.
func Clamp(pageIndex, n, size int) int {
	last := PageCount(n, size) - 1
	if pageIndex < 0 {
		return 0
	}
	if pageIndex > last {
		return last
	}
	return pageIndex
}

// Paginate returns entries [page*size, (page+1)*size) of view with global 1-based ranks.
// viewerID marks entries the viewer has liked; it may be empty.
func Paginate(view []domain.UserRecord, field domain.ScoreField, pageIndex, size int, viewerID string) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	pageIndex = Clamp(pageIndex, len(view), size)
	start := pageIndex * size
	end := min(start+size, len(view))

	page := Page{
		Field:      field,
		Index:      pageIndex,
		Size:       size,
		TotalPages: PageCount(len(view), size),
		Entries:    make([]Entry, 0, end-start),
	}
	for i, u := range view[start:end] {
		page.Entries = append(page.Entries, Entry{
			Rank:              start + i + 1,
			UserID:            u.ID,
			FirstName:         u.FirstName,
			LastName:          u.LastName,
			ProfilePictureURL: u.ProfilePictureURL,
			Score:             u.Score(field),
			Likes:             len(u.Likes),
			LikedByViewer:     viewerID != "" && u.HasLike(viewerID),
		})
	}
	return page
}

// ToggleLike flips actor's membership in likes and reports whether actor now likes the target.
// The result never contains duplicates, even if the input did.
func ToggleLike(likes []string, actor string) ([]string, bool) {
	if slices.Contains(likes, actor) {
		out := make([]string, 0, len(likes))
		for _, id := range likes {
			if id != actor {
				out = append(out, id)
			}
		}
		return out, false
	}
	return append(slices.Clone(likes), actor), true
}
