package domain

import "strings"

// Category is a topical tag partitioning the question bank and the per-user score fields.
type Category string

const (
	Geography   Category = "Geography"
	History     Category = "History"
	Sport       Category = "Sport"
	Movies      Category = "Movies"
	Music       Category = "Music"
	Informatics Category = "Informatics"
)

// Categories lists every category in chooser order.
var Categories = []Category{Geography, History, Sport, Movies, Music, Informatics}

// ParseCategory resolves a category tag case-insensitively.
func ParseCategory(raw string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(raw)) {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

// ScoreField returns the user record field holding this category's points.
func (c Category) ScoreField() ScoreField {
	return ScoreField(strings.ToLower(string(c)) + "_points")
}

// ScoreField names an integer score field of a UserRecord.
type ScoreField string

// TotalPoints is the sum of every category's points.
const TotalPoints ScoreField = "total_points"

// ScoreFields lists every rankable field, total first.
func ScoreFields() []ScoreField {
	fields := []ScoreField{TotalPoints}
	for _, c := range Categories {
		fields = append(fields, c.ScoreField())
	}
	return fields
}

// ParseScoreField validates a ranking field name. An empty string selects TotalPoints.
func ParseScoreField(raw string) (ScoreField, error) {
	if raw == "" {
		return TotalPoints, nil
	}
	for _, f := range ScoreFields() {
		if string(f) == raw {
			return f, nil
		}
	}
	return "", ErrUnknownScoreField
}

// Category returns the category owning the field; ok is false for TotalPoints.
func (f ScoreField) Category() (Category, bool) {
	for _, c := range Categories {
		if c.ScoreField() == f {
			return c, true
		}
	}
	return "", false
}
