package domain

import (
	"slices"
	"time"
)

// Labels are the option labels of every question, in display order.
var Labels = []string{"a", "b", "c", "d"}

// Question models a four-option multiple-choice question.
type Question struct {
	ID       string    `json:"id"`
	Category Category  `json:"category"`
	Prompt   string    `json:"prompt"`
	Options  [4]string `json:"options"` // indexed by label a..d
	Correct  string    `json:"correct"`
}

// Option returns the text behind a label.
func (q Question) Option(label string) (string, bool) {
	i := slices.Index(Labels, label)
	if i < 0 {
		return "", false
	}
	return q.Options[i], true
}

// Validate checks the correct label is one of a-d.
func (q Question) Validate() error {
	if !slices.Contains(Labels, q.Correct) {
		return &ValidationError{Field: "correct", Reason: "must be one of a, b, c, d"}
	}
	return nil
}

// UserRecord is the per-user document of the profile store.
type UserRecord struct {
	ID                string           `json:"id" bson:"_id"`
	FirstName         string           `json:"firstName" bson:"firstName"`
	LastName          string           `json:"lastName" bson:"lastName"`
	Email             string           `json:"email" bson:"email"`
	BirthDate         string           `json:"birthDate,omitempty" bson:"birthDate,omitempty"`
	ProfilePictureURL string           `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	Points            map[Category]int `json:"points" bson:"points"`
	TotalPoints       int              `json:"totalPoints" bson:"totalPoints"`
	Likes             []string         `json:"likes" bson:"likes"`
}

// Score returns the value of a score field; absent fields count as zero.
func (u UserRecord) Score(field ScoreField) int {
	if field == TotalPoints {
		return u.TotalPoints
	}
	c, ok := field.Category()
	if !ok {
		return 0
	}
	return u.Points[c]
}

// HasLike reports whether userID is in the likes set.
func (u UserRecord) HasLike(userID string) bool {
	return slices.Contains(u.Likes, userID)
}

// Clone returns a deep copy so callers cannot mutate store-owned maps or slices.
func (u UserRecord) Clone() UserRecord {
	out := u
	if u.Points != nil {
		out.Points = make(map[Category]int, len(u.Points))
		for k, v := range u.Points {
			out.Points[k] = v
		}
	}
	out.Likes = slices.Clone(u.Likes)
	return out
}

// ProfileUpdate carries the editable fields of a profile.
type ProfileUpdate struct {
	FirstName string `json:"firstName" validate:"required,max=64"`
	LastName  string `json:"lastName" validate:"required,max=64"`
	Email     string `json:"email" validate:"required,email"`
	BirthDate string `json:"birthDate" validate:"omitempty,birthdate"`
}

// ScoreSubmission is the one-time payload written when a session terminates.
type ScoreSubmission struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"userId" bson:"userId"`
	Category   Category  `json:"category" bson:"category"`
	FinalScore int       `json:"finalScore" bson:"finalScore"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}

// Account holds sign-in credentials; the profile lives in UserRecord under the same ID.
type Account struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
