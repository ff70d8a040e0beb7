package mongo

import (
	"context"
	"errors"
	"fmt"

	"category-quiz-service/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ProfileStore keeps one document per user in the users collection and appends
// submitted scores to score_history.
type ProfileStore struct {
	users   *mongo.Collection
	history *mongo.Collection
}

func NewProfileStore(db *mongo.Database) *ProfileStore {
	return &ProfileStore{
		users:   db.Collection("users"),
		history: db.Collection("score_history"),
	}
}

// userDocument is the stored shape: one top-level integer per score field.
type userDocument struct {
	ID                string        `bson:"_id"`
	FirstName         string        `bson:"firstName"`
	LastName          string        `bson:"lastName"`
	Email             string        `bson:"email"`
	BirthDate         string        `bson:"birthDate,omitempty"`
	ProfilePictureURL string        `bson:"profilePicture,omitempty"`
	Likes             []string      `bson:"likes"`
	CreatedKey        bson.ObjectID `bson:"createdKey"`
	Scores            bson.M        `bson:",inline"`
}

func toDocument(rec domain.UserRecord, key bson.ObjectID) userDocument {
	scores := bson.M{string(domain.TotalPoints): rec.TotalPoints}
	for _, c := range domain.Categories {
		scores[string(c.ScoreField())] = rec.Points[c]
	}
	likes := rec.Likes
	if likes == nil {
		likes = []string{}
	}
	return userDocument{
		ID:                rec.ID,
		FirstName:         rec.FirstName,
		LastName:          rec.LastName,
		Email:             rec.Email,
		BirthDate:         rec.BirthDate,
		ProfilePictureURL: rec.ProfilePictureURL,
		Likes:             likes,
		CreatedKey:        key,
		Scores:            scores,
	}
}

func (d userDocument) record() domain.UserRecord {
	rec := domain.UserRecord{
		ID:                d.ID,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		Email:             d.Email,
		BirthDate:         d.BirthDate,
		ProfilePictureURL: d.ProfilePictureURL,
		Points:            make(map[domain.Category]int, len(domain.Categories)),
		TotalPoints:       intField(d.Scores, string(domain.TotalPoints)),
		Likes:             d.Likes,
	}
	for _, c := range domain.Categories {
		rec.Points[c] = intField(d.Scores, string(c.ScoreField()))
	}
	return rec
}

// intField reads a numeric field; absent or non-numeric values count as zero.
func intField(m bson.M, key string) int {
	switch v := m[key].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func (s *ProfileStore) Create(ctx context.Context, rec domain.UserRecord) error {
	if _, err := s.users.InsertOne(ctx, toDocument(rec, newCreationKey())); err != nil {
		return domain.Unavailable("create profile", err)
	}
	return nil
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (domain.UserRecord, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, domain.Unavailable("get profile", err)
	}
	return doc.record(), nil
}

// newCreationKey orders documents by insertion: an ObjectID carries the creation
// second and a per-process counter, and is unique across concurrent sign-ups.
var newCreationKey = bson.NewObjectID

// List returns the roster in creation order.
func (s *ProfileStore) List(ctx context.Context) ([]domain.UserRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdKey", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, domain.Unavailable("list profiles", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.Unavailable("list profiles", err)
	}
	out := make([]domain.UserRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.record())
	}
	return out, nil
}

func (s *ProfileStore) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (domain.UserRecord, error) {
	update := bson.M{"$set": bson.M{
		"firstName": upd.FirstName,
		"lastName":  upd.LastName,
		"email":     upd.Email,
		"birthDate": upd.BirthDate,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, domain.Unavailable("update profile", err)
	}
	return doc.record(), nil
}

func (s *ProfileStore) SetProfilePicture(ctx context.Context, userID, url string) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"profilePicture": url}})
	if err != nil {
		return domain.Unavailable("set profile picture", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *ProfileStore) AddScore(ctx context.Context, userID string, category domain.Category, delta int) error {
	update := bson.M{"$inc": bson.M{
		string(category.ScoreField()): delta,
		string(domain.TotalPoints):    delta,
	}}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return domain.Unavailable("add score", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *ProfileStore) AppendScoreEvent(ctx context.Context, sub domain.ScoreSubmission) error {
	if _, err := s.history.InsertOne(ctx, sub); err != nil {
		return domain.Unavailable("append score event", err)
	}
	return nil
}

// ToggleLike removes actorID when present and adds it otherwise. Both branches are
// conditional single-document updates, so a concurrent toggle cannot duplicate the entry.
func (s *ProfileStore) ToggleLike(ctx context.Context, targetID, actorID string) (bool, []string, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": targetID, "likes": actorID},
		bson.M{"$pull": bson.M{"likes": actorID}},
		opts,
	).Decode(&doc)
	if err == nil {
		return false, doc.Likes, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil, domain.Unavailable("toggle like", err)
	}

	err = s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": targetID},
		bson.M{"$addToSet": bson.M{"likes": actorID}},
		opts,
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil, domain.ErrUserNotFound
	}
	if err != nil {
		return false, nil, domain.Unavailable("toggle like", err)
	}
	return true, doc.Likes, nil
}

// EnsureIndexes creates the indexes the store relies on.
func (s *ProfileStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdKey", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	_, err = s.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create history indexes: %w", err)
	}
	return nil
}
