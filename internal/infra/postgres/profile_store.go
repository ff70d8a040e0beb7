package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"category-quiz-service/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var sqlBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ProfileStore keeps one users row per profile with a column per score field.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func userColumns() []string {
	cols := []string{"id", "first_name", "last_name", "email", "birth_date", "profile_picture"}
	for _, c := range domain.Categories {
		cols = append(cols, string(c.ScoreField()))
	}
	return append(cols, string(domain.TotalPoints), "likes")
}

func scanUser(row pgx.Row) (domain.UserRecord, error) {
	var rec domain.UserRecord
	points := make([]int, len(domain.Categories))
	dest := []interface{}{&rec.ID, &rec.FirstName, &rec.LastName, &rec.Email, &rec.BirthDate, &rec.ProfilePictureURL}
	for i := range points {
		dest = append(dest, &points[i])
	}
	dest = append(dest, &rec.TotalPoints, &rec.Likes)
	if err := row.Scan(dest...); err != nil {
		return domain.UserRecord{}, err
	}
	rec.Points = make(map[domain.Category]int, len(domain.Categories))
	for i, c := range domain.Categories {
		rec.Points[c] = points[i]
	}
	return rec, nil
}

func (s *ProfileStore) Create(ctx context.Context, rec domain.UserRecord) error {
	cols := []string{"id", "first_name", "last_name", "email", "birth_date", "profile_picture", string(domain.TotalPoints), "likes"}
	vals := []interface{}{rec.ID, rec.FirstName, rec.LastName, rec.Email, rec.BirthDate, rec.ProfilePictureURL, rec.TotalPoints, nonNil(rec.Likes)}
	for c, p := range rec.Points {
		cols = append(cols, string(c.ScoreField()))
		vals = append(vals, p)
	}
	query, args, err := sqlBuilder.Insert("users").Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return domain.Unavailable("create profile", err)
	}
	return nil
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (domain.UserRecord, error) {
	query, args, err := sqlBuilder.Select(userColumns()...).From("users").Where(sq.Eq{"id": userID}).ToSql()
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("build select user: %w", err)
	}
	rec, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, domain.Unavailable("get profile", err)
	}
	return rec, nil
}

// List returns the roster in creation order.
func (s *ProfileStore) List(ctx context.Context) ([]domain.UserRecord, error) {
	query, args, err := sqlBuilder.Select(userColumns()...).From("users").OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Unavailable("list profiles", err)
	}
	defer rows.Close()

	var out []domain.UserRecord
	for rows.Next() {
		rec, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("list profiles", err)
	}
	return out, nil
}

func (s *ProfileStore) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (domain.UserRecord, error) {
	query, args, err := sqlBuilder.Update("users").
		Set("first_name", upd.FirstName).
		Set("last_name", upd.LastName).
		Set("email", upd.Email).
		Set("birth_date", upd.BirthDate).
		Where(sq.Eq{"id": userID}).
		Suffix("RETURNING " + strings.Join(userColumns(), ", ")).
		ToSql()
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("build update profile: %w", err)
	}
	rec, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserRecord{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserRecord{}, domain.Unavailable("update profile", err)
	}
	return rec, nil
}

func (s *ProfileStore) SetProfilePicture(ctx context.Context, userID, url string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET profile_picture = $2 WHERE id = $1`, userID, url)
	if err != nil {
		return domain.Unavailable("set profile picture", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AddScore increments in SQL so concurrent submissions never lose an update.
func (s *ProfileStore) AddScore(ctx context.Context, userID string, category domain.Category, delta int) error {
	col := string(category.ScoreField())
	total := string(domain.TotalPoints)
	query, args, err := sqlBuilder.Update("users").
		Set(col, sq.Expr(col+" + ?", delta)).
		Set(total, sq.Expr(total+" + ?", delta)).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build add score: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return domain.Unavailable("add score", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *ProfileStore) AppendScoreEvent(ctx context.Context, sub domain.ScoreSubmission) error {
	query, args, err := sqlBuilder.Insert("score_history").
		Columns("id", "user_id", "category", "final_score", "submitted_at").
		Values(sub.ID, sub.UserID, string(sub.Category), sub.FinalScore, sub.Timestamp).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert score event: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return domain.Unavailable("append score event", err)
	}
	return nil
}

// ToggleLike reads and writes the likes array in one statement.
func (s *ProfileStore) ToggleLike(ctx context.Context, targetID, actorID string) (bool, []string, error) {
	var (
		liked bool
		likes []string
	)
	err := s.pool.QueryRow(ctx, `
UPDATE users
SET likes = CASE
    WHEN $2::text = ANY(likes) THEN array_remove(likes, $2::text)
    ELSE array_append(likes, $2::text)
END
WHERE id = $1
RETURNING $2::text = ANY(likes), likes`, targetID, actorID).Scan(&liked, &likes)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil, domain.ErrUserNotFound
	}
	if err != nil {
		return false, nil, domain.Unavailable("toggle like", err)
	}
	return liked, likes, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
