package postgres

import (
	"context"
	"errors"

	"category-quiz-service/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

// AccountStore keeps credentials in the accounts table.
type AccountStore struct {
	pool *pgxpool.Pool
}

func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

func (s *AccountStore) Create(ctx context.Context, acc domain.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (user_id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		acc.UserID, acc.Email, acc.PasswordHash, acc.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return domain.Unavailable("create account", err)
	}
	return nil
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	var acc domain.Account
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, email, password_hash, created_at FROM accounts WHERE email = $1`, email).
		Scan(&acc.UserID, &acc.Email, &acc.PasswordHash, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, domain.Unavailable("find account", err)
	}
	return acc, nil
}

func (s *AccountStore) Delete(ctx context.Context, email, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE email = $1 AND user_id = $2`, email, userID)
	if err != nil {
		return domain.Unavailable("delete account", err)
	}
	return nil
}
