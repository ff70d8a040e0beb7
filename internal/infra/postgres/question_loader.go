package postgres

import (
	"context"
	"fmt"

	"category-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads a category's question bank from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, category domain.Category) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
SELECT id, category, prompt, option_a, option_b, option_c, option_d, correct
FROM questions
WHERE category = $1
ORDER BY id`, string(category))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			cat string
		)
		if err := rows.Scan(&q.ID, &cat, &q.Prompt, &q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.Correct); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Category = domain.Category(cat)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}

// Seed inserts questions that are not present yet.
func (l *QuestionLoader) Seed(ctx context.Context, questions []domain.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("seed question %s: %w", q.ID, err)
		}
		_, err := l.pool.Exec(ctx, `
INSERT INTO questions (id, category, prompt, option_a, option_b, option_c, option_d, correct)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`,
			q.ID, string(q.Category), q.Prompt, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Correct)
		if err != nil {
			return fmt.Errorf("seed question %s: %w", q.ID, err)
		}
	}
	return nil
}
