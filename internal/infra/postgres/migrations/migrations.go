package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var (
	//go:embed 0001_create_questions.sql
	createQuestionsSQL string
	//go:embed 0002_create_users.sql
	createUsersSQL string
	//go:embed 0003_create_score_history.sql
	createScoreHistorySQL string
	//go:embed 0004_create_accounts.sql
	createAccountsSQL string
)

var Migrations = migrate.NewMigrations()

func init() {
	register("20241122010001", "create_questions", createQuestionsSQL, "questions")
	register("20241122010002", "create_users", createUsersSQL, "users")
	register("20241122010003", "create_score_history", createScoreHistorySQL, "score_history")
	register("20241122010004", "create_accounts", createAccountsSQL, "accounts")
}

// register adds a named migration; names sort in apply order.
func register(name, comment, upSQL, table string) {
	Migrations.Add(migrate.Migration{
		Name:    name,
		Comment: comment,
		Up: func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, upSQL)
			return err
		},
		Down: func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table+` CASCADE`)
			return err
		},
	})
}
