package migrations

import (
	_ "embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_users.sql
var createUsersSQL string

//go:embed 0002_create_quizzes.sql
var createQuizzesSQL string

//go:embed 0003_create_quiz_attempts.sql
var createQuizAttemptsSQL string

var Migrations = migrate.NewMigrations()
