package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"quizcraft-service/internal/domain"
)

// AttemptRepository stores scored attempts and serves the aggregate reads.
type AttemptRepository struct {
	db *bun.DB
}

func NewAttemptRepository(db *bun.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Insert numbers and persists the attempt in one transaction. An advisory
// transaction lock keyed on (user, quiz) serializes concurrent submissions,
// so two simultaneous requests cannot read the same prior count; the unique
// index on (user_id, quiz_id, attempt_number) backs this up.
func (r *AttemptRepository) Insert(ctx context.Context, attempt *domain.QuizAttempt) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		lockKey := attempt.UserID.String() + ":" + attempt.QuizID.String()
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", lockKey); err != nil {
			return fmt.Errorf("acquire attempt lock: %w", err)
		}

		prior, err := tx.NewSelect().
			Model((*domain.QuizAttempt)(nil)).
			Where("qa.user_id = ?", attempt.UserID).
			Where("qa.quiz_id = ?", attempt.QuizID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("count prior attempts: %w", err)
		}
		attempt.AttemptNumber = prior + 1

		if _, err := tx.NewInsert().Model(attempt).Exec(ctx); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		return nil
	})
}

func (r *AttemptRepository) ByIDForUser(ctx context.Context, attemptID, userID uuid.UUID) (*domain.QuizAttempt, error) {
	attempt := new(domain.QuizAttempt)
	err := r.db.NewSelect().
		Model(attempt).
		Relation("Quiz").
		Where("qa.id = ?", attemptID).
		Where("qa.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Foreign-owned and missing attempts are indistinguishable.
			return nil, domain.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("select attempt: %w", err)
	}
	return attempt, nil
}

func (r *AttemptRepository) HistoryPage(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.QuizAttempt, int, error) {
	var attempts []domain.QuizAttempt
	total, err := r.db.NewSelect().
		Model(&attempts).
		Relation("Quiz").
		Where("qa.user_id = ?", userID).
		OrderExpr("qa.completed_at DESC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("select history: %w", err)
	}
	return attempts, total, nil
}

func (r *AttemptRepository) ForUserAndQuiz(ctx context.Context, userID, quizID uuid.UUID) ([]domain.QuizAttempt, error) {
	var attempts []domain.QuizAttempt
	err := r.db.NewSelect().
		Model(&attempts).
		Where("qa.user_id = ?", userID).
		Where("qa.quiz_id = ?", quizID).
		OrderExpr("qa.completed_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select quiz attempts: %w", err)
	}
	return attempts, nil
}

// Leaderboard groups all attempts on a quiz by user. Best time only counts
// attempts that reached the user's best score.
func (r *AttemptRepository) Leaderboard(ctx context.Context, quizID uuid.UUID, limit int) ([]domain.LeaderboardRow, error) {
	var rows []domain.LeaderboardRow
	err := r.db.NewRaw(`
WITH best AS (
    SELECT user_id,
           MAX(score)        AS best_score,
           COUNT(*)          AS total_attempts,
           MAX(completed_at) AS last_attempt
    FROM quiz_attempts
    WHERE quiz_id = ?
    GROUP BY user_id
)
SELECT b.user_id                           AS user_id,
       u.first_name || ' ' || u.last_name  AS user_name,
       u.email                             AS user_email,
       b.best_score                        AS best_score,
       MIN(a.time_spent)                   AS best_time,
       b.total_attempts                    AS total_attempts,
       b.last_attempt                      AS last_attempt
FROM best b
JOIN quiz_attempts a
  ON a.user_id = b.user_id AND a.quiz_id = ? AND a.score = b.best_score
JOIN users u ON u.id = b.user_id
GROUP BY b.user_id, u.first_name, u.last_name, u.email,
         b.best_score, b.total_attempts, b.last_attempt
ORDER BY b.best_score DESC, best_time ASC
LIMIT ?`, quizID, quizID, limit).Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	return rows, nil
}
