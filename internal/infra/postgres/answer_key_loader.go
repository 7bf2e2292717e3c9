package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizcraft-service/internal/domain"
)

// AnswerKeyLoader reads only the questions JSONB of a quiz, keeping the hot
// scoring path off the full quiz row.
type AnswerKeyLoader struct {
	pool *pgxpool.Pool
}

func NewAnswerKeyLoader(pool *pgxpool.Pool) *AnswerKeyLoader {
	return &AnswerKeyLoader{pool: pool}
}

func (l *AnswerKeyLoader) LoadAnswerKey(ctx context.Context, quizID uuid.UUID) (domain.AnswerKey, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT questions FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AnswerKey{}, domain.ErrQuizNotFound
		}
		return domain.AnswerKey{}, fmt.Errorf("load answer key: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return domain.AnswerKey{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	quiz := domain.Quiz{ID: quizID, Questions: questions}
	return quiz.Key(), nil
}
