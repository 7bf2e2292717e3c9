package app

import (
	"context"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
)

// UserRepository abstracts account storage (Postgres, in-memory).
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	ByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuizRepository stores quiz content.
type QuizRepository interface {
	Create(ctx context.Context, quiz *domain.Quiz) error
	ByID(ctx context.Context, id uuid.UUID) (*domain.Quiz, error)
	List(ctx context.Context) ([]domain.Quiz, error)
	Update(ctx context.Context, quiz *domain.Quiz) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AttemptRepository stores scored attempts and serves the read-side queries.
type AttemptRepository interface {
	// Insert persists the attempt and assigns the next per-(user,quiz)
	// attempt number. Implementations must make the numbering safe against
	// concurrent submissions.
	Insert(ctx context.Context, attempt *domain.QuizAttempt) error
	// ByIDForUser returns the attempt only when owned by userID, with its
	// quiz loaded; otherwise domain.ErrAttemptNotFound.
	ByIDForUser(ctx context.Context, attemptID, userID uuid.UUID) (*domain.QuizAttempt, error)
	// HistoryPage returns one page of the user's attempts (newest first,
	// quizzes loaded) plus the total attempt count.
	HistoryPage(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.QuizAttempt, int, error)
	// ForUserAndQuiz returns the user's attempts on one quiz, newest first.
	ForUserAndQuiz(ctx context.Context, userID, quizID uuid.UUID) ([]domain.QuizAttempt, error)
	// Leaderboard aggregates all attempts on a quiz per user: best score,
	// fastest time among best-score attempts, attempt count, last attempt.
	// Ordered score desc then time asc, truncated to limit.
	Leaderboard(ctx context.Context, quizID uuid.UUID, limit int) ([]domain.LeaderboardRow, error)
}

// AnswerKeySource serves the scoring view of a quiz, typically through a
// cache in front of the persistent store.
type AnswerKeySource interface {
	AnswerKey(ctx context.Context, quizID uuid.UUID) (domain.AnswerKey, error)
	// Invalidate drops any cached key after a quiz edit or deletion.
	Invalidate(ctx context.Context, quizID uuid.UUID) error
}

// PaymentProvider is the billing SDK boundary. Amounts are in the smallest
// currency unit.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*domain.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*domain.PaymentIntent, error)
}
