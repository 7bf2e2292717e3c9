package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
)

// AttemptRepository is an in-memory implementation of app.AttemptRepository.
// It borrows the quiz and user repositories to serve the joined reads the
// SQL implementation does in one query.
type AttemptRepository struct {
	quizzes *QuizRepository
	users   *UserRepository

	mu       sync.RWMutex
	attempts map[uuid.UUID]domain.QuizAttempt
}

func NewAttemptRepository(quizzes *QuizRepository, users *UserRepository) *AttemptRepository {
	return &AttemptRepository{
		quizzes:  quizzes,
		users:    users,
		attempts: make(map[uuid.UUID]domain.QuizAttempt),
	}
}

// Insert assigns the next attempt number under the repository lock, so
// concurrent submissions cannot share a number.
func (r *AttemptRepository) Insert(_ context.Context, attempt *domain.QuizAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := 1
	for _, existing := range r.attempts {
		if existing.UserID == attempt.UserID && existing.QuizID == attempt.QuizID && existing.AttemptNumber >= next {
			next = existing.AttemptNumber + 1
		}
	}
	attempt.AttemptNumber = next
	stored := *attempt
	stored.Quiz = nil
	r.attempts[attempt.ID] = stored
	return nil
}

func (r *AttemptRepository) ByIDForUser(ctx context.Context, attemptID, userID uuid.UUID) (*domain.QuizAttempt, error) {
	r.mu.RLock()
	attempt, ok := r.attempts[attemptID]
	r.mu.RUnlock()
	if !ok || attempt.UserID != userID {
		return nil, domain.ErrAttemptNotFound
	}
	if quiz, err := r.quizzes.ByID(ctx, attempt.QuizID); err == nil {
		attempt.Quiz = quiz
	}
	return &attempt, nil
}

func (r *AttemptRepository) HistoryPage(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.QuizAttempt, int, error) {
	r.mu.RLock()
	var all []domain.QuizAttempt
	for _, attempt := range r.attempts {
		if attempt.UserID == userID {
			all = append(all, attempt)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CompletedAt.After(all[j].CompletedAt)
	})
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := all[offset:end]
	for i := range page {
		if quiz, err := r.quizzes.ByID(ctx, page[i].QuizID); err == nil {
			page[i].Quiz = quiz
		}
	}
	return page, total, nil
}

func (r *AttemptRepository) ForUserAndQuiz(_ context.Context, userID, quizID uuid.UUID) ([]domain.QuizAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.QuizAttempt
	for _, attempt := range r.attempts {
		if attempt.UserID == userID && attempt.QuizID == quizID {
			out = append(out, attempt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (r *AttemptRepository) Leaderboard(ctx context.Context, quizID uuid.UUID, limit int) ([]domain.LeaderboardRow, error) {
	r.mu.RLock()
	byUser := make(map[uuid.UUID][]domain.QuizAttempt)
	for _, attempt := range r.attempts {
		if attempt.QuizID == quizID {
			byUser[attempt.UserID] = append(byUser[attempt.UserID], attempt)
		}
	}
	r.mu.RUnlock()

	rows := make([]domain.LeaderboardRow, 0, len(byUser))
	for userID, attempts := range byUser {
		row := domain.LeaderboardRow{UserID: userID, TotalAttempts: len(attempts), BestScore: -1}
		for _, attempt := range attempts {
			if attempt.Score > row.BestScore {
				row.BestScore = attempt.Score
			}
			if attempt.CompletedAt.After(row.LastAttempt) {
				row.LastAttempt = attempt.CompletedAt
			}
		}
		// Fastest time only among attempts that reached the best score.
		first := true
		for _, attempt := range attempts {
			if attempt.Score == row.BestScore && (first || attempt.TimeSpent < row.BestTime) {
				row.BestTime = attempt.TimeSpent
				first = false
			}
		}
		if user, err := r.users.ByID(ctx, userID); err == nil {
			row.UserName = user.FullName()
			row.UserEmail = user.Email
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BestScore != rows[j].BestScore {
			return rows[i].BestScore > rows[j].BestScore
		}
		return rows[i].BestTime < rows[j].BestTime
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
