package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
)

// QuizRepository is an in-memory implementation of app.QuizRepository. It
// doubles as an answer-key loader for the caches.
type QuizRepository struct {
	mu      sync.RWMutex
	quizzes map[uuid.UUID]domain.Quiz
}

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{quizzes: make(map[uuid.UUID]domain.Quiz)}
}

func (r *QuizRepository) Create(_ context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.ID] = *quiz
	return nil
}

func (r *QuizRepository) ByID(_ context.Context, id uuid.UUID) (*domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	return &quiz, nil
}

func (r *QuizRepository) List(_ context.Context) ([]domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(r.quizzes))
	for _, quiz := range r.quizzes {
		out = append(out, quiz)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *QuizRepository) Update(_ context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	r.quizzes[quiz.ID] = *quiz
	return nil
}

func (r *QuizRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(r.quizzes, id)
	return nil
}

// LoadAnswerKey lets the repository back an answer-key cache directly.
func (r *QuizRepository) LoadAnswerKey(ctx context.Context, quizID uuid.UUID) (domain.AnswerKey, error) {
	quiz, err := r.ByID(ctx, quizID)
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return quiz.Key(), nil
}
