package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/logger"
)

// QuizService owns quiz content management. Edits invalidate the answer-key
// cache so scoring reads fresh questions.
type QuizService struct {
	quizzes QuizRepository
	keys    AnswerKeySource
	log     *logger.Logger
	now     func() time.Time
}

func NewQuizService(quizzes QuizRepository, keys AnswerKeySource, log *logger.Logger) *QuizService {
	return &QuizService{quizzes: quizzes, keys: keys, log: log, now: time.Now}
}

// QuizInput is the mutable surface of a quiz; updates rewrite it wholesale.
type QuizInput struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Duration    int
	Difficulty  string
	Questions   []domain.Question
}

func (in *QuizInput) validate() error {
	if in.Title == "" || in.Category == "" {
		return domain.Invalid("title and category are required")
	}
	if len(in.Questions) == 0 {
		return domain.Invalid("at least one question is required")
	}
	for i := range in.Questions {
		if in.Questions[i].Text == "" {
			return domain.Invalid(fmt.Sprintf("question %d is missing text", i+1))
		}
	}
	return nil
}

// Create stores a new quiz, assigning ids to questions that lack one.
func (s *QuizService) Create(ctx context.Context, in QuizInput) (*domain.Quiz, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	quiz := &domain.Quiz{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Tags:        in.Tags,
		Duration:    in.Duration,
		Difficulty:  in.Difficulty,
		Questions:   withQuestionIDs(in.Questions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	s.log.Info("quiz created", "quizID", quiz.ID, "questions", len(quiz.Questions))
	return quiz, nil
}

// List returns all quizzes.
func (s *QuizService) List(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.List(ctx)
}

// Get returns one quiz by id.
func (s *QuizService) Get(ctx context.Context, quizID uuid.UUID) (*domain.Quiz, error) {
	return s.quizzes.ByID(ctx, quizID)
}

// Update rewrites the quiz's mutable fields wholesale and invalidates its
// cached answer key. The image payload is untouched.
func (s *QuizService) Update(ctx context.Context, quizID uuid.UUID, in QuizInput) (*domain.Quiz, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	quiz, err := s.quizzes.ByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	quiz.Title = in.Title
	quiz.Description = in.Description
	quiz.Category = in.Category
	quiz.Tags = in.Tags
	quiz.Duration = in.Duration
	quiz.Difficulty = in.Difficulty
	quiz.Questions = withQuestionIDs(in.Questions)
	quiz.UpdatedAt = s.now()
	if err := s.quizzes.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	if err := s.keys.Invalidate(ctx, quizID); err != nil {
		s.log.Warn("answer key invalidation failed", "quizID", quizID, "error", err)
	}
	return quiz, nil
}

// Delete removes a quiz and drops its cached answer key. Historical attempts
// keep their denormalized answers.
func (s *QuizService) Delete(ctx context.Context, quizID uuid.UUID) error {
	if _, err := s.quizzes.ByID(ctx, quizID); err != nil {
		return err
	}
	if err := s.quizzes.Delete(ctx, quizID); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if err := s.keys.Invalidate(ctx, quizID); err != nil {
		s.log.Warn("answer key invalidation failed", "quizID", quizID, "error", err)
	}
	s.log.Info("quiz deleted", "quizID", quizID)
	return nil
}

// AttachImage sets the quiz's optional image payload.
func (s *QuizService) AttachImage(ctx context.Context, quizID uuid.UUID, image domain.QuizImage) (*domain.Quiz, error) {
	quiz, err := s.quizzes.ByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	quiz.Image = &image
	quiz.UpdatedAt = s.now()
	if err := s.quizzes.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("attach quiz image: %w", err)
	}
	return quiz, nil
}

// RemoveImage clears the quiz's image payload.
func (s *QuizService) RemoveImage(ctx context.Context, quizID uuid.UUID) (*domain.Quiz, error) {
	quiz, err := s.quizzes.ByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	quiz.Image = nil
	quiz.UpdatedAt = s.now()
	if err := s.quizzes.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("remove quiz image: %w", err)
	}
	return quiz, nil
}

func withQuestionIDs(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}
