package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/logger"
)

const (
	defaultHistoryLimit     = 10
	defaultLeaderboardLimit = 10
	liveLeaderboardLimit    = 25
)

// AttemptService owns the scoring, recording and read-side flows around quiz
// attempts.
type AttemptService struct {
	attempts AttemptRepository
	quizzes  QuizRepository
	keys     AnswerKeySource
	feed     *LeaderboardFeed
	log      *logger.Logger
	now      func() time.Time
}

func NewAttemptService(attempts AttemptRepository, quizzes QuizRepository, keys AnswerKeySource, feed *LeaderboardFeed, log *logger.Logger) *AttemptService {
	return &AttemptService{
		attempts: attempts,
		quizzes:  quizzes,
		keys:     keys,
		feed:     feed,
		log:      log,
		now:      time.Now,
	}
}

// SubmitInput is a full quiz submission.
type SubmitInput struct {
	Answers           []SubmittedAnswer
	TimeSpent         int
	TimeLimitExceeded bool
}

// Submit scores and records an attempt. Validation and scoring fail before
// anything is written, so a rejected submission leaves no record behind.
func (s *AttemptService) Submit(ctx context.Context, userID, quizID uuid.UUID, in SubmitInput) (*domain.QuizAttempt, *domain.Quiz, error) {
	if len(in.Answers) == 0 {
		return nil, nil, domain.Invalid("user answers are required")
	}
	if in.TimeSpent <= 0 {
		return nil, nil, domain.Invalid("valid time spent is required")
	}

	key, err := s.keys.AnswerKey(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}

	records, correct, err := scoreSubmission(key, in.Answers)
	if err != nil {
		return nil, nil, err
	}

	attempt := &domain.QuizAttempt{
		ID:                uuid.New(),
		UserID:            userID,
		QuizID:            quizID,
		Answers:           records,
		Score:             percentScore(correct, key.TotalQuestions),
		TotalQuestions:    key.TotalQuestions,
		CorrectAnswers:    correct,
		TimeSpent:         in.TimeSpent,
		TimeLimitExceeded: in.TimeLimitExceeded,
		CompletedAt:       s.now(),
	}
	if err := s.attempts.Insert(ctx, attempt); err != nil {
		return nil, nil, fmt.Errorf("record attempt: %w", err)
	}

	quiz, err := s.quizzes.ByID(ctx, quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("load quiz after submit: %w", err)
	}

	s.log.Info("attempt recorded",
		"userID", userID, "quizID", quizID,
		"score", attempt.Score, "attemptNumber", attempt.AttemptNumber)
	s.publishLeaderboard(ctx, quizID)
	return attempt, quiz, nil
}

// publishLeaderboard refreshes live subscribers after a recorded attempt.
// Failures here never fail the submission.
func (s *AttemptService) publishLeaderboard(ctx context.Context, quizID uuid.UUID) {
	if s.feed == nil || !s.feed.HasSubscribers(quizID) {
		return
	}
	rows, err := s.attempts.Leaderboard(ctx, quizID, liveLeaderboardLimit)
	if err != nil {
		s.log.Warn("live leaderboard refresh failed", "quizID", quizID, "error", err)
		return
	}
	s.feed.Publish(quizID, rows)
}

// AnswerDetail pairs a recorded answer with the question as it currently
// exists on the quiz.
type AnswerDetail struct {
	QuestionID     string   `json:"questionId"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	UserAnswer     string   `json:"userAnswer"`
	CorrectAnswer  string   `json:"correctAnswer"`
	IsCorrect      bool     `json:"isCorrect"`
	TimeSpent      int      `json:"timeSpent"`
}

// AttemptDetail is the owner-scoped single-attempt view.
type AttemptDetail struct {
	Attempt *domain.QuizAttempt
	Quiz    *domain.Quiz
	Details []AnswerDetail
}

// Result returns one attempt scoped to the requesting user. An attempt owned
// by someone else is indistinguishable from a missing one.
func (s *AttemptService) Result(ctx context.Context, userID, attemptID uuid.UUID) (*AttemptDetail, error) {
	attempt, err := s.attempts.ByIDForUser(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}

	detail := &AttemptDetail{Attempt: attempt, Quiz: attempt.Quiz}
	var questions []domain.Question
	if attempt.Quiz != nil {
		questions = attempt.Quiz.Questions
	}
	for _, record := range attempt.Answers {
		d := AnswerDetail{
			QuestionID: record.QuestionID,
			Question:   "Question not found",
			UserAnswer: record.SelectedAnswer,
			IsCorrect:  record.IsCorrect,
			TimeSpent:  record.TimeSpent,
		}
		for i := range questions {
			if questions[i].ID == record.QuestionID {
				d.Question = questions[i].Text
				d.Options = questions[i].Options
				d.CorrectAnswer = questions[i].CorrectAnswer
				break
			}
		}
		detail.Details = append(detail.Details, d)
	}
	return detail, nil
}

// Pagination describes one history page.
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalAttempts int  `json:"totalAttempts"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

// HistoryPage is a page of a user's attempts across all quizzes.
type HistoryPage struct {
	Attempts   []domain.QuizAttempt
	Pagination Pagination
}

// History lists the user's attempts newest first with page/limit paging.
func (s *AttemptService) History(ctx context.Context, userID uuid.UUID, page, limit int) (HistoryPage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if page <= 0 {
		page = 1
	}
	skip := (page - 1) * limit

	attempts, total, err := s.attempts.HistoryPage(ctx, userID, limit, skip)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("load history: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	return HistoryPage{
		Attempts: attempts,
		Pagination: Pagination{
			CurrentPage:   page,
			TotalPages:    totalPages,
			TotalAttempts: total,
			HasNext:       skip+len(attempts) < total,
			HasPrev:       page > 1,
		},
	}, nil
}

// QuizAttemptsView lists the caller's attempts on one quiz with the best
// score across them. Retaking is always permitted.
type QuizAttemptsView struct {
	Attempts      []domain.QuizAttempt
	TotalAttempts int
	BestScore     int
}

// ForQuiz returns the caller's attempts on a quiz, newest first.
func (s *AttemptService) ForQuiz(ctx context.Context, userID, quizID uuid.UUID) (QuizAttemptsView, error) {
	attempts, err := s.attempts.ForUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		return QuizAttemptsView{}, fmt.Errorf("load quiz attempts: %w", err)
	}
	view := QuizAttemptsView{Attempts: attempts, TotalAttempts: len(attempts)}
	for _, attempt := range attempts {
		if attempt.Score > view.BestScore {
			view.BestScore = attempt.Score
		}
	}
	return view, nil
}

// Leaderboard returns the per-quiz ranked standing.
func (s *AttemptService) Leaderboard(ctx context.Context, quizID uuid.UUID, limit int) ([]domain.LeaderboardRow, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	rows, err := s.attempts.Leaderboard(ctx, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return rows, nil
}

// Subscribe attaches a live leaderboard listener for a quiz. The first
// message is the current standing; the cancel func must be called.
func (s *AttemptService) Subscribe(ctx context.Context, quizID uuid.UUID) (<-chan []domain.LeaderboardRow, func(), error) {
	rows, err := s.attempts.Leaderboard(ctx, quizID, liveLeaderboardLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("load leaderboard: %w", err)
	}
	ch, cancel := s.feed.Subscribe(quizID, rows)
	return ch, cancel, nil
}
