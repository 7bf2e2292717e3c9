package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/infra/memory"
	"quizcraft-service/internal/logger"
)

func TestSubmitAllCorrectScoresHundred(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	attempt, quiz, err := env.attempts.Submit(ctx, env.userID, env.quizID, app.SubmitInput{
		Answers: []app.SubmittedAnswer{
			{QuestionID: "q1", SelectedAnswer: "4", TimeSpent: 5},
			{QuestionID: "q2", SelectedAnswer: "Mars", TimeSpent: 7},
			{QuestionID: "q3", SelectedAnswer: "Paris", TimeSpent: 3},
		},
		TimeSpent: 15,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if attempt.Score != 100 || attempt.CorrectAnswers != 3 || attempt.TotalQuestions != 3 {
		t.Fatalf("expected perfect score, got %+v", attempt)
	}
	if attempt.AttemptNumber != 1 {
		t.Fatalf("expected attempt number 1, got %d", attempt.AttemptNumber)
	}
	if quiz.ID != env.quizID {
		t.Fatalf("expected quiz %s, got %s", env.quizID, quiz.ID)
	}
}

func TestSubmitPartialKeepsFullDenominator(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	// Two answered out of three questions, one correct. The denominator is
	// the quiz's question count, not the submission length.
	attempt, _, err := env.attempts.Submit(ctx, env.userID, env.quizID, app.SubmitInput{
		Answers: []app.SubmittedAnswer{
			{QuestionID: "q1", SelectedAnswer: "4", TimeSpent: 5},
			{QuestionID: "q2", SelectedAnswer: "Venus", TimeSpent: 4},
		},
		TimeSpent: 9,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if attempt.CorrectAnswers != 1 || attempt.TotalQuestions != 3 {
		t.Fatalf("expected 1/3 correct, got %d/%d", attempt.CorrectAnswers, attempt.TotalQuestions)
	}
	if attempt.Score != 33 {
		t.Fatalf("expected rounded score 33, got %d", attempt.Score)
	}
}

func TestSubmitTwoOfThreeRoundsUp(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	attempt, _, err := env.attempts.Submit(ctx, env.userID, env.quizID, app.SubmitInput{
		Answers: []app.SubmittedAnswer{
			{QuestionID: "q1", SelectedAnswer: "4", TimeSpent: 5},
			{QuestionID: "q2", SelectedAnswer: "Mars", TimeSpent: 4},
			{QuestionID: "q3", SelectedAnswer: "London", TimeSpent: 6},
		},
		TimeSpent: 15,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if attempt.Score != 67 {
		t.Fatalf("expected round(2/3*100)=67, got %d", attempt.Score)
	}
}

func TestSubmitUnknownQuestionLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	_, _, err := env.attempts.Submit(ctx, env.userID, env.quizID, app.SubmitInput{
		Answers: []app.SubmittedAnswer{
			{QuestionID: "q1", SelectedAnswer: "4", TimeSpent: 5},
			{QuestionID: "nope", SelectedAnswer: "4", TimeSpent: 5},
		},
		TimeSpent: 10,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	history, err := env.attempts.History(ctx, env.userID, 1, 10)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if history.Pagination.TotalAttempts != 0 {
		t.Fatalf("expected no recorded attempts, got %d", history.Pagination.TotalAttempts)
	}
}

func TestSubmitRejectsEmptyAnswers(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	_, _, err := env.attempts.Submit(ctx, env.userID, env.quizID, app.SubmitInput{TimeSpent: 10})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, _, err = env.attempts.Submit(ctx, env.userID, env.quizID, app.SubmitInput{
		Answers: []app.SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: "4"}},
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing time, got %v", err)
	}
}

func TestSubmitUnknownQuizReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	_, _, err := env.attempts.Submit(ctx, env.userID, uuid.New(), app.SubmitInput{
		Answers:   []app.SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: "4"}},
		TimeSpent: 5,
	})
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestAttemptNumbersIncrement(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	for want := 1; want <= 3; want++ {
		attempt, _, err := env.attempts.Submit(ctx, env.userID, env.quizID, app.SubmitInput{
			Answers:   []app.SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: "4", TimeSpent: 5}},
			TimeSpent: 5,
		})
		if err != nil {
			t.Fatalf("submit %d failed: %v", want, err)
		}
		if attempt.AttemptNumber != want {
			t.Fatalf("expected attempt number %d, got %d", want, attempt.AttemptNumber)
		}
	}

	view, err := env.attempts.ForQuiz(ctx, env.userID, env.quizID)
	if err != nil {
		t.Fatalf("for quiz failed: %v", err)
	}
	if view.TotalAttempts != 3 || view.BestScore != 33 {
		t.Fatalf("expected 3 attempts best 33, got %+v", view)
	}
}

func TestResultScopedToOwner(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	attempt, _, err := env.attempts.Submit(ctx, env.userID, env.quizID, app.SubmitInput{
		Answers:   []app.SubmittedAnswer{{QuestionID: "q2", SelectedAnswer: "Mars", TimeSpent: 4}},
		TimeSpent: 4,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	detail, err := env.attempts.Result(ctx, env.userID, attempt.ID)
	if err != nil {
		t.Fatalf("result failed: %v", err)
	}
	if len(detail.Details) != 1 || !detail.Details[0].IsCorrect {
		t.Fatalf("expected one correct detail, got %+v", detail.Details)
	}
	if detail.Details[0].Question != "Which planet is known as the Red Planet?" {
		t.Fatalf("expected question text joined in, got %q", detail.Details[0].Question)
	}

	if _, err := env.attempts.Result(ctx, uuid.New(), attempt.ID); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected foreign attempt to look missing, got %v", err)
	}
}

func TestHistoryPagination(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	for i := 0; i < 5; i++ {
		if _, _, err := env.attempts.Submit(ctx, env.userID, env.quizID, app.SubmitInput{
			Answers:   []app.SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: "4", TimeSpent: 5}},
			TimeSpent: 5,
		}); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}

	first, err := env.attempts.History(ctx, env.userID, 1, 2)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(first.Attempts) != 2 || first.Pagination.TotalPages != 3 || first.Pagination.TotalAttempts != 5 {
		t.Fatalf("unexpected first page: %+v", first.Pagination)
	}
	if !first.Pagination.HasNext || first.Pagination.HasPrev {
		t.Fatalf("expected hasNext only on first page, got %+v", first.Pagination)
	}

	last, err := env.attempts.History(ctx, env.userID, 3, 2)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(last.Attempts) != 1 || last.Pagination.HasNext || !last.Pagination.HasPrev {
		t.Fatalf("unexpected last page: %+v", last.Pagination)
	}
}

func TestLeaderboardOrdersByScoreThenTime(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	slow := seedUser(t, env.users, "slow@example.com")
	fast := seedUser(t, env.users, "fast@example.com")

	// Same best score; the faster best-score attempt ranks first.
	submit := func(userID uuid.UUID, answer string, timeSpent int) {
		t.Helper()
		if _, _, err := env.attempts.Submit(ctx, userID, env.quizID, app.SubmitInput{
			Answers:   []app.SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: answer, TimeSpent: timeSpent}},
			TimeSpent: timeSpent,
		}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	submit(slow, "4", 30)
	submit(fast, "4", 10)
	// A fast wrong attempt must not lend its time to the ranking.
	submit(slow, "3", 2)

	rows, err := env.attempts.Leaderboard(ctx, env.quizID, 10)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].UserID != fast || rows[0].BestTime != 10 {
		t.Fatalf("expected fast user first with bestTime 10, got %+v", rows[0])
	}
	if rows[1].UserID != slow || rows[1].BestTime != 30 || rows[1].TotalAttempts != 2 {
		t.Fatalf("expected slow user with bestTime 30 over 2 attempts, got %+v", rows[1])
	}
}

func TestSubscribeReceivesLeaderboardUpdates(t *testing.T) {
	ctx := context.Background()
	env := newAttemptEnv(t)

	ch, cancel, err := env.attempts.Subscribe(ctx, env.quizID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	<-ch // initial snapshot

	if _, _, err := env.attempts.Submit(ctx, env.userID, env.quizID, app.SubmitInput{
		Answers:   []app.SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: "4", TimeSpent: 5}},
		TimeSpent: 5,
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case rows := <-ch:
		if len(rows) != 1 || rows[0].UserID != env.userID {
			t.Fatalf("expected submitting user on the board, got %+v", rows)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a leaderboard update")
	}
}

type attemptEnv struct {
	attempts *app.AttemptService
	users    *memory.UserRepository
	userID   uuid.UUID
	quizID   uuid.UUID
}

func newAttemptEnv(t *testing.T) *attemptEnv {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	quizzes := memory.NewQuizRepository()
	attemptRepo := memory.NewAttemptRepository(quizzes, users)
	keys := memory.NewAnswerKeyCache(quizzes, time.Minute)
	feed := app.NewLeaderboardFeed()

	quiz := sampleQuiz()
	if err := quizzes.Create(ctx, quiz); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	env := &attemptEnv{
		attempts: app.NewAttemptService(attemptRepo, quizzes, keys, feed, logger.NewNop()),
		users:    users,
		quizID:   quiz.ID,
	}
	env.userID = seedUser(t, users, "alice@example.com")
	return env
}

func seedUser(t *testing.T, users *memory.UserRepository, email string) uuid.UUID {
	t.Helper()
	user := &domain.User{
		ID:        uuid.New(),
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Role:      domain.RoleUser,
		IsActive:  true,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

func sampleQuiz() *domain.Quiz {
	return &domain.Quiz{
		ID:       uuid.New(),
		Title:    "General Knowledge",
		Category: "general",
		Duration: 10,
		Questions: []domain.Question{
			{ID: "q1", Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: "4"},
			{ID: "q2", Text: "Which planet is known as the Red Planet?", Options: []string{"Venus", "Mars", "Jupiter"}, CorrectAnswer: "Mars"},
			{ID: "q3", Text: "What is the capital of France?", Options: []string{"London", "Paris", "Rome"}, CorrectAnswer: "Paris"},
		},
	}
}
