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

func newQuizEnv() (*app.QuizService, *memory.QuizRepository) {
	quizzes := memory.NewQuizRepository()
	keys := memory.NewAnswerKeyCache(quizzes, time.Minute)
	return app.NewQuizService(quizzes, keys, logger.NewNop()), quizzes
}

func TestCreateAssignsQuestionIDs(t *testing.T) {
	ctx := context.Background()
	service, _ := newQuizEnv()

	quiz, err := service.Create(ctx, app.QuizInput{
		Title:    "Math",
		Category: "math",
		Questions: []domain.Question{
			{Text: "1+1?", Options: []string{"1", "2"}, CorrectAnswer: "2"},
			{ID: "fixed", Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if quiz.Questions[0].ID == "" {
		t.Fatal("expected generated question id")
	}
	if quiz.Questions[1].ID != "fixed" {
		t.Fatalf("expected provided id kept, got %q", quiz.Questions[1].ID)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newQuizEnv()

	cases := []app.QuizInput{
		{Category: "math", Questions: []domain.Question{{Text: "q"}}},
		{Title: "t", Category: "math"},
		{Title: "t", Category: "math", Questions: []domain.Question{{Text: ""}}},
	}
	for i, in := range cases {
		if _, err := service.Create(ctx, in); !domain.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestUpdateInvalidatesAnswerKey(t *testing.T) {
	ctx := context.Background()

	quizzes := memory.NewQuizRepository()
	keys := memory.NewAnswerKeyCache(quizzes, time.Hour)
	service := app.NewQuizService(quizzes, keys, logger.NewNop())

	quiz, err := service.Create(ctx, app.QuizInput{
		Title:    "Math",
		Category: "math",
		Questions: []domain.Question{
			{ID: "q1", Text: "1+1?", Options: []string{"1", "2"}, CorrectAnswer: "2"},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	key, err := keys.AnswerKey(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("answer key failed: %v", err)
	}
	if key.Answers["q1"] != "2" {
		t.Fatalf("unexpected key: %+v", key)
	}

	if _, err := service.Update(ctx, quiz.ID, app.QuizInput{
		Title:    "Math",
		Category: "math",
		Questions: []domain.Question{
			{ID: "q1", Text: "1+1?", Options: []string{"1", "3"}, CorrectAnswer: "3"},
		},
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// The long TTL would keep the stale key alive without invalidation.
	key, err = keys.AnswerKey(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("answer key after update failed: %v", err)
	}
	if key.Answers["q1"] != "3" {
		t.Fatalf("expected fresh key after update, got %+v", key)
	}
}

func TestDeleteRemovesQuiz(t *testing.T) {
	ctx := context.Background()
	service, _ := newQuizEnv()

	quiz, err := service.Create(ctx, app.QuizInput{
		Title:     "Math",
		Category:  "math",
		Questions: []domain.Question{{ID: "q1", Text: "1+1?", CorrectAnswer: "2"}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := service.Delete(ctx, quiz.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := service.Get(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz gone, got %v", err)
	}
	if err := service.Delete(ctx, uuid.New()); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found for unknown quiz, got %v", err)
	}
}

func TestImageAttachAndRemove(t *testing.T) {
	ctx := context.Background()
	service, _ := newQuizEnv()

	quiz, err := service.Create(ctx, app.QuizInput{
		Title:     "Math",
		Category:  "math",
		Questions: []domain.Question{{ID: "q1", Text: "1+1?", CorrectAnswer: "2"}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := service.AttachImage(ctx, quiz.ID, domain.QuizImage{
		Data:     "data:image/png;base64,aGVsbG8=",
		MIMEType: "image/png",
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if updated.Image == nil || updated.Image.MIMEType != "image/png" {
		t.Fatalf("expected attached image, got %+v", updated.Image)
	}

	updated, err = service.RemoveImage(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if updated.Image != nil {
		t.Fatalf("expected image cleared, got %+v", updated.Image)
	}
}
