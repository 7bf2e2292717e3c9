package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/infra/memory"
	"quizcraft-service/internal/logger"
)

func newAuthService() *app.AuthService {
	return app.NewAuthService(memory.NewUserRepository(), "test-secret", time.Hour, logger.NewNop())
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()

	user, token, err := auth.Signup(ctx, app.SignupInput{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "  Alice@Example.COM ",
		Password:  "secret1",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	got, _, err := auth.Login(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected same user, got %s want %s", got.ID, user.ID)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()

	in := app.SignupInput{FirstName: "A", LastName: "B", Email: "dup@example.com", Password: "secret1"}
	if _, _, err := auth.Signup(ctx, in); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, _, err := auth.Signup(ctx, in); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()

	if _, _, err := auth.Signup(ctx, app.SignupInput{Email: "x@example.com", Password: "secret1"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing names, got %v", err)
	}
	if _, _, err := auth.Signup(ctx, app.SignupInput{
		FirstName: "A", LastName: "B", Email: "x@example.com", Password: "short",
	}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}

func TestLoginUniformError(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()

	if _, _, err := auth.Signup(ctx, app.SignupInput{
		FirstName: "A", LastName: "B", Email: "known@example.com", Password: "secret1",
	}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	_, _, unknownErr := auth.Login(ctx, "unknown@example.com", "secret1")
	_, _, wrongErr := auth.Login(ctx, "known@example.com", "wrong-password")
	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) || !errors.Is(wrongErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected identical credential errors, got %v and %v", unknownErr, wrongErr)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()

	user, token, err := auth.Signup(ctx, app.SignupInput{
		FirstName: "A", LastName: "B", Email: "token@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	userID, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, userID)
	}

	other := app.NewAuthService(memory.NewUserRepository(), "other-secret", time.Hour, logger.NewNop())
	if _, err := other.VerifyToken(token); err == nil {
		t.Fatal("expected token signed with a different secret to fail")
	}
}
