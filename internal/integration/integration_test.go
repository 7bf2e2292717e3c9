package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/infra/postgres"
	pgmigrations "quizcraft-service/internal/infra/postgres/migrations"
	infraredis "quizcraft-service/internal/infra/redis"
	"quizcraft-service/internal/logger"
)

func TestSubmitAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.Connect(pgURL)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	log := logger.NewNop()
	userRepo := postgres.NewUserRepository(db)
	quizRepo := postgres.NewQuizRepository(db)
	attemptRepo := postgres.NewAttemptRepository(db)
	keys := infraredis.NewAnswerKeyCache(redisClient, postgres.NewAnswerKeyLoader(pool), 5*time.Minute)
	feed := app.NewLeaderboardFeed()

	auth := app.NewAuthService(userRepo, "integration-secret", time.Hour, log)
	quizzes := app.NewQuizService(quizRepo, keys, log)
	attempts := app.NewAttemptService(attemptRepo, quizRepo, keys, feed, log)

	user, _, err := auth.Signup(ctx, app.SignupInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	quiz, err := quizzes.Create(ctx, app.QuizInput{
		Title:    "Numbers",
		Category: "math",
		Duration: 5,
		Questions: []domain.Question{
			{ID: "q1", Text: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
			{ID: "q2", Text: "What is 5 * 5?", Options: []string{"25", "30"}, CorrectAnswer: "25"},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	first, _, err := attempts.Submit(ctx, user.ID, quiz.ID, app.SubmitInput{
		Answers: []app.SubmittedAnswer{
			{QuestionID: "q1", SelectedAnswer: "4", TimeSpent: 4},
			{QuestionID: "q2", SelectedAnswer: "30", TimeSpent: 6},
		},
		TimeSpent: 10,
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if first.AttemptNumber != 1 || first.Score != 50 {
		t.Fatalf("unexpected first attempt: number=%d score=%d", first.AttemptNumber, first.Score)
	}

	second, _, err := attempts.Submit(ctx, user.ID, quiz.ID, app.SubmitInput{
		Answers: []app.SubmittedAnswer{
			{QuestionID: "q1", SelectedAnswer: "4", TimeSpent: 3},
			{QuestionID: "q2", SelectedAnswer: "25", TimeSpent: 4},
		},
		TimeSpent: 7,
	})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.AttemptNumber != 2 || second.Score != 100 {
		t.Fatalf("unexpected second attempt: number=%d score=%d", second.AttemptNumber, second.Score)
	}

	rows, err := attempts.Leaderboard(ctx, quiz.ID, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one leaderboard row, got %d", len(rows))
	}
	row := rows[0]
	if row.BestScore != 100 || row.BestTime != 7 || row.TotalAttempts != 2 {
		t.Fatalf("unexpected leaderboard row: %+v", row)
	}
	if row.UserName != "Ada Lovelace" {
		t.Fatalf("expected joined user name, got %q", row.UserName)
	}

	detail, err := attempts.Result(ctx, user.ID, second.ID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if len(detail.Details) != 2 || detail.Quiz == nil || detail.Quiz.Title != "Numbers" {
		t.Fatalf("unexpected result detail: %+v", detail)
	}

	history, err := attempts.History(ctx, user.ID, 1, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history.Pagination.TotalAttempts != 2 || len(history.Attempts) != 2 {
		t.Fatalf("unexpected history: %+v", history.Pagination)
	}
	// Newest first.
	if history.Attempts[0].ID != second.ID {
		t.Fatalf("expected newest attempt first, got %s", history.Attempts[0].ID)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
