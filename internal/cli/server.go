package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/config"
	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/infra/memory"
	"quizcraft-service/internal/infra/postgres"
	rediscache "quizcraft-service/internal/infra/redis"
	"quizcraft-service/internal/infra/stripepay"
	"quizcraft-service/internal/logger"
	transport "quizcraft-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Server.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var (
		userRepo    app.UserRepository
		quizRepo    app.QuizRepository
		attemptRepo app.AttemptRepository
		keyLoader   memory.AnswerKeyLoader
	)
	if cfg.Postgres.URL != "" {
		db := postgres.Connect(cfg.Postgres.URL)
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		userRepo = postgres.NewUserRepository(db)
		quizRepo = postgres.NewQuizRepository(db)
		attemptRepo = postgres.NewAttemptRepository(db)
		keyLoader = postgres.NewAnswerKeyLoader(pool)
	} else {
		log.Warn("postgres url not configured, using in-memory storage")
		memUsers := memory.NewUserRepository()
		memQuizzes := memory.NewQuizRepository()
		seedQuizzes(ctx, memQuizzes, log)
		userRepo = memUsers
		quizRepo = memQuizzes
		attemptRepo = memory.NewAttemptRepository(memQuizzes, memUsers)
		keyLoader = memQuizzes
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var keys app.AnswerKeySource
	if redisClient != nil {
		keys = rediscache.NewAnswerKeyCache(redisClient, keyLoader, quizTTL)
	} else {
		keys = memory.NewAnswerKeyCache(keyLoader, quizTTL)
	}

	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
	feed := app.NewLeaderboardFeed()

	var stripeProvider *stripepay.Provider
	var paymentProvider app.PaymentProvider
	if cfg.Stripe.SecretKey != "" {
		stripeProvider = stripepay.New(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
		paymentProvider = stripeProvider
	} else {
		log.Warn("stripe secret key not configured, payment routes disabled")
	}

	authService := app.NewAuthService(userRepo, cfg.Auth.JWTSecret, tokenTTL, log)
	quizService := app.NewQuizService(quizRepo, keys, log)
	userService := app.NewUserService(userRepo, log)
	attemptService := app.NewAttemptService(attemptRepo, quizRepo, keys, feed, log)
	paymentService := app.NewPaymentService(paymentProvider, log)

	engine := transport.NewRouter(transport.RouterConfig{
		Mode:          cfg.Server.Mode,
		CORSOrigins:   cfg.CORS.Origins,
		AdminEmails:   cfg.Auth.AdminEmails,
		MaxImageBytes: cfg.MaxImageBytes(),
		Auth:          authService,
		Quizzes:       quizService,
		Users:         userService,
		Attempts:      attemptService,
		Payments:      paymentService,
		Stripe:        stripeProvider,
		Log:           log,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedQuizzes gives the in-memory mode something to serve; persistent
// deployments manage quizzes through the admin API instead.
func seedQuizzes(ctx context.Context, quizzes *memory.QuizRepository, log *logger.Logger) {
	demo := &domain.Quiz{
		ID:          uuid.New(),
		Title:       "General Knowledge Warmup",
		Description: "A short mixed-topic quiz to try the platform.",
		Category:    "general",
		Tags:        []string{"demo", "warmup"},
		Duration:    5,
		Difficulty:  "easy",
		Questions: []domain.Question{
			{
				ID:            uuid.NewString(),
				Text:          "What is 2 + 2?",
				Options:       []string{"3", "4", "5"},
				CorrectAnswer: "4",
			},
			{
				ID:            uuid.NewString(),
				Text:          "Which planet is known as the Red Planet?",
				Options:       []string{"Venus", "Mars", "Jupiter"},
				CorrectAnswer: "Mars",
			},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := quizzes.Create(ctx, demo); err != nil {
		log.Warn("failed to seed demo quiz", "error", err)
		return
	}
	log.Info("seeded demo quiz", "id", demo.ID)
}
