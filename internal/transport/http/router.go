package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/infra/stripepay"
	"quizcraft-service/internal/logger"
)

// RouterConfig carries everything the HTTP layer needs; services come
// fully wired from the caller.
type RouterConfig struct {
	Mode          string
	CORSOrigins   []string
	AdminEmails   []string
	MaxImageBytes int64

	Auth     *app.AuthService
	Quizzes  *app.QuizService
	Users    *app.UserService
	Attempts *app.AttemptService
	Payments *app.PaymentService
	Stripe   *stripepay.Provider

	Log *logger.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	switch cfg.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	corsCfg.AllowCredentials = !corsCfg.AllowAllOrigins
	corsCfg.MaxAge = 12 * time.Hour
	engine.Use(cors.New(corsCfg))

	authMW := NewAuthMiddleware(cfg.Auth, cfg.AdminEmails, cfg.Log)
	authHandler := NewAuthHandler(cfg.Auth)
	quizHandler := NewQuizHandler(cfg.Quizzes, cfg.MaxImageBytes)
	userHandler := NewUserHandler(cfg.Users)
	attemptHandler := NewAttemptHandler(cfg.Attempts)
	liveHandler := NewLiveHandler(cfg.Attempts, cfg.Quizzes, cfg.Log)
	paymentHandler := NewPaymentHandler(cfg.Payments, cfg.Stripe, cfg.Log)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := engine.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMW.RequireAuth(), authHandler.Me)
		auth.GET("/admin-status", authMW.RequireAuth(), authHandler.AdminStatus)
	}

	quiz := api.Group("/quiz")
	{
		quiz.GET("", quizHandler.List)
		quiz.GET("/:quizId", quizHandler.Get)

		admin := quiz.Group("", authMW.RequireAuth(), authMW.RequireAdmin())
		{
			admin.POST("", quizHandler.Create)
			admin.PUT("/:quizId", quizHandler.Update)
			admin.DELETE("/:quizId", quizHandler.Delete)
			admin.POST("/:quizId/image", quizHandler.UploadImage)
			admin.DELETE("/:quizId/image", quizHandler.RemoveImage)
		}
	}

	users := api.Group("/users", authMW.RequireAuth(), authMW.RequireAdmin())
	{
		users.GET("", userHandler.List)
		users.PUT("/:userId", userHandler.Update)
		users.DELETE("/:userId", userHandler.Delete)
	}

	attempts := api.Group("/quiz-attempts", authMW.RequireAuth())
	{
		attempts.POST("/:quizId/submit", attemptHandler.Submit)
		attempts.GET("/result/:attemptId", attemptHandler.Result)
		attempts.GET("/history", attemptHandler.History)
		attempts.GET("/:quizId/attempts", attemptHandler.ForQuiz)
		attempts.GET("/:quizId/leaderboard", attemptHandler.Leaderboard)
		attempts.GET("/:quizId/leaderboard/live", liveHandler.Leaderboard)
	}

	stripe := api.Group("/stripe")
	{
		stripe.POST("/create-payment-intent", authMW.RequireAuth(), paymentHandler.CreateIntent)
		stripe.POST("/confirm-payment", authMW.RequireAuth(), paymentHandler.Confirm)
		stripe.POST("/webhook", paymentHandler.Webhook)
	}

	engine.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "route not found", nil)
	})

	return engine
}
