package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/domain"
	"quizcraft-service/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxControlSize = 512
)

type LiveHandler struct {
	attempts *app.AttemptService
	quizzes  *app.QuizService
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewLiveHandler(attempts *app.AttemptService, quizzes *app.QuizService, log *logger.Logger) *LiveHandler {
	return &LiveHandler{
		attempts: attempts,
		quizzes:  quizzes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Leaderboard streams standings snapshots over a websocket. The first
// message is the current leaderboard; a fresh snapshot follows every
// submission against the quiz.
func (h *LiveHandler) Leaderboard(c *gin.Context) {
	quizID, ok := parseID(c, "quizId", "invalid quiz id")
	if !ok {
		return
	}
	// Confirm the quiz exists before committing to the upgrade, so a bad
	// id still yields a plain 404.
	if _, err := h.quizzes.Get(c.Request.Context(), quizID); err != nil {
		respondServiceError(c, err, "failed to load quiz")
		return
	}

	updates, cancel, err := h.attempts.Subscribe(c.Request.Context(), quizID)
	if err != nil {
		respondServiceError(c, err, "failed to subscribe to leaderboard")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	defer cancel()

	conn.SetReadLimit(maxControlSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Drain reads so close frames and pongs are processed; the client is
	// not expected to send data.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case rows, open := <-updates:
			if !open {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			if rows == nil {
				rows = []domain.LeaderboardRow{}
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(gin.H{
				"type":        "leaderboard",
				"quizId":      quizID,
				"leaderboard": rows,
			}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
