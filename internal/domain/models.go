package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles a user can hold. Admin is resolved once at authentication time from
// the configured allowlist and attached to the request identity.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account that can sign in and submit quiz attempts.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u" json:"-"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	FirstName    string    `bun:"first_name,notnull" json:"firstName"`
	LastName     string    `bun:"last_name,notnull" json:"lastName"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         string    `bun:"role,notnull,default:'user'" json:"role"`
	IsActive     bool      `bun:"is_active,notnull,default:true" json:"isActive"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// FullName joins the name parts for display (leaderboards, profiles).
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Question is embedded in a quiz. The correct answer is matched by string
// equality against the submitted choice, not by option index, and nothing
// forces it to appear among the listed options.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// QuizImage is a tagged optional image payload. A nil *QuizImage means the
// quiz has no image; when present both fields are set together.
type QuizImage struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// Quiz is an ordered set of questions plus display metadata.
type Quiz struct {
	bun.BaseModel `bun:"table:quizzes,alias:q" json:"-"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description" json:"description"`
	Category    string     `bun:"category,notnull" json:"category"`
	Tags        []string   `bun:"tags,type:jsonb" json:"tags"`
	Duration    int        `bun:"duration" json:"duration"`
	Difficulty  string     `bun:"difficulty" json:"difficulty"`
	Questions   []Question `bun:"questions,type:jsonb,notnull" json:"questions"`
	Image       *QuizImage `bun:"image,type:jsonb,nullzero" json:"image,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// AnswerKey is the scoring view of a quiz: question id -> correct answer.
// TotalQuestions is the quiz's full question count, which stays the score
// denominator even for partial submissions.
type AnswerKey struct {
	QuizID         uuid.UUID
	Answers        map[string]string
	TotalQuestions int
}

// Key builds the scoring view of the quiz. TotalQuestions is taken from the
// question slice, not the map, so duplicate ids cannot shrink the denominator.
func (q *Quiz) Key() AnswerKey {
	answers := make(map[string]string, len(q.Questions))
	for _, question := range q.Questions {
		answers[question.ID] = question.CorrectAnswer
	}
	return AnswerKey{QuizID: q.ID, Answers: answers, TotalQuestions: len(q.Questions)}
}

// AnswerRecord is the denormalized per-question outcome stored with an
// attempt. Later quiz edits do not rewrite these.
type AnswerRecord struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	TimeSpent      int    `json:"timeSpent"`
}

// QuizAttempt is one scored submission. Attempts are insert-only; they are
// never mutated or deleted in normal flow.
type QuizAttempt struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:qa" json:"-"`

	ID                uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	UserID            uuid.UUID      `bun:"user_id,notnull,type:uuid" json:"userId"`
	QuizID            uuid.UUID      `bun:"quiz_id,notnull,type:uuid" json:"quizId"`
	Answers           []AnswerRecord `bun:"answers,type:jsonb,notnull" json:"answers"`
	Score             int            `bun:"score,notnull" json:"score"`
	TotalQuestions    int            `bun:"total_questions,notnull" json:"totalQuestions"`
	CorrectAnswers    int            `bun:"correct_answers,notnull" json:"correctAnswers"`
	TimeSpent         int            `bun:"time_spent,notnull" json:"timeSpent"`
	TimeLimitExceeded bool           `bun:"time_limit_exceeded,notnull,default:false" json:"timeLimitExceeded"`
	AttemptNumber     int            `bun:"attempt_number,notnull" json:"attemptNumber"`
	CompletedAt       time.Time      `bun:"completed_at,notnull,default:current_timestamp" json:"completedAt"`

	Quiz *Quiz `bun:"rel:belongs-to,join:quiz_id=id" json:"-"`
}

// Percentage is derived from the stored counters rather than trusted from
// the score column.
func (a *QuizAttempt) Percentage() int {
	if a.TotalQuestions == 0 {
		return 0
	}
	return int(float64(a.CorrectAnswers)/float64(a.TotalQuestions)*100 + 0.5)
}

// LeaderboardRow is one user's aggregate standing on a quiz: best score,
// fastest time among attempts achieving that best score, attempt count and
// recency, joined with minimal display fields.
type LeaderboardRow struct {
	UserID        uuid.UUID `json:"userId"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	BestScore     int       `json:"bestScore"`
	BestTime      int       `json:"bestTime"`
	TotalAttempts int       `json:"totalAttempts"`
	LastAttempt   time.Time `json:"lastAttempt"`
}

// PaymentIntent is the slice of the billing provider's intent object this
// service cares about.
type PaymentIntent struct {
	ID           string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}
