package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizcraft-service/internal/domain"
)

// AnswerKeyLoader fetches the scoring view from a backing store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, quizID uuid.UUID) (domain.AnswerKey, error)
}

// AnswerKeyCache keeps answer keys in Redis (hash per quiz) and falls back
// to a loader on cache miss. Layout:
//
//	HSET quiz:{quizID}:answers {questionID} {correctAnswer}
//	SET  quiz:{quizID}:answers:total {totalQuestions}
//
// The total is stored separately because the score denominator is the quiz's
// full question count, which a hash of deduplicated ids cannot recover.
type AnswerKeyCache struct {
	client *redis.Client
	loader AnswerKeyLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, loader AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) AnswerKey(ctx context.Context, quizID uuid.UUID) (domain.AnswerKey, error) {
	if key, ok := c.fromCache(ctx, quizID); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(quizID.String(), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if key, ok := c.fromCache(ctx, quizID); ok {
			return key, nil
		}

		key, err := c.loader.LoadAnswerKey(ctx, quizID)
		if err != nil {
			return domain.AnswerKey{}, err
		}

		ttl := c.ttlWithJitter()
		pipe := c.client.Pipeline()
		for questionID, answer := range key.Answers {
			pipe.HSet(ctx, c.answersKey(quizID), questionID, answer)
		}
		pipe.Set(ctx, c.totalKey(quizID), key.TotalQuestions, ttl)
		if ttl > 0 {
			pipe.Expire(ctx, c.answersKey(quizID), ttl)
		}
		_, _ = pipe.Exec(ctx)

		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

// Invalidate drops the cached key after a quiz edit or deletion.
func (c *AnswerKeyCache) Invalidate(ctx context.Context, quizID uuid.UUID) error {
	return c.client.Del(ctx, c.answersKey(quizID), c.totalKey(quizID)).Err()
}

func (c *AnswerKeyCache) fromCache(ctx context.Context, quizID uuid.UUID) (domain.AnswerKey, bool) {
	answers, err := c.client.HGetAll(ctx, c.answersKey(quizID)).Result()
	if err != nil || len(answers) == 0 {
		return domain.AnswerKey{}, false
	}
	total := len(answers)
	if raw, err := c.client.Get(ctx, c.totalKey(quizID)).Result(); err == nil {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			total = n
		}
	}
	return domain.AnswerKey{QuizID: quizID, Answers: answers, TotalQuestions: total}, true
}

func (c *AnswerKeyCache) answersKey(quizID uuid.UUID) string {
	return "quiz:" + quizID.String() + ":answers"
}

func (c *AnswerKeyCache) totalKey(quizID uuid.UUID) string {
	return "quiz:" + quizID.String() + ":answers:total"
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
