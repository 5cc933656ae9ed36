package cache

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
)

// AnswerKey is the scoring-relevant slice of a question, small enough to
// keep hot in Redis for the live answer path.
type AnswerKey struct {
	QuestionID uint
	Correct    models.AnswerOption
	Points     int
	TimeLimit  int
}

// ErrKeyNotFound means the question is not part of the quiz's key set.
var ErrKeyNotFound = fmt.Errorf("answer key not found")

type AnswerKeyCache interface {
	// Get returns the answer key for one question of a quiz, filling the
	// whole quiz's key set on a miss.
	Get(ctx context.Context, quizID, questionID uint) (*AnswerKey, error)
	// Invalidate drops the quiz's key set, e.g. after its questions change.
	Invalidate(ctx context.Context, quizID uint) error
}

type redisAnswerKeyCache struct {
	client    *redis.Client
	questions repositories.QuestionRepository
	ttl       time.Duration
	sf        singleflight.Group
	rnd       *rand.Rand
	logger    *slog.Logger
}

func NewRedisAnswerKeyCache(client *redis.Client, questions repositories.QuestionRepository, ttl time.Duration, logger *slog.Logger) AnswerKeyCache {
	return &redisAnswerKeyCache{
		client:    client,
		questions: questions,
		ttl:       ttl,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    logger,
	}
}

func (c *redisAnswerKeyCache) Get(ctx context.Context, quizID, questionID uint) (*AnswerKey, error) {
	key := answerKeyHash(quizID)
	field := strconv.FormatUint(uint64(questionID), 10)

	value, err := c.client.HGet(ctx, key, field).Result()
	if err == nil {
		return decodeAnswerKey(questionID, value)
	}
	if err != redis.Nil {
		c.logger.Warn("Answer key cache read failed",
			"quiz_id", quizID,
			"error", err)
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the hash.
		fields, err := c.client.HGetAll(ctx, key).Result()
		if err == nil && len(fields) > 0 {
			return fields, nil
		}
		return c.fill(ctx, quizID)
	})
	if err != nil {
		return nil, err
	}

	fields := result.(map[string]string)
	value, ok := fields[field]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return decodeAnswerKey(questionID, value)
}

func (c *redisAnswerKeyCache) Invalidate(ctx context.Context, quizID uint) error {
	return c.client.Del(ctx, answerKeyHash(quizID)).Err()
}

// fill loads the quiz's questions and writes the key set as one hash with
// a jittered TTL so concurrent quizzes do not expire in lockstep.
func (c *redisAnswerKeyCache) fill(ctx context.Context, quizID uint) (map[string]string, error) {
	questions, err := c.questions.GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	fields := make(map[string]string, len(questions))
	for _, q := range questions {
		fields[strconv.FormatUint(uint64(q.ID), 10)] = encodeAnswerKey(q)
	}
	if len(fields) == 0 {
		return fields, nil
	}

	key := answerKeyHash(quizID)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttlWithJitter())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Answer key cache write failed",
			"quiz_id", quizID,
			"error", err)
	}
	return fields, nil
}

func (c *redisAnswerKeyCache) ttlWithJitter() time.Duration {
	jitter := time.Duration(c.rnd.Int63n(int64(c.ttl / 10)))
	return c.ttl + jitter
}

func answerKeyHash(quizID uint) string {
	return fmt.Sprintf("quiz:%d:answerkey", quizID)
}

func encodeAnswerKey(q *models.QuizQuestion) string {
	return fmt.Sprintf("%s|%d|%d", q.CorrectOption, q.Points, q.TimeLimit)
}

func decodeAnswerKey(questionID uint, value string) (*AnswerKey, error) {
	parts := strings.Split(value, "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed answer key %q", value)
	}
	points, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed points in answer key %q", value)
	}
	timeLimit, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("malformed time limit in answer key %q", value)
	}
	return &AnswerKey{
		QuestionID: questionID,
		Correct:    models.AnswerOption(parts[0]),
		Points:     points,
		TimeLimit:  timeLimit,
	}, nil
}
