package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IT-Nick/quizbot/internal/domain/model"
	"github.com/IT-Nick/quizbot/internal/infra/logger"
	"github.com/redis/go-redis/v9"
)

// QuizSource источник содержимого викторины (REST API платформы)
type QuizSource interface {
	GetQuiz(ctx context.Context, quizID string) (*model.Quiz, error)
}

// QuizCache кэширует содержимое викторин в Redis.
// Ошибки Redis не ломают чтение: запрос уходит в источник.
type QuizCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewQuizCache создаёт кэш поверх клиента Redis
func NewQuizCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *QuizCache {
	return &QuizCache{client: client, ttl: ttl, log: log}
}

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func quizKey(quizID string) string {
	return "quiz:" + quizID + ":content"
}

// Through возвращает провайдер, который сначала читает кэш, затем source
func (c *QuizCache) Through(source QuizSource) *ReadThrough {
	return &ReadThrough{cache: c, source: source}
}

// Get читает викторину из кэша. Промах возвращает (nil, nil).
func (c *QuizCache) Get(ctx context.Context, quizID string) (*model.Quiz, error) {
	data, err := c.client.Get(ctx, quizKey(quizID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz %s from cache: %w", quizID, err)
	}
	var quiz model.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, fmt.Errorf("failed to decode cached quiz %s: %w", quizID, err)
	}
	return &quiz, nil
}

// Set сохраняет викторину с TTL
func (c *QuizCache) Set(ctx context.Context, quiz *model.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("failed to encode quiz %s: %w", quiz.ID, err)
	}
	if err := c.client.Set(ctx, quizKey(quiz.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quiz %s: %w", quiz.ID, err)
	}
	return nil
}

// Invalidate удаляет викторину из кэша
func (c *QuizCache) Invalidate(ctx context.Context, quizID string) error {
	return c.client.Del(ctx, quizKey(quizID)).Err()
}

// ReadThrough провайдер содержимого викторины с кэшированием
type ReadThrough struct {
	cache  *QuizCache
	source QuizSource
}

// GetQuiz реализует session.QuizProvider
func (r *ReadThrough) GetQuiz(ctx context.Context, quizID string) (*model.Quiz, error) {
	quiz, err := r.cache.Get(ctx, quizID)
	if err != nil {
		r.cache.log.Warn("quiz cache read failed", "quiz_id", quizID, "error", err)
	}
	if quiz != nil {
		return quiz, nil
	}

	quiz, err = r.source.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	// Признак прохождения персональный, в общий кэш он не попадает
	cached := *quiz
	cached.Taken = false
	cached.AttemptID = ""
	if err := r.cache.Set(ctx, &cached); err != nil {
		r.cache.log.Warn("quiz cache write failed", "quiz_id", quizID, "error", err)
	}
	return quiz, nil
}
