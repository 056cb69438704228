package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopreviews/pkg/metrics"
	"shopreviews/reviews-service/internal/app/reviews/entity"

	"github.com/redis/go-redis/v9"
)

const (
	activeReviewsKey = "reviews:active"
	generationKey    = "reviews:active:generation"
	keyPrefix        = "reviews"
	serviceName      = "reviews-service"
)

// RedisReviewCache кеширует список активных отзывов целиком, отдельный ключ на каждое поколение
type RedisReviewCache struct {
	client *redis.Client
}

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewRedisReviewCache(client *redis.Client) *RedisReviewCache {
	return &RedisReviewCache{client: client}
}

// Generation текущее поколение кеша, 0 если Invalidate ещё не вызывался
func (c *RedisReviewCache) Generation(ctx context.Context) (int64, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	generation, err := c.client.Get(ctx, generationKey).Int64()
	timer.ObserveDuration()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return 0, fmt.Errorf("failed to get cache generation: %w", err)
	}

	return generation, nil
}

// GetActive возвращает nil, nil при промахе
func (c *RedisReviewCache) GetActive(ctx context.Context, generation int64) ([]entity.Review, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	data, err := c.client.Get(ctx, activeKey(generation)).Bytes()
	timer.ObserveDuration()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, keyPrefix)
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get reviews from cache: %w", err)
	}

	var reviews []entity.Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reviews: %w", err)
	}

	metrics.RecordCacheHit(serviceName, keyPrefix)
	return reviews, nil
}

// SetActive пишет список под поколением, которое было прочитано до запроса в БД
func (c *RedisReviewCache) SetActive(ctx context.Context, generation int64, reviews []entity.Review, ttl time.Duration) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("failed to marshal reviews: %w", err)
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	err = c.client.Set(ctx, activeKey(generation), data, ttl).Err()
	timer.ObserveDuration()

	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set reviews in cache: %w", err)
	}

	return nil
}

// Invalidate переходит на новое поколение после создания или удаления отзыва
// Старые списки больше не читаются и истекают по TTL
func (c *RedisReviewCache) Invalidate(ctx context.Context) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	err := c.client.Incr(ctx, generationKey).Err()
	timer.ObserveDuration()

	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to invalidate reviews cache: %w", err)
	}

	return nil
}

func activeKey(generation int64) string {
	return fmt.Sprintf("%s:%d", activeReviewsKey, generation)
}
