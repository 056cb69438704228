package infrastructure

import (
	"context"
	"time"

	"shopreviews/reviews-service/internal/app/reviews/entity"
)

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// ReviewCache кеш списка активных отзывов (Redis)
// Список хранится под номером поколения. Invalidate увеличивает поколение,
// поэтому запись, прочитанная из БД до Invalidate, уже никем не читается.
// GetActive возвращает nil, nil при промахе
type ReviewCache interface {
	Generation(ctx context.Context) (int64, error)
	GetActive(ctx context.Context, generation int64) ([]entity.Review, error)
	SetActive(ctx context.Context, generation int64, reviews []entity.Review, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// IdentityProvider извлекает права вызывающего из учётных данных запроса
type IdentityProvider interface {
	Resolve(credential string) (entity.Role, error)
}
