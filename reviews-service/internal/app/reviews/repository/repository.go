package repository

import (
	"context"
	"errors"

	"shopreviews/reviews-service/internal/app/reviews/entity"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	// ErrForeignKey нарушение внешнего ключа (пользователь или товар удалён параллельно)
	// По возможности дополняется ErrUserNotFound или ErrProductNotFound
	ErrForeignKey = errors.New("foreign key violation")
)

// ReviewRepository определяет методы для работы с отзывами в PostgreSQL
type ReviewRepository interface {
	ListActive(ctx context.Context) ([]entity.Review, error)
	ListActiveByProduct(ctx context.Context, productID int64) ([]entity.Review, error)
	GetByID(ctx context.Context, id int64) (*entity.Review, error)
	Create(ctx context.Context, review *entity.Review) error
	Deactivate(ctx context.Context, id int64) error
	CountActive(ctx context.Context) (int64, error)
}

// ProductRepository товары каталога, из записи только рейтинг
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	UpdateRating(ctx context.Context, id int64, rating float64) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

// Datastore объединяет репозитории над одним соединением
// Transaction выполняет fn в транзакции, репозитории tx работают внутри неё
type Datastore interface {
	Reviews() ReviewRepository
	Products() ProductRepository
	Users() UserRepository
	Transaction(ctx context.Context, fn func(tx Datastore) error) error
}
