package service

import (
	"context"

	"shopreviews/reviews-service/internal/app/reviews/entity"
)

type ReviewServiceInterface interface {
	ListAll(ctx context.Context) ([]entity.Review, error)
	ListForProduct(ctx context.Context, productSlug string) ([]entity.Review, error)
	Create(ctx context.Context, role entity.Role, req entity.NewReview) (*entity.TransactionResponse, error)
	Delete(ctx context.Context, role entity.Role, reviewID int64) (*entity.TransactionResponse, error)
}

// StatsRefresher используется планировщиком
type StatsRefresher interface {
	RefreshStats(ctx context.Context) error
}
