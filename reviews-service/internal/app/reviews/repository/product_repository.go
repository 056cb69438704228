package repository

import (
	"context"
	"errors"
	"fmt"

	"shopreviews/pkg/metrics"
	"shopreviews/reviews-service/internal/app/reviews/entity"

	"gorm.io/gorm"
)

const productsTable = "products"

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetBySlug ищет товар по уникальному slug
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	return r.getOne(ctx, "slug = ?", slug)
}

func (r *productRepository) getOne(ctx context.Context, query string, arg interface{}) (*entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, productsTable)

	var product entity.Product
	err := r.db.WithContext(ctx).Where(query, arg).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		timer.ObserveDuration(nil)
		return nil, ErrProductNotFound
	}
	timer.ObserveDuration(err)

	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// UpdateRating записывает пересчитанный средний рейтинг товара
func (r *productRepository) UpdateRating(ctx context.Context, id int64, rating float64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, productsTable)

	result := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", id).
		Update("rating", rating)
	timer.ObserveDuration(result.Error)

	if result.Error != nil {
		return fmt.Errorf("failed to update product rating: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
