package repository

import (
	"context"
	"errors"
	"fmt"

	"shopreviews/pkg/metrics"
	"shopreviews/reviews-service/internal/app/reviews/entity"

	"gorm.io/gorm"
)

const reviewsTable = "reviews"

// reviewRepository реализует ReviewRepository через GORM
type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// ListActive возвращает все активные отзывы в порядке создания
func (r *reviewRepository) ListActive(ctx context.Context) ([]entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsTable)

	var reviews []entity.Review
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&reviews).Error
	timer.ObserveDuration(err)

	if err != nil {
		return nil, fmt.Errorf("failed to list active reviews: %w", err)
	}

	return reviews, nil
}

// ListActiveByProduct возвращает активные отзывы товара
func (r *reviewRepository) ListActiveByProduct(ctx context.Context, productID int64) ([]entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsTable)

	var reviews []entity.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("id").
		Find(&reviews).Error
	timer.ObserveDuration(err)

	if err != nil {
		return nil, fmt.Errorf("failed to list reviews of product %d: %w", productID, err)
	}

	return reviews, nil
}

// GetByID ищет отзыв по ID независимо от is_active
func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsTable)

	var review entity.Review
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		timer.ObserveDuration(nil)
		return nil, ErrReviewNotFound
	}
	timer.ObserveDuration(err)

	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

// Create вставляет отзыв и заполняет review.ID
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, reviewsTable)

	err := r.db.WithContext(ctx).Create(review).Error
	timer.ObserveDuration(err)

	if err != nil {
		return wrapWriteError("create review", err)
	}

	return nil
}

// Deactivate снимает отзыв с публикации (is_active = false)
func (r *reviewRepository) Deactivate(ctx context.Context, id int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, reviewsTable)

	result := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("id = ?", id).
		Update("is_active", false)
	timer.ObserveDuration(result.Error)

	if result.Error != nil {
		return fmt.Errorf("failed to deactivate review: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepository) CountActive(ctx context.Context) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsTable)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("is_active = ?", true).
		Count(&count).Error
	timer.ObserveDuration(err)

	if err != nil {
		return 0, fmt.Errorf("failed to count active reviews: %w", err)
	}

	return count, nil
}
