package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shopreviews/pkg/logger"
	"shopreviews/pkg/metrics"
	"shopreviews/reviews-service/internal/app/reviews/entity"
	"shopreviews/reviews-service/internal/app/reviews/infrastructure"
	"shopreviews/reviews-service/internal/app/reviews/repository"
)

const serviceName = "reviews-service"

// ReviewService обрабатывает бизнес-логику отзывов
// Координирует работу Datastore, кеша Redis и Kafka
type ReviewService struct {
	store     repository.Datastore
	cache     infrastructure.ReviewCache
	publisher infrastructure.MessagePublisher
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewReviewService создает сервис отзывов с внедрением зависимостей
// cache и publisher могут быть nil: тогда кеширование и события отключены
func NewReviewService(
	store repository.Datastore,
	cache infrastructure.ReviewCache,
	publisher infrastructure.MessagePublisher,
	cacheTTL time.Duration,
) *ReviewService {
	return &ReviewService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// ListAll возвращает все активные отзывы
// Пустой список считается ошибкой ErrNoReviews
// Поколение кеша читается до запроса в БД: если между чтением и записью
// прошёл Invalidate, список попадёт в устаревшее поколение и не будет прочитан
func (s *ReviewService) ListAll(ctx context.Context) ([]entity.Review, error) {
	generation, cacheOK := s.cacheGeneration(ctx)
	if cacheOK {
		cached, err := s.cache.GetActive(ctx, generation)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read active reviews from cache")
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	reviews, err := s.store.Reviews().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	if len(reviews) == 0 {
		return nil, ErrNoReviews
	}

	if cacheOK {
		if err := s.cache.SetActive(ctx, generation, reviews, s.cacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache active reviews")
		}
	}

	return reviews, nil
}

// cacheGeneration возвращает false, если кеш отключен или недоступен
func (s *ReviewService) cacheGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	generation, err := s.cache.Generation(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read reviews cache generation")
		return 0, false
	}
	return generation, true
}

// ListForProduct возвращает активные отзывы товара по slug
// В отличие от ListAll пустой список не ошибка
func (s *ReviewService) ListForProduct(ctx context.Context, productSlug string) ([]entity.Review, error) {
	product, err := s.store.Products().GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	reviews, err := s.store.Reviews().ListActiveByProduct(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product reviews: %w", err)
	}

	if reviews == nil {
		reviews = []entity.Review{}
	}

	return reviews, nil
}

// Create создает отзыв от имени покупателя
// 1. Проверяет товар и пользователя
// 2. Сохраняет отзыв с датой = сегодня
// 3. Пересчитывает рейтинг товара по всем активным отзывам
// Шаги 1-3 выполняются в одной транзакции, после коммита сбрасывается кеш и уходит событие в Kafka
func (s *ReviewService) Create(ctx context.Context, role entity.Role, req entity.NewReview) (*entity.TransactionResponse, error) {
	if !role.IsCustomer {
		return nil, ErrNotCustomer
	}

	review := entity.Review{
		UserID:      req.UserID,
		ProductID:   req.ProductID,
		Comment:     req.Comment,
		CommentDate: entity.NewDate(s.now()),
		Grade:       req.Grade,
		IsActive:    true,
	}
	var rating float64

	err := s.store.Transaction(ctx, func(tx repository.Datastore) error {
		if _, err := tx.Products().GetByID(ctx, req.ProductID); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return ErrNoProduct
			}
			return err
		}

		if _, err := tx.Users().GetByID(ctx, req.UserID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return ErrNoUser
			}
			return err
		}

		// Пользователь или товар могли удалить между проверкой и вставкой
		if err := tx.Reviews().Create(ctx, &review); err != nil {
			return missingReferenceError(err)
		}

		active, err := tx.Reviews().ListActiveByProduct(ctx, req.ProductID)
		if err != nil {
			return err
		}
		rating = averageGrade(active)

		return missingReferenceError(tx.Products().UpdateRating(ctx, req.ProductID, rating))
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.RecordReviewCreated(serviceName, review.Grade)
	s.invalidateCache(ctx)
	s.publishReviewEvent(ctx, entity.ReviewEvent{
		EventType:     entity.EventReviewCreated,
		ReviewID:      review.ID,
		ProductID:     review.ProductID,
		UserID:        review.UserID,
		Grade:         review.Grade,
		ProductRating: &rating,
		Timestamp:     s.now(),
	})

	logger.Info().
		Int64("review_id", review.ID).
		Int64("product_id", review.ProductID).
		Float64("product_rating", rating).
		Msg("Review created")

	return &entity.TransactionResponse{
		StatusCode:  http.StatusCreated,
		Transaction: "Successful",
	}, nil
}

// Delete снимает отзыв с публикации (только администратор)
// Рейтинг товара при этом не пересчитывается
func (s *ReviewService) Delete(ctx context.Context, role entity.Role, reviewID int64) (*entity.TransactionResponse, error) {
	if !role.IsAdmin {
		return nil, ErrNotAdmin
	}

	var review *entity.Review

	err := s.store.Transaction(ctx, func(tx repository.Datastore) error {
		var err error
		review, err = tx.Reviews().GetByID(ctx, reviewID)
		if err != nil {
			if errors.Is(err, repository.ErrReviewNotFound) {
				return ErrNoReview
			}
			return err
		}

		return tx.Reviews().Deactivate(ctx, reviewID)
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		return nil, fmt.Errorf("failed to delete review: %w", err)
	}

	metrics.RecordReviewDeleted(serviceName)
	s.invalidateCache(ctx)
	s.publishReviewEvent(ctx, entity.ReviewEvent{
		EventType: entity.EventReviewDeleted,
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Grade:     review.Grade,
		Timestamp: s.now(),
	})

	logger.Info().
		Int64("review_id", reviewID).
		Int64("admin_id", role.UserID).
		Msg("Review deactivated")

	return &entity.TransactionResponse{
		StatusCode:  http.StatusOK,
		Transaction: "Review delete is successful",
	}, nil
}

// RefreshStats обновляет метрику reviews_active
func (s *ReviewService) RefreshStats(ctx context.Context) error {
	count, err := s.store.Reviews().CountActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh review stats: %w", err)
	}

	metrics.SetActiveReviews(serviceName, count)
	return nil
}

func (s *ReviewService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		// Отзыв уже сохранён, кеш истечёт сам по TTL
		logger.Warn().Err(err).Msg("Failed to invalidate reviews cache")
	}
}

// publishReviewEvent отправляет событие в Kafka, ошибки только логируются
func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) {
	if s.publisher == nil {
		return
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal review event")
		return
	}

	// Ключ = ReviewID для партиционирования
	if err := s.publisher.PublishMessage(ctx, strconv.FormatInt(event.ReviewID, 10), eventData); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", event.EventType).
			Int64("review_id", event.ReviewID).
			Msg("Failed to publish review event")
	}
}

// missingReferenceError переводит пропавшие user/product в ошибки 404
func missingReferenceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrNoUser
	case errors.Is(err, repository.ErrProductNotFound):
		return ErrNoProduct
	}
	return err
}

// averageGrade среднее арифметическое оценок, 0 для пустого списка
func averageGrade(reviews []entity.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Grade
	}
	return float64(sum) / float64(len(reviews))
}
