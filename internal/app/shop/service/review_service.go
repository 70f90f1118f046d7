package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cedarcart/internal/app/shop/entity"
	"cedarcart/internal/app/shop/repository"
	"cedarcart/pkg/logger"
	"cedarcart/pkg/metrics"

	"github.com/google/uuid"
)

// ReviewService обрабатывает бизнес-логику отзывов
// Создание отзыва и пересчет рейтинга товара выполняются в одной транзакции
type ReviewService struct {
	productRepo   repository.ProductRepository
	reviewRepo    repository.ReviewRepository
	txManager     repository.TxManager
	kafkaProducer MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
	txManager repository.TxManager,
	kafkaProducer MessagePublisher,
) *ReviewService {
	return &ReviewService{
		productRepo:   productRepo,
		reviewRepo:    reviewRepo,
		txManager:     txManager,
		kafkaProducer: kafkaProducer,
	}
}

// CreateReview создает отзыв и пересчитывает рейтинг товара
// Строка товара блокируется на время транзакции, чтобы конкурентные
// отзывы не затерли пересчет друг друга
func (s *ReviewService) CreateReview(ctx context.Context, productID, userID uuid.UUID, req *entity.CreateReviewRequest) (*entity.Review, error) {
	review := &entity.Review{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	err := s.txManager.WithinTx(ctx, func(r repository.TxRepositories) error {
		if _, err := r.Products.GetForUpdate(ctx, productID); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}

		if err := r.Reviews.Create(ctx, review); err != nil {
			if errors.Is(err, repository.ErrDuplicateReview) {
				return ErrDuplicateReview
			}
			return fmt.Errorf("failed to create review: %w", err)
		}

		avgRating, count, err := r.Reviews.AggregateForProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to aggregate reviews: %w", err)
		}

		if err := r.Products.UpdateRating(ctx, productID, avgRating, count); err != nil {
			return fmt.Errorf("failed to update product rating: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewsCreated.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating))

	event := entity.ReviewEvent{
		EventType: "REVIEW_CREATED",
		ReviewID:  review.ID,
		ProductID: productID,
		UserID:    userID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}
	if err := s.publishReviewEvent(ctx, event); err != nil {
		// Отзыв уже сохранен, проблемы с Kafka не критичны
		logger.Warn().Err(err).Msg("failed to publish review created event")
	}

	return review, nil
}

// GetProductReviews получает все отзывы о товаре
func (s *ReviewService) GetProductReviews(ctx context.Context, productID uuid.UUID) ([]entity.Review, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	return reviews, nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Key - это ProductID для правильного партиционирования
func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ProductID.String(), eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
