package repository

import (
	"context"

	"cedarcart/internal/app/shop/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create создает новый отзыв
// Нарушение уникальности (user_id, product_id) транслируется в ErrDuplicateReview
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	result := r.db.WithContext(ctx).Create(review)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrDuplicateReview
		}
		return result.Error
	}
	return nil
}

// GetByProductID получает все отзывы по товару, новые первыми
func (r *reviewRepository) GetByProductID(ctx context.Context, productID uuid.UUID) ([]entity.Review, error) {
	var reviews []entity.Review
	result := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews)

	if result.Error != nil {
		return nil, result.Error
	}

	return reviews, nil
}

// AggregateForProduct считает среднюю оценку и число отзывов одним запросом
// Внутри транзакции TxManager видит только что вставленный отзыв
func (r *reviewRepository) AggregateForProduct(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	var agg struct {
		AvgRating float64
		Count     int
	}

	result := r.db.WithContext(ctx).Model(&entity.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&agg)

	if result.Error != nil {
		return 0, 0, result.Error
	}

	return agg.AvgRating, agg.Count, nil
}

// DeleteByProductID удаляет все отзывы товара
// Вызывается при удалении самого товара
func (r *reviewRepository) DeleteByProductID(ctx context.Context, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Review{}, "product_id = ?", productID)
	return result.Error
}
