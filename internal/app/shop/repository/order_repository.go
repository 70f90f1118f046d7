package repository

import (
	"context"
	"errors"
	"time"

	"cedarcart/internal/app/shop/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository создает новый репозиторий заказов
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create сохраняет заказ вместе с позициями
// GORM вставляет Items одной ассоциацией в рамках текущей транзакции
func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	result := r.db.WithContext(ctx).Create(order)
	return result.Error
}

// GetByID получает заказ с позициями и краткой информацией о владельце
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		First(&order, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, result.Error
	}

	return &order, nil
}

// GetByUserID получает заказы пользователя, новые первыми
func (r *orderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders)

	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// GetAll получает все заказы с владельцами, новые первыми
func (r *orderRepository) GetAll(ctx context.Context) ([]entity.Order, error) {
	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		Order("created_at DESC").
		Find(&orders)

	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// UpdateStatus записывает флаги оплаты/доставки и их временные метки
// Позиции и итоговая сумма после создания заказа не меняются
func (r *orderRepository) UpdateStatus(ctx context.Context, order *entity.Order) error {
	result := r.db.WithContext(ctx).Model(order).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"is_paid":      order.IsPaid,
			"paid_at":      order.PaidAt,
			"is_delivered": order.IsDelivered,
			"delivered_at": order.DeliveredAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// TotalSales считает сумму и количество оплаченных заказов
func (r *orderRepository) TotalSales(ctx context.Context) (*entity.SalesTotals, error) {
	var totals entity.SalesTotals
	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Select("COALESCE(SUM(total_price), 0) AS total_sales, COUNT(*) AS order_count").
		Where("is_paid = ?", true).
		Scan(&totals)

	if result.Error != nil {
		return nil, result.Error
	}

	return &totals, nil
}

// SalesByDate группирует оплаченные заказы по дате оплаты начиная с since
// Границы дня берутся по UTC, а не по timezone сессии Postgres,
// чтобы ключи совпадали с нулевым заполнением в service layer.
// Дни без продаж в выборку не попадают
func (r *orderRepository) SalesByDate(ctx context.Context, since time.Time) ([]entity.DailySales, error) {
	var sales []entity.DailySales
	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Select("to_char(paid_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS date, SUM(total_price) AS sales").
		Where("is_paid = ? AND paid_at >= ?", true, since).
		Group("to_char(paid_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')").
		Order("date ASC").
		Scan(&sales)

	if result.Error != nil {
		return nil, result.Error
	}

	return sales, nil
}
