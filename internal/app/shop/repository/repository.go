package repository

import (
	"context"
	"errors"
	"time"

	"cedarcart/internal/app/shop/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user with this email already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryExists    = errors.New("category with this name already exists")
	ErrCategoryInUse     = errors.New("category is referenced by products")
	ErrProductNotFound   = errors.New("product not found")
	ErrReviewNotFound    = errors.New("review not found")
	ErrDuplicateReview   = errors.New("review for this product already exists")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAll(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetWithCategory(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetPage(ctx context.Context, offset, limit int) ([]entity.Product, int64, error)
	GetAllWithCategories(ctx context.Context) ([]entity.Product, error)
	GetTopRated(ctx context.Context, limit int) ([]entity.Product, error)
	GetNewest(ctx context.Context, limit int) ([]entity.Product, error)
	GetFiltered(ctx context.Context, categoryIDs []uuid.UUID, minPrice, maxPrice *float64) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error
	Delete(ctx context.Context, id uuid.UUID) error

	// GetForUpdate блокирует строку товара (SELECT ... FOR UPDATE)
	// Имеет смысл только внутри транзакции TxManager
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// ReserveStock атомарно списывает остаток при условии его достаточности
	ReserveStock(ctx context.Context, id uuid.UUID, qty int) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByProductID(ctx context.Context, productID uuid.UUID) ([]entity.Review, error)
	// AggregateForProduct возвращает среднюю оценку и число отзывов по товару
	AggregateForProduct(ctx context.Context, productID uuid.UUID) (float64, int, error)
	DeleteByProductID(ctx context.Context, productID uuid.UUID) error
}

type OrderRepository interface {
	// Create сохраняет заказ вместе с позициями
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Order, error)
	GetAll(ctx context.Context) ([]entity.Order, error)
	// UpdateStatus записывает флаги оплаты/доставки и их временные метки
	UpdateStatus(ctx context.Context, order *entity.Order) error
	TotalSales(ctx context.Context) (*entity.SalesTotals, error)
	SalesByDate(ctx context.Context, since time.Time) ([]entity.DailySales, error)
}

// TxRepositories - репозитории, привязанные к одной открытой транзакции
type TxRepositories struct {
	Products ProductRepository
	Reviews  ReviewRepository
	Orders   OrderRepository
}

// TxManager выполняет функцию в рамках одной транзакции БД
// Возврат ошибки из fn откатывает все сделанные внутри изменения
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepositories) error) error
}
