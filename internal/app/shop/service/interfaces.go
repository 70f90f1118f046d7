package service

import (
	"context"
	"time"

	"cedarcart/internal/app/shop/entity"

	"github.com/google/uuid"
)

// MessagePublisher - контракт отправки доменных событий (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// CategoryCache - кеш списка категорий
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]entity.Category, error)
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	DeleteCategories(ctx context.Context) error
}

// SalesCache - кеш отчета о продажах за последние дни
type SalesCache interface {
	GetSalesReport(ctx context.Context) ([]entity.DailySales, error)
	SetSalesReport(ctx context.Context, report []entity.DailySales, ttl time.Duration) error
}

type UserServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *entity.UpdateProfileRequest) (*entity.UserResponse, error)
	GetAllUsers(ctx context.Context) ([]entity.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.UserResponse, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *entity.UpdateUserRequest) (*entity.UserResponse, error)
	DeleteUser(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	ChangeRole(ctx context.Context, id uuid.UUID, isAdmin bool) (*entity.UserResponse, error)
	EnsureAdmin(ctx context.Context, username, email, password string) error
}

type CatalogServiceInterface interface {
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAllCategories(ctx context.Context) ([]entity.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetProducts(ctx context.Context, page, pageSize int) (*entity.ProductListResponse, error)
	GetAllProducts(ctx context.Context) ([]entity.Product, error)
	GetTopProducts(ctx context.Context) ([]entity.Product, error)
	GetNewProducts(ctx context.Context) ([]entity.Product, error)
	GetFilteredProducts(ctx context.Context, req *entity.FilterProductsRequest) ([]entity.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, productID, userID uuid.UUID, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetProductReviews(ctx context.Context, productID uuid.UUID) ([]entity.Review, error)
}

type OrderServiceInterface interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *entity.CreateOrderRequest) (*entity.Order, error)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*entity.Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID) ([]entity.Order, error)
	GetAllOrders(ctx context.Context) ([]entity.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (*entity.Order, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*entity.Order, error)
}

type StatsServiceInterface interface {
	GetTotalSales(ctx context.Context) (*entity.SalesTotals, error)
	GetSalesByDate(ctx context.Context) ([]entity.DailySales, error)
	RefreshSalesReport(ctx context.Context) error
}
