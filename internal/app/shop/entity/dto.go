package entity

import "github.com/google/uuid"

// === Users ===

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=2,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

type UpdateUserRequest struct {
	Username string `json:"username" validate:"omitempty,min=2,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	IsAdmin  *bool  `json:"is_admin"`
}

type ChangeRoleRequest struct {
	IsAdmin *bool `json:"is_admin" validate:"required"`
}

// UserResponse - публичное представление пользователя без хэша пароля
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	IsAdmin  bool      `json:"is_admin"`
}

// AuthResponse возвращается при регистрации и входе
type AuthResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	IsAdmin  bool      `json:"is_admin"`
	Token    string    `json:"token"`
}

// === Categories ===

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// === Products ===

type CreateProductRequest struct {
	Name        string    `json:"name" validate:"required,min=1,max=255"`
	Description string    `json:"description" validate:"required"`
	Price       float64   `json:"price" validate:"required,gte=0"`
	Quantity    int       `json:"quantity" validate:"gte=0"`
	Image       string    `json:"image"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
}

type UpdateProductRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price" validate:"gte=0"`
	Quantity    *int      `json:"quantity" validate:"omitempty,gte=0"`
	Image       string    `json:"image"`
	CategoryID  uuid.UUID `json:"category_id"`
}

// FilterProductsRequest - фильтрация по категориям и диапазону цен
// PriceRange задается парой [min, max]
type FilterProductsRequest struct {
	Categories []uuid.UUID `json:"categories"`
	Price      []float64   `json:"price" validate:"omitempty,len=2"`
}

// ProductListResponse - страница товаров с метаданными пагинации
type ProductListResponse struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Total    int64     `json:"total"`
}

// === Reviews ===

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// === Orders ===

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string             `json:"shipping_address" validate:"required"`
	PaymentMethod   string             `json:"payment_method" validate:"required"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"qty" validate:"required,gt=0"`
}

// === Common ===

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
