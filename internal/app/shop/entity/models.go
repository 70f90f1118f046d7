package entity

import (
	"time"

	"github.com/google/uuid"
)

// User представляет пользователя магазина
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt хэш, никогда не отдается наружу
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// Category представляет категорию товаров
// Имя уникально без учета регистра (индекс по lower(name))
type Category struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}

// Product представляет товар в каталоге
// Rating и NumReviews - производные поля, пересчитываются при добавлении отзыва
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int       `json:"quantity" gorm:"not null;default:0;check:quantity >= 0"` // Остаток на складе, не бывает отрицательным
	Image       string    `json:"image" gorm:"type:varchar(500)"`
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	Rating      float64   `json:"rating" gorm:"not null;default:0"` // Средняя оценка по всем отзывам
	NumReviews  int       `json:"num_reviews" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (Product) TableName() string {
	return "products"
}

// Review представляет отзыв пользователя о товаре
// Пара (user_id, product_id) уникальна - один отзыв на товар от пользователя
type Review struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Review) TableName() string {
	return "reviews"
}

// Order представляет заказ
// Позиции и итоговая сумма фиксируются при создании и больше не меняются,
// после создания мутируют только флаги оплаты/доставки и их временные метки
type Order struct {
	ID              uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID   `json:"user_id" gorm:"type:uuid;not null"`
	ShippingAddress string      `json:"shipping_address" gorm:"type:text;not null"`
	PaymentMethod   string      `json:"payment_method" gorm:"type:varchar(100);not null"`
	TotalPrice      float64     `json:"total_price" gorm:"type:decimal(10,2);not null"`
	IsPaid          bool        `json:"is_paid" gorm:"not null;default:false"`
	PaidAt          *time.Time  `json:"paid_at,omitempty"`
	IsDelivered     bool        `json:"is_delivered" gorm:"not null;default:false"`
	DeliveredAt     *time.Time  `json:"delivered_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at" gorm:"autoCreateTime"`
	Items           []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User            *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName указывает имя таблицы для GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem представляет позицию в заказе
// Name и UnitPrice - снапшот товара на момент покупки,
// последующие изменения каталога на них не влияют
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Quantity  int       `json:"qty" gorm:"not null;check:quantity > 0"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`
}

// TableName указывает имя таблицы для GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// SalesTotals содержит агрегированные продажи по оплаченным заказам
type SalesTotals struct {
	TotalSales float64 `json:"total_sales"`
	OrderCount int64   `json:"order_count"`
}

// DailySales содержит сумму продаж за один день
type DailySales struct {
	Date  string  `json:"date"` // Формат YYYY-MM-DD
	Sales float64 `json:"sales"`
}

// OrderEvent представляет событие изменения заказа для Kafka
type OrderEvent struct {
	EventType  string    `json:"event_type"` // ORDER_CREATED, ORDER_PAID, ORDER_DELIVERED
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	TotalPrice float64   `json:"total_price"`
	ItemsCount int       `json:"items_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProductEvent представляет событие изменения товара для Kafka
// Отправляется только при смене цены
type ProductEvent struct {
	EventType  string    `json:"event_type"` // PRODUCT_UPDATED
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	CategoryID uuid.UUID `json:"category_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// ReviewEvent представляет событие создания отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED
	ReviewID  uuid.UUID `json:"review_id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
