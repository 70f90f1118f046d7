package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"cedarcart/internal/app/shop/entity"
	"cedarcart/internal/app/shop/repository"
	"cedarcart/pkg/logger"
	"cedarcart/pkg/metrics"

	"github.com/google/uuid"
)

// OrderService обрабатывает бизнес-логику заказов
// Создание заказа резервирует остатки атомарно: все позиции
// списываются в одной транзакции либо не списывается ничего
type OrderService struct {
	orderRepo     repository.OrderRepository
	txManager     repository.TxManager
	kafkaProducer MessagePublisher
}

// NewOrderService создает новый сервис заказов с внедрением зависимостей
func NewOrderService(
	orderRepo repository.OrderRepository,
	txManager repository.TxManager,
	kafkaProducer MessagePublisher,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		txManager:     txManager,
		kafkaProducer: kafkaProducer,
	}
}

// PlaceOrder создает заказ со списанием остатков в одной транзакции
// Для каждой позиции: блокировка строки товара, проверка остатка,
// снапшот имени и цены, условное списание. Любая ошибка откатывает
// всё - частичных списаний не бывает
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *entity.CreateOrderRequest) (*entity.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &entity.Order{
		ID:              uuid.New(),
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       time.Now(),
	}

	err := s.txManager.WithinTx(ctx, func(r repository.TxRepositories) error {
		var total float64

		for _, item := range req.Items {
			product, err := r.Products.GetForUpdate(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("failed to lock product %s: %w", item.ProductID, err)
			}

			if product.Quantity < item.Quantity {
				return &InsufficientStockError{
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   product.Quantity,
				}
			}

			if err := r.Products.ReserveStock(ctx, product.ID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return &InsufficientStockError{
						ProductName: product.Name,
						Requested:   item.Quantity,
						Available:   product.Quantity,
					}
				}
				return fmt.Errorf("failed to reserve stock for %s: %w", product.ID, err)
			}

			// Снапшот имени и цены: последующие правки каталога
			// не меняют исторические заказы
			order.Items = append(order.Items, entity.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
			total += product.Price * float64(item.Quantity)
		}

		order.TotalPrice = math.Round(total*100) / 100

		if err := r.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			metrics.OrdersRejected.WithLabelValues("insufficient_stock").Inc()
		} else if errors.Is(err, ErrProductNotFound) {
			metrics.OrdersRejected.WithLabelValues("product_not_found").Inc()
		}
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	metrics.OrdersAmount.Add(order.TotalPrice)

	s.publishOrderEvent(ctx, "ORDER_CREATED", order)

	return order, nil
}

// GetOrder получает заказ по ID
// Обычный пользователь видит только свои заказы, админ - любые
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !isAdmin && order.UserID != userID {
		return nil, ErrForbidden
	}

	return order, nil
}

// GetUserOrders получает все заказы пользователя
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}

	return orders, nil
}

// GetAllOrders получает все заказы (только для админа)
func (s *OrderService) GetAllOrders(ctx context.Context) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	return orders, nil
}

// MarkPaid отмечает заказ оплаченным
// Повторный вызов не меняет исходную временную метку оплаты
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.IsPaid {
		return order, nil
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now

	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.publishOrderEvent(ctx, "ORDER_PAID", order)

	return order, nil
}

// MarkDelivered отмечает заказ доставленным
// Неоплаченный заказ доставить нельзя, повторный вызов идемпотентен
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !order.IsPaid {
		return nil, ErrOrderNotPaid
	}

	if order.IsDelivered {
		return order, nil
	}

	now := time.Now()
	order.IsDelivered = true
	order.DeliveredAt = &now

	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.publishOrderEvent(ctx, "ORDER_DELIVERED", order)

	return order, nil
}

// publishOrderEvent отправляет событие о заказе в Kafka
// Заказ уже сохранен в БД, ошибки Kafka логируются и не возвращаются
func (s *OrderService) publishOrderEvent(ctx context.Context, eventType string, order *entity.Order) {
	event := entity.OrderEvent{
		EventType:  eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		ItemsCount: len(order.Items),
		Timestamp:  time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to marshal order event")
		return
	}

	// Key - это OrderID для правильного партиционирования
	if err := s.kafkaProducer.PublishMessage(ctx, order.ID.String(), eventData); err != nil {
		logger.Warn().Err(err).
			Str("event_type", eventType).
			Str("order_id", order.ID.String()).
			Msg("failed to publish order event")
	}
}
