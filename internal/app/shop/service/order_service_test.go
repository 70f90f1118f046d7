package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cedarcart/internal/app/shop/entity"
	"cedarcart/internal/app/shop/repository"
	"cedarcart/internal/app/shop/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newOrderServiceWithMocks() (*OrderService, *mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockTxManager, *mocks.MockMessagePublisher) {
	orderRepo := new(mocks.MockOrderRepository)
	productRepo := new(mocks.MockProductRepository)
	txOrderRepo := new(mocks.MockOrderRepository)

	txManager := &mocks.MockTxManager{
		Repos: repository.TxRepositories{
			Products: productRepo,
			Reviews:  new(mocks.MockReviewRepository),
			Orders:   txOrderRepo,
		},
	}
	kafkaProducer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}

	service := NewOrderService(orderRepo, txManager, kafkaProducer)
	return service, txOrderRepo, productRepo, txManager, kafkaProducer
}

// ===================== PlaceOrder Tests =====================

func TestPlaceOrder_Success(t *testing.T) {
	// Arrange
	service, txOrderRepo, productRepo, txManager, kafkaProducer := newOrderServiceWithMocks()

	ctx := context.Background()
	userID := uuid.New()
	appleID := uuid.New()
	pearID := uuid.New()

	req := &entity.CreateOrderRequest{
		Items: []entity.OrderItemRequest{
			{ProductID: appleID, Quantity: 2},
			{ProductID: pearID, Quantity: 1},
		},
		ShippingAddress: "Moscow, Tverskaya 1",
		PaymentMethod:   "card",
	}

	txManager.On("WithinTx", ctx).Return(nil)
	productRepo.On("GetForUpdate", ctx, appleID).Return(&entity.Product{
		ID: appleID, Name: "Apple", Price: 10.0, Quantity: 5,
	}, nil)
	productRepo.On("GetForUpdate", ctx, pearID).Return(&entity.Product{
		ID: pearID, Name: "Pear", Price: 15.0, Quantity: 3,
	}, nil)
	productRepo.On("ReserveStock", ctx, appleID, 2).Return(nil)
	productRepo.On("ReserveStock", ctx, pearID, 1).Return(nil)
	txOrderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	// Act
	order, err := service.PlaceOrder(ctx, userID, req)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, userID, order.UserID)
	// TotalPrice = (10.0 * 2) + (15.0 * 1) = 35.0
	assert.Equal(t, 35.0, order.TotalPrice)
	assert.Len(t, order.Items, 2)
	assert.False(t, order.IsPaid)
	assert.False(t, order.IsDelivered)

	productRepo.AssertExpectations(t)
	txOrderRepo.AssertExpectations(t)
	kafkaProducer.AssertExpectations(t)
}

func TestPlaceOrder_SnapshotsNameAndPrice(t *testing.T) {
	// Arrange
	service, txOrderRepo, productRepo, txManager, kafkaProducer := newOrderServiceWithMocks()

	ctx := context.Background()
	productID := uuid.New()

	req := &entity.CreateOrderRequest{
		Items:           []entity.OrderItemRequest{{ProductID: productID, Quantity: 3}},
		ShippingAddress: "SPb, Nevsky 10",
		PaymentMethod:   "cash",
	}

	txManager.On("WithinTx", ctx).Return(nil)
	productRepo.On("GetForUpdate", ctx, productID).Return(&entity.Product{
		ID: productID, Name: "Honey 500g", Price: 12.5, Quantity: 10,
	}, nil)
	productRepo.On("ReserveStock", ctx, productID, 3).Return(nil)
	txOrderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	// Act
	order, err := service.PlaceOrder(ctx, uuid.New(), req)

	// Assert
	assert.NoError(t, err)
	// Позиция хранит имя и цену на момент покупки
	assert.Equal(t, "Honey 500g", order.Items[0].Name)
	assert.Equal(t, 12.5, order.Items[0].UnitPrice)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, 37.5, order.TotalPrice)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	// Arrange
	service, txOrderRepo, productRepo, txManager, kafkaProducer := newOrderServiceWithMocks()

	ctx := context.Background()
	productID := uuid.New()

	req := &entity.CreateOrderRequest{
		Items:           []entity.OrderItemRequest{{ProductID: productID, Quantity: 10}},
		ShippingAddress: "Moscow",
		PaymentMethod:   "card",
	}

	txManager.On("WithinTx", ctx).Return(nil)
	productRepo.On("GetForUpdate", ctx, productID).Return(&entity.Product{
		ID: productID, Name: "Apple", Price: 10.0, Quantity: 4,
	}, nil)

	// Act
	order, err := service.PlaceOrder(ctx, uuid.New(), req)

	// Assert
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Apple", stockErr.ProductName)
	assert.Equal(t, 10, stockErr.Requested)
	assert.Equal(t, 4, stockErr.Available)

	// Заказ не создается, событие не отправляется
	txOrderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	kafkaProducer.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
	productRepo.AssertNotCalled(t, "ReserveStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_SecondLineFailsNothingCreated(t *testing.T) {
	// Arrange
	service, txOrderRepo, productRepo, txManager, _ := newOrderServiceWithMocks()

	ctx := context.Background()
	firstID := uuid.New()
	secondID := uuid.New()

	req := &entity.CreateOrderRequest{
		Items: []entity.OrderItemRequest{
			{ProductID: firstID, Quantity: 1},
			{ProductID: secondID, Quantity: 5},
		},
		ShippingAddress: "Moscow",
		PaymentMethod:   "card",
	}

	txManager.On("WithinTx", ctx).Return(nil)
	productRepo.On("GetForUpdate", ctx, firstID).Return(&entity.Product{
		ID: firstID, Name: "Apple", Price: 10.0, Quantity: 5,
	}, nil)
	productRepo.On("ReserveStock", ctx, firstID, 1).Return(nil)
	// Вторая позиция проваливает всю транзакцию
	productRepo.On("GetForUpdate", ctx, secondID).Return(&entity.Product{
		ID: secondID, Name: "Pear", Price: 15.0, Quantity: 2,
	}, nil)

	// Act
	order, err := service.PlaceOrder(ctx, uuid.New(), req)

	// Assert
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	txOrderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	// Arrange
	service, txOrderRepo, productRepo, txManager, _ := newOrderServiceWithMocks()

	ctx := context.Background()
	productID := uuid.New()

	req := &entity.CreateOrderRequest{
		Items:           []entity.OrderItemRequest{{ProductID: productID, Quantity: 1}},
		ShippingAddress: "Moscow",
		PaymentMethod:   "card",
	}

	txManager.On("WithinTx", ctx).Return(nil)
	productRepo.On("GetForUpdate", ctx, productID).Return(nil, repository.ErrProductNotFound)

	// Act
	order, err := service.PlaceOrder(ctx, uuid.New(), req)

	// Assert
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrProductNotFound)
	txOrderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	// Arrange
	service, _, _, txManager, _ := newOrderServiceWithMocks()

	req := &entity.CreateOrderRequest{
		Items:           []entity.OrderItemRequest{},
		ShippingAddress: "Moscow",
		PaymentMethod:   "card",
	}

	// Act
	order, err := service.PlaceOrder(context.Background(), uuid.New(), req)

	// Assert
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrEmptyCart)
	txManager.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestPlaceOrder_KafkaFailureDoesNotFailOrder(t *testing.T) {
	// Arrange
	service, txOrderRepo, productRepo, txManager, kafkaProducer := newOrderServiceWithMocks()

	ctx := context.Background()
	productID := uuid.New()

	req := &entity.CreateOrderRequest{
		Items:           []entity.OrderItemRequest{{ProductID: productID, Quantity: 1}},
		ShippingAddress: "Moscow",
		PaymentMethod:   "card",
	}

	txManager.On("WithinTx", ctx).Return(nil)
	productRepo.On("GetForUpdate", ctx, productID).Return(&entity.Product{
		ID: productID, Name: "Apple", Price: 10.0, Quantity: 5,
	}, nil)
	productRepo.On("ReserveStock", ctx, productID, 1).Return(nil)
	txOrderRepo.On("Create", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(errors.New("kafka unavailable"))

	// Act
	order, err := service.PlaceOrder(ctx, uuid.New(), req)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, order)
}

// ===================== GetOrder Tests =====================

func TestGetOrder_Owner(t *testing.T) {
	// Arrange
	orderRepo := new(mocks.MockOrderRepository)
	service := NewOrderService(orderRepo, &mocks.MockTxManager{}, &mocks.MockMessagePublisher{})

	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{
		ID: orderID, UserID: userID,
	}, nil)

	// Act
	order, err := service.GetOrder(ctx, orderID, userID, false)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
}

func TestGetOrder_ForeignOrderForbidden(t *testing.T) {
	// Arrange
	orderRepo := new(mocks.MockOrderRepository)
	service := NewOrderService(orderRepo, &mocks.MockTxManager{}, &mocks.MockMessagePublisher{})

	ctx := context.Background()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{
		ID: orderID, UserID: uuid.New(),
	}, nil)

	// Act
	order, err := service.GetOrder(ctx, orderID, uuid.New(), false)

	// Assert
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetOrder_AdminSeesAny(t *testing.T) {
	// Arrange
	orderRepo := new(mocks.MockOrderRepository)
	service := NewOrderService(orderRepo, &mocks.MockTxManager{}, &mocks.MockMessagePublisher{})

	ctx := context.Background()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{
		ID: orderID, UserID: uuid.New(),
	}, nil)

	// Act
	order, err := service.GetOrder(ctx, orderID, uuid.New(), true)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, order)
}

func TestGetOrder_NotFound(t *testing.T) {
	// Arrange
	orderRepo := new(mocks.MockOrderRepository)
	service := NewOrderService(orderRepo, &mocks.MockTxManager{}, &mocks.MockMessagePublisher{})

	ctx := context.Background()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).Return(nil, repository.ErrOrderNotFound)

	// Act
	order, err := service.GetOrder(ctx, orderID, uuid.New(), false)

	// Assert
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// ===================== MarkPaid / MarkDelivered Tests =====================

func TestMarkPaid_Success(t *testing.T) {
	// Arrange
	orderRepo := new(mocks.MockOrderRepository)
	kafkaProducer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	service := NewOrderService(orderRepo, &mocks.MockTxManager{}, kafkaProducer)

	ctx := context.Background()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{ID: orderID}, nil)
	orderRepo.On("UpdateStatus", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	// Act
	order, err := service.MarkPaid(ctx, orderID)

	// Assert
	assert.NoError(t, err)
	assert.True(t, order.IsPaid)
	assert.NotNil(t, order.PaidAt)
	orderRepo.AssertExpectations(t)
}

func TestMarkPaid_AlreadyPaidKeepsTimestamp(t *testing.T) {
	// Arrange
	orderRepo := new(mocks.MockOrderRepository)
	service := NewOrderService(orderRepo, &mocks.MockTxManager{}, &mocks.MockMessagePublisher{})

	ctx := context.Background()
	orderID := uuid.New()
	paidAt := time.Now().Add(-time.Hour)

	orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{
		ID: orderID, IsPaid: true, PaidAt: &paidAt,
	}, nil)

	// Act
	order, err := service.MarkPaid(ctx, orderID)

	// Assert
	assert.NoError(t, err)
	assert.True(t, order.IsPaid)
	// Повторная оплата не меняет исходную метку
	assert.Equal(t, paidAt, *order.PaidAt)
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestMarkDelivered_Success(t *testing.T) {
	// Arrange
	orderRepo := new(mocks.MockOrderRepository)
	kafkaProducer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	service := NewOrderService(orderRepo, &mocks.MockTxManager{}, kafkaProducer)

	ctx := context.Background()
	orderID := uuid.New()
	paidAt := time.Now()

	orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{
		ID: orderID, IsPaid: true, PaidAt: &paidAt,
	}, nil)
	orderRepo.On("UpdateStatus", ctx, mock.AnythingOfType("*entity.Order")).Return(nil)
	kafkaProducer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	// Act
	order, err := service.MarkDelivered(ctx, orderID)

	// Assert
	assert.NoError(t, err)
	assert.True(t, order.IsDelivered)
	assert.NotNil(t, order.DeliveredAt)
}

func TestMarkDelivered_NotPaid(t *testing.T) {
	// Arrange
	orderRepo := new(mocks.MockOrderRepository)
	service := NewOrderService(orderRepo, &mocks.MockTxManager{}, &mocks.MockMessagePublisher{})

	ctx := context.Background()
	orderID := uuid.New()

	orderRepo.On("GetByID", ctx, orderID).Return(&entity.Order{ID: orderID}, nil)

	// Act
	order, err := service.MarkDelivered(ctx, orderID)

	// Assert
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrOrderNotPaid)
	orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestGetUserOrders_Success(t *testing.T) {
	// Arrange
	orderRepo := new(mocks.MockOrderRepository)
	service := NewOrderService(orderRepo, &mocks.MockTxManager{}, &mocks.MockMessagePublisher{})

	ctx := context.Background()
	userID := uuid.New()

	orderRepo.On("GetByUserID", ctx, userID).Return([]entity.Order{
		{ID: uuid.New(), UserID: userID},
		{ID: uuid.New(), UserID: userID},
	}, nil)

	// Act
	orders, err := service.GetUserOrders(ctx, userID)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
}
