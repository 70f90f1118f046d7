package repository

import (
	"context"

	"gorm.io/gorm"
)

type txManager struct {
	db *gorm.DB
}

// NewTxManager создает менеджер транзакций поверх GORM
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

// WithinTx выполняет fn в одной транзакции PostgreSQL
// Репозитории в TxRepositories привязаны к открытой транзакции,
// ошибка из fn откатывает все сделанные внутри изменения
func (m *txManager) WithinTx(ctx context.Context, fn func(r TxRepositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepositories{
			Products: NewProductRepository(tx),
			Reviews:  NewReviewRepository(tx),
			Orders:   NewOrderRepository(tx),
		})
	})
}
