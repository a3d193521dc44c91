package persistence

import (
	"context"

	"gorm.io/gorm"

	jobworkapp "github.com/jobwork/backend/internal/application/jobwork"
	"github.com/jobwork/backend/internal/domain/billing"
	"github.com/jobwork/backend/internal/domain/catalog"
	"github.com/jobwork/backend/internal/domain/jobwork"
	"github.com/jobwork/backend/internal/domain/stock"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. Every repository handed to
// fn is bound to the same transaction.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos jobworkapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) IntakeOrderRepo() jobwork.IntakeOrderRepository {
	return NewGormIntakeOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) DeliveryRepo() jobwork.DeliveryRepository {
	return NewGormDeliveryRepository(r.tx)
}

func (r *gormTransactionalRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormTransactionalRepositories) PaymentAllocationRepo() billing.PaymentAllocationRepository {
	return NewGormPaymentAllocationRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockEntryRepo() stock.StockEntryRepository {
	return NewGormStockEntryRepository(r.tx)
}

func (r *gormTransactionalRepositories) ItemRepo() catalog.ItemRepository {
	return NewGormItemRepository(r.tx)
}

var _ jobworkapp.TransactionScope = (*GormTransactionScope)(nil)
var _ jobworkapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
