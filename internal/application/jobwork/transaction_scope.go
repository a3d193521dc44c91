package jobwork

import (
	"context"

	"github.com/jobwork/backend/internal/domain/billing"
	"github.com/jobwork/backend/internal/domain/catalog"
	"github.com/jobwork/backend/internal/domain/jobwork"
	"github.com/jobwork/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the reconciliation
// repositories. When a function is executed within a transaction scope, all
// repository operations are part of the same database transaction and are
// committed or rolled back atomically.
//
// Every write that touches more than one of intake orders, deliveries,
// invoices and the stock ledger goes through a scope: delivered counters,
// order statuses and ledger entries are derived data and must move together
// with the documents that produce them.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	IntakeOrderRepo() jobwork.IntakeOrderRepository
	DeliveryRepo() jobwork.DeliveryRepository
	InvoiceRepo() billing.InvoiceRepository
	PaymentAllocationRepo() billing.PaymentAllocationRepository
	StockEntryRepo() stock.StockEntryRepository
	ItemRepo() catalog.ItemRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests.
type NoOpTransactionScope struct {
	intakeOrderRepo jobwork.IntakeOrderRepository
	deliveryRepo    jobwork.DeliveryRepository
	invoiceRepo     billing.InvoiceRepository
	paymentRepo     billing.PaymentAllocationRepository
	stockEntryRepo  stock.StockEntryRepository
	itemRepo        catalog.ItemRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	intakeOrderRepo jobwork.IntakeOrderRepository,
	deliveryRepo jobwork.DeliveryRepository,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentAllocationRepository,
	stockEntryRepo stock.StockEntryRepository,
	itemRepo catalog.ItemRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		intakeOrderRepo: intakeOrderRepo,
		deliveryRepo:    deliveryRepo,
		invoiceRepo:     invoiceRepo,
		paymentRepo:     paymentRepo,
		stockEntryRepo:  stockEntryRepo,
		itemRepo:        itemRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// IntakeOrderRepo returns the intake order repository
func (s *NoOpTransactionScope) IntakeOrderRepo() jobwork.IntakeOrderRepository {
	return s.intakeOrderRepo
}

// DeliveryRepo returns the delivery repository
func (s *NoOpTransactionScope) DeliveryRepo() jobwork.DeliveryRepository {
	return s.deliveryRepo
}

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// PaymentAllocationRepo returns the payment allocation repository
func (s *NoOpTransactionScope) PaymentAllocationRepo() billing.PaymentAllocationRepository {
	return s.paymentRepo
}

// StockEntryRepo returns the stock ledger repository
func (s *NoOpTransactionScope) StockEntryRepo() stock.StockEntryRepository {
	return s.stockEntryRepo
}

// ItemRepo returns the item repository
func (s *NoOpTransactionScope) ItemRepo() catalog.ItemRepository {
	return s.itemRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
