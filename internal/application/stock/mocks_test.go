package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jobwork/backend/internal/domain/billing"
	"github.com/jobwork/backend/internal/domain/catalog"
	"github.com/jobwork/backend/internal/domain/jobwork"
	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/shared/valueobject"
	"github.com/jobwork/backend/internal/domain/stock"
)

// MockIntakeOrderRepository is a mock implementation of IntakeOrderRepository
type MockIntakeOrderRepository struct {
	mock.Mock
}

func (m *MockIntakeOrderRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*jobwork.IntakeOrder, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobwork.IntakeOrder), args.Error(1)
}

func (m *MockIntakeOrderRepository) FindByOrderNumber(ctx context.Context, scope shared.Scope, orderNumber string) (*jobwork.IntakeOrder, error) {
	args := m.Called(ctx, scope, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobwork.IntakeOrder), args.Error(1)
}

func (m *MockIntakeOrderRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[jobwork.IntakeOrder], error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[jobwork.IntakeOrder]), args.Error(1)
}

func (m *MockIntakeOrderRepository) FindAllWithLines(ctx context.Context, scope shared.Scope) ([]jobwork.IntakeOrder, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]jobwork.IntakeOrder), args.Error(1)
}

func (m *MockIntakeOrderRepository) FindLineByID(ctx context.Context, scope shared.Scope, lineID uuid.UUID) (*jobwork.IntakeOrderLine, error) {
	args := m.Called(ctx, scope, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobwork.IntakeOrderLine), args.Error(1)
}

func (m *MockIntakeOrderRepository) FindLinesByIDs(ctx context.Context, scope shared.Scope, lineIDs []uuid.UUID) ([]jobwork.IntakeOrderLine, error) {
	args := m.Called(ctx, scope, lineIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]jobwork.IntakeOrderLine), args.Error(1)
}

func (m *MockIntakeOrderRepository) Save(ctx context.Context, order *jobwork.IntakeOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockIntakeOrderRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

func (m *MockIntakeOrderRepository) GenerateOrderNumber(ctx context.Context, scope shared.Scope) (string, error) {
	args := m.Called(ctx, scope)
	return args.String(0), args.Error(1)
}

// MockDeliveryRepository is a mock implementation of DeliveryRepository
type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*jobwork.Delivery, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobwork.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindByChallanNumber(ctx context.Context, scope shared.Scope, partyID uuid.UUID, challanNumber string) (*jobwork.Delivery, error) {
	args := m.Called(ctx, scope, partyID, challanNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jobwork.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[jobwork.Delivery], error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[jobwork.Delivery]), args.Error(1)
}

func (m *MockDeliveryRepository) FindByIDs(ctx context.Context, scope shared.Scope, ids []uuid.UUID) ([]jobwork.Delivery, error) {
	args := m.Called(ctx, scope, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]jobwork.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindByIntakeOrder(ctx context.Context, scope shared.Scope, orderID uuid.UUID) ([]jobwork.Delivery, error) {
	args := m.Called(ctx, scope, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]jobwork.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindWithLinesByParty(ctx context.Context, scope shared.Scope, partyID *uuid.UUID) ([]jobwork.Delivery, error) {
	args := m.Called(ctx, scope, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]jobwork.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) FindLinesByIDs(ctx context.Context, scope shared.Scope, lineIDs []uuid.UUID) ([]jobwork.DeliveryLine, error) {
	args := m.Called(ctx, scope, lineIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]jobwork.DeliveryLine), args.Error(1)
}

func (m *MockDeliveryRepository) Save(ctx context.Context, delivery *jobwork.Delivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

func (m *MockDeliveryRepository) SumDeliveredByIntakeLines(ctx context.Context, scope shared.Scope, intakeLineIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, scope, intakeLineIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

func (m *MockDeliveryRepository) ExistsForIntakeOrder(ctx context.Context, scope shared.Scope, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, scope, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryRepository) GenerateChallanNumber(ctx context.Context, scope shared.Scope) (string, error) {
	args := m.Called(ctx, scope)
	return args.String(0), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, scope shared.Scope, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, scope, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[billing.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllWithLines(ctx context.Context, scope shared.Scope) ([]billing.Invoice, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) BilledSplits(ctx context.Context, scope shared.Scope, excludeInvoiceID *uuid.UUID) (map[uuid.UUID]valueobject.QualitySplit, error) {
	args := m.Called(ctx, scope, excludeInvoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]valueobject.QualitySplit), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsForDelivery(ctx context.Context, scope shared.Scope, deliveryID uuid.UUID) (bool, error) {
	args := m.Called(ctx, scope, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, scope shared.Scope) (string, error) {
	args := m.Called(ctx, scope)
	return args.String(0), args.Error(1)
}

// MockPaymentAllocationRepository is a mock implementation of PaymentAllocationRepository
type MockPaymentAllocationRepository struct {
	mock.Mock
}

func (m *MockPaymentAllocationRepository) ExistsForInvoice(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, scope, invoiceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentAllocationRepository) FindByInvoice(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID) ([]billing.PaymentAllocation, error) {
	args := m.Called(ctx, scope, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.PaymentAllocation), args.Error(1)
}

// MockStockEntryRepository is a mock implementation of StockEntryRepository
type MockStockEntryRepository struct {
	mock.Mock
}

func (m *MockStockEntryRepository) Create(ctx context.Context, entry *stock.StockEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockStockEntryRepository) CreateBatch(ctx context.Context, entries []*stock.StockEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockStockEntryRepository) FindByReference(ctx context.Context, scope shared.Scope, refType stock.ReferenceType, refID uuid.UUID) ([]stock.StockEntry, error) {
	args := m.Called(ctx, scope, refType, refID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stock.StockEntry), args.Error(1)
}

func (m *MockStockEntryRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[stock.StockEntry], error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[stock.StockEntry]), args.Error(1)
}

func (m *MockStockEntryRepository) Balance(ctx context.Context, scope shared.Scope, itemID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, scope, itemID, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStockEntryRepository) Balances(ctx context.Context, scope shared.Scope, asOf *time.Time) ([]stock.BalanceRow, error) {
	args := m.Called(ctx, scope, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stock.BalanceRow), args.Error(1)
}

func (m *MockStockEntryRepository) DeleteByReference(ctx context.Context, scope shared.Scope, refType stock.ReferenceType, refID uuid.UUID) error {
	args := m.Called(ctx, scope, refType, refID)
	return args.Error(0)
}

func (m *MockStockEntryRepository) DeleteForScope(ctx context.Context, scope shared.Scope, keepOpening bool) error {
	args := m.Called(ctx, scope, keepOpening)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDs(ctx context.Context, scope shared.Scope, ids []uuid.UUID) ([]catalog.Item, error) {
	args := m.Called(ctx, scope, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]catalog.Item, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}
