package jobwork

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/shared"
)

// IntakeOrderRepository defines persistence for intake orders
type IntakeOrderRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*IntakeOrder, error)
	FindByOrderNumber(ctx context.Context, scope shared.Scope, orderNumber string) (*IntakeOrder, error)
	FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[IntakeOrder], error)
	FindAllWithLines(ctx context.Context, scope shared.Scope) ([]IntakeOrder, error)
	FindLineByID(ctx context.Context, scope shared.Scope, lineID uuid.UUID) (*IntakeOrderLine, error)
	FindLinesByIDs(ctx context.Context, scope shared.Scope, lineIDs []uuid.UUID) ([]IntakeOrderLine, error)
	Save(ctx context.Context, order *IntakeOrder) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error

	// GenerateOrderNumber produces the next PC-NNN number within the scope
	GenerateOrderNumber(ctx context.Context, scope shared.Scope) (string, error)
}

// DeliveryRepository defines persistence for deliveries
type DeliveryRepository interface {
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Delivery, error)
	FindByChallanNumber(ctx context.Context, scope shared.Scope, partyID uuid.UUID, challanNumber string) (*Delivery, error)
	FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[Delivery], error)
	FindByIDs(ctx context.Context, scope shared.Scope, ids []uuid.UUID) ([]Delivery, error)
	FindByIntakeOrder(ctx context.Context, scope shared.Scope, orderID uuid.UUID) ([]Delivery, error)
	FindWithLinesByParty(ctx context.Context, scope shared.Scope, partyID *uuid.UUID) ([]Delivery, error)
	FindLinesByIDs(ctx context.Context, scope shared.Scope, lineIDs []uuid.UUID) ([]DeliveryLine, error)
	Save(ctx context.Context, delivery *Delivery) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error

	// SumDeliveredByIntakeLines re-sums delivered quantity per intake order
	// line from the stored delivery lines. Callers run it inside the same
	// transaction that mutates delivery lines.
	SumDeliveredByIntakeLines(ctx context.Context, scope shared.Scope, intakeLineIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// ExistsForIntakeOrder reports whether any delivery line still
	// references the order. Used as the delete guard on intake orders.
	ExistsForIntakeOrder(ctx context.Context, scope shared.Scope, orderID uuid.UUID) (bool, error)

	// GenerateChallanNumber produces the next DC-NNN number within the scope
	GenerateChallanNumber(ctx context.Context, scope shared.Scope) (string, error)
}
