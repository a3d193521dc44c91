package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/shared"
)

// BalanceRow is one item's signed ledger sum
type BalanceRow struct {
	ItemID  uuid.UUID       `json:"item_id"`
	Balance decimal.Decimal `json:"balance"`
}

// StockEntryRepository defines persistence for the append-only stock ledger
type StockEntryRepository interface {
	Create(ctx context.Context, entry *StockEntry) error
	CreateBatch(ctx context.Context, entries []*StockEntry) error
	FindByReference(ctx context.Context, scope shared.Scope, refType ReferenceType, refID uuid.UUID) ([]StockEntry, error)
	FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[StockEntry], error)

	// Balance returns the signed sum for one item up to and including asOf.
	// A nil asOf means the whole ledger.
	Balance(ctx context.Context, scope shared.Scope, itemID uuid.UUID, asOf *time.Time) (decimal.Decimal, error)

	// Balances returns signed sums for every item with at least one entry
	Balances(ctx context.Context, scope shared.Scope, asOf *time.Time) ([]BalanceRow, error)

	// DeleteByReference removes the entries a source document produced.
	// Used when reversing a delivery or invoice.
	DeleteByReference(ctx context.Context, scope shared.Scope, refType ReferenceType, refID uuid.UUID) error

	// DeleteForScope wipes the scope's derived ledger ahead of a replay.
	// Opening entries survive when keepOpening is set.
	DeleteForScope(ctx context.Context, scope shared.Scope, keepOpening bool) error
}
