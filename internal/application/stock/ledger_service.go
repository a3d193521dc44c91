package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/stock"
)

// RecordOpeningRequest seeds the ledger with a counted balance
type RecordOpeningRequest struct {
	ItemID    uuid.UUID       `json:"item_id" binding:"required"`
	PartyID   *uuid.UUID      `json:"party_id"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	EntryDate time.Time       `json:"entry_date"`
	Notes     string          `json:"notes"`
}

// LedgerService exposes the stock ledger: balances, entry listings and
// opening entries
type LedgerService struct {
	entryRepo stock.StockEntryRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(entryRepo stock.StockEntryRepository) *LedgerService {
	return &LedgerService{entryRepo: entryRepo}
}

// Balance returns the signed ledger sum for one item, optionally as of a
// date
func (s *LedgerService) Balance(ctx context.Context, scope shared.Scope, itemID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	if itemID == uuid.Nil {
		return decimal.Zero, shared.ErrInvalidInput
	}
	return s.entryRepo.Balance(ctx, scope, itemID, asOf)
}

// Balances returns the signed ledger sum per item
func (s *LedgerService) Balances(ctx context.Context, scope shared.Scope, asOf *time.Time) ([]stock.BalanceRow, error) {
	return s.entryRepo.Balances(ctx, scope, asOf)
}

// ListEntries returns ledger entries with filtering and pagination
func (s *LedgerService) ListEntries(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[stock.StockEntry], error) {
	return s.entryRepo.FindAll(ctx, scope, filter)
}

// RecordOpening appends an opening IN entry. Opening balances have no
// source document, so the reference is a synthetic id.
func (s *LedgerService) RecordOpening(ctx context.Context, scope shared.Scope, req RecordOpeningRequest) (*stock.StockEntry, error) {
	entry, err := stock.NewStockEntry(scope, req.ItemID, stock.EntryKindOpening, uuid.New(), req.Quantity, req.EntryDate)
	if err != nil {
		return nil, err
	}
	if req.PartyID != nil {
		entry.WithParty(*req.PartyID)
	}
	if req.Notes != "" {
		entry.WithNotes(req.Notes)
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
