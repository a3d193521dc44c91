package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/stock"
)

// GormStockEntryRepository implements StockEntryRepository using GORM
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a new GormStockEntryRepository
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// Create appends a single entry to the ledger
func (r *GormStockEntryRepository) Create(ctx context.Context, entry *stock.StockEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateBatch appends entries in a single insert
func (r *GormStockEntryRepository) CreateBatch(ctx context.Context, entries []*stock.StockEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindByReference returns the entries a source document produced
func (r *GormStockEntryRepository) FindByReference(ctx context.Context, scope shared.Scope, refType stock.ReferenceType, refID uuid.UUID) ([]stock.StockEntry, error) {
	var entries []stock.StockEntry
	if err := scoped(r.db.WithContext(ctx), scope).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAll returns a page of ledger entries
func (r *GormStockEntryRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[stock.StockEntry], error) {
	base := scoped(r.db.WithContext(ctx).Model(&stock.StockEntry{}), scope)

	if itemID, ok := filter.Filters["item_id"]; ok {
		base = base.Where("item_id = ?", itemID)
	}
	if refType, ok := filter.Filters["reference_type"]; ok {
		base = base.Where("reference_type = ?", refType)
	}
	if partyID, ok := filter.Filters["party_id"]; ok {
		base = base.Where("party_id = ?", partyID)
	}
	if dateFrom, ok := filter.Filters["date_from"]; ok {
		base = base.Where("entry_date >= ?", dateFrom)
	}
	if dateTo, ok := filter.Filters["date_to"]; ok {
		base = base.Where("entry_date <= ?", dateTo)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []stock.StockEntry
	if err := applyPagination(applyOrdering(base, filter), filter).Find(&entries).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(entries, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Balance returns one item's signed ledger sum
func (r *GormStockEntryRepository) Balance(ctx context.Context, scope shared.Scope, itemID uuid.UUID, asOf *time.Time) (decimal.Decimal, error) {
	query := scoped(r.db.WithContext(ctx).Model(&stock.StockEntry{}), scope).
		Where("item_id = ?", itemID)
	if asOf != nil {
		query = query.Where("entry_date <= ?", *asOf)
	}

	var balance decimal.NullDecimal
	if err := query.
		Select("SUM(CASE WHEN direction = ? THEN quantity ELSE -quantity END)", stock.DirectionIn).
		Scan(&balance).Error; err != nil {
		return decimal.Zero, err
	}
	if !balance.Valid {
		return decimal.Zero, nil
	}
	return balance.Decimal, nil
}

// Balances returns signed sums grouped by item
func (r *GormStockEntryRepository) Balances(ctx context.Context, scope shared.Scope, asOf *time.Time) ([]stock.BalanceRow, error) {
	query := scoped(r.db.WithContext(ctx).Model(&stock.StockEntry{}), scope)
	if asOf != nil {
		query = query.Where("entry_date <= ?", *asOf)
	}

	var rows []stock.BalanceRow
	if err := query.
		Select("item_id, SUM(CASE WHEN direction = ? THEN quantity ELSE -quantity END) AS balance", stock.DirectionIn).
		Group("item_id").
		Order("item_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByReference removes a source document's entries
func (r *GormStockEntryRepository) DeleteByReference(ctx context.Context, scope shared.Scope, refType stock.ReferenceType, refID uuid.UUID) error {
	return scoped(r.db.WithContext(ctx), scope).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Delete(&stock.StockEntry{}).Error
}

// DeleteForScope wipes the scope's ledger ahead of a replay
func (r *GormStockEntryRepository) DeleteForScope(ctx context.Context, scope shared.Scope, keepOpening bool) error {
	query := scoped(r.db.WithContext(ctx), scope)
	if keepOpening {
		query = query.Where("reference_type <> ?", stock.ReferenceTypeOpening)
	}
	return query.Delete(&stock.StockEntry{}).Error
}

// Ensure GormStockEntryRepository implements StockEntryRepository
var _ stock.StockEntryRepository = (*GormStockEntryRepository)(nil)
