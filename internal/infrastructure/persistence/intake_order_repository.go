package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobwork/backend/internal/domain/jobwork"
	"github.com/jobwork/backend/internal/domain/shared"
)

// intakeOrderNumberPrefix is the document series for intake orders
const intakeOrderNumberPrefix = "PC-"

// GormIntakeOrderRepository implements IntakeOrderRepository using GORM
type GormIntakeOrderRepository struct {
	db *gorm.DB
}

// NewGormIntakeOrderRepository creates a new GormIntakeOrderRepository
func NewGormIntakeOrderRepository(db *gorm.DB) *GormIntakeOrderRepository {
	return &GormIntakeOrderRepository{db: db}
}

// FindByID finds an intake order with its lines
func (r *GormIntakeOrderRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*jobwork.IntakeOrder, error) {
	var order jobwork.IntakeOrder
	if err := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an intake order by its document number
func (r *GormIntakeOrderRepository) FindByOrderNumber(ctx context.Context, scope shared.Scope, orderNumber string) (*jobwork.IntakeOrder, error) {
	var order jobwork.IntakeOrder
	if err := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll returns a page of intake orders with their lines
func (r *GormIntakeOrderRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[jobwork.IntakeOrder], error) {
	base := scoped(r.db.WithContext(ctx).Model(&jobwork.IntakeOrder{}), scope)
	base = applyDocumentFilters(base, filter, "order_date")
	if filter.Search != "" {
		base = base.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var orders []jobwork.IntakeOrder
	query := applyPagination(applyOrdering(base, filter), filter).Preload("Lines")
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindAllWithLines returns every intake order in the scope, lines preloaded.
// The recompute replay walks this.
func (r *GormIntakeOrderRepository) FindAllWithLines(ctx context.Context, scope shared.Scope) ([]jobwork.IntakeOrder, error) {
	var orders []jobwork.IntakeOrder
	if err := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		Order("order_date ASC, created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindLineByID finds one intake order line, checking the parent's scope
func (r *GormIntakeOrderRepository) FindLineByID(ctx context.Context, scope shared.Scope, lineID uuid.UUID) (*jobwork.IntakeOrderLine, error) {
	var line jobwork.IntakeOrderLine
	if err := r.db.WithContext(ctx).
		Joins("JOIN intake_orders ON intake_orders.id = intake_order_lines.order_id").
		Where("intake_orders.company_id = ? AND intake_orders.fiscal_year_id = ?", scope.CompanyID, scope.FiscalYearID).
		Where("intake_order_lines.id = ?", lineID).
		First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}

// FindLinesByIDs finds intake order lines by ID within the scope
func (r *GormIntakeOrderRepository) FindLinesByIDs(ctx context.Context, scope shared.Scope, lineIDs []uuid.UUID) ([]jobwork.IntakeOrderLine, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}
	var lines []jobwork.IntakeOrderLine
	if err := r.db.WithContext(ctx).
		Joins("JOIN intake_orders ON intake_orders.id = intake_order_lines.order_id").
		Where("intake_orders.company_id = ? AND intake_orders.fiscal_year_id = ?", scope.CompanyID, scope.FiscalYearID).
		Where("intake_order_lines.id IN ?", lineIDs).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// Save creates or updates an intake order and replaces removed lines
func (r *GormIntakeOrderRepository) Save(ctx context.Context, order *jobwork.IntakeOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(order).Error; err != nil {
			return err
		}

		currentLineIDs := make([]uuid.UUID, len(order.Lines))
		for i, line := range order.Lines {
			currentLineIDs[i] = line.ID
		}

		if len(currentLineIDs) > 0 {
			if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentLineIDs).
				Delete(&jobwork.IntakeOrderLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("order_id = ?", order.ID).
				Delete(&jobwork.IntakeOrderLine{}).Error; err != nil {
				return err
			}
		}

		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			if err := tx.Save(&order.Lines[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes an intake order and its lines
func (r *GormIntakeOrderRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order jobwork.IntakeOrder
		if err := scoped(tx, scope).First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("order_id = ?", id).Delete(&jobwork.IntakeOrderLine{}).Error; err != nil {
			return err
		}

		result := scoped(tx, scope).Delete(&jobwork.IntakeOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GenerateOrderNumber produces the next PC-NNN number within the scope.
// Format: PC-NNN with at least three digits (e.g. PC-001, PC-042, PC-1205).
func (r *GormIntakeOrderRepository) GenerateOrderNumber(ctx context.Context, scope shared.Scope) (string, error) {
	return generateDocumentNumber(ctx, scoped(r.db.WithContext(ctx), scope).Model(&jobwork.IntakeOrder{}), "order_number", intakeOrderNumberPrefix)
}

// generateDocumentNumber finds the highest numeric suffix of the series and
// returns prefix plus the next value. A bounded retry loop resolves races
// where two writers pick the same number.
func generateDocumentNumber(_ context.Context, base *gorm.DB, column, prefix string) (string, error) {
	// Fresh session per query so chained conditions do not accumulate
	query := base.Session(&gorm.Session{})

	var last string
	err := query.
		Where(column+" LIKE ?", prefix+"%").
		Order("LENGTH(" + column + ") DESC, " + column + " DESC").
		Limit(1).
		Pluck(column, &last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if last != "" {
		var num int64
		if _, parseErr := fmt.Sscanf(last[len(prefix):], "%d", &num); parseErr == nil {
			nextNum = num + 1
		}
	}

	number := fmt.Sprintf("%s%03d", prefix, nextNum)

	// Verify uniqueness; increment on collision up to a bound
	for i := 0; i < 100; i++ {
		var count int64
		if err := base.Session(&gorm.Session{}).Where(column+" = ?", number).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
		nextNum++
		number = fmt.Sprintf("%s%03d", prefix, nextNum)
	}

	return "", shared.ErrDuplicateNumber
}

// Ensure GormIntakeOrderRepository implements IntakeOrderRepository
var _ jobwork.IntakeOrderRepository = (*GormIntakeOrderRepository)(nil)
