package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jobwork/backend/internal/domain/jobwork"
	"github.com/jobwork/backend/internal/domain/shared"
)

// deliveryChallanNumberPrefix is the document series for delivery challans
const deliveryChallanNumberPrefix = "DC-"

// GormDeliveryRepository implements DeliveryRepository using GORM
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GormDeliveryRepository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// FindByID finds a delivery with its lines
func (r *GormDeliveryRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*jobwork.Delivery, error) {
	var delivery jobwork.Delivery
	if err := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		First(&delivery, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &delivery, nil
}

// FindByChallanNumber finds a delivery by challan number. Challan numbers
// are unique per party, not per scope: parties hand in their own series.
func (r *GormDeliveryRepository) FindByChallanNumber(ctx context.Context, scope shared.Scope, partyID uuid.UUID, challanNumber string) (*jobwork.Delivery, error) {
	var delivery jobwork.Delivery
	if err := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		Where("party_id = ? AND challan_number = ?", partyID, challanNumber).
		First(&delivery).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &delivery, nil
}

// FindAll returns a page of deliveries with their lines
func (r *GormDeliveryRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[jobwork.Delivery], error) {
	base := scoped(r.db.WithContext(ctx).Model(&jobwork.Delivery{}), scope)
	base = applyDocumentFilters(base, filter, "challan_date")
	if filter.Search != "" {
		base = base.Where("challan_number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var deliveries []jobwork.Delivery
	query := applyPagination(applyOrdering(base, filter), filter).Preload("Lines")
	if err := query.Find(&deliveries).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(deliveries, total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindByIDs finds deliveries by ID within the scope, lines preloaded
func (r *GormDeliveryRepository) FindByIDs(ctx context.Context, scope shared.Scope, ids []uuid.UUID) ([]jobwork.Delivery, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var deliveries []jobwork.Delivery
	if err := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		Where("id IN ?", ids).
		Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

// FindByIntakeOrder finds deliveries with at least one line against the order
func (r *GormDeliveryRepository) FindByIntakeOrder(ctx context.Context, scope shared.Scope, orderID uuid.UUID) ([]jobwork.Delivery, error) {
	var deliveries []jobwork.Delivery
	if err := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		Where("id IN (?)", r.db.Model(&jobwork.DeliveryLine{}).
			Select("delivery_id").
			Where("intake_order_id = ?", orderID)).
		Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

// FindWithLinesByParty returns deliveries with lines, optionally narrowed
// to one party. The pending-pool computation walks this in challan order.
func (r *GormDeliveryRepository) FindWithLinesByParty(ctx context.Context, scope shared.Scope, partyID *uuid.UUID) ([]jobwork.Delivery, error) {
	query := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		Order("challan_date ASC, created_at ASC")
	if partyID != nil {
		query = query.Where("party_id = ?", *partyID)
	}
	var deliveries []jobwork.Delivery
	if err := query.Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

// FindLinesByIDs finds delivery lines by ID within the scope
func (r *GormDeliveryRepository) FindLinesByIDs(ctx context.Context, scope shared.Scope, lineIDs []uuid.UUID) ([]jobwork.DeliveryLine, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}
	var lines []jobwork.DeliveryLine
	if err := r.db.WithContext(ctx).
		Joins("JOIN deliveries ON deliveries.id = delivery_lines.delivery_id").
		Where("deliveries.company_id = ? AND deliveries.fiscal_year_id = ?", scope.CompanyID, scope.FiscalYearID).
		Where("delivery_lines.id IN ?", lineIDs).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// Save creates or updates a delivery and replaces removed lines
func (r *GormDeliveryRepository) Save(ctx context.Context, delivery *jobwork.Delivery) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(delivery).Error; err != nil {
			return err
		}

		currentLineIDs := make([]uuid.UUID, len(delivery.Lines))
		for i, line := range delivery.Lines {
			currentLineIDs[i] = line.ID
		}

		if len(currentLineIDs) > 0 {
			if err := tx.Where("delivery_id = ? AND id NOT IN ?", delivery.ID, currentLineIDs).
				Delete(&jobwork.DeliveryLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("delivery_id = ?", delivery.ID).
				Delete(&jobwork.DeliveryLine{}).Error; err != nil {
				return err
			}
		}

		for i := range delivery.Lines {
			delivery.Lines[i].DeliveryID = delivery.ID
			if err := tx.Save(&delivery.Lines[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes a delivery and its lines
func (r *GormDeliveryRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var delivery jobwork.Delivery
		if err := scoped(tx, scope).First(&delivery, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("delivery_id = ?", id).Delete(&jobwork.DeliveryLine{}).Error; err != nil {
			return err
		}

		result := scoped(tx, scope).Delete(&jobwork.Delivery{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// SumDeliveredByIntakeLines re-sums delivered quantity per intake order line
// from the stored delivery lines. Lines with no deliveries left are absent
// from the result; callers treat that as zero.
func (r *GormDeliveryRepository) SumDeliveredByIntakeLines(ctx context.Context, scope shared.Scope, intakeLineIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(intakeLineIDs))
	if len(intakeLineIDs) == 0 {
		return out, nil
	}

	type row struct {
		IntakeOrderLineID uuid.UUID
		Total             decimal.Decimal
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&jobwork.DeliveryLine{}).
		Select("delivery_lines.intake_order_line_id, SUM(delivery_lines.quantity) AS total").
		Joins("JOIN deliveries ON deliveries.id = delivery_lines.delivery_id").
		Where("deliveries.company_id = ? AND deliveries.fiscal_year_id = ?", scope.CompanyID, scope.FiscalYearID).
		Where("delivery_lines.intake_order_line_id IN ?", intakeLineIDs).
		Group("delivery_lines.intake_order_line_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		out[r.IntakeOrderLineID] = r.Total
	}
	return out, nil
}

// ExistsForIntakeOrder reports whether any delivery line references the order
func (r *GormDeliveryRepository) ExistsForIntakeOrder(ctx context.Context, scope shared.Scope, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&jobwork.DeliveryLine{}).
		Joins("JOIN deliveries ON deliveries.id = delivery_lines.delivery_id").
		Where("deliveries.company_id = ? AND deliveries.fiscal_year_id = ?", scope.CompanyID, scope.FiscalYearID).
		Where("delivery_lines.intake_order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateChallanNumber produces the next DC-NNN number within the scope
func (r *GormDeliveryRepository) GenerateChallanNumber(ctx context.Context, scope shared.Scope) (string, error) {
	return generateDocumentNumber(ctx, scoped(r.db.WithContext(ctx), scope).Model(&jobwork.Delivery{}), "challan_number", deliveryChallanNumberPrefix)
}

// Ensure GormDeliveryRepository implements DeliveryRepository
var _ jobwork.DeliveryRepository = (*GormDeliveryRepository)(nil)
