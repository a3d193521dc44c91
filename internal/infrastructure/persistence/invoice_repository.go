package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jobwork/backend/internal/domain/billing"
	"github.com/jobwork/backend/internal/domain/jobwork"
	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/shared/valueobject"
)

// invoiceNumberPrefix is the document series for invoices
const invoiceNumberPrefix = "INV-"

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByInvoiceNumber finds an invoice by its document number
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, scope shared.Scope, invoiceNumber string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		Where("invoice_number = ?", invoiceNumber).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll returns a page of invoices with their lines
func (r *GormInvoiceRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	base := scoped(r.db.WithContext(ctx).Model(&billing.Invoice{}), scope)
	base = applyDocumentFilters(base, filter, "invoice_date")
	if filter.Search != "" {
		base = base.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var invoices []billing.Invoice
	query := applyPagination(applyOrdering(base, filter), filter).Preload("Lines")
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindAllWithLines returns every invoice in the scope, lines preloaded
func (r *GormInvoiceRepository) FindAllWithLines(ctx context.Context, scope shared.Scope) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	if err := scoped(r.db.WithContext(ctx), scope).
		Preload("Lines").
		Order("invoice_date ASC, created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice and replaces removed lines
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(invoice).Error; err != nil {
			return err
		}

		currentLineIDs := make([]uuid.UUID, len(invoice.Lines))
		for i, line := range invoice.Lines {
			currentLineIDs[i] = line.ID
		}

		if len(currentLineIDs) > 0 {
			if err := tx.Where("invoice_id = ? AND id NOT IN ?", invoice.ID, currentLineIDs).
				Delete(&billing.InvoiceLine{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("invoice_id = ?", invoice.ID).
				Delete(&billing.InvoiceLine{}).Error; err != nil {
				return err
			}
		}

		for i := range invoice.Lines {
			invoice.Lines[i].InvoiceID = invoice.ID
			if err := tx.Save(&invoice.Lines[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes an invoice and its lines
func (r *GormInvoiceRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice billing.Invoice
		if err := scoped(tx, scope).First(&invoice, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("invoice_id = ?", id).Delete(&billing.InvoiceLine{}).Error; err != nil {
			return err
		}

		result := scoped(tx, scope).Delete(&billing.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// BilledSplits aggregates the already-billed bucket quantities per delivery
// line across all non-cancelled invoices in the scope.
//
// An invoice line can settle several delivery lines at once (a merged
// pending pool), so its buckets are walked back across the referenced
// delivery lines in stored order, each line absorbing up to its own
// delivered bucket quantity. The distribution is deterministic and matches
// how the pool was assembled.
func (r *GormInvoiceRepository) BilledSplits(ctx context.Context, scope shared.Scope, excludeInvoiceID *uuid.UUID) (map[uuid.UUID]valueobject.QualitySplit, error) {
	query := r.db.WithContext(ctx).
		Model(&billing.InvoiceLine{}).
		Joins("JOIN invoices ON invoices.id = invoice_lines.invoice_id").
		Where("invoices.company_id = ? AND invoices.fiscal_year_id = ?", scope.CompanyID, scope.FiscalYearID).
		Where("invoices.status <> ?", billing.InvoiceStatusCancelled).
		Where("invoice_lines.delivery_id IS NOT NULL")
	if excludeInvoiceID != nil {
		query = query.Where("invoice_lines.invoice_id <> ?", *excludeInvoiceID)
	}

	var invoiceLines []billing.InvoiceLine
	if err := query.Find(&invoiceLines).Error; err != nil {
		return nil, err
	}

	// Collect every referenced delivery line and load its delivered split
	refIDs := make([]uuid.UUID, 0, len(invoiceLines))
	seen := make(map[uuid.UUID]bool)
	for _, il := range invoiceLines {
		for _, id := range lineRefs(&il) {
			if !seen[id] {
				seen[id] = true
				refIDs = append(refIDs, id)
			}
		}
	}

	billed := make(map[uuid.UUID]valueobject.QualitySplit, len(refIDs))
	if len(refIDs) == 0 {
		return billed, nil
	}

	var deliveryLines []jobwork.DeliveryLine
	if err := r.db.WithContext(ctx).
		Where("id IN ?", refIDs).
		Find(&deliveryLines).Error; err != nil {
		return nil, err
	}
	delivered := make(map[uuid.UUID]valueobject.QualitySplit, len(deliveryLines))
	for _, dl := range deliveryLines {
		delivered[dl.ID] = dl.Split()
	}

	for _, il := range invoiceLines {
		distributeBilled(&il, delivered, billed)
	}
	return billed, nil
}

// lineRefs returns the delivery line IDs an invoice line settles
func lineRefs(il *billing.InvoiceLine) []uuid.UUID {
	if len(il.DeliveryLineIDs) > 0 {
		return il.DeliveryLineIDs
	}
	if il.DeliveryLineID != nil {
		return []uuid.UUID{*il.DeliveryLineID}
	}
	return nil
}

// distributeBilled walks an invoice line's bucket quantities across the
// delivery lines it references, capping each at the line's delivered split
func distributeBilled(il *billing.InvoiceLine, delivered, billed map[uuid.UUID]valueobject.QualitySplit) {
	remOk, remCr, remMr := il.OkQty, il.CrQty, il.MrQty
	refs := lineRefs(il)
	for i, lineID := range refs {
		limit, ok := delivered[lineID]
		if !ok {
			continue
		}
		prior := billed[lineID]

		takeOk := decimal.Min(remOk, decimal.Max(limit.OK().Sub(prior.OK()), decimal.Zero))
		takeCr := decimal.Min(remCr, decimal.Max(limit.CR().Sub(prior.CR()), decimal.Zero))
		takeMr := decimal.Min(remMr, decimal.Max(limit.MR().Sub(prior.MR()), decimal.Zero))

		// The last referenced line takes whatever is left, including any
		// excess beyond its delivered split (over-billing is clamped later
		// by the pending computation).
		if i == len(refs)-1 {
			takeOk, takeCr, takeMr = remOk, remCr, remMr
		}

		billed[lineID] = prior.Add(valueobject.MustNewQualitySplit(takeOk, takeCr, takeMr))
		remOk = remOk.Sub(takeOk)
		remCr = remCr.Sub(takeCr)
		remMr = remMr.Sub(takeMr)

		if remOk.IsZero() && remCr.IsZero() && remMr.IsZero() {
			break
		}
	}
}

// ExistsForDelivery reports whether any invoice line settles the delivery
func (r *GormInvoiceRepository) ExistsForDelivery(ctx context.Context, scope shared.Scope, deliveryID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.InvoiceLine{}).
		Joins("JOIN invoices ON invoices.id = invoice_lines.invoice_id").
		Where("invoices.company_id = ? AND invoices.fiscal_year_id = ?", scope.CompanyID, scope.FiscalYearID).
		Where("invoice_lines.delivery_id = ?", deliveryID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateInvoiceNumber produces the next INV-NNN number within the scope
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, scope shared.Scope) (string, error) {
	return generateDocumentNumber(ctx, scoped(r.db.WithContext(ctx), scope).Model(&billing.Invoice{}), "invoice_number", invoiceNumberPrefix)
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)

// GormPaymentAllocationRepository implements PaymentAllocationRepository using GORM
type GormPaymentAllocationRepository struct {
	db *gorm.DB
}

// NewGormPaymentAllocationRepository creates a new GormPaymentAllocationRepository
func NewGormPaymentAllocationRepository(db *gorm.DB) *GormPaymentAllocationRepository {
	return &GormPaymentAllocationRepository{db: db}
}

// ExistsForInvoice reports whether any payment is allocated to the invoice
func (r *GormPaymentAllocationRepository) ExistsForInvoice(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID) (bool, error) {
	var count int64
	if err := scoped(r.db.WithContext(ctx).Model(&billing.PaymentAllocation{}), scope).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByInvoice returns the payment allocations against an invoice
func (r *GormPaymentAllocationRepository) FindByInvoice(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID) ([]billing.PaymentAllocation, error) {
	var allocations []billing.PaymentAllocation
	if err := scoped(r.db.WithContext(ctx), scope).
		Where("invoice_id = ?", invoiceID).
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// Ensure GormPaymentAllocationRepository implements PaymentAllocationRepository
var _ billing.PaymentAllocationRepository = (*GormPaymentAllocationRepository)(nil)
