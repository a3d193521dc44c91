package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	jobworkapp "github.com/jobwork/backend/internal/application/jobwork"
	"github.com/jobwork/backend/internal/domain/billing"
	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/shared/valueobject"
	"github.com/jobwork/backend/internal/domain/stock"
)

// InvoiceService handles invoice operations. Writes run in a transaction
// scope: the pending pools are recomputed, direct-sale ledger entries are
// written and the billing display status of the settled deliveries is
// refreshed atomically with the invoice itself.
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	txScope     jobworkapp.TransactionScope
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo billing.InvoiceRepository, txScope jobworkapp.TransactionScope, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// Create bills pending pools and direct sales on a new invoice
func (s *InvoiceService) Create(ctx context.Context, scope shared.Scope, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	var response InvoiceResponse

	err := s.txScope.Execute(ctx, func(repos jobworkapp.TransactionalRepositories) error {
		invoiceNumber := req.InvoiceNumber
		if invoiceNumber == "" {
			var err error
			invoiceNumber, err = repos.InvoiceRepo().GenerateInvoiceNumber(ctx, scope)
			if err != nil {
				return err
			}
		} else {
			if _, err := repos.InvoiceRepo().FindByInvoiceNumber(ctx, scope, invoiceNumber); err == nil {
				return shared.ErrAlreadyExists
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		invoice, err := billing.NewInvoice(scope, invoiceNumber, req.PartyID, req.InvoiceDate)
		if err != nil {
			return err
		}
		invoice.Notes = req.Notes

		pools, err := s.computePools(ctx, repos, scope, &req.PartyID, nil)
		if err != nil {
			return err
		}
		if err := s.buildLines(ctx, repos, scope, invoice, req.Lines, pools); err != nil {
			return err
		}
		if req.Issue {
			if err := invoice.Issue(); err != nil {
				return err
			}
		}

		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}
		if err := s.writeDirectSaleEntries(ctx, repos, invoice); err != nil {
			return err
		}
		if err := s.refreshDeliveryStatuses(ctx, repos, scope, settledDeliveryIDs(invoice, nil)); err != nil {
			return err
		}

		response = ToInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Update rebuilds the invoice's lines. The original direct-sale ledger
// entries are compensated with IN entries before the new OUT entries are
// written, so the ledger keeps a trace of the correction.
func (s *InvoiceService) Update(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	var response InvoiceResponse

	err := s.txScope.Execute(ctx, func(repos jobworkapp.TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByID(ctx, scope, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status == billing.InvoiceStatusCancelled {
			return shared.ErrInvalidState
		}
		previousDeliveries := settledDeliveryIDs(invoice, nil)

		if err := s.writeRevertEntries(ctx, repos, scope, invoice); err != nil {
			return err
		}

		if !req.InvoiceDate.IsZero() {
			invoice.InvoiceDate = req.InvoiceDate
		}
		invoice.Notes = req.Notes
		invoice.Lines = invoice.Lines[:0]

		pools, err := s.computePools(ctx, repos, scope, &invoice.PartyID, &invoice.ID)
		if err != nil {
			return err
		}
		if err := s.buildLines(ctx, repos, scope, invoice, req.Lines, pools); err != nil {
			return err
		}
		invoice.RecalculateTotal()

		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}
		if err := s.writeDirectSaleEntries(ctx, repos, invoice); err != nil {
			return err
		}
		if err := s.refreshDeliveryStatuses(ctx, repos, scope, settledDeliveryIDs(invoice, previousDeliveries)); err != nil {
			return err
		}

		response = ToInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Delete removes an invoice with no payments allocated against it. Its
// ledger entries, reverts included, are removed outright and the settled
// deliveries fall back to the unbilled display status.
func (s *InvoiceService) Delete(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos jobworkapp.TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByID(ctx, scope, invoiceID)
		if err != nil {
			return err
		}

		paid, err := repos.PaymentAllocationRepo().ExistsForInvoice(ctx, scope, invoiceID)
		if err != nil {
			return err
		}
		if paid {
			return shared.ErrConflict
		}

		if err := repos.StockEntryRepo().DeleteByReference(ctx, scope, stock.ReferenceTypeInvoice, invoiceID); err != nil {
			return err
		}
		if err := repos.StockEntryRepo().DeleteByReference(ctx, scope, stock.ReferenceTypeInvoiceRevert, invoiceID); err != nil {
			return err
		}

		affected := settledDeliveryIDs(invoice, nil)
		if err := repos.InvoiceRepo().Delete(ctx, scope, invoiceID); err != nil {
			return err
		}
		return s.refreshDeliveryStatuses(ctx, repos, scope, affected)
	})
}

// GetByID retrieves an invoice
func (s *InvoiceService) GetByID(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, scope, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[InvoiceResponse], error) {
	result, err := s.invoiceRepo.FindAll(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	items := make([]InvoiceResponse, 0, len(result.Items))
	for idx := range result.Items {
		items = append(items, ToInvoiceResponse(&result.Items[idx]))
	}
	page := shared.NewPaginated(items, result.Total, result.Page, result.PageSize)
	return &page, nil
}

// computePools reconciles the party's deliveries against billed quantities
// using the transactional repositories
func (s *InvoiceService) computePools(ctx context.Context, repos jobworkapp.TransactionalRepositories, scope shared.Scope, partyID *uuid.UUID, excludeInvoiceID *uuid.UUID) ([]billing.PendingPool, error) {
	deliveries, err := repos.DeliveryRepo().FindWithLinesByParty(ctx, scope, partyID)
	if err != nil {
		return nil, err
	}
	sources, err := BuildPendingSources(ctx, repos.IntakeOrderRepo(), repos.ItemRepo(), scope, deliveries)
	if err != nil {
		return nil, err
	}
	billed, err := repos.InvoiceRepo().BilledSplits(ctx, scope, excludeInvoiceID)
	if err != nil {
		return nil, err
	}
	return billing.ComputePendingPools(sources, billed), nil
}

// buildLines turns the requested lines into invoice lines. Delivery-backed
// lines draw from their pending pool and have missing bucket quantities
// backfilled from the pool's remainder; direct-sale lines need an explicit
// item and bill against stock.
func (s *InvoiceService) buildLines(ctx context.Context, repos jobworkapp.TransactionalRepositories, scope shared.Scope, invoice *billing.Invoice, lines []InvoiceLineRequest, pools []billing.PendingPool) error {
	for _, req := range lines {
		if req.DeliveryID == nil {
			if err := s.buildDirectSaleLine(ctx, repos, scope, invoice, req); err != nil {
				return err
			}
			continue
		}

		pool := matchPool(pools, req)
		if pool == nil {
			return shared.NewDomainError("NO_PENDING_QUANTITY", "Delivery has no pending quantity matching the line")
		}

		split, err := resolveSplit(req, pool)
		if err != nil {
			return err
		}
		rate := pool.Rate
		if req.Rate != nil {
			rate = *req.Rate
		}
		line, err := billing.NewInvoiceLine(invoice.ID, pool.ItemID, req.Quantity, split, rate)
		if err != nil {
			return err
		}
		line.WithDelivery(pool.DeliveryID, pool.DeliveryLineIDs)
		invoice.AddLine(line)
	}
	return nil
}

// buildDirectSaleLine bills goods that never went through a delivery
func (s *InvoiceService) buildDirectSaleLine(ctx context.Context, repos jobworkapp.TransactionalRepositories, scope shared.Scope, invoice *billing.Invoice, req InvoiceLineRequest) error {
	if req.ItemID == nil {
		return shared.NewDomainError("INVALID_ITEM", "Direct sale lines need an item")
	}
	item, err := repos.ItemRepo().FindByID(ctx, scope, *req.ItemID)
	if err != nil {
		return err
	}
	rate := item.Rate
	if req.Rate != nil {
		rate = *req.Rate
	}
	split := valueobject.MustNewQualitySplit(req.Quantity, decimal.Zero, decimal.Zero)
	if req.OkQty != nil || req.CrQty != nil || req.MrQty != nil {
		split, err = valueobject.NewQualitySplit(orZero(req.OkQty), orZero(req.CrQty), orZero(req.MrQty))
		if err != nil {
			return shared.ErrInvariantViolation
		}
	}
	line, err := billing.NewInvoiceLine(invoice.ID, item.ID, req.Quantity, split, rate)
	if err != nil {
		return err
	}
	invoice.AddLine(line)
	return nil
}

// writeDirectSaleEntries appends one OUT entry per direct-sale line
func (s *InvoiceService) writeDirectSaleEntries(ctx context.Context, repos jobworkapp.TransactionalRepositories, invoice *billing.Invoice) error {
	entries := make([]*stock.StockEntry, 0)
	for _, line := range invoice.Lines {
		if !line.IsDirectSale() {
			continue
		}
		entry, err := stock.NewStockEntry(invoice.Scope, line.ItemID, stock.EntryKindDirectSale, invoice.ID, line.Quantity, invoice.InvoiceDate)
		if err != nil {
			return err
		}
		entry.WithParty(invoice.PartyID)
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil
	}
	return repos.StockEntryRepo().CreateBatch(ctx, entries)
}

// writeRevertEntries compensates the invoice's outstanding direct-sale OUT
// entries with IN entries referencing the same invoice. OUT entries already
// matched by a revert from an earlier correction are skipped, so repeated
// updates never compensate the same quantity twice.
func (s *InvoiceService) writeRevertEntries(ctx context.Context, repos jobworkapp.TransactionalRepositories, scope shared.Scope, invoice *billing.Invoice) error {
	existing, err := repos.StockEntryRepo().FindByReference(ctx, scope, stock.ReferenceTypeInvoice, invoice.ID)
	if err != nil {
		return err
	}
	reverted, err := repos.StockEntryRepo().FindByReference(ctx, scope, stock.ReferenceTypeInvoiceRevert, invoice.ID)
	if err != nil {
		return err
	}
	compensated := make(map[uuid.UUID]decimal.Decimal)
	for _, entry := range reverted {
		compensated[entry.ItemID] = compensated[entry.ItemID].Add(entry.Quantity)
	}
	reverts := make([]*stock.StockEntry, 0, len(existing))
	for _, entry := range existing {
		quantity := entry.Quantity
		if done := compensated[entry.ItemID]; done.IsPositive() {
			if done.GreaterThanOrEqual(quantity) {
				compensated[entry.ItemID] = done.Sub(quantity)
				continue
			}
			quantity = quantity.Sub(done)
			compensated[entry.ItemID] = decimal.Zero
		}
		revert, err := stock.NewStockEntry(scope, entry.ItemID, stock.EntryKindInvoiceRevert, invoice.ID, quantity, invoice.InvoiceDate)
		if err != nil {
			return err
		}
		if entry.PartyID != nil {
			revert.WithParty(*entry.PartyID)
		}
		reverts = append(reverts, revert)
	}
	if len(reverts) == 0 {
		return nil
	}
	s.logger.Info("compensating direct sale ledger entries",
		zap.String("invoice_id", invoice.ID.String()),
		zap.Int("entries", len(reverts)))
	return repos.StockEntryRepo().CreateBatch(ctx, reverts)
}

// refreshDeliveryStatuses recomputes the billing display status of the
// given deliveries: fully billed deliveries show DELIVERED, the rest SENT
func (s *InvoiceService) refreshDeliveryStatuses(ctx context.Context, repos jobworkapp.TransactionalRepositories, scope shared.Scope, deliveryIDs []uuid.UUID) error {
	if len(deliveryIDs) == 0 {
		return nil
	}
	deliveries, err := repos.DeliveryRepo().FindByIDs(ctx, scope, deliveryIDs)
	if err != nil {
		return err
	}
	sources, err := BuildPendingSources(ctx, repos.IntakeOrderRepo(), repos.ItemRepo(), scope, deliveries)
	if err != nil {
		return err
	}
	billed, err := repos.InvoiceRepo().BilledSplits(ctx, scope, nil)
	if err != nil {
		return err
	}
	pending := make(map[uuid.UUID]struct{})
	for _, pool := range billing.ComputePendingPools(sources, billed) {
		pending[pool.DeliveryID] = struct{}{}
	}
	for idx := range deliveries {
		delivery := &deliveries[idx]
		if _, open := pending[delivery.ID]; open {
			delivery.MarkSent()
		} else {
			delivery.MarkDelivered()
		}
		if err := repos.DeliveryRepo().Save(ctx, delivery); err != nil {
			return err
		}
	}
	return nil
}

// matchPool finds the pending pool a requested line draws from. The
// delivery is the anchor; item and rate narrow it down when given.
func matchPool(pools []billing.PendingPool, req InvoiceLineRequest) *billing.PendingPool {
	for idx := range pools {
		pool := &pools[idx]
		if pool.DeliveryID != *req.DeliveryID {
			continue
		}
		if req.ItemID != nil && pool.ItemID != *req.ItemID {
			continue
		}
		if req.Rate != nil && !pool.Rate.Equal(*req.Rate) {
			continue
		}
		return pool
	}
	return nil
}

// resolveSplit uses the requested bucket quantities when present, or
// backfills them from the pool's remainder: accepted quantity first, then
// rejects, with any excess billed as rework. Billing a whole pool this way
// yields exactly the pool's own bucket totals; a partial bill without
// explicit buckets greedily drains the better grades first, and the
// quantity must still equal ok+cr+mr on the resulting line.
func resolveSplit(req InvoiceLineRequest, pool *billing.PendingPool) (valueobject.QualitySplit, error) {
	if req.OkQty != nil || req.CrQty != nil || req.MrQty != nil {
		split, err := valueobject.NewQualitySplit(orZero(req.OkQty), orZero(req.CrQty), orZero(req.MrQty))
		if err != nil {
			return valueobject.QualitySplit{}, shared.ErrInvariantViolation
		}
		return split, nil
	}

	ok := decimal.Min(req.Quantity, pool.OkQty)
	cr := decimal.Min(req.Quantity.Sub(ok), pool.CrQty)
	mr := req.Quantity.Sub(ok).Sub(cr)
	return valueobject.NewQualitySplit(ok, cr, mr)
}

// orZero dereferences an optional decimal
func orZero(value *decimal.Decimal) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return *value
}

// settledDeliveryIDs unions the delivery references of the invoice's
// current lines with a previous set
func settledDeliveryIDs(invoice *billing.Invoice, previous []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	out := make([]uuid.UUID, 0)
	for _, line := range invoice.Lines {
		if line.DeliveryID == nil {
			continue
		}
		if _, ok := seen[*line.DeliveryID]; !ok {
			seen[*line.DeliveryID] = struct{}{}
			out = append(out, *line.DeliveryID)
		}
	}
	for _, id := range previous {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
