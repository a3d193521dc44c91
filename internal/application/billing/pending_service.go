package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/billing"
	"github.com/jobwork/backend/internal/domain/catalog"
	"github.com/jobwork/backend/internal/domain/jobwork"
	"github.com/jobwork/backend/internal/domain/shared"
)

// PendingService computes the pending-to-bill pools: delivered quantities
// reconciled against what invoices already billed, grouped per delivery,
// item and rate.
type PendingService struct {
	deliveryRepo jobwork.DeliveryRepository
	intakeRepo   jobwork.IntakeOrderRepository
	itemRepo     catalog.ItemRepository
	invoiceRepo  billing.InvoiceRepository
}

// NewPendingService creates a new PendingService
func NewPendingService(
	deliveryRepo jobwork.DeliveryRepository,
	intakeRepo jobwork.IntakeOrderRepository,
	itemRepo catalog.ItemRepository,
	invoiceRepo billing.InvoiceRepository,
) *PendingService {
	return &PendingService{
		deliveryRepo: deliveryRepo,
		intakeRepo:   intakeRepo,
		itemRepo:     itemRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// ListPending returns the billable pools, optionally for one party.
// Passing excludeInvoiceID leaves that invoice's billed quantities out of
// the reconciliation, so an invoice under edit sees its own quantities as
// still available.
func (s *PendingService) ListPending(ctx context.Context, scope shared.Scope, partyID *uuid.UUID, excludeInvoiceID *uuid.UUID) ([]billing.PendingPool, error) {
	deliveries, err := s.deliveryRepo.FindWithLinesByParty(ctx, scope, partyID)
	if err != nil {
		return nil, err
	}
	sources, err := BuildPendingSources(ctx, s.intakeRepo, s.itemRepo, scope, deliveries)
	if err != nil {
		return nil, err
	}
	billed, err := s.invoiceRepo.BilledSplits(ctx, scope, excludeInvoiceID)
	if err != nil {
		return nil, err
	}
	return billing.ComputePendingPools(sources, billed), nil
}

// BuildPendingSources flattens deliveries into pending sources with the billing
// rate resolved per line: the party rate when negotiated, then the line
// rate, the intake order line rate and the item master rate, in that order.
func BuildPendingSources(ctx context.Context, intakeRepo jobwork.IntakeOrderRepository, itemRepo catalog.ItemRepository, scope shared.Scope, deliveries []jobwork.Delivery) ([]billing.PendingSource, error) {
	intakeLineIDs := make([]uuid.UUID, 0)
	itemIDs := make([]uuid.UUID, 0)
	seenLine := make(map[uuid.UUID]struct{})
	seenItem := make(map[uuid.UUID]struct{})
	for _, delivery := range deliveries {
		for _, line := range delivery.Lines {
			if _, ok := seenLine[line.IntakeOrderLineID]; !ok {
				seenLine[line.IntakeOrderLineID] = struct{}{}
				intakeLineIDs = append(intakeLineIDs, line.IntakeOrderLineID)
			}
			if _, ok := seenItem[line.ItemID]; !ok {
				seenItem[line.ItemID] = struct{}{}
				itemIDs = append(itemIDs, line.ItemID)
			}
		}
	}

	intakeLines := make(map[uuid.UUID]jobwork.IntakeOrderLine)
	if len(intakeLineIDs) > 0 {
		lines, err := intakeRepo.FindLinesByIDs(ctx, scope, intakeLineIDs)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			intakeLines[line.ID] = line
		}
	}

	items := make(map[uuid.UUID]catalog.Item)
	if len(itemIDs) > 0 {
		found, err := itemRepo.FindByIDs(ctx, scope, itemIDs)
		if err != nil {
			return nil, err
		}
		for _, item := range found {
			items[item.ID] = item
		}
	}

	sources := make([]billing.PendingSource, 0)
	for _, delivery := range deliveries {
		for _, line := range delivery.Lines {
			var intakeRate, itemRate *decimal.Decimal
			if il, ok := intakeLines[line.IntakeOrderLineID]; ok {
				intakeRate = il.Rate
			}
			if item, ok := items[line.ItemID]; ok {
				rate := item.Rate
				itemRate = &rate
			}
			resolved := line.ResolvedRate(intakeRate, itemRate)
			if line.PartyRate != nil {
				resolved = *line.PartyRate
			}

			sources = append(sources, billing.PendingSource{
				DeliveryID:     delivery.ID,
				DeliveryLineID: line.ID,
				ChallanNumber:  delivery.ChallanNumber,
				ChallanDate:    delivery.ChallanDate,
				PartyID:        delivery.PartyID,
				ItemID:         line.ItemID,
				Rate:           resolved,
				Delivered:      line.Split(),
			})
		}
	}
	return sources, nil
}
