package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	billingapp "github.com/jobwork/backend/internal/application/billing"
	jobworkapp "github.com/jobwork/backend/internal/application/jobwork"
	"github.com/jobwork/backend/internal/domain/billing"
	"github.com/jobwork/backend/internal/domain/jobwork"
	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/stock"
)

// RecomputeResult summarizes one ledger replay
type RecomputeResult struct {
	EntriesWritten    int `json:"entries_written"`
	OrdersSettled     int `json:"orders_settled"`
	DeliveriesUpdated int `json:"deliveries_updated"`
	OrphanLines       int `json:"orphan_lines"`
}

// RecomputeService rebuilds every derived dataset of a scope from its
// source documents: the stock ledger (opening entries kept), the delivered
// counters and statuses of the intake orders, and the billing display
// status of the deliveries. The replay is destructive and idempotent;
// running it twice leaves the same state.
type RecomputeService struct {
	txScope jobworkapp.TransactionScope
	logger  *zap.Logger
}

// NewRecomputeService creates a new RecomputeService
func NewRecomputeService(txScope jobworkapp.TransactionScope, logger *zap.Logger) *RecomputeService {
	return &RecomputeService{txScope: txScope, logger: logger}
}

// Recompute replays the scope inside one transaction
func (s *RecomputeService) Recompute(ctx context.Context, scope shared.Scope) (*RecomputeResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	result := &RecomputeResult{}

	err := s.txScope.Execute(ctx, func(repos jobworkapp.TransactionalRepositories) error {
		if err := repos.StockEntryRepo().DeleteForScope(ctx, scope, true); err != nil {
			return err
		}

		orders, err := repos.IntakeOrderRepo().FindAllWithLines(ctx, scope)
		if err != nil {
			return err
		}
		deliveries, err := repos.DeliveryRepo().FindWithLinesByParty(ctx, scope, nil)
		if err != nil {
			return err
		}
		invoices, err := repos.InvoiceRepo().FindAllWithLines(ctx, scope)
		if err != nil {
			return err
		}

		if err := s.replayLedger(ctx, repos, scope, orders, deliveries, invoices, result); err != nil {
			return err
		}
		if err := s.settleOrders(ctx, repos, scope, orders, deliveries, result); err != nil {
			return err
		}
		return s.refreshDeliveries(ctx, repos, scope, deliveries, result)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock ledger recomputed",
		zap.String("company_id", scope.CompanyID.String()),
		zap.Int("entries_written", result.EntriesWritten),
		zap.Int("orders_settled", result.OrdersSettled),
		zap.Int("orphan_lines", result.OrphanLines))
	return result, nil
}

// replayLedger rewrites the derived ledger entries from the documents
func (s *RecomputeService) replayLedger(ctx context.Context, repos jobworkapp.TransactionalRepositories, scope shared.Scope, orders []jobwork.IntakeOrder, deliveries []jobwork.Delivery, invoices []billing.Invoice, result *RecomputeResult) error {
	entries := make([]*stock.StockEntry, 0)

	for idx := range orders {
		order := &orders[idx]
		for _, line := range order.Lines {
			if !line.QuantityOrdered.IsPositive() {
				continue
			}
			entry, err := stock.NewStockEntry(scope, line.ItemID, stock.EntryKindIntakeReceipt, order.ID, line.QuantityOrdered, order.OrderDate)
			if err != nil {
				return err
			}
			entry.WithParty(order.PartyID)
			entries = append(entries, entry)
		}
	}

	for idx := range deliveries {
		delivery := &deliveries[idx]
		for _, line := range delivery.Lines {
			entry, err := stock.NewStockEntry(scope, line.ItemID, stock.EntryKindJobWorkReturn, delivery.ID, line.Quantity, delivery.ChallanDate)
			if err != nil {
				return err
			}
			entry.WithParty(delivery.PartyID)
			entries = append(entries, entry)
		}
	}

	for idx := range invoices {
		invoice := &invoices[idx]
		if invoice.Status == billing.InvoiceStatusCancelled {
			continue
		}
		for _, line := range invoice.Lines {
			if !line.IsDirectSale() {
				continue
			}
			entry, err := stock.NewStockEntry(scope, line.ItemID, stock.EntryKindDirectSale, invoice.ID, line.Quantity, invoice.InvoiceDate)
			if err != nil {
				return err
			}
			entry.WithParty(invoice.PartyID)
			entries = append(entries, entry)
		}
	}

	if len(entries) > 0 {
		if err := repos.StockEntryRepo().CreateBatch(ctx, entries); err != nil {
			return err
		}
	}
	result.EntriesWritten = len(entries)
	return nil
}

// settleOrders re-derives every order's delivered counters and status from
// the delivery lines. Delivery lines whose intake order line no longer
// exists are skipped with a warning.
func (s *RecomputeService) settleOrders(ctx context.Context, repos jobworkapp.TransactionalRepositories, scope shared.Scope, orders []jobwork.IntakeOrder, deliveries []jobwork.Delivery, result *RecomputeResult) error {
	sums := make(map[uuid.UUID]decimal.Decimal)
	known := make(map[uuid.UUID]struct{})
	for idx := range orders {
		for _, line := range orders[idx].Lines {
			known[line.ID] = struct{}{}
		}
	}
	for idx := range deliveries {
		for _, line := range deliveries[idx].Lines {
			if _, ok := known[line.IntakeOrderLineID]; !ok {
				s.logger.Warn("delivery line references a missing intake order line, skipping",
					zap.String("delivery_line_id", line.ID.String()),
					zap.String("intake_order_line_id", line.IntakeOrderLineID.String()))
				result.OrphanLines++
				continue
			}
			sums[line.IntakeOrderLineID] = sums[line.IntakeOrderLineID].Add(line.Quantity)
		}
	}

	for idx := range orders {
		order := &orders[idx]
		for lineIdx := range order.Lines {
			total := sums[order.Lines[lineIdx].ID]
			if err := order.Lines[lineIdx].SetDelivered(total); err != nil {
				return err
			}
		}
		order.RecalculateStatus()
		if err := repos.IntakeOrderRepo().Save(ctx, order); err != nil {
			return err
		}
		result.OrdersSettled++
	}
	return nil
}

// refreshDeliveries re-derives the billing display status and the order
// status mirror of every delivery
func (s *RecomputeService) refreshDeliveries(ctx context.Context, repos jobworkapp.TransactionalRepositories, scope shared.Scope, deliveries []jobwork.Delivery, result *RecomputeResult) error {
	billed, err := repos.InvoiceRepo().BilledSplits(ctx, scope, nil)
	if err != nil {
		return err
	}
	sources, err := billingapp.BuildPendingSources(ctx, repos.IntakeOrderRepo(), repos.ItemRepo(), scope, deliveries)
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
		if err := s.mirrorOrderStatus(ctx, repos, scope, delivery); err != nil {
			return err
		}
		if err := repos.DeliveryRepo().Save(ctx, delivery); err != nil {
			return err
		}
		result.DeliveriesUpdated++
	}
	return nil
}

// mirrorOrderStatus refreshes the order status mirror from the order the
// delivery's last line settles
func (s *RecomputeService) mirrorOrderStatus(ctx context.Context, repos jobworkapp.TransactionalRepositories, scope shared.Scope, delivery *jobwork.Delivery) error {
	for idx := len(delivery.Lines) - 1; idx >= 0; idx-- {
		order, err := repos.IntakeOrderRepo().FindByID(ctx, scope, delivery.Lines[idx].IntakeOrderID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return err
		}
		delivery.MirrorOrderStatus(order.Status)
		return nil
	}
	return nil
}
