package jobwork

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jobwork/backend/internal/domain/jobwork"
	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/shared/valueobject"
	"github.com/jobwork/backend/internal/domain/stock"
)

// DeliveryService handles delivery challan operations. Creating, updating
// or deleting a delivery moves three derived datasets in one transaction:
// the OUT ledger entries, the delivered counters on the intake order lines
// and the intake order statuses.
type DeliveryService struct {
	deliveryRepo jobwork.DeliveryRepository
	txScope      TransactionScope
	logger       *zap.Logger
}

// NewDeliveryService creates a new DeliveryService
func NewDeliveryService(deliveryRepo jobwork.DeliveryRepository, txScope TransactionScope, logger *zap.Logger) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// Create records a delivery, writes its OUT ledger entries and settles the
// delivered counters of every intake order the lines draw from
func (s *DeliveryService) Create(ctx context.Context, scope shared.Scope, req CreateDeliveryRequest) (*DeliveryResponse, error) {
	var response DeliveryResponse

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		challanNumber := req.ChallanNumber
		if challanNumber == "" {
			var err error
			challanNumber, err = repos.DeliveryRepo().GenerateChallanNumber(ctx, scope)
			if err != nil {
				return err
			}
		} else {
			if _, err := repos.DeliveryRepo().FindByChallanNumber(ctx, scope, req.PartyID, challanNumber); err == nil {
				return shared.ErrAlreadyExists
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		delivery, err := jobwork.NewDelivery(scope, challanNumber, req.PartyID, req.ChallanDate)
		if err != nil {
			return err
		}
		delivery.Notes = req.Notes

		if err := s.appendLines(ctx, repos, scope, delivery, req.Lines); err != nil {
			return err
		}
		if err := repos.DeliveryRepo().Save(ctx, delivery); err != nil {
			return err
		}
		if err := s.writeReturnEntries(ctx, repos, delivery); err != nil {
			return err
		}

		status, err := s.settleOrders(ctx, repos, scope, affectedLineIDs(delivery.Lines, nil))
		if err != nil {
			return err
		}
		s.mirrorStatus(delivery, status)
		if err := repos.DeliveryRepo().Save(ctx, delivery); err != nil {
			return err
		}

		response = ToDeliveryResponse(delivery)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Update replaces the delivery's lines by reversing the original effects
// and applying the new lines from scratch: the OUT entries are rewritten
// and every intake order touched before or after is resettled.
func (s *DeliveryService) Update(ctx context.Context, scope shared.Scope, deliveryID uuid.UUID, req UpdateDeliveryRequest) (*DeliveryResponse, error) {
	var response DeliveryResponse

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		delivery, err := repos.DeliveryRepo().FindByID(ctx, scope, deliveryID)
		if err != nil {
			return err
		}
		previousLines := delivery.Lines

		if err := repos.StockEntryRepo().DeleteByReference(ctx, scope, stock.ReferenceTypeDelivery, delivery.ID); err != nil {
			return err
		}

		if !req.ChallanDate.IsZero() {
			delivery.ChallanDate = req.ChallanDate
		}
		delivery.Notes = req.Notes
		delivery.Lines = make([]jobwork.DeliveryLine, 0, len(req.Lines))

		if err := s.appendLines(ctx, repos, scope, delivery, req.Lines); err != nil {
			return err
		}
		if err := repos.DeliveryRepo().Save(ctx, delivery); err != nil {
			return err
		}
		if err := s.writeReturnEntries(ctx, repos, delivery); err != nil {
			return err
		}

		status, err := s.settleOrders(ctx, repos, scope, affectedLineIDs(delivery.Lines, previousLines))
		if err != nil {
			return err
		}
		s.mirrorStatus(delivery, status)
		if err := repos.DeliveryRepo().Save(ctx, delivery); err != nil {
			return err
		}

		response = ToDeliveryResponse(delivery)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Delete reverses a delivery that no invoice settles: its OUT entries are
// removed and the intake orders it drew from are resettled
func (s *DeliveryService) Delete(ctx context.Context, scope shared.Scope, deliveryID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		delivery, err := repos.DeliveryRepo().FindByID(ctx, scope, deliveryID)
		if err != nil {
			return err
		}

		invoiced, err := repos.InvoiceRepo().ExistsForDelivery(ctx, scope, deliveryID)
		if err != nil {
			return err
		}
		if invoiced {
			return shared.ErrConflict
		}

		if err := repos.StockEntryRepo().DeleteByReference(ctx, scope, stock.ReferenceTypeDelivery, deliveryID); err != nil {
			return err
		}
		previousLines := delivery.Lines
		if err := repos.DeliveryRepo().Delete(ctx, scope, deliveryID); err != nil {
			return err
		}

		_, err = s.settleOrders(ctx, repos, scope, affectedLineIDs(nil, previousLines))
		return err
	})
}

// GetByID retrieves a delivery
func (s *DeliveryService) GetByID(ctx context.Context, scope shared.Scope, deliveryID uuid.UUID) (*DeliveryResponse, error) {
	delivery, err := s.deliveryRepo.FindByID(ctx, scope, deliveryID)
	if err != nil {
		return nil, err
	}
	response := ToDeliveryResponse(delivery)
	return &response, nil
}

// List retrieves deliveries with filtering and pagination
func (s *DeliveryService) List(ctx context.Context, scope shared.Scope, filter ListFilter) (*shared.Paginated[DeliveryResponse], error) {
	result, err := s.deliveryRepo.FindAll(ctx, scope, toDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	items := make([]DeliveryResponse, 0, len(result.Items))
	for idx := range result.Items {
		items = append(items, ToDeliveryResponse(&result.Items[idx]))
	}
	page := shared.NewPaginated(items, result.Total, result.Page, result.PageSize)
	return &page, nil
}

// appendLines validates each requested line against its intake order line
// and adds it to the delivery. The intake order must belong to the
// delivery's party.
func (s *DeliveryService) appendLines(ctx context.Context, repos TransactionalRepositories, scope shared.Scope, delivery *jobwork.Delivery, lines []DeliveryLineRequest) error {
	orders := make(map[uuid.UUID]*jobwork.IntakeOrder)

	for _, line := range lines {
		intakeLine, err := repos.IntakeOrderRepo().FindLineByID(ctx, scope, line.IntakeOrderLineID)
		if err != nil {
			return err
		}
		order, ok := orders[intakeLine.OrderID]
		if !ok {
			order, err = repos.IntakeOrderRepo().FindByID(ctx, scope, intakeLine.OrderID)
			if err != nil {
				return err
			}
			orders[intakeLine.OrderID] = order
		}
		if order.PartyID != delivery.PartyID {
			return shared.NewDomainError("PARTY_MISMATCH", "Intake order belongs to a different party")
		}

		split, err := valueobject.NewQualitySplit(line.OkQty, line.CrQty, line.MrQty)
		if err != nil {
			return shared.ErrInvariantViolation
		}
		added, err := delivery.AddLine(order.ID, intakeLine.ID, intakeLine.ItemID, line.Quantity, split)
		if err != nil {
			return err
		}
		added.ProcessID = intakeLine.ProcessID
		added.Rate = line.Rate
		added.PartyRate = line.PartyRate
		delivery.Lines[len(delivery.Lines)-1] = *added
	}
	return nil
}

// writeReturnEntries appends one OUT entry per delivery line
func (s *DeliveryService) writeReturnEntries(ctx context.Context, repos TransactionalRepositories, delivery *jobwork.Delivery) error {
	entries := make([]*stock.StockEntry, 0, len(delivery.Lines))
	for _, line := range delivery.Lines {
		entry, err := stock.NewStockEntry(delivery.Scope, line.ItemID, stock.EntryKindJobWorkReturn, delivery.ID, line.Quantity, delivery.ChallanDate)
		if err != nil {
			return err
		}
		entry.WithParty(delivery.PartyID)
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil
	}
	return repos.StockEntryRepo().CreateBatch(ctx, entries)
}

// settleOrders re-sums the delivered counters for the given intake order
// lines from the stored delivery lines, recalculates every touched order's
// status and saves the orders. It returns the status per order for
// mirroring onto the delivery.
func (s *DeliveryService) settleOrders(ctx context.Context, repos TransactionalRepositories, scope shared.Scope, lineIDs []uuid.UUID) (map[uuid.UUID]jobwork.OrderStatus, error) {
	statuses := make(map[uuid.UUID]jobwork.OrderStatus)
	if len(lineIDs) == 0 {
		return statuses, nil
	}

	sums, err := repos.DeliveryRepo().SumDeliveredByIntakeLines(ctx, scope, lineIDs)
	if err != nil {
		return nil, err
	}

	touched := make(map[uuid.UUID]struct{}, len(lineIDs))
	for _, id := range lineIDs {
		touched[id] = struct{}{}
	}

	orderIDs := make(map[uuid.UUID]struct{})
	for _, id := range lineIDs {
		line, err := repos.IntakeOrderRepo().FindLineByID(ctx, scope, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("intake order line no longer exists, skipping settlement",
					zap.String("intake_order_line_id", id.String()))
				continue
			}
			return nil, err
		}
		orderIDs[line.OrderID] = struct{}{}
	}

	for orderID := range orderIDs {
		order, err := repos.IntakeOrderRepo().FindByID(ctx, scope, orderID)
		if err != nil {
			return nil, err
		}
		for idx := range order.Lines {
			if _, ok := touched[order.Lines[idx].ID]; !ok {
				continue
			}
			total, ok := sums[order.Lines[idx].ID]
			if !ok {
				total = decimal.Zero
			}
			if err := order.Lines[idx].SetDelivered(total); err != nil {
				return nil, err
			}
		}
		order.RecalculateStatus()
		if err := repos.IntakeOrderRepo().Save(ctx, order); err != nil {
			return nil, err
		}
		statuses[orderID] = order.Status
	}
	return statuses, nil
}

// mirrorStatus copies the settled order status onto the delivery. With
// lines over several orders the order of the last delivery line wins.
func (s *DeliveryService) mirrorStatus(delivery *jobwork.Delivery, statuses map[uuid.UUID]jobwork.OrderStatus) {
	for idx := len(delivery.Lines) - 1; idx >= 0; idx-- {
		if status, ok := statuses[delivery.Lines[idx].IntakeOrderID]; ok {
			delivery.MirrorOrderStatus(status)
			return
		}
	}
}

// affectedLineIDs unions the intake line references of the current and
// previous delivery lines
func affectedLineIDs(current, previous []jobwork.DeliveryLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	out := make([]uuid.UUID, 0, len(current)+len(previous))
	for _, line := range current {
		if _, ok := seen[line.IntakeOrderLineID]; !ok {
			seen[line.IntakeOrderLineID] = struct{}{}
			out = append(out, line.IntakeOrderLineID)
		}
	}
	for _, line := range previous {
		if _, ok := seen[line.IntakeOrderLineID]; !ok {
			seen[line.IntakeOrderLineID] = struct{}{}
			out = append(out, line.IntakeOrderLineID)
		}
	}
	return out
}
