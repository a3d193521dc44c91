package jobwork

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jobwork/backend/internal/domain/jobwork"
	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/stock"
)

// IntakeOrderService handles intake order operations. Every write runs in a
// transaction scope because the stock ledger moves with the order.
type IntakeOrderService struct {
	orderRepo jobwork.IntakeOrderRepository
	txScope   TransactionScope
}

// NewIntakeOrderService creates a new IntakeOrderService
func NewIntakeOrderService(orderRepo jobwork.IntakeOrderRepository, txScope TransactionScope) *IntakeOrderService {
	return &IntakeOrderService{
		orderRepo: orderRepo,
		txScope:   txScope,
	}
}

// Create records an intake order and its IN ledger entries
func (s *IntakeOrderService) Create(ctx context.Context, scope shared.Scope, req CreateIntakeOrderRequest) (*IntakeOrderResponse, error) {
	var response IntakeOrderResponse

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		orderNumber := req.OrderNumber
		if orderNumber == "" {
			var err error
			orderNumber, err = repos.IntakeOrderRepo().GenerateOrderNumber(ctx, scope)
			if err != nil {
				return err
			}
		} else {
			if _, err := repos.IntakeOrderRepo().FindByOrderNumber(ctx, scope, orderNumber); err == nil {
				return shared.ErrAlreadyExists
			} else if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
		}

		order, err := jobwork.NewIntakeOrder(scope, orderNumber, req.PartyID, req.OrderDate)
		if err != nil {
			return err
		}
		order.WorkingDays = req.WorkingDays
		order.Notes = req.Notes

		for _, line := range req.Lines {
			if _, err := order.AddLine(line.ItemID, line.Quantity, line.Rate, line.ProcessID); err != nil {
				return err
			}
		}

		if err := repos.IntakeOrderRepo().Save(ctx, order); err != nil {
			return err
		}
		if err := s.writeReceiptEntries(ctx, repos, order); err != nil {
			return err
		}

		response = ToIntakeOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Update replaces the order's header fields and lines. A line that already
// has deliveries against it cannot be removed or shrunk below its delivered
// quantity. Receipt ledger entries are rewritten to match the new lines.
func (s *IntakeOrderService) Update(ctx context.Context, scope shared.Scope, orderID uuid.UUID, req UpdateIntakeOrderRequest) (*IntakeOrderResponse, error) {
	var response IntakeOrderResponse

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.IntakeOrderRepo().FindByID(ctx, scope, orderID)
		if err != nil {
			return err
		}

		requested := make(map[uuid.UUID]IntakeOrderLineRequest, len(req.Lines))
		for _, line := range req.Lines {
			if line.ID != nil {
				requested[*line.ID] = line
			}
		}
		for _, existing := range order.Lines {
			if existing.QuantityDelivered.IsZero() {
				continue
			}
			replacement, kept := requested[existing.ID]
			if !kept {
				return shared.ErrConflict
			}
			if replacement.Quantity.LessThan(existing.QuantityDelivered) {
				return shared.ErrConflict
			}
		}

		order.PartyID = req.PartyID
		if !req.OrderDate.IsZero() {
			order.OrderDate = req.OrderDate
		}
		order.WorkingDays = req.WorkingDays
		order.Notes = req.Notes

		previousLines := make(map[uuid.UUID]jobwork.IntakeOrderLine, len(order.Lines))
		for _, existing := range order.Lines {
			previousLines[existing.ID] = existing
		}
		order.Lines = order.Lines[:0]
		for _, line := range req.Lines {
			added, err := order.AddLine(line.ItemID, line.Quantity, line.Rate, line.ProcessID)
			if err != nil {
				return err
			}
			if line.ID == nil {
				continue
			}
			if previous, ok := previousLines[*line.ID]; ok {
				added.ID = previous.ID
				if err := added.SetDelivered(previous.QuantityDelivered); err != nil {
					return err
				}
				order.Lines[len(order.Lines)-1] = *added
			}
		}
		order.RecalculateStatus()

		if err := repos.IntakeOrderRepo().Save(ctx, order); err != nil {
			return err
		}

		if err := repos.StockEntryRepo().DeleteByReference(ctx, scope, stock.ReferenceTypeIntakeOrder, order.ID); err != nil {
			return err
		}
		if err := s.writeReceiptEntries(ctx, repos, order); err != nil {
			return err
		}

		response = ToIntakeOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Delete removes an order that has no deliveries against it, together with
// its receipt ledger entries
func (s *IntakeOrderService) Delete(ctx context.Context, scope shared.Scope, orderID uuid.UUID) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.IntakeOrderRepo().FindByID(ctx, scope, orderID); err != nil {
			return err
		}
		referenced, err := repos.DeliveryRepo().ExistsForIntakeOrder(ctx, scope, orderID)
		if err != nil {
			return err
		}
		if referenced {
			return shared.ErrConflict
		}
		if err := repos.StockEntryRepo().DeleteByReference(ctx, scope, stock.ReferenceTypeIntakeOrder, orderID); err != nil {
			return err
		}
		return repos.IntakeOrderRepo().Delete(ctx, scope, orderID)
	})
}

// GetByID retrieves an intake order
func (s *IntakeOrderService) GetByID(ctx context.Context, scope shared.Scope, orderID uuid.UUID) (*IntakeOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, scope, orderID)
	if err != nil {
		return nil, err
	}
	response := ToIntakeOrderResponse(order)
	return &response, nil
}

// GetProgress returns per-line delivery progress for an order
func (s *IntakeOrderService) GetProgress(ctx context.Context, scope shared.Scope, orderID uuid.UUID) ([]jobwork.LineProgress, error) {
	order, err := s.orderRepo.FindByID(ctx, scope, orderID)
	if err != nil {
		return nil, err
	}
	return order.Progress(), nil
}

// List retrieves intake orders with filtering and pagination
func (s *IntakeOrderService) List(ctx context.Context, scope shared.Scope, filter ListFilter) (*shared.Paginated[IntakeOrderResponse], error) {
	result, err := s.orderRepo.FindAll(ctx, scope, toDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	items := make([]IntakeOrderResponse, 0, len(result.Items))
	for idx := range result.Items {
		items = append(items, ToIntakeOrderResponse(&result.Items[idx]))
	}
	page := shared.NewPaginated(items, result.Total, result.Page, result.PageSize)
	return &page, nil
}

// writeReceiptEntries appends one IN entry per order line
func (s *IntakeOrderService) writeReceiptEntries(ctx context.Context, repos TransactionalRepositories, order *jobwork.IntakeOrder) error {
	entries := make([]*stock.StockEntry, 0, len(order.Lines))
	for _, line := range order.Lines {
		if !line.QuantityOrdered.IsPositive() {
			continue
		}
		entry, err := stock.NewStockEntry(order.Scope, line.ItemID, stock.EntryKindIntakeReceipt, order.ID, line.QuantityOrdered, order.OrderDate)
		if err != nil {
			return err
		}
		entry.WithParty(order.PartyID)
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil
	}
	return repos.StockEntryRepo().CreateBatch(ctx, entries)
}

// toDomainFilter converts the application filter to the repository filter
func toDomainFilter(filter ListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.PartyID != nil {
		domainFilter.Filters["party_id"] = *filter.PartyID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}
	return domainFilter
}
