package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/catalog"
	"github.com/jobwork/backend/internal/domain/shared"
)

// ItemRequest creates or updates an item master record
type ItemRequest struct {
	Name string          `json:"name" binding:"required"`
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

// ProcessRequest creates or updates a process master record
type ProcessRequest struct {
	Name string `json:"name" binding:"required"`
}

// ItemService handles item and process master operations
type ItemService struct {
	itemRepo    catalog.ItemRepository
	processRepo catalog.ProcessRepository
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo catalog.ItemRepository, processRepo catalog.ProcessRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo, processRepo: processRepo}
}

// CreateItem records a new item master
func (s *ItemService) CreateItem(ctx context.Context, scope shared.Scope, req ItemRequest) (*catalog.Item, error) {
	item, err := catalog.NewItem(scope, req.Name, req.Rate)
	if err != nil {
		return nil, err
	}
	item.Code = req.Code
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem changes an item's name, code and master rate
func (s *ItemService) UpdateItem(ctx context.Context, scope shared.Scope, itemID uuid.UUID, req ItemRequest) (*catalog.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, scope, itemID)
	if err != nil {
		return nil, err
	}
	item.Name = req.Name
	item.Code = req.Code
	if err := item.UpdateRate(req.Rate); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem retrieves an item
func (s *ItemService) GetItem(ctx context.Context, scope shared.Scope, itemID uuid.UUID) (*catalog.Item, error) {
	return s.itemRepo.FindByID(ctx, scope, itemID)
}

// ListItems retrieves the item masters
func (s *ItemService) ListItems(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]catalog.Item, error) {
	return s.itemRepo.FindAll(ctx, scope, filter)
}

// CreateProcess records a new process master
func (s *ItemService) CreateProcess(ctx context.Context, scope shared.Scope, req ProcessRequest) (*catalog.Process, error) {
	process, err := catalog.NewProcess(scope, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.processRepo.Save(ctx, process); err != nil {
		return nil, err
	}
	return process, nil
}

// ListProcesses retrieves the process masters
func (s *ItemService) ListProcesses(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]catalog.Process, error) {
	return s.processRepo.FindAll(ctx, scope, filter)
}
