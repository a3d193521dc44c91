package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/jobwork/backend/internal/domain/shared"
)

// ItemRepository defines the interface for item master persistence
type ItemRepository interface {
	// FindByID finds an item by its ID within a scope
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Item, error)

	// FindByIDs finds multiple items by their IDs within a scope
	FindByIDs(ctx context.Context, scope shared.Scope, ids []uuid.UUID) ([]Item, error)

	// FindAll finds all items for a scope
	FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// Delete deletes an item
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error
}

// ProcessRepository defines the interface for process master persistence
type ProcessRepository interface {
	// FindByID finds a process by its ID within a scope
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Process, error)

	// FindAll finds all processes for a scope
	FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]Process, error)

	// Save creates or updates a process
	Save(ctx context.Context, process *Process) error
}
