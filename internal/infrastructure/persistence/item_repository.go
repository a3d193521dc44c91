package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobwork/backend/internal/domain/catalog"
	"github.com/jobwork/backend/internal/domain/shared"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID within a scope
func (r *GormItemRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := scoped(r.db.WithContext(ctx), scope).
		First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDs finds multiple items by their IDs within a scope
func (r *GormItemRepository) FindByIDs(ctx context.Context, scope shared.Scope, ids []uuid.UUID) ([]catalog.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []catalog.Item
	if err := scoped(r.db.WithContext(ctx), scope).
		Where("id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAll finds all items for a scope
func (r *GormItemRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]catalog.Item, error) {
	query := scoped(r.db.WithContext(ctx), scope)
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if isActive, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", isActive)
	}

	var items []catalog.Item
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete deletes an item
func (r *GormItemRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	result := scoped(r.db.WithContext(ctx), scope).Delete(&catalog.Item{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormItemRepository implements ItemRepository
var _ catalog.ItemRepository = (*GormItemRepository)(nil)

// GormProcessRepository implements ProcessRepository using GORM
type GormProcessRepository struct {
	db *gorm.DB
}

// NewGormProcessRepository creates a new GormProcessRepository
func NewGormProcessRepository(db *gorm.DB) *GormProcessRepository {
	return &GormProcessRepository{db: db}
}

// FindByID finds a process by its ID within a scope
func (r *GormProcessRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*catalog.Process, error) {
	var process catalog.Process
	if err := scoped(r.db.WithContext(ctx), scope).
		First(&process, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &process, nil
}

// FindAll finds all processes for a scope
func (r *GormProcessRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]catalog.Process, error) {
	query := scoped(r.db.WithContext(ctx), scope)
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var processes []catalog.Process
	if err := query.Order("name ASC").Find(&processes).Error; err != nil {
		return nil, err
	}
	return processes, nil
}

// Save creates or updates a process
func (r *GormProcessRepository) Save(ctx context.Context, process *catalog.Process) error {
	return r.db.WithContext(ctx).Save(process).Error
}

// Ensure GormProcessRepository implements ProcessRepository
var _ catalog.ProcessRepository = (*GormProcessRepository)(nil)
