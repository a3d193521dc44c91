package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobwork/backend/internal/domain/partner"
	"github.com/jobwork/backend/internal/domain/shared"
)

// GormPartyRepository implements PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByID finds a party by its ID within a scope
func (r *GormPartyRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*partner.Party, error) {
	var party partner.Party
	if err := scoped(r.db.WithContext(ctx), scope).
		First(&party, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &party, nil
}

// FindAll finds all parties for a scope
func (r *GormPartyRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]partner.Party, error) {
	query := scoped(r.db.WithContext(ctx), scope)
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if isActive, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", isActive)
	}

	var parties []partner.Party
	if err := query.Order("name ASC").Find(&parties).Error; err != nil {
		return nil, err
	}
	return parties, nil
}

// Save creates or updates a party
func (r *GormPartyRepository) Save(ctx context.Context, party *partner.Party) error {
	return r.db.WithContext(ctx).Save(party).Error
}

// Ensure GormPartyRepository implements PartyRepository
var _ partner.PartyRepository = (*GormPartyRepository)(nil)
