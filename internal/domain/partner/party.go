package partner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jobwork/backend/internal/domain/shared"
)

// Party represents a customer sending goods in for job work. The engine
// only needs identity; contact and tax details live with the surrounding
// system.
type Party struct {
	shared.ScopedAggregateRoot
	Name     string `gorm:"type:varchar(200);not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Party) TableName() string {
	return "parties"
}

// NewParty creates a new party master record
func NewParty(scope shared.Scope, name string) (*Party, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PARTY_NAME", "Party name cannot be empty")
	}
	return &Party{
		ScopedAggregateRoot: shared.NewScopedAggregateRoot(scope),
		Name:                name,
		IsActive:            true,
	}, nil
}

// Deactivate marks the party inactive without deleting history
func (p *Party) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

// PartyRepository defines the interface for party master persistence
type PartyRepository interface {
	// FindByID finds a party by its ID within a scope
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Party, error)

	// FindAll finds all parties for a scope
	FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]Party, error)

	// Save creates or updates a party
	Save(ctx context.Context, party *Party) error
}
