package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit timestamps every persisted
// record shares. Line entities embed it directly; aggregate roots get it
// through ScopedAggregateRoot.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity allocates the ID up front so lines can reference their
// parent before the first save.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ScopedAggregateRoot is the base of every aggregate. All of them live
// inside a company and fiscal year boundary; nothing in the domain is
// global.
type ScopedAggregateRoot struct {
	BaseEntity
	Scope Scope `gorm:"embedded"`
}

// NewScopedAggregateRoot creates a new scoped aggregate root
func NewScopedAggregateRoot(scope Scope) ScopedAggregateRoot {
	return ScopedAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Scope:      scope,
	}
}

// CompanyID returns the owning company ID
func (a *ScopedAggregateRoot) CompanyID() uuid.UUID {
	return a.Scope.CompanyID
}

// FiscalYearID returns the owning financial year ID
func (a *ScopedAggregateRoot) FiscalYearID() uuid.UUID {
	return a.Scope.FiscalYearID
}
