package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/shared"
)

// Item represents an item master record: the goods a party sends in for
// processing. Rate is the master job-work rate, used as the last fallback
// when neither the delivery line nor the intake line carries one.
type Item struct {
	shared.ScopedAggregateRoot
	Name     string          `gorm:"type:varchar(200);not null"`
	Code     string          `gorm:"type:varchar(50);index"`
	Rate     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new item master record
func NewItem(scope shared.Scope, name string, rate decimal.Decimal) (*Item, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if rate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Item rate cannot be negative")
	}
	return &Item{
		ScopedAggregateRoot: shared.NewScopedAggregateRoot(scope),
		Name:                name,
		Rate:                rate,
		IsActive:            true,
	}, nil
}

// UpdateRate changes the master rate
func (i *Item) UpdateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Item rate cannot be negative")
	}
	i.Rate = rate
	i.UpdatedAt = time.Now()
	return nil
}

// Deactivate marks the item inactive without deleting history
func (i *Item) Deactivate() {
	i.IsActive = false
	i.UpdatedAt = time.Now()
}

// Process represents a processing step master (plating, polishing, ...).
// Intake and delivery lines may optionally reference one.
type Process struct {
	shared.ScopedAggregateRoot
	Name     string `gorm:"type:varchar(200);not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Process) TableName() string {
	return "processes"
}

// NewProcess creates a new process master record
func NewProcess(scope shared.Scope, name string) (*Process, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PROCESS_NAME", "Process name cannot be empty")
	}
	return &Process{
		ScopedAggregateRoot: shared.NewScopedAggregateRoot(scope),
		Name:                name,
		IsActive:            true,
	}, nil
}

// ItemRef is the read view other contexts receive (id, name, master rate)
type ItemRef struct {
	ID   uuid.UUID
	Name string
	Rate decimal.Decimal
}

// Ref returns the cross-context read view of the item
func (i *Item) Ref() ItemRef {
	return ItemRef{ID: i.ID, Name: i.Name, Rate: i.Rate}
}
