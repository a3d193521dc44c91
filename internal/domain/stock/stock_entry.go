package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/shared"
)

// Direction indicates whether an entry moves stock into or out of the
// job-work floor
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Sign returns +1 for IN and -1 for OUT
func (d Direction) Sign() int64 {
	if d == DirectionOut {
		return -1
	}
	return 1
}

// ReferenceType identifies the source document of a stock entry
type ReferenceType string

const (
	ReferenceTypeIntakeOrder   ReferenceType = "INTAKE_ORDER"
	ReferenceTypeDelivery      ReferenceType = "DELIVERY"
	ReferenceTypeInvoice       ReferenceType = "INVOICE"
	ReferenceTypeInvoiceRevert ReferenceType = "INVOICE_REVERT"
	ReferenceTypeOpening       ReferenceType = "OPENING"
)

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceTypeIntakeOrder, ReferenceTypeDelivery, ReferenceTypeInvoice,
		ReferenceTypeInvoiceRevert, ReferenceTypeOpening:
		return true
	}
	return false
}

// EntryKind names the business movement behind a ledger entry. Each kind
// fixes both the direction and the reference type, so callers cannot record
// an intake receipt flowing the wrong way.
type EntryKind string

const (
	// EntryKindIntakeReceipt records material received from a party
	EntryKindIntakeReceipt EntryKind = "INTAKE_RECEIPT"
	// EntryKindJobWorkReturn records processed goods sent back on a delivery
	EntryKindJobWorkReturn EntryKind = "JOBWORK_RETURN"
	// EntryKindDirectSale records goods consumed by an invoice without a delivery
	EntryKindDirectSale EntryKind = "DIRECT_SALE"
	// EntryKindInvoiceRevert compensates a direct-sale entry when its invoice changes
	EntryKindInvoiceRevert EntryKind = "INVOICE_REVERT"
	// EntryKindOpening seeds the ledger with a counted balance
	EntryKindOpening EntryKind = "OPENING"
)

// String returns the string representation of EntryKind
func (k EntryKind) String() string {
	return string(k)
}

// IsValid returns true if the entry kind is valid
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindIntakeReceipt, EntryKindJobWorkReturn, EntryKindDirectSale,
		EntryKindInvoiceRevert, EntryKindOpening:
		return true
	}
	return false
}

// Direction returns the flow direction the kind implies
func (k EntryKind) Direction() Direction {
	switch k {
	case EntryKindJobWorkReturn, EntryKindDirectSale:
		return DirectionOut
	default:
		return DirectionIn
	}
}

// ReferenceType returns the source document type the kind implies
func (k EntryKind) ReferenceType() ReferenceType {
	switch k {
	case EntryKindIntakeReceipt:
		return ReferenceTypeIntakeOrder
	case EntryKindJobWorkReturn:
		return ReferenceTypeDelivery
	case EntryKindDirectSale:
		return ReferenceTypeInvoice
	case EntryKindInvoiceRevert:
		return ReferenceTypeInvoiceRevert
	default:
		return ReferenceTypeOpening
	}
}

// StockEntry is one immutable row of the append-only stock ledger. Entries
// are never updated: corrections append a compensating entry or replay the
// ledger from the source documents.
type StockEntry struct {
	shared.BaseEntity
	Scope         shared.Scope    `gorm:"embedded"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartyID       *uuid.UUID      `gorm:"type:uuid;index"`
	Kind          EntryKind       `gorm:"type:varchar(30);not null"`
	Direction     Direction       `gorm:"type:varchar(10);not null"`
	ReferenceType ReferenceType   `gorm:"type:varchar(30);not null;index:idx_stock_ref,priority:1"`
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_ref,priority:2"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EntryDate     time.Time       `gorm:"type:date;not null;index"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockEntry) TableName() string {
	return "stock_entries"
}

// NewStockEntry creates a ledger entry for the given movement kind.
// Direction and reference type are derived from the kind.
func NewStockEntry(scope shared.Scope, itemID uuid.UUID, kind EntryKind, referenceID uuid.UUID, quantity decimal.Decimal, entryDate time.Time) (*StockEntry, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_KIND", "Unknown stock entry kind")
	}
	if referenceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Stock quantity must be positive")
	}
	if entryDate.IsZero() {
		entryDate = time.Now()
	}
	return &StockEntry{
		BaseEntity:    shared.NewBaseEntity(),
		Scope:         scope,
		ItemID:        itemID,
		Kind:          kind,
		Direction:     kind.Direction(),
		ReferenceType: kind.ReferenceType(),
		ReferenceID:   referenceID,
		Quantity:      quantity,
		EntryDate:     entryDate,
	}, nil
}

// WithParty attaches the party the movement belongs to
func (e *StockEntry) WithParty(partyID uuid.UUID) *StockEntry {
	e.PartyID = &partyID
	return e
}

// WithNotes attaches a free-form note
func (e *StockEntry) WithNotes(notes string) *StockEntry {
	e.Notes = notes
	return e
}

// SignedQuantity returns the quantity with the direction applied
func (e *StockEntry) SignedQuantity() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Quantity.Neg()
	}
	return e.Quantity
}
