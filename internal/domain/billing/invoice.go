package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusIssued    InvoiceStatus = "ISSUED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusCancelled:
		return true
	}
	return false
}

// InvoiceLine bills quantity at one rate. A line settling delivered goods
// references the delivery pool it draws from; DeliveryLineIDs carries every
// underlying delivery line when a pool merged several. A line with no
// delivery reference is a direct sale and consumes stock instead.
type InvoiceLine struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeliveryID      *uuid.UUID      `gorm:"type:uuid;index"`
	DeliveryLineID  *uuid.UUID      `gorm:"type:uuid;index"`
	DeliveryLineIDs []uuid.UUID     `gorm:"type:jsonb;serializer:json"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OkQty           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CrQty           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MrQty           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Rate            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// NewInvoiceLine creates a billed line. The bucket split must cover the
// billed quantity exactly; Amount is quantity times rate rounded to two
// places.
func NewInvoiceLine(invoiceID, itemID uuid.UUID, quantity decimal.Decimal, split valueobject.QualitySplit, rate decimal.Decimal) (*InvoiceLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Billed quantity must be positive")
	}
	if rate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Rate cannot be negative")
	}
	if !split.MatchesTotal(quantity) {
		return nil, shared.ErrInvariantViolation
	}
	now := time.Now()
	return &InvoiceLine{
		ID:        uuid.New(),
		InvoiceID: invoiceID,
		ItemID:    itemID,
		Quantity:  quantity,
		OkQty:     split.OK(),
		CrQty:     split.CR(),
		MrQty:     split.MR(),
		Rate:      rate,
		Amount:    quantity.Mul(rate).Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// WithDelivery links the line to the delivery pool it settles
func (l *InvoiceLine) WithDelivery(deliveryID uuid.UUID, deliveryLineIDs []uuid.UUID) *InvoiceLine {
	l.DeliveryID = &deliveryID
	if len(deliveryLineIDs) > 0 {
		first := deliveryLineIDs[0]
		l.DeliveryLineID = &first
		l.DeliveryLineIDs = deliveryLineIDs
	}
	return l
}

// IsDirectSale reports whether the line bills goods with no delivery behind
// them
func (l *InvoiceLine) IsDirectSale() bool {
	return l.DeliveryID == nil
}

// Split returns the line's bucket quantities as a value object
func (l *InvoiceLine) Split() valueobject.QualitySplit {
	return valueobject.MustNewQualitySplit(l.OkQty, l.CrQty, l.MrQty)
}

// Invoice is the billing aggregate: lines drawn from pending delivery pools
// plus optional direct-sale lines.
type Invoice struct {
	shared.ScopedAggregateRoot
	InvoiceNumber string          `gorm:"type:varchar(50);not null;index"`
	PartyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceDate   time.Time       `gorm:"type:date;not null"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null"`
	Notes         string          `gorm:"type:text"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Lines         []InvoiceLine   `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice in DRAFT status
func NewInvoice(scope shared.Scope, invoiceNumber string, partyID uuid.UUID, invoiceDate time.Time) (*Invoice, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}
	return &Invoice{
		ScopedAggregateRoot: shared.NewScopedAggregateRoot(scope),
		InvoiceNumber:       invoiceNumber,
		PartyID:             partyID,
		InvoiceDate:         invoiceDate,
		Status:              InvoiceStatusDraft,
		TotalAmount:         decimal.Zero,
		Lines:               make([]InvoiceLine, 0),
	}, nil
}

// AddLine appends a line and keeps the total in step
func (i *Invoice) AddLine(line *InvoiceLine) {
	line.InvoiceID = i.ID
	i.Lines = append(i.Lines, *line)
	i.RecalculateTotal()
}

// GetLine returns a line by its ID, or nil
func (i *Invoice) GetLine(lineID uuid.UUID) *InvoiceLine {
	for idx := range i.Lines {
		if i.Lines[idx].ID == lineID {
			return &i.Lines[idx]
		}
	}
	return nil
}

// RecalculateTotal re-sums the line amounts
func (i *Invoice) RecalculateTotal() {
	total := decimal.Zero
	for _, line := range i.Lines {
		total = total.Add(line.Amount)
	}
	i.TotalAmount = total
	i.UpdatedAt = time.Now()
}

// Issue moves a draft invoice to ISSUED
func (i *Invoice) Issue() error {
	if i.Status != InvoiceStatusDraft {
		return shared.ErrInvalidState
	}
	if len(i.Lines) == 0 {
		return shared.NewDomainError("EMPTY_INVOICE", "Cannot issue an invoice with no lines")
	}
	i.Status = InvoiceStatusIssued
	i.UpdatedAt = time.Now()
	return nil
}

// Cancel moves an invoice to CANCELLED
func (i *Invoice) Cancel() error {
	if i.Status == InvoiceStatusCancelled {
		return shared.ErrInvalidState
	}
	i.Status = InvoiceStatusCancelled
	i.UpdatedAt = time.Now()
	return nil
}

// DeliveryLineIDs collects every delivery line the invoice settles
func (i *Invoice) DeliveryLineIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	out := make([]uuid.UUID, 0)
	for _, line := range i.Lines {
		for _, id := range line.DeliveryLineIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// PaymentAllocation links a received payment amount to an invoice. Its
// presence blocks invoice deletion.
type PaymentAllocation struct {
	shared.BaseEntity
	Scope     shared.Scope    `gorm:"embedded"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocation) TableName() string {
	return "payment_allocations"
}
