package jobwork

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/shared"
)

// OrderStatus represents the derived fulfilment status of an intake order
type OrderStatus string

const (
	// OrderStatusOpen means nothing has been delivered against the order
	OrderStatusOpen OrderStatus = "OPEN"
	// OrderStatusPartial means some, but not all, ordered quantity is delivered
	OrderStatusPartial OrderStatus = "PARTIAL"
	// OrderStatusCompleted means delivered quantity covers the ordered quantity
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusOpen, OrderStatusPartial, OrderStatusCompleted:
		return true
	}
	return false
}

// IntakeOrderLine is one item a party sent in for processing.
// QuantityDelivered is maintained by the engine: it is always the sum of
// the delivery line quantities referencing this line.
type IntakeOrderLine struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	ItemID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProcessID         *uuid.UUID       `gorm:"type:uuid"`
	QuantityOrdered   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	QuantityDelivered decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Rate              *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (IntakeOrderLine) TableName() string {
	return "intake_order_lines"
}

// NewIntakeOrderLine creates a line with the delivered counter at zero
func NewIntakeOrderLine(orderID, itemID uuid.UUID, quantityOrdered decimal.Decimal) (*IntakeOrderLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if quantityOrdered.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity cannot be negative")
	}
	now := time.Now()
	return &IntakeOrderLine{
		ID:                uuid.New(),
		OrderID:           orderID,
		ItemID:            itemID,
		QuantityOrdered:   quantityOrdered,
		QuantityDelivered: decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// WithProcess sets the optional process reference
func (l *IntakeOrderLine) WithProcess(processID uuid.UUID) *IntakeOrderLine {
	l.ProcessID = &processID
	return l
}

// WithRate sets the optional job-work rate for the line
func (l *IntakeOrderLine) WithRate(rate decimal.Decimal) *IntakeOrderLine {
	l.Rate = &rate
	return l
}

// SetDelivered replaces the delivered counter. Callers re-sum from the
// delivery lines inside the same transaction rather than incrementing in
// memory, so concurrent deliveries cannot lose updates.
func (l *IntakeOrderLine) SetDelivered(total decimal.Decimal) error {
	if total.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Delivered quantity cannot be negative")
	}
	l.QuantityDelivered = total
	l.UpdatedAt = time.Now()
	return nil
}

// Remaining returns ordered minus delivered, which may be negative when an
// order was over-delivered
func (l *IntakeOrderLine) Remaining() decimal.Decimal {
	return l.QuantityOrdered.Sub(l.QuantityDelivered)
}

// IntakeOrder is the party challan aggregate: what a party sent in for
// processing, with per-line delivered counters and a derived status.
type IntakeOrder struct {
	shared.ScopedAggregateRoot
	OrderNumber string            `gorm:"type:varchar(50);not null;index"`
	PartyID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	OrderDate   time.Time         `gorm:"type:date;not null"`
	WorkingDays int               `gorm:"not null;default:0"`
	Notes       string            `gorm:"type:text"`
	Status      OrderStatus       `gorm:"type:varchar(20);not null"`
	Lines       []IntakeOrderLine `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (IntakeOrder) TableName() string {
	return "intake_orders"
}

// NewIntakeOrder creates a new intake order in OPEN status
func NewIntakeOrder(scope shared.Scope, orderNumber string, partyID uuid.UUID, orderDate time.Time) (*IntakeOrder, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	return &IntakeOrder{
		ScopedAggregateRoot: shared.NewScopedAggregateRoot(scope),
		OrderNumber:         orderNumber,
		PartyID:             partyID,
		OrderDate:           orderDate,
		Status:              OrderStatusOpen,
		Lines:               make([]IntakeOrderLine, 0),
	}, nil
}

// AddLine appends a new line to the order
func (o *IntakeOrder) AddLine(itemID uuid.UUID, quantityOrdered decimal.Decimal, rate *decimal.Decimal, processID *uuid.UUID) (*IntakeOrderLine, error) {
	line, err := NewIntakeOrderLine(o.ID, itemID, quantityOrdered)
	if err != nil {
		return nil, err
	}
	if rate != nil {
		line.WithRate(*rate)
	}
	if processID != nil {
		line.WithProcess(*processID)
	}
	o.Lines = append(o.Lines, *line)
	o.UpdatedAt = time.Now()
	return line, nil
}

// GetLine returns a line by its ID, or nil
func (o *IntakeOrder) GetLine(lineID uuid.UUID) *IntakeOrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// TotalOrdered sums ordered quantity across all lines
func (o *IntakeOrder) TotalOrdered() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.QuantityOrdered)
	}
	return total
}

// TotalDelivered sums delivered quantity across all lines
func (o *IntakeOrder) TotalDelivered() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.QuantityDelivered)
	}
	return total
}

// RecalculateStatus derives the status from the line sums: OPEN when
// nothing is delivered, COMPLETED when delivered covers ordered, PARTIAL
// otherwise. Returns the (possibly unchanged) status.
func (o *IntakeOrder) RecalculateStatus() OrderStatus {
	delivered := o.TotalDelivered()
	ordered := o.TotalOrdered()

	var status OrderStatus
	switch {
	case delivered.IsZero():
		status = OrderStatusOpen
	case delivered.GreaterThanOrEqual(ordered):
		status = OrderStatusCompleted
	default:
		status = OrderStatusPartial
	}

	if status != o.Status {
		o.Status = status
		o.UpdatedAt = time.Now()
	}
	return o.Status
}

// LineProgress is the per-line delivery progress view
type LineProgress struct {
	LineID            uuid.UUID       `json:"line_id"`
	ItemID            uuid.UUID       `json:"item_id"`
	QuantityOrdered   decimal.Decimal `json:"quantity_ordered"`
	QuantityDelivered decimal.Decimal `json:"quantity_delivered"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	Percentage        decimal.Decimal `json:"percentage"`
}

// Progress returns per-line ordered/delivered/remaining figures for the
// delivery-progress view. Remaining is floored at zero for display.
func (o *IntakeOrder) Progress() []LineProgress {
	out := make([]LineProgress, 0, len(o.Lines))
	hundred := decimal.NewFromInt(100)
	for _, line := range o.Lines {
		remaining := line.Remaining()
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		pct := decimal.Zero
		if line.QuantityOrdered.IsPositive() {
			pct = line.QuantityDelivered.Div(line.QuantityOrdered).Mul(hundred).Round(2)
		}
		out = append(out, LineProgress{
			LineID:            line.ID,
			ItemID:            line.ItemID,
			QuantityOrdered:   line.QuantityOrdered,
			QuantityDelivered: line.QuantityDelivered,
			QuantityRemaining: remaining,
			Percentage:        pct,
		})
	}
	return out
}
