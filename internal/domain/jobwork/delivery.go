package jobwork

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/shared"
	"github.com/jobwork/backend/internal/domain/shared/valueobject"
)

// DeliveryStatus represents the billing display status of a delivery
type DeliveryStatus string

const (
	// DeliveryStatusSent means the delivery still has unbilled quantity
	DeliveryStatusSent DeliveryStatus = "SENT"
	// DeliveryStatusDelivered means the delivery is fully billed
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
)

// String returns the string representation of DeliveryStatus
func (s DeliveryStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusSent, DeliveryStatusDelivered:
		return true
	}
	return false
}

// DeliveryLine records processed goods returned against one intake order
// line, graded into quality buckets. ItemID is denormalized from the intake
// line at creation so billing does not have to chase the reference chain.
type DeliveryLine struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey"`
	DeliveryID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	IntakeOrderID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	IntakeOrderLineID uuid.UUID        `gorm:"type:uuid;not null;index"`
	ItemID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProcessID         *uuid.UUID       `gorm:"type:uuid"`
	Quantity          decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	OkQty             decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	CrQty             decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	MrQty             decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Rate              *decimal.Decimal `gorm:"type:decimal(18,4)"`
	PartyRate         *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (DeliveryLine) TableName() string {
	return "delivery_lines"
}

// NewDeliveryLine creates a delivery line after checking the quality split
// covers the declared quantity exactly
func NewDeliveryLine(deliveryID, intakeOrderID, intakeOrderLineID, itemID uuid.UUID, quantity decimal.Decimal, split valueobject.QualitySplit) (*DeliveryLine, error) {
	if intakeOrderLineID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Intake order line reference cannot be empty")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Delivered quantity must be positive")
	}
	if !split.MatchesTotal(quantity) {
		return nil, shared.ErrInvariantViolation
	}
	now := time.Now()
	return &DeliveryLine{
		ID:                uuid.New(),
		DeliveryID:        deliveryID,
		IntakeOrderID:     intakeOrderID,
		IntakeOrderLineID: intakeOrderLineID,
		ItemID:            itemID,
		Quantity:          quantity,
		OkQty:             split.OK(),
		CrQty:             split.CR(),
		MrQty:             split.MR(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Split returns the line's bucket quantities as a value object
func (l *DeliveryLine) Split() valueobject.QualitySplit {
	return valueobject.MustNewQualitySplit(l.OkQty, l.CrQty, l.MrQty)
}

// ResolvedRate walks the rate fallback chain: the delivery line's own rate,
// then the intake line's rate, then the item master rate. A nil result means
// the caller falls through to zero.
func (l *DeliveryLine) ResolvedRate(intakeLineRate, itemRate *decimal.Decimal) decimal.Decimal {
	if l.Rate != nil {
		return *l.Rate
	}
	if intakeLineRate != nil {
		return *intakeLineRate
	}
	if itemRate != nil {
		return *itemRate
	}
	return decimal.Zero
}

// Delivery is the delivery challan aggregate: a batch of processed goods
// returned to the party, graded by quality. OrderStatus mirrors the status
// of the intake order the lines settle against; Status tracks billing.
type Delivery struct {
	shared.ScopedAggregateRoot
	ChallanNumber string         `gorm:"type:varchar(50);not null;index"`
	PartyID       uuid.UUID      `gorm:"type:uuid;not null;index"`
	ChallanDate   time.Time      `gorm:"type:date;not null"`
	Notes         string         `gorm:"type:text"`
	Status        DeliveryStatus `gorm:"type:varchar(20);not null"`
	OrderStatus   OrderStatus    `gorm:"type:varchar(20);not null"`
	Lines         []DeliveryLine `gorm:"foreignKey:DeliveryID"`
}

// TableName returns the table name for GORM
func (Delivery) TableName() string {
	return "deliveries"
}

// NewDelivery creates a delivery in SENT status with an OPEN order mirror
func NewDelivery(scope shared.Scope, challanNumber string, partyID uuid.UUID, challanDate time.Time) (*Delivery, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if challanNumber == "" {
		return nil, shared.NewDomainError("INVALID_CHALLAN_NUMBER", "Challan number cannot be empty")
	}
	if len(challanNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_CHALLAN_NUMBER", "Challan number cannot exceed 50 characters")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if challanDate.IsZero() {
		challanDate = time.Now()
	}
	return &Delivery{
		ScopedAggregateRoot: shared.NewScopedAggregateRoot(scope),
		ChallanNumber:       challanNumber,
		PartyID:             partyID,
		ChallanDate:         challanDate,
		Status:              DeliveryStatusSent,
		OrderStatus:         OrderStatusOpen,
		Lines:               make([]DeliveryLine, 0),
	}, nil
}

// AddLine appends a graded line to the delivery
func (d *Delivery) AddLine(intakeOrderID, intakeOrderLineID, itemID uuid.UUID, quantity decimal.Decimal, split valueobject.QualitySplit) (*DeliveryLine, error) {
	line, err := NewDeliveryLine(d.ID, intakeOrderID, intakeOrderLineID, itemID, quantity, split)
	if err != nil {
		return nil, err
	}
	d.Lines = append(d.Lines, *line)
	d.UpdatedAt = time.Now()
	return line, nil
}

// GetLine returns a line by its ID, or nil
func (d *Delivery) GetLine(lineID uuid.UUID) *DeliveryLine {
	for idx := range d.Lines {
		if d.Lines[idx].ID == lineID {
			return &d.Lines[idx]
		}
	}
	return nil
}

// TotalQuantity sums delivered quantity across all lines
func (d *Delivery) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.Quantity)
	}
	return total
}

// TotalSplit sums the bucket quantities across all lines
func (d *Delivery) TotalSplit() valueobject.QualitySplit {
	total := valueobject.ZeroQualitySplit()
	for _, line := range d.Lines {
		total = total.Add(line.Split())
	}
	return total
}

// MirrorOrderStatus records the status of the settled intake order on the
// delivery. With lines spanning several orders the last one applied wins.
func (d *Delivery) MirrorOrderStatus(status OrderStatus) {
	if d.OrderStatus != status {
		d.OrderStatus = status
		d.UpdatedAt = time.Now()
	}
}

// MarkDelivered flags the delivery as fully billed
func (d *Delivery) MarkDelivered() {
	if d.Status != DeliveryStatusDelivered {
		d.Status = DeliveryStatusDelivered
		d.UpdatedAt = time.Now()
	}
}

// MarkSent returns the delivery to the unbilled display status
func (d *Delivery) MarkSent() {
	if d.Status != DeliveryStatusSent {
		d.Status = DeliveryStatusSent
		d.UpdatedAt = time.Now()
	}
}
