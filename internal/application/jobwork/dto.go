package jobwork

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/jobwork"
)

// IntakeOrderLineRequest is one requested order line. ID identifies an
// existing line on update and is ignored on create; an order may carry
// several lines of the same item, so lines are never matched by item.
type IntakeOrderLineRequest struct {
	ID        *uuid.UUID       `json:"id"`
	ItemID    uuid.UUID        `json:"item_id" binding:"required"`
	ProcessID *uuid.UUID       `json:"process_id"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	Rate      *decimal.Decimal `json:"rate"`
}

// CreateIntakeOrderRequest creates an intake order. OrderNumber is optional:
// when empty the next PC number is generated.
type CreateIntakeOrderRequest struct {
	OrderNumber string                   `json:"order_number"`
	PartyID     uuid.UUID                `json:"party_id" binding:"required"`
	OrderDate   time.Time                `json:"order_date"`
	WorkingDays int                      `json:"working_days"`
	Notes       string                   `json:"notes"`
	Lines       []IntakeOrderLineRequest `json:"lines" binding:"required,min=1"`
}

// UpdateIntakeOrderRequest replaces the order's header fields and lines
type UpdateIntakeOrderRequest struct {
	PartyID     uuid.UUID                `json:"party_id" binding:"required"`
	OrderDate   time.Time                `json:"order_date"`
	WorkingDays int                      `json:"working_days"`
	Notes       string                   `json:"notes"`
	Lines       []IntakeOrderLineRequest `json:"lines" binding:"required,min=1"`
}

// IntakeOrderLineResponse is one order line in API responses
type IntakeOrderLineResponse struct {
	ID                uuid.UUID        `json:"id"`
	ItemID            uuid.UUID        `json:"item_id"`
	ProcessID         *uuid.UUID       `json:"process_id,omitempty"`
	QuantityOrdered   decimal.Decimal  `json:"quantity_ordered"`
	QuantityDelivered decimal.Decimal  `json:"quantity_delivered"`
	Rate              *decimal.Decimal `json:"rate,omitempty"`
}

// IntakeOrderResponse is the full order representation
type IntakeOrderResponse struct {
	ID          uuid.UUID                 `json:"id"`
	OrderNumber string                    `json:"order_number"`
	PartyID     uuid.UUID                 `json:"party_id"`
	OrderDate   time.Time                 `json:"order_date"`
	WorkingDays int                       `json:"working_days"`
	Notes       string                    `json:"notes,omitempty"`
	Status      string                    `json:"status"`
	Lines       []IntakeOrderLineResponse `json:"lines"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// ToIntakeOrderResponse maps the aggregate to its response form
func ToIntakeOrderResponse(order *jobwork.IntakeOrder) IntakeOrderResponse {
	lines := make([]IntakeOrderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, IntakeOrderLineResponse{
			ID:                line.ID,
			ItemID:            line.ItemID,
			ProcessID:         line.ProcessID,
			QuantityOrdered:   line.QuantityOrdered,
			QuantityDelivered: line.QuantityDelivered,
			Rate:              line.Rate,
		})
	}
	return IntakeOrderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		PartyID:     order.PartyID,
		OrderDate:   order.OrderDate,
		WorkingDays: order.WorkingDays,
		Notes:       order.Notes,
		Status:      order.Status.String(),
		Lines:       lines,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

// DeliveryLineRequest is one requested delivery line. The bucket quantities
// must sum to Quantity.
type DeliveryLineRequest struct {
	IntakeOrderLineID uuid.UUID        `json:"intake_order_line_id" binding:"required"`
	Quantity          decimal.Decimal  `json:"quantity" binding:"required"`
	OkQty             decimal.Decimal  `json:"ok_qty"`
	CrQty             decimal.Decimal  `json:"cr_qty"`
	MrQty             decimal.Decimal  `json:"mr_qty"`
	Rate              *decimal.Decimal `json:"rate"`
	PartyRate         *decimal.Decimal `json:"party_rate"`
}

// CreateDeliveryRequest creates a delivery. ChallanNumber is optional: when
// empty the next DC number is generated; when supplied it must be unique for
// the party.
type CreateDeliveryRequest struct {
	ChallanNumber string                `json:"challan_number"`
	PartyID       uuid.UUID             `json:"party_id" binding:"required"`
	ChallanDate   time.Time             `json:"challan_date"`
	Notes         string                `json:"notes"`
	Lines         []DeliveryLineRequest `json:"lines" binding:"required,min=1"`
}

// UpdateDeliveryRequest replaces the delivery's header fields and lines
type UpdateDeliveryRequest struct {
	ChallanDate time.Time             `json:"challan_date"`
	Notes       string                `json:"notes"`
	Lines       []DeliveryLineRequest `json:"lines" binding:"required,min=1"`
}

// DeliveryLineResponse is one delivery line in API responses
type DeliveryLineResponse struct {
	ID                uuid.UUID        `json:"id"`
	IntakeOrderID     uuid.UUID        `json:"intake_order_id"`
	IntakeOrderLineID uuid.UUID        `json:"intake_order_line_id"`
	ItemID            uuid.UUID        `json:"item_id"`
	ProcessID         *uuid.UUID       `json:"process_id,omitempty"`
	Quantity          decimal.Decimal  `json:"quantity"`
	OkQty             decimal.Decimal  `json:"ok_qty"`
	CrQty             decimal.Decimal  `json:"cr_qty"`
	MrQty             decimal.Decimal  `json:"mr_qty"`
	Rate              *decimal.Decimal `json:"rate,omitempty"`
	PartyRate         *decimal.Decimal `json:"party_rate,omitempty"`
}

// DeliveryResponse is the full delivery representation
type DeliveryResponse struct {
	ID            uuid.UUID              `json:"id"`
	ChallanNumber string                 `json:"challan_number"`
	PartyID       uuid.UUID              `json:"party_id"`
	ChallanDate   time.Time              `json:"challan_date"`
	Notes         string                 `json:"notes,omitempty"`
	Status        string                 `json:"status"`
	OrderStatus   string                 `json:"order_status"`
	Lines         []DeliveryLineResponse `json:"lines"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ToDeliveryResponse maps the aggregate to its response form
func ToDeliveryResponse(delivery *jobwork.Delivery) DeliveryResponse {
	lines := make([]DeliveryLineResponse, 0, len(delivery.Lines))
	for _, line := range delivery.Lines {
		lines = append(lines, DeliveryLineResponse{
			ID:                line.ID,
			IntakeOrderID:     line.IntakeOrderID,
			IntakeOrderLineID: line.IntakeOrderLineID,
			ItemID:            line.ItemID,
			ProcessID:         line.ProcessID,
			Quantity:          line.Quantity,
			OkQty:             line.OkQty,
			CrQty:             line.CrQty,
			MrQty:             line.MrQty,
			Rate:              line.Rate,
			PartyRate:         line.PartyRate,
		})
	}
	return DeliveryResponse{
		ID:            delivery.ID,
		ChallanNumber: delivery.ChallanNumber,
		PartyID:       delivery.PartyID,
		ChallanDate:   delivery.ChallanDate,
		Notes:         delivery.Notes,
		Status:        delivery.Status.String(),
		OrderStatus:   delivery.OrderStatus.String(),
		Lines:         lines,
		CreatedAt:     delivery.CreatedAt,
		UpdatedAt:     delivery.UpdatedAt,
	}
}

// ListFilter carries paging and common filters for list endpoints
type ListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	PartyID  *uuid.UUID
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}
