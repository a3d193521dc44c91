package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobwork/backend/internal/domain/billing"
)

// InvoiceLineRequest bills one pool or one direct sale. Lines referencing a
// delivery draw from its pending pool; the bucket quantities may be left
// out, in which case they are backfilled from the pool's remainder. A line
// with no delivery reference is a direct sale and needs an explicit item.
type InvoiceLineRequest struct {
	ItemID          *uuid.UUID       `json:"item_id"`
	DeliveryID      *uuid.UUID       `json:"delivery_id"`
	DeliveryLineIDs []uuid.UUID      `json:"delivery_line_ids"`
	Quantity        decimal.Decimal  `json:"quantity" binding:"required"`
	OkQty           *decimal.Decimal `json:"ok_qty"`
	CrQty           *decimal.Decimal `json:"cr_qty"`
	MrQty           *decimal.Decimal `json:"mr_qty"`
	Rate            *decimal.Decimal `json:"rate"`
}

// CreateInvoiceRequest creates an invoice. InvoiceNumber is optional: when
// empty the next INV number is generated.
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number"`
	PartyID       uuid.UUID            `json:"party_id" binding:"required"`
	InvoiceDate   time.Time            `json:"invoice_date"`
	Notes         string               `json:"notes"`
	Issue         bool                 `json:"issue"`
	Lines         []InvoiceLineRequest `json:"lines" binding:"required,min=1"`
}

// UpdateInvoiceRequest replaces the invoice's header fields and lines
type UpdateInvoiceRequest struct {
	InvoiceDate time.Time            `json:"invoice_date"`
	Notes       string               `json:"notes"`
	Lines       []InvoiceLineRequest `json:"lines" binding:"required,min=1"`
}

// InvoiceLineResponse is one invoice line in API responses
type InvoiceLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	ItemID          uuid.UUID       `json:"item_id"`
	DeliveryID      *uuid.UUID      `json:"delivery_id,omitempty"`
	DeliveryLineIDs []uuid.UUID     `json:"delivery_line_ids,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	OkQty           decimal.Decimal `json:"ok_qty"`
	CrQty           decimal.Decimal `json:"cr_qty"`
	MrQty           decimal.Decimal `json:"mr_qty"`
	Rate            decimal.Decimal `json:"rate"`
	Amount          decimal.Decimal `json:"amount"`
	DirectSale      bool            `json:"direct_sale"`
}

// InvoiceResponse is the full invoice representation
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	PartyID       uuid.UUID             `json:"party_id"`
	InvoiceDate   time.Time             `json:"invoice_date"`
	Status        string                `json:"status"`
	Notes         string                `json:"notes,omitempty"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Lines         []InvoiceLineResponse `json:"lines"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ToInvoiceResponse maps the aggregate to its response form
func ToInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:              line.ID,
			ItemID:          line.ItemID,
			DeliveryID:      line.DeliveryID,
			DeliveryLineIDs: line.DeliveryLineIDs,
			Quantity:        line.Quantity,
			OkQty:           line.OkQty,
			CrQty:           line.CrQty,
			MrQty:           line.MrQty,
			Rate:            line.Rate,
			Amount:          line.Amount,
			DirectSale:      line.IsDirectSale(),
		})
	}
	return InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		PartyID:       invoice.PartyID,
		InvoiceDate:   invoice.InvoiceDate,
		Status:        invoice.Status.String(),
		Notes:         invoice.Notes,
		TotalAmount:   invoice.TotalAmount,
		Lines:         lines,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
}
