package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/jobwork/backend/internal/application/billing"
)

// InvoiceHandler handles billing API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
	pendingService *billingapp.PendingService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService, pendingService *billingapp.PendingService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		pendingService: pendingService,
	}
}

// RegisterRoutes registers the billing routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	billing := rg.Group("/billing")
	{
		billing.POST("/invoices", h.Create)
		billing.GET("/invoices", h.List)
		billing.GET("/invoices/:id", h.GetByID)
		billing.PUT("/invoices/:id", h.Update)
		billing.DELETE("/invoices/:id", h.Delete)
		billing.GET("/pending", h.ListPending)
	}
}

// Create godoc
// @Summary      Create an invoice
// @Description  Bill pending delivered quantities or direct sales. When
// @Description  invoice_number is empty the next INV number is generated.
// @Tags         billing
// @Router       /billing/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req billingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetByID godoc
// @Summary      Get invoice by ID
// @Tags         billing
// @Router       /billing/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), scope, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List godoc
// @Summary      List invoices
// @Tags         billing
// @Router       /billing/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var query documentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := buildFilter(query.ListRequest)
	if query.PartyID != "" {
		if id, err := uuid.Parse(query.PartyID); err == nil {
			filter.Filters["party_id"] = id
		}
	}
	if query.Status != "" {
		filter.Filters["status"] = query.Status
	}
	if query.DateFrom != "" {
		if t, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			filter.Filters["date_from"] = t
		}
	}
	if query.DateTo != "" {
		if t, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			filter.Filters["date_to"] = t
		}
	}

	page, err := h.invoiceService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update an invoice
// @Description  Reverts the old lines' effects and applies the new ones in
// @Description  one transaction. Blocked with 409 while a payment is
// @Description  allocated.
// @Tags         billing
// @Router       /billing/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req billingapp.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), scope, invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Delete godoc
// @Summary      Delete an invoice
// @Tags         billing
// @Router       /billing/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), scope, invoiceID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// pendingQuery filters the pending pools endpoint
type pendingQuery struct {
	PartyID          string `form:"party_id" binding:"omitempty,uuid"`
	ExcludeInvoiceID string `form:"exclude_invoice_id" binding:"omitempty,uuid"`
}

// ListPending godoc
// @Summary      List pending billable pools
// @Description  Delivered-but-unbilled quantities grouped by delivery, item
// @Description  and rate. Pass exclude_invoice_id while editing an invoice so
// @Description  its own lines do not count as billed.
// @Tags         billing
// @Router       /billing/pending [get]
func (h *InvoiceHandler) ListPending(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var query pendingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var partyID *uuid.UUID
	if query.PartyID != "" {
		if id, parseErr := uuid.Parse(query.PartyID); parseErr == nil {
			partyID = &id
		}
	}
	var excludeInvoiceID *uuid.UUID
	if query.ExcludeInvoiceID != "" {
		if id, parseErr := uuid.Parse(query.ExcludeInvoiceID); parseErr == nil {
			excludeInvoiceID = &id
		}
	}

	pools, err := h.pendingService.ListPending(c.Request.Context(), scope, partyID, excludeInvoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, pools)
}
