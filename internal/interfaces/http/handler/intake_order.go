package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jobworkapp "github.com/jobwork/backend/internal/application/jobwork"
	"github.com/jobwork/backend/internal/interfaces/http/dto"
)

// IntakeOrderHandler handles intake order API endpoints
type IntakeOrderHandler struct {
	BaseHandler
	orderService *jobworkapp.IntakeOrderService
}

// NewIntakeOrderHandler creates a new IntakeOrderHandler
func NewIntakeOrderHandler(orderService *jobworkapp.IntakeOrderService) *IntakeOrderHandler {
	return &IntakeOrderHandler{orderService: orderService}
}

// RegisterRoutes registers the intake order routes
func (h *IntakeOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/jobwork/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.GetByID)
		orders.GET("/:id/progress", h.GetProgress)
		orders.PUT("/:id", h.Update)
		orders.DELETE("/:id", h.Delete)
	}
}

// documentListQuery carries paging plus the filters shared by the document
// list endpoints
type documentListQuery struct {
	dto.ListRequest
	PartyID  string `form:"party_id" binding:"omitempty,uuid"`
	Status   string `form:"status"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
}

// toListFilter converts a bound query into the application filter
func (q documentListQuery) toListFilter() jobworkapp.ListFilter {
	filter := jobworkapp.ListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   q.Search,
		Status:   q.Status,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if q.PartyID != "" {
		if id, err := uuid.Parse(q.PartyID); err == nil {
			filter.PartyID = &id
		}
	}
	if q.DateFrom != "" {
		if t, err := time.Parse("2006-01-02", q.DateFrom); err == nil {
			filter.DateFrom = &t
		}
	}
	if q.DateTo != "" {
		if t, err := time.Parse("2006-01-02", q.DateTo); err == nil {
			filter.DateTo = &t
		}
	}
	return filter
}

// Create godoc
// @Summary      Create an intake order
// @Description  Register material received from a party for processing. When
// @Description  order_number is empty the next PC number is generated.
// @Tags         jobwork
// @Param        X-Company-ID header string true "Company ID"
// @Param        X-Fiscal-Year-ID header string true "Fiscal year ID"
// @Router       /jobwork/orders [post]
func (h *IntakeOrderHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req jobworkapp.CreateIntakeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @Summary      Get intake order by ID
// @Tags         jobwork
// @Router       /jobwork/orders/{id} [get]
func (h *IntakeOrderHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), scope, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetProgress godoc
// @Summary      Get delivery progress per order line
// @Tags         jobwork
// @Router       /jobwork/orders/{id}/progress [get]
func (h *IntakeOrderHandler) GetProgress(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	progress, err := h.orderService.GetProgress(c.Request.Context(), scope, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, progress)
}

// List godoc
// @Summary      List intake orders
// @Tags         jobwork
// @Router       /jobwork/orders [get]
func (h *IntakeOrderHandler) List(c *gin.Context) {
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
	filter := query.toListFilter()

	page, err := h.orderService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update an intake order
// @Description  Replaces header fields and lines. Lines already referenced by
// @Description  a delivery cannot be removed or shrunk below the delivered
// @Description  quantity.
// @Tags         jobwork
// @Router       /jobwork/orders/{id} [put]
func (h *IntakeOrderHandler) Update(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req jobworkapp.UpdateIntakeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), scope, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete godoc
// @Summary      Delete an intake order
// @Description  Blocked with 409 while any delivery references the order.
// @Tags         jobwork
// @Router       /jobwork/orders/{id} [delete]
func (h *IntakeOrderHandler) Delete(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), scope, orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
