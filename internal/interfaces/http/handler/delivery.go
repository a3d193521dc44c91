package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jobworkapp "github.com/jobwork/backend/internal/application/jobwork"
)

// DeliveryHandler handles delivery challan API endpoints
type DeliveryHandler struct {
	BaseHandler
	deliveryService *jobworkapp.DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(deliveryService *jobworkapp.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService}
}

// RegisterRoutes registers the delivery routes
func (h *DeliveryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	deliveries := rg.Group("/jobwork/deliveries")
	{
		deliveries.POST("", h.Create)
		deliveries.GET("", h.List)
		deliveries.GET("/:id", h.GetByID)
		deliveries.PUT("/:id", h.Update)
		deliveries.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary      Create a delivery challan
// @Description  Record processed goods returned against intake orders, graded
// @Description  into OK, CR and MR buckets per line. Updates the delivered
// @Description  counters and order statuses and writes the ledger entries in
// @Description  the same transaction.
// @Tags         jobwork
// @Router       /jobwork/deliveries [post]
func (h *DeliveryHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req jobworkapp.CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	delivery, err := h.deliveryService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, delivery)
}

// GetByID godoc
// @Summary      Get delivery by ID
// @Tags         jobwork
// @Router       /jobwork/deliveries/{id} [get]
func (h *DeliveryHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	delivery, err := h.deliveryService.GetByID(c.Request.Context(), scope, deliveryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, delivery)
}

// List godoc
// @Summary      List deliveries
// @Tags         jobwork
// @Router       /jobwork/deliveries [get]
func (h *DeliveryHandler) List(c *gin.Context) {
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

	page, err := h.deliveryService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a delivery challan
// @Description  Reverses the old quantities and applies the new lines in one
// @Description  transaction. Blocked with 409 when the delivery is billed.
// @Tags         jobwork
// @Router       /jobwork/deliveries/{id} [put]
func (h *DeliveryHandler) Update(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	var req jobworkapp.UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	delivery, err := h.deliveryService.Update(c.Request.Context(), scope, deliveryID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, delivery)
}

// Delete godoc
// @Summary      Delete a delivery challan
// @Description  Blocked with 409 while any invoice references the delivery.
// @Tags         jobwork
// @Router       /jobwork/deliveries/{id} [delete]
func (h *DeliveryHandler) Delete(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid delivery ID format")
		return
	}

	if err := h.deliveryService.Delete(c.Request.Context(), scope, deliveryID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
