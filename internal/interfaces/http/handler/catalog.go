package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/jobwork/backend/internal/application/catalog"
	"github.com/jobwork/backend/internal/interfaces/http/dto"
)

// CatalogHandler handles item and process API endpoints
type CatalogHandler struct {
	BaseHandler
	itemService *catalogapp.ItemService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(itemService *catalogapp.ItemService) *CatalogHandler {
	return &CatalogHandler{itemService: itemService}
}

// RegisterRoutes registers the catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	catalog := rg.Group("/catalog")
	{
		catalog.POST("/items", h.CreateItem)
		catalog.GET("/items", h.ListItems)
		catalog.GET("/items/:id", h.GetItem)
		catalog.PUT("/items/:id", h.UpdateItem)
		catalog.POST("/processes", h.CreateProcess)
		catalog.GET("/processes", h.ListProcesses)
	}
}

// CreateItem godoc
// @Summary      Create an item
// @Tags         catalog
// @Router       /catalog/items [post]
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req catalogapp.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, item)
}

// itemListQuery filters the item list endpoint
type itemListQuery struct {
	dto.ListRequest
	IsActive *bool `form:"is_active"`
}

// ListItems godoc
// @Summary      List items
// @Tags         catalog
// @Router       /catalog/items [get]
func (h *CatalogHandler) ListItems(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var query itemListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := buildFilter(query.ListRequest)
	if query.IsActive != nil {
		filter.Filters["is_active"] = *query.IsActive
	}

	items, err := h.itemService.ListItems(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, items)
}

// GetItem godoc
// @Summary      Get an item by ID
// @Tags         catalog
// @Router       /catalog/items/{id} [get]
func (h *CatalogHandler) GetItem(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	item, err := h.itemService.GetItem(c.Request.Context(), scope, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// UpdateItem godoc
// @Summary      Update an item
// @Tags         catalog
// @Router       /catalog/items/{id} [put]
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req catalogapp.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.UpdateItem(c.Request.Context(), scope, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, item)
}

// CreateProcess godoc
// @Summary      Create a process
// @Tags         catalog
// @Router       /catalog/processes [post]
func (h *CatalogHandler) CreateProcess(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req catalogapp.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	process, err := h.itemService.CreateProcess(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, process)
}

// ListProcesses godoc
// @Summary      List processes
// @Tags         catalog
// @Router       /catalog/processes [get]
func (h *CatalogHandler) ListProcesses(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	processes, err := h.itemService.ListProcesses(c.Request.Context(), scope, buildFilter(query))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, processes)
}
