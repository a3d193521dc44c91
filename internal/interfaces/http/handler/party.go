package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	partnerapp "github.com/jobwork/backend/internal/application/partner"
	"github.com/jobwork/backend/internal/interfaces/http/dto"
)

// PartyHandler handles party API endpoints
type PartyHandler struct {
	BaseHandler
	partyService *partnerapp.PartyService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(partyService *partnerapp.PartyService) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

// RegisterRoutes registers the party routes
func (h *PartyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	parties := rg.Group("/partner/parties")
	{
		parties.POST("", h.Create)
		parties.GET("", h.List)
		parties.GET("/:id", h.GetByID)
		parties.PUT("/:id", h.Update)
	}
}

// Create godoc
// @Summary      Create a party
// @Tags         partner
// @Router       /partner/parties [post]
func (h *PartyHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req partnerapp.PartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	party, err := h.partyService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, party)
}

// partyListQuery filters the party list endpoint
type partyListQuery struct {
	dto.ListRequest
	IsActive *bool `form:"is_active"`
}

// List godoc
// @Summary      List parties
// @Tags         partner
// @Router       /partner/parties [get]
func (h *PartyHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var query partyListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := buildFilter(query.ListRequest)
	if query.IsActive != nil {
		filter.Filters["is_active"] = *query.IsActive
	}

	parties, err := h.partyService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, parties)
}

// GetByID godoc
// @Summary      Get a party by ID
// @Tags         partner
// @Router       /partner/parties/{id} [get]
func (h *PartyHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	party, err := h.partyService.GetByID(c.Request.Context(), scope, partyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, party)
}

// Update godoc
// @Summary      Update a party
// @Tags         partner
// @Router       /partner/parties/{id} [put]
func (h *PartyHandler) Update(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID format")
		return
	}

	var req partnerapp.PartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	party, err := h.partyService.Update(c.Request.Context(), scope, partyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, party)
}
