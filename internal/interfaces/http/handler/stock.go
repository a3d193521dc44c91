package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	stockapp "github.com/jobwork/backend/internal/application/stock"
	"github.com/jobwork/backend/internal/interfaces/http/dto"
)

// StockHandler handles stock ledger API endpoints
type StockHandler struct {
	BaseHandler
	ledgerService    *stockapp.LedgerService
	recomputeService *stockapp.RecomputeService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledgerService *stockapp.LedgerService, recomputeService *stockapp.RecomputeService) *StockHandler {
	return &StockHandler{
		ledgerService:    ledgerService,
		recomputeService: recomputeService,
	}
}

// RegisterRoutes registers the stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.GET("/entries", h.ListEntries)
		stock.GET("/balances", h.Balances)
		stock.GET("/balances/:item_id", h.Balance)
		stock.POST("/opening", h.RecordOpening)
		stock.POST("/recompute", h.Recompute)
	}
}

// entryListQuery filters the ledger entry list endpoint
type entryListQuery struct {
	dto.ListRequest
	ItemID        string `form:"item_id" binding:"omitempty,uuid"`
	PartyID       string `form:"party_id" binding:"omitempty,uuid"`
	ReferenceType string `form:"reference_type"`
	DateFrom      string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo        string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
}

// ListEntries godoc
// @Summary      List stock ledger entries
// @Tags         stock
// @Router       /stock/entries [get]
func (h *StockHandler) ListEntries(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var query entryListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := buildFilter(query.ListRequest)
	if query.ItemID != "" {
		if id, parseErr := uuid.Parse(query.ItemID); parseErr == nil {
			filter.Filters["item_id"] = id
		}
	}
	if query.PartyID != "" {
		if id, parseErr := uuid.Parse(query.PartyID); parseErr == nil {
			filter.Filters["party_id"] = id
		}
	}
	if query.ReferenceType != "" {
		filter.Filters["reference_type"] = query.ReferenceType
	}
	if query.DateFrom != "" {
		if t, parseErr := time.Parse("2006-01-02", query.DateFrom); parseErr == nil {
			filter.Filters["date_from"] = t
		}
	}
	if query.DateTo != "" {
		if t, parseErr := time.Parse("2006-01-02", query.DateTo); parseErr == nil {
			filter.Filters["date_to"] = t
		}
	}

	page, err := h.ledgerService.ListEntries(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, filter.Page, filter.PageSize)
}

// parseAsOf reads the optional as_of query date
func parseAsOf(c *gin.Context) (*time.Time, error) {
	asOfStr := c.Query("as_of")
	if asOfStr == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Balance godoc
// @Summary      Get one item's stock balance
// @Description  Signed sum of the item's ledger entries, optionally as of a
// @Description  date (as_of=YYYY-MM-DD).
// @Tags         stock
// @Router       /stock/balances/{item_id} [get]
func (h *StockHandler) Balance(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	asOf, err := parseAsOf(c)
	if err != nil {
		h.BadRequest(c, "as_of must be formatted as YYYY-MM-DD")
		return
	}

	balance, err := h.ledgerService.Balance(c.Request.Context(), scope, itemID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"item_id": itemID, "balance": balance})
}

// Balances godoc
// @Summary      Get stock balances for all items
// @Tags         stock
// @Router       /stock/balances [get]
func (h *StockHandler) Balances(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	asOf, err := parseAsOf(c)
	if err != nil {
		h.BadRequest(c, "as_of must be formatted as YYYY-MM-DD")
		return
	}

	balances, err := h.ledgerService.Balances(c.Request.Context(), scope, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balances)
}

// RecordOpening godoc
// @Summary      Record an opening stock balance
// @Tags         stock
// @Router       /stock/opening [post]
func (h *StockHandler) RecordOpening(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req stockapp.RecordOpeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entry, err := h.ledgerService.RecordOpening(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// Recompute godoc
// @Summary      Recompute the scope's derived data
// @Description  Destructively replays the stock ledger (keeping opening
// @Description  entries), delivered counters and document statuses from the
// @Description  source documents. Idempotent.
// @Tags         stock
// @Router       /stock/recompute [post]
func (h *StockHandler) Recompute(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	result, err := h.recomputeService.Recompute(c.Request.Context(), scope)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
