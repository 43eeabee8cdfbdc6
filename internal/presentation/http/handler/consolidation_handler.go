package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tillpoint/fiscal-api/internal/application/service"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/dto/response"
)

// ConsolidationHandler handles store-level rollup HTTP requests
type ConsolidationHandler struct {
	consolidationService *service.ConsolidationService
}

// NewConsolidationHandler creates a new consolidation handler
func NewConsolidationHandler(consolidationService *service.ConsolidationService) *ConsolidationHandler {
	return &ConsolidationHandler{consolidationService: consolidationService}
}

// Get returns the (possibly partial) rollup for a store and date
func (h *ConsolidationHandler) Get(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeId")
	if !ok {
		response.BadRequest(c, "Invalid store ID")
		return
	}
	date, ok := parseDateQuery(c, "date")
	if !ok {
		response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	view, err := h.consolidationService.GetConsolidated(c.Request.Context(), storeID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Consolidated view built", view)
}

// Generate persists the store-level rollup as a sealed record
func (h *ConsolidationHandler) Generate(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeId")
	if !ok {
		response.BadRequest(c, "Invalid store ID")
		return
	}
	date, ok := parseDateQuery(c, "date")
	if !ok {
		response.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	report, err := h.consolidationService.GenerateConsolidated(c.Request.Context(), storeID, date, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Consolidated Z-Report generated", report)
}
