package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/application/service"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/dto/request"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/dto/response"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/middleware"
)

// ScheduleHandler handles closing schedule and variance policy HTTP requests
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

func scheduleInputFromRequest(req *request.ScheduleRequest) (*service.ScheduleInput, bool) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, false
	}
	return &service.ScheduleInput{
		StoreID:     storeID,
		TerminalID:  req.TerminalID,
		TimeOfDay:   req.TimeOfDay,
		Frequency:   req.Frequency,
		Weekday:     time.Weekday(req.Weekday),
		Enabled:     req.Enabled,
		WarningLead: time.Duration(req.WarningLeadMinutes) * time.Minute,
	}, true
}

// List returns the schedules for a store
func (h *ScheduleHandler) List(c *gin.Context) {
	var storeID uuid.UUID
	if raw := c.Query("store_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid store_id")
			return
		}
		storeID = parsed
	} else if fromCtx, ok := middleware.GetStoreID(c); ok {
		storeID = fromCtx
	} else {
		response.BadRequest(c, "store_id is required")
		return
	}

	schedules, err := h.scheduleService.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Schedules retrieved", schedules)
}

// Create registers a new closing schedule
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req request.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	input, ok := scheduleInputFromRequest(&req)
	if !ok {
		response.BadRequest(c, "Invalid store_id")
		return
	}

	schedule, err := h.scheduleService.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Schedule created", schedule)
}

// Update modifies an existing closing schedule
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid schedule ID")
		return
	}

	var req request.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	input, inputOK := scheduleInputFromRequest(&req)
	if !inputOK {
		response.BadRequest(c, "Invalid store_id")
		return
	}

	schedule, err := h.scheduleService.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Schedule updated", schedule)
}

// GetThreshold returns a store's variance policy
func (h *ScheduleHandler) GetThreshold(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeId")
	if !ok {
		response.BadRequest(c, "Invalid store ID")
		return
	}

	threshold, err := h.scheduleService.GetThreshold(c.Request.Context(), storeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Variance policy retrieved", threshold)
}

// UpsertThreshold writes a store's variance policy
func (h *ScheduleHandler) UpsertThreshold(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeId")
	if !ok {
		response.BadRequest(c, "Invalid store ID")
		return
	}

	var req request.ThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	threshold, err := h.scheduleService.UpsertThreshold(c.Request.Context(), &entity.VarianceThreshold{
		StoreID:           storeID,
		WarningAbs:        req.WarningAbs,
		WarningPct:        req.WarningPct,
		CriticalAbs:       req.CriticalAbs,
		CriticalPct:       req.CriticalPct,
		ApproveOnWarning:  req.ApproveOnWarning,
		ApproveOnCritical: req.ApproveOnCritical,
		RequireCashCount:  req.RequireCashCount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Variance policy updated", threshold)
}
