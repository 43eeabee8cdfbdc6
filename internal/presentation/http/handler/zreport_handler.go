package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/application/service"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
	"github.com/tillpoint/fiscal-api/internal/domain/repository"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/dto/request"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/dto/response"
	"github.com/tillpoint/fiscal-api/internal/presentation/http/middleware"
	"github.com/tillpoint/fiscal-api/pkg/pagination"
)

// ZReportHandler handles Z-Report HTTP requests
type ZReportHandler struct {
	reportService *service.ZReportService
	exportService *service.ExportService
}

// NewZReportHandler creates a new Z-Report handler
func NewZReportHandler(reportService *service.ZReportService, exportService *service.ExportService) *ZReportHandler {
	return &ZReportHandler{
		reportService: reportService,
		exportService: exportService,
	}
}

// Preview returns a non-persisted projection of what Generate would seal
func (h *ZReportHandler) Preview(c *gin.Context) {
	workPeriodID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid work period ID")
		return
	}

	preview, err := h.reportService.Preview(c.Request.Context(), workPeriodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Preview built", preview)
}

// Validate runs the pre-generation checks without side effects
func (h *ZReportHandler) Validate(c *gin.Context) {
	workPeriodID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid work period ID")
		return
	}

	result, err := h.reportService.ValidateCanGenerate(c.Request.Context(), workPeriodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Validation complete", result)
}

// Generate closes a work period into a sealed Z-Report
func (h *ZReportHandler) Generate(c *gin.Context) {
	workPeriodID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid work period ID")
		return
	}

	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req request.GenerateZReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.reportService.Generate(c.Request.Context(), &service.GenerateInput{
		WorkPeriodID:      workPeriodID,
		ActualCashCounted: req.ActualCashCounted,
		VarianceNote:      req.VarianceNote,
		UserID:            *userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if output.Created {
		response.Created(c, "Z-Report generated", output)
		return
	}
	response.OK(c, "Z-Report already exists for this work period", output)
}

// Get returns a sealed report by ID
func (h *ZReportHandler) Get(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid report ID")
		return
	}

	report, err := h.reportService.Get(c.Request.Context(), reportID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Z-Report retrieved", report)
}

// GetBySequence returns a report by its store-scoped sequence number
func (h *ZReportHandler) GetBySequence(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeId")
	if !ok {
		response.BadRequest(c, "Invalid store ID")
		return
	}
	sequence, err := strconv.ParseInt(c.Param("n"), 10, 64)
	if err != nil || sequence < 1 {
		response.BadRequest(c, "Invalid sequence number")
		return
	}

	report, err := h.reportService.GetBySequence(c.Request.Context(), storeID, sequence)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Z-Report retrieved", report)
}

// List returns reports matching the query filters
func (h *ZReportHandler) List(c *gin.Context) {
	params := &repository.ZReportFilterParams{
		Pagination: pagination.DefaultPagination(),
	}
	if err := c.ShouldBindQuery(params.Pagination); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}

	if raw := c.Query("store_id"); raw != "" {
		storeID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid store_id")
			return
		}
		params.StoreID = &storeID
	} else if storeID, ok := middleware.GetStoreID(c); ok {
		params.StoreID = &storeID
	}

	if raw := c.Query("terminal_id"); raw != "" {
		params.TerminalID = &raw
	}
	if raw := c.Query("kind"); raw != "" {
		kind, err := parseReportKind(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.Kind = &kind
	}
	if raw := c.Query("approval"); raw != "" {
		approval, err := parseApprovalStatus(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.Approval = &approval
	}
	if raw := c.Query("start_date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "Invalid start_date")
			return
		}
		params.StartDate = &date
	}
	if raw := c.Query("end_date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "Invalid end_date")
			return
		}
		params.EndDate = &date
	}

	result, err := h.reportService.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Z-Reports retrieved", result)
}

// Approve settles a pending variance sign-off
func (h *ZReportHandler) Approve(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid report ID")
		return
	}
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	report, err := h.reportService.Approve(c.Request.Context(), reportID, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Z-Report approved", report)
}

// Correct issues an append-only correction record
func (h *ZReportHandler) Correct(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid report ID")
		return
	}
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req request.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Correction reason is required")
		return
	}

	correction, err := h.reportService.Correct(c.Request.Context(), reportID, req.Reason, *userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Correction issued", correction)
}

// Verify recomputes one record's hash and chain link
func (h *ZReportHandler) Verify(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid report ID")
		return
	}

	result, err := h.reportService.VerifyReport(c.Request.Context(), reportID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Verification complete", result)
}

// VerifyBatch verifies all records for a store in a date range
func (h *ZReportHandler) VerifyBatch(c *gin.Context) {
	storeID, from, to, ok := h.rangeQuery(c)
	if !ok {
		return
	}

	results, err := h.reportService.VerifyBatch(c.Request.Context(), storeID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Batch verification complete", results)
}

// Gaps scans for missing sequence numbers
func (h *ZReportHandler) Gaps(c *gin.Context) {
	storeID, from, to, ok := h.rangeQuery(c)
	if !ok {
		return
	}

	result, err := h.reportService.CheckForSequenceGaps(c.Request.Context(), storeID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Gap scan complete", result)
}

// ExportCSV streams a sealed report as CSV
func (h *ZReportHandler) ExportCSV(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid report ID")
		return
	}

	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	report, err := h.reportService.ExportRecord(c.Request.Context(), reportID, "csv", *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.exportService.RenderCSV(report)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", report.FormattedNumber))
	c.Data(200, "text/csv", data)
}

// ExportXLSX streams a sealed report as an Excel workbook
func (h *ZReportHandler) ExportXLSX(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid report ID")
		return
	}

	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	report, err := h.reportService.ExportRecord(c.Request.Context(), reportID, "xlsx", *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.exportService.RenderXLSX(report)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", report.FormattedNumber))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// rangeQuery parses the store_id/from/to query triple shared by the batch
// verification and gap scan endpoints.
func (h *ZReportHandler) rangeQuery(c *gin.Context) (uuid.UUID, time.Time, time.Time, bool) {
	var storeID uuid.UUID
	if raw := c.Query("store_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "Invalid store_id")
			return uuid.Nil, time.Time{}, time.Time{}, false
		}
		storeID = parsed
	} else if fromCtx, ok := middleware.GetStoreID(c); ok {
		storeID = fromCtx
	} else {
		response.BadRequest(c, "store_id is required")
		return uuid.Nil, time.Time{}, time.Time{}, false
	}

	from, err := time.Parse("2006-01-02", c.DefaultQuery("from", "1970-01-01"))
	if err != nil {
		response.BadRequest(c, "Invalid from date")
		return uuid.Nil, time.Time{}, time.Time{}, false
	}
	to, err := time.Parse("2006-01-02", c.DefaultQuery("to", time.Now().UTC().Format("2006-01-02")))
	if err != nil {
		response.BadRequest(c, "Invalid to date")
		return uuid.Nil, time.Time{}, time.Time{}, false
	}
	return storeID, from, to, true
}

func parseReportKind(raw string) (enum.ReportKind, error) {
	switch strings.ToLower(raw) {
	case "terminal":
		return enum.ReportKindTerminal, nil
	case "consolidated":
		return enum.ReportKindConsolidated, nil
	case "correction":
		return enum.ReportKindCorrection, nil
	}
	return 0, fmt.Errorf("invalid kind %q", raw)
}

func parseApprovalStatus(raw string) (enum.ApprovalStatus, error) {
	switch strings.ToLower(raw) {
	case "none":
		return enum.ApprovalNone, nil
	case "pending":
		return enum.ApprovalPending, nil
	case "approved":
		return enum.ApprovalApproved, nil
	}
	return 0, fmt.Errorf("invalid approval status %q", raw)
}
