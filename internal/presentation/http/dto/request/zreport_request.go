package request

import "github.com/shopspring/decimal"

// GenerateZReportRequest represents a close-work-period request. The cash
// count is optional at the transport level; store policy decides whether its
// absence blocks generation.
type GenerateZReportRequest struct {
	ActualCashCounted *decimal.Decimal `json:"actual_cash_counted"`
	VarianceNote      string           `json:"variance_note" binding:"max=1000"`
}

// CorrectionRequest represents a correction issuance request
type CorrectionRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=1000"`
}

// ScheduleRequest represents a create/update closing schedule request
type ScheduleRequest struct {
	StoreID            string `json:"store_id" binding:"required,uuid"`
	TerminalID         string `json:"terminal_id" binding:"required,max=32"`
	TimeOfDay          string `json:"time_of_day" binding:"required"`
	Frequency          string `json:"frequency" binding:"required,oneof=daily weekly"`
	Weekday            int    `json:"weekday" binding:"min=0,max=6"`
	Enabled            bool   `json:"enabled"`
	WarningLeadMinutes int    `json:"warning_lead_minutes" binding:"min=0"`
}

// ThresholdRequest represents a variance policy update request
type ThresholdRequest struct {
	WarningAbs        decimal.Decimal `json:"warning_abs" binding:"required"`
	WarningPct        decimal.Decimal `json:"warning_pct" binding:"required"`
	CriticalAbs       decimal.Decimal `json:"critical_abs" binding:"required"`
	CriticalPct       decimal.Decimal `json:"critical_pct" binding:"required"`
	ApproveOnWarning  bool            `json:"approve_on_warning"`
	ApproveOnCritical bool            `json:"approve_on_critical"`
	RequireCashCount  bool            `json:"require_cash_count"`
}
