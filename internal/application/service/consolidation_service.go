package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
	"github.com/tillpoint/fiscal-api/internal/domain/repository"
	"github.com/tillpoint/fiscal-api/pkg/apperror"
	"github.com/tillpoint/fiscal-api/pkg/pagination"
)

// ConsolidatedView is the store-level rollup for one report date. When some
// terminals have not finalized yet the view is marked partial and names
// them; it never blocks and never fills in guesses.
type ConsolidatedView struct {
	StoreID          uuid.UUID             `json:"store_id"`
	ReportDate       time.Time             `json:"report_date"`
	Partial          bool                  `json:"partial"`
	PendingTerminals []string              `json:"pending_terminals"`
	ExcludedReports  []uuid.UUID           `json:"excluded_reports,omitempty"`
	SourceReportIDs  []uuid.UUID           `json:"source_report_ids"`
	GrossSales       decimal.Decimal       `json:"gross_sales"`
	NetSales         decimal.Decimal       `json:"net_sales"`
	TaxTotal         decimal.Decimal       `json:"tax_total"`
	TipTotal         decimal.Decimal       `json:"tip_total"`
	DiscountTotal    decimal.Decimal       `json:"discount_total"`
	RefundTotal      decimal.Decimal       `json:"refund_total"`
	VoidTotal        decimal.Decimal       `json:"void_total"`
	ExpectedCash     decimal.Decimal       `json:"expected_cash"`
	ActualCash       decimal.Decimal       `json:"actual_cash"`
	Variance         decimal.Decimal       `json:"variance"`
	Payments         []entity.PaymentTotal `json:"payments"`
}

// ConsolidationService rolls finalized terminal reports up to store level.
type ConsolidationService struct {
	reportRepo     repository.ZReportRepository
	workPeriodRepo repository.WorkPeriodRepository
	thresholdRepo  repository.ThresholdRepository
	integritySvc   *IntegrityService
}

// NewConsolidationService creates a new consolidation service
func NewConsolidationService(
	reportRepo repository.ZReportRepository,
	workPeriodRepo repository.WorkPeriodRepository,
	thresholdRepo repository.ThresholdRepository,
	integritySvc *IntegrityService,
) *ConsolidationService {
	return &ConsolidationService{
		reportRepo:     reportRepo,
		workPeriodRepo: workPeriodRepo,
		thresholdRepo:  thresholdRepo,
		integritySvc:   integritySvc,
	}
}

// GetConsolidated builds the rollup view for a store and date. Reports still
// pending approval are excluded from the totals and listed.
func (s *ConsolidationService) GetConsolidated(ctx context.Context, storeID uuid.UUID, date time.Time) (*ConsolidatedView, error) {
	reports, err := s.reportRepo.ListByStoreAndDate(ctx, storeID, date)
	if err != nil {
		return nil, err
	}

	openPeriods, err := s.workPeriodRepo.ListOpenByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	view := &ConsolidatedView{
		StoreID:          storeID,
		ReportDate:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		PendingTerminals: []string{},
		SourceReportIDs:  []uuid.UUID{},
	}

	for _, period := range openPeriods {
		view.PendingTerminals = append(view.PendingTerminals, period.TerminalID)
	}

	paymentTotals := make(map[string]*entity.PaymentTotal)
	for i := range reports {
		r := &reports[i]
		if r.ApprovalStatus == enum.ApprovalPending {
			view.ExcludedReports = append(view.ExcludedReports, r.ID)
			continue
		}
		view.SourceReportIDs = append(view.SourceReportIDs, r.ID)
		view.GrossSales = view.GrossSales.Add(r.GrossSales)
		view.NetSales = view.NetSales.Add(r.NetSales)
		view.TaxTotal = view.TaxTotal.Add(r.TaxTotal)
		view.TipTotal = view.TipTotal.Add(r.TipTotal)
		view.DiscountTotal = view.DiscountTotal.Add(r.DiscountTotal)
		view.RefundTotal = view.RefundTotal.Add(r.RefundTotal)
		view.VoidTotal = view.VoidTotal.Add(r.VoidTotal)
		view.ExpectedCash = view.ExpectedCash.Add(r.ExpectedCash)
		view.ActualCash = view.ActualCash.Add(r.ActualCashCounted)
		view.Variance = view.Variance.Add(r.Variance)

		for _, p := range r.Payments {
			if existing, ok := paymentTotals[p.Method]; ok {
				existing.Count += p.Count
				existing.Amount = existing.Amount.Add(p.Amount)
			} else {
				paymentTotals[p.Method] = &entity.PaymentTotal{
					Method: p.Method,
					Count:  p.Count,
					Amount: p.Amount,
				}
			}
		}
	}

	methods := make([]string, 0, len(paymentTotals))
	for m := range paymentTotals {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		view.Payments = append(view.Payments, *paymentTotals[m])
	}

	view.Partial = len(view.PendingTerminals) > 0 || len(view.ExcludedReports) > 0
	return view, nil
}

// GenerateConsolidated persists the store-level rollup as a sealed record in
// the store's sequence chain with lineage rows back to the terminal reports.
// Requires completeness: no open periods, no pending approvals, at least one
// terminal report.
func (s *ConsolidationService) GenerateConsolidated(ctx context.Context, storeID uuid.UUID, date time.Time, userID uuid.UUID) (*entity.ZReport, error) {
	view, err := s.GetConsolidated(ctx, storeID, date)
	if err != nil {
		return nil, err
	}

	if len(view.SourceReportIDs) == 0 {
		return nil, apperror.NewConflictError("No finalized terminal reports for the requested date")
	}
	if view.Partial {
		var issues []apperror.FieldError
		for _, terminal := range view.PendingTerminals {
			issues = append(issues, apperror.FieldError{
				Field:   "pending_terminal",
				Message: fmt.Sprintf("Terminal %s has an open work period", terminal),
			})
		}
		for _, id := range view.ExcludedReports {
			issues = append(issues, apperror.FieldError{
				Field:   "pending_approval",
				Message: fmt.Sprintf("Report %s is pending approval", id),
			})
		}
		return nil, apperror.NewBlockedError("Store day is not complete", issues)
	}

	existing, err := s.findExistingConsolidated(ctx, storeID, view.ReportDate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	report := &entity.ZReport{
		StoreID:           storeID,
		Kind:              enum.ReportKindConsolidated,
		ReportDate:        view.ReportDate,
		GeneratedAt:       now,
		GeneratedByID:     userID,
		GrossSales:        view.GrossSales,
		NetSales:          view.NetSales,
		TaxTotal:          view.TaxTotal,
		TipTotal:          view.TipTotal,
		DiscountTotal:     view.DiscountTotal,
		RefundTotal:       view.RefundTotal,
		VoidTotal:         view.VoidTotal,
		ExpectedCash:      view.ExpectedCash,
		ActualCashCounted: view.ActualCash,
		Variance:          view.Variance,
	}

	policy, err := s.thresholdRepo.GetByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	report.VarianceLevel = ClassifyVariance(view.Variance, view.ExpectedCash, policy)

	for _, p := range view.Payments {
		report.Payments = append(report.Payments, entity.ZReportPayment{
			Method: p.Method,
			Count:  p.Count,
			Amount: p.Amount,
		})
	}
	for _, sourceID := range view.SourceReportIDs {
		report.Sources = append(report.Sources, entity.ZReportSource{SourceReportID: sourceID})
	}

	effects := repository.FinalizeSideEffects{
		Audit: &entity.AuditLog{
			ActorID:    userID,
			Action:     entity.AuditActionConsolidate,
			EntityType: "z_report",
			Detail:     fmt.Sprintf("consolidated %d terminal reports for %s", len(view.SourceReportIDs), view.ReportDate.Format("2006-01-02")),
		},
		OutboxChannels: []string{entity.OutboxChannelEmail, entity.OutboxChannelExport},
	}

	result, _, err := s.reportRepo.Finalize(ctx, report, effects, func(sequenceNumber int64, previousHash string) error {
		report.SequenceNumber = sequenceNumber
		report.FormattedNumber = entity.FormatReportNumber(report.Kind, now.Year(), "", sequenceNumber)
		s.integritySvc.Seal(report, previousHash)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// findExistingConsolidated makes repeated consolidation requests for the same
// day idempotent. Consolidated records have no work period, so the unique
// index does not cover them; this lookup does.
func (s *ConsolidationService) findExistingConsolidated(ctx context.Context, storeID uuid.UUID, date time.Time) (*entity.ZReport, error) {
	kind := enum.ReportKindConsolidated
	params := &repository.ZReportFilterParams{
		Pagination: pagination.DefaultPagination(),
		StoreID:    &storeID,
		Kind:       &kind,
		StartDate:  &date,
		EndDate:    &date,
	}
	reports, _, err := s.reportRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}
