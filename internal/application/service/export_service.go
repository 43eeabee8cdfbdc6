package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/pkg/email"
	"github.com/tillpoint/fiscal-api/pkg/printer"
	"github.com/xuri/excelize/v2"
)

// ExportService renders delivery artifacts for sealed reports. Every
// renderer reads only the persisted record; live transactional data never
// enters an export.
type ExportService struct {
	printer      printer.Printer
	emailService *email.EmailService
	exportPath   string
	charWidth    int
}

// NewExportService creates a new export service
func NewExportService(p printer.Printer, emailService *email.EmailService, exportPath string, charWidth int) *ExportService {
	if charWidth <= 0 {
		charWidth = 48
	}
	return &ExportService{
		printer:      p,
		emailService: emailService,
		exportPath:   exportPath,
		charWidth:    charWidth,
	}
}

// RenderCSV renders a sealed report as CSV.
func (s *ExportService) RenderCSV(report *entity.ZReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"field", "value"},
		{"report_number", report.FormattedNumber},
		{"sequence_number", fmt.Sprintf("%d", report.SequenceNumber)},
		{"kind", report.Kind.String()},
		{"store_id", report.StoreID.String()},
		{"terminal_id", derefString(report.TerminalID)},
		{"report_date", report.ReportDate.Format("2006-01-02")},
		{"generated_at", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
		{"gross_sales", report.GrossSales.StringFixed(2)},
		{"net_sales", report.NetSales.StringFixed(2)},
		{"tax_total", report.TaxTotal.StringFixed(2)},
		{"tip_total", report.TipTotal.StringFixed(2)},
		{"discount_total", report.DiscountTotal.StringFixed(2)},
		{"refund_total", report.RefundTotal.StringFixed(2)},
		{"void_total", report.VoidTotal.StringFixed(2)},
		{"opening_float", report.OpeningFloat.StringFixed(2)},
		{"cash_received", report.CashReceived.StringFixed(2)},
		{"cash_refunds", report.CashRefunds.StringFixed(2)},
		{"cash_payouts", report.CashPayouts.StringFixed(2)},
		{"expected_cash", report.ExpectedCash.StringFixed(2)},
		{"actual_cash_counted", report.ActualCashCounted.StringFixed(2)},
		{"variance", report.Variance.StringFixed(2)},
		{"variance_level", report.VarianceLevel.String()},
		{"approval_status", report.ApprovalStatus.String()},
		{"content_hash", report.ContentHash},
		{"previous_hash", report.PreviousHash},
	}
	for _, p := range report.Payments {
		rows = append(rows, []string{
			fmt.Sprintf("payment_%s", p.Method),
			fmt.Sprintf("%d x %s", p.Count, p.Amount.StringFixed(2)),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	w.Flush()
	return buf.Bytes(), nil
}

// RenderXLSX renders a sealed report as an Excel workbook with a summary
// sheet and a payments sheet.
func (s *ExportService) RenderXLSX(report *entity.ZReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Summary"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	summary := [][]interface{}{
		{"Report", report.FormattedNumber},
		{"Sequence", report.SequenceNumber},
		{"Kind", report.Kind.String()},
		{"Store", report.StoreID.String()},
		{"Terminal", derefString(report.TerminalID)},
		{"Date", report.ReportDate.Format("2006-01-02")},
		{"Generated", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
		{},
		{"Gross sales", report.GrossSales.InexactFloat64()},
		{"Net sales", report.NetSales.InexactFloat64()},
		{"Tax", report.TaxTotal.InexactFloat64()},
		{"Tips", report.TipTotal.InexactFloat64()},
		{"Discounts", report.DiscountTotal.InexactFloat64()},
		{"Refunds", report.RefundTotal.InexactFloat64()},
		{"Voids", report.VoidTotal.InexactFloat64()},
		{},
		{"Opening float", report.OpeningFloat.InexactFloat64()},
		{"Cash received", report.CashReceived.InexactFloat64()},
		{"Cash refunds", report.CashRefunds.InexactFloat64()},
		{"Cash payouts", report.CashPayouts.InexactFloat64()},
		{"Expected cash", report.ExpectedCash.InexactFloat64()},
		{"Counted cash", report.ActualCashCounted.InexactFloat64()},
		{"Variance", report.Variance.InexactFloat64()},
		{"Variance level", report.VarianceLevel.String()},
		{"Approval", report.ApprovalStatus.String()},
		{},
		{"Content hash", report.ContentHash},
		{"Previous hash", report.PreviousHash},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetCellStyle(sheet, "A1", fmt.Sprintf("A%d", len(summary)), headerStyle)
	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 40)

	if len(report.Payments) > 0 {
		paySheet := "Payments"
		if _, err := f.NewSheet(paySheet); err != nil {
			return nil, err
		}
		header := []interface{}{"Method", "Count", "Amount"}
		if err := f.SetSheetRow(paySheet, "A1", &header); err != nil {
			return nil, err
		}
		_ = f.SetCellStyle(paySheet, "A1", "C1", headerStyle)
		for i, p := range report.Payments {
			row := []interface{}{p.Method, p.Count, p.Amount.InexactFloat64()}
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := f.SetSheetRow(paySheet, cell, &row); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderReceipt renders a sealed report as an ESC/POS byte stream for the
// journal printer.
func (s *ExportService) RenderReceipt(report *entity.ZReport) []byte {
	doc := printer.NewDocument(s.charWidth)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text("Z-REPORT").
		SetFontSize(printer.FontNormal).
		Text(report.FormattedNumber).
		SetBold(false).
		Text(report.ReportDate.Format("2006-01-02")).
		SetAlign(printer.AlignLeft).
		Separator('=')

	doc.KeyValue("Gross sales", report.GrossSales.StringFixed(2)).
		KeyValue("Net sales", report.NetSales.StringFixed(2)).
		KeyValue("Tax", report.TaxTotal.StringFixed(2)).
		KeyValue("Tips", report.TipTotal.StringFixed(2)).
		KeyValue("Discounts", report.DiscountTotal.StringFixed(2)).
		KeyValue("Refunds", report.RefundTotal.StringFixed(2)).
		KeyValue("Voids", report.VoidTotal.StringFixed(2)).
		Separator('-')

	if len(report.Payments) > 0 {
		doc.SetBold(true).Text("PAYMENTS").SetBold(false)
		for _, p := range report.Payments {
			doc.KeyValue(fmt.Sprintf("%s (%d)", p.Method, p.Count), p.Amount.StringFixed(2))
		}
		doc.Separator('-')
	}

	doc.SetBold(true).Text("CASH DRAWER").SetBold(false).
		KeyValue("Opening float", report.OpeningFloat.StringFixed(2)).
		KeyValue("Cash received", report.CashReceived.StringFixed(2)).
		KeyValue("Cash refunds", report.CashRefunds.StringFixed(2)).
		KeyValue("Cash payouts", report.CashPayouts.StringFixed(2)).
		KeyValue("Expected", report.ExpectedCash.StringFixed(2)).
		KeyValue("Counted", report.ActualCashCounted.StringFixed(2)).
		SetBold(true).
		KeyValue("VARIANCE", report.Variance.StringFixed(2)).
		SetBold(false).
		KeyValue("Level", report.VarianceLevel.String()).
		Separator('=')

	doc.SetAlign(printer.AlignCenter).
		Text("Hash " + shortHash(report.ContentHash)).
		FeedLines(3).
		Cut()

	return doc.Bytes()
}

// Print sends the report receipt to the configured printer.
func (s *ExportService) Print(report *entity.ZReport) error {
	return s.printer.Print(s.RenderReceipt(report))
}

// Email sends the closing summary to the configured back-office recipients.
func (s *ExportService) Email(report *entity.ZReport) error {
	terminal := derefString(report.TerminalID)
	summary := &email.ReportSummary{
		FormattedNumber: report.FormattedNumber,
		StoreID:         report.StoreID.String(),
		TerminalID:      terminal,
		ReportDate:      report.ReportDate.Format("2006-01-02"),
		GeneratedAt:     report.GeneratedAt.UTC().Format("2006-01-02 15:04:05"),
		GrossSales:      report.GrossSales.StringFixed(2),
		NetSales:        report.NetSales.StringFixed(2),
		TaxTotal:        report.TaxTotal.StringFixed(2),
		ExpectedCash:    report.ExpectedCash.StringFixed(2),
		ActualCash:      report.ActualCashCounted.StringFixed(2),
		Variance:        report.Variance.StringFixed(2),
		VarianceLevel:   report.VarianceLevel.String(),
		ApprovalStatus:  report.ApprovalStatus.String(),
		ContentHash:     report.ContentHash,
	}
	return s.emailService.SendReportSummary(summary)
}

// ExportToFile writes the CSV and XLSX artifacts into the export directory
// and returns their paths.
func (s *ExportService) ExportToFile(report *entity.ZReport) ([]string, error) {
	if err := os.MkdirAll(s.exportPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	base := report.FormattedNumber
	var paths []string

	csvData, err := s.RenderCSV(report)
	if err != nil {
		return nil, err
	}
	csvPath := filepath.Join(s.exportPath, base+".csv")
	if err := os.WriteFile(csvPath, csvData, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write csv export: %w", err)
	}
	paths = append(paths, csvPath)

	xlsxData, err := s.RenderXLSX(report)
	if err != nil {
		return nil, err
	}
	xlsxPath := filepath.Join(s.exportPath, base+".xlsx")
	if err := os.WriteFile(xlsxPath, xlsxData, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write xlsx export: %w", err)
	}
	paths = append(paths, xlsxPath)

	return paths, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func shortHash(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
