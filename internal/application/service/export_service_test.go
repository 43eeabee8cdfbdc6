package service

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillpoint/fiscal-api/pkg/email"
	"github.com/tillpoint/fiscal-api/pkg/printer"
	"github.com/xuri/excelize/v2"
)

func newRenderSvc() *ExportService {
	return NewExportService(printer.NewNullPrinter(), email.NewEmailService(email.EmailConfig{}), "", 48)
}

func TestRenderCSVCarriesIntegrityColumns(t *testing.T) {
	svc := newRenderSvc()
	report := sealedReport(uuid.New(), 2, "prevhash")

	data, err := svc.RenderCSV(report)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, report.FormattedNumber)
	assert.Contains(t, out, report.ContentHash)
	assert.Contains(t, out, "prevhash")
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, "payment_cash")
}

func TestRenderReceipt(t *testing.T) {
	svc := newRenderSvc()
	report := sealedReport(uuid.New(), 1, "")

	data := svc.RenderReceipt(report)
	assert.True(t, bytes.Contains(data, []byte("Z-REPORT")))
	assert.True(t, bytes.Contains(data, []byte(report.FormattedNumber)))
	assert.True(t, bytes.Contains(data, []byte("PAYMENTS")))
}

func TestRenderXLSX(t *testing.T) {
	svc := newRenderSvc()
	report := sealedReport(uuid.New(), 1, "")

	data, err := svc.RenderXLSX(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	cell, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, report.FormattedNumber, cell)
}
