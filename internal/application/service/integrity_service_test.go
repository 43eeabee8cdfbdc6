package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
)

func sealedReport(storeID uuid.UUID, seq int64, previousHash string) *entity.ZReport {
	terminal := "T1"
	periodID := uuid.New()
	report := &entity.ZReport{
		ID:                uuid.New(),
		StoreID:           storeID,
		TerminalID:        &terminal,
		WorkPeriodID:      &periodID,
		Kind:              enum.ReportKindTerminal,
		SequenceNumber:    seq,
		FormattedNumber:   entity.FormatReportNumber(enum.ReportKindTerminal, 2026, terminal, seq),
		ReportDate:        time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		GeneratedAt:       time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC),
		GeneratedByID:     uuid.New(),
		GrossSales:        decimal.NewFromInt(1200),
		NetSales:          decimal.NewFromInt(1000),
		TaxTotal:          decimal.NewFromInt(150),
		TipTotal:          decimal.NewFromInt(30),
		DiscountTotal:     decimal.NewFromInt(50),
		RefundTotal:       decimal.NewFromInt(20),
		VoidTotal:         decimal.NewFromInt(10),
		OpeningFloat:      decimal.NewFromInt(100),
		CashReceived:      decimal.NewFromInt(800),
		CashRefunds:       decimal.NewFromInt(15),
		CashPayouts:       decimal.NewFromInt(25),
		ExpectedCash:      decimal.NewFromInt(860),
		ActualCashCounted: decimal.NewFromInt(855),
		Variance:          decimal.NewFromInt(-5),
		VarianceLevel:     enum.VarianceExact,
		Payments: []entity.ZReportPayment{
			{Method: "cash", Count: 12, Amount: decimal.NewFromInt(800)},
			{Method: "card", Count: 8, Amount: decimal.NewFromInt(400)},
		},
	}
	NewIntegrityService().Seal(report, previousHash)
	return report
}

func TestSealIsDeterministic(t *testing.T) {
	svc := NewIntegrityService()
	storeID := uuid.New()

	report := sealedReport(storeID, 1, "")
	first := report.ContentHash
	require.NotEmpty(t, first)
	assert.Equal(t, HashAlgorithm, report.HashAlgorithm)
	assert.Len(t, first, 64)

	svc.Seal(report, report.PreviousHash)
	assert.Equal(t, first, report.ContentHash)
}

func TestSealPaymentOrderDoesNotMatter(t *testing.T) {
	svc := NewIntegrityService()
	report := sealedReport(uuid.New(), 1, "")
	before := report.ContentHash

	report.Payments[0], report.Payments[1] = report.Payments[1], report.Payments[0]
	svc.Seal(report, report.PreviousHash)
	assert.Equal(t, before, report.ContentHash)
}

func TestVerifyDetectsFinancialTamper(t *testing.T) {
	svc := NewIntegrityService()
	report := sealedReport(uuid.New(), 1, "")
	require.NoError(t, svc.Verify(report, ""))

	report.GrossSales = report.GrossSales.Add(decimal.NewFromInt(1))
	err := svc.Verify(report, "")
	assert.ErrorContains(t, err, "content hash mismatch")
}

func TestVerifyIgnoresApprovalColumns(t *testing.T) {
	// Approval is the one mutable column set on a sealed record; flipping it
	// must not break the hash.
	svc := NewIntegrityService()
	report := sealedReport(uuid.New(), 1, "")

	approver := uuid.New()
	now := time.Now().UTC()
	report.ApprovalStatus = enum.ApprovalApproved
	report.ApprovedByID = &approver
	report.ApprovedAt = &now

	assert.NoError(t, svc.Verify(report, ""))
}

func TestVerifyDetectsBrokenLink(t *testing.T) {
	svc := NewIntegrityService()
	report := sealedReport(uuid.New(), 2, "aaaa")

	err := svc.Verify(report, "bbbb")
	assert.ErrorContains(t, err, "previous hash mismatch")
}

func TestVerifyChain(t *testing.T) {
	svc := NewIntegrityService()
	storeID := uuid.New()

	first := sealedReport(storeID, 1, "")
	second := sealedReport(storeID, 2, first.ContentHash)
	third := sealedReport(storeID, 3, second.ContentHash)

	chain := []entity.ZReport{*first, *second, *third}
	assert.Empty(t, svc.VerifyChain(chain, nil))

	// Tampering the middle record breaks its own content hash and the link
	// the third record claims.
	chain[1].ActualCashCounted = chain[1].ActualCashCounted.Add(decimal.NewFromInt(100))
	failed := svc.VerifyChain(chain, nil)
	assert.Equal(t, []uuid.UUID{second.ID}, failed)

	chain[1].ContentHash = svc.hash(&chain[1])
	failed = svc.VerifyChain(chain, nil)
	assert.Equal(t, []uuid.UUID{third.ID}, failed)
}

func TestVerifyChainResolvesOutOfRangeLinks(t *testing.T) {
	svc := NewIntegrityService()
	storeID := uuid.New()

	first := sealedReport(storeID, 1, "")
	second := sealedReport(storeID, 2, first.ContentHash)
	third := sealedReport(storeID, 3, second.ContentHash)

	hashes := map[int64]string{1: first.ContentHash, 2: second.ContentHash}
	resolve := func(sequenceNumber int64) (string, bool) {
		h, ok := hashes[sequenceNumber]
		return h, ok
	}

	// A range starting mid-chain still checks its first record against the
	// real predecessor.
	assert.Empty(t, svc.VerifyChain([]entity.ZReport{*second, *third}, resolve))

	// A record re-sealed against a forged link is internally consistent but
	// no longer matches the predecessor on record. Its successor's claimed
	// link breaks with it.
	forged := sealedReport(storeID, 2, "0000000000000000000000000000000000000000000000000000000000000000")
	failed := svc.VerifyChain([]entity.ZReport{*forged, *third}, resolve)
	assert.ElementsMatch(t, []uuid.UUID{forged.ID, third.ID}, failed)
}

func TestVerifyChainAcrossGap(t *testing.T) {
	// When the predecessor cannot be resolved at all, the record after the
	// gap falls back to its own stored link.
	svc := NewIntegrityService()
	storeID := uuid.New()

	first := sealedReport(storeID, 1, "")
	second := sealedReport(storeID, 2, first.ContentHash)
	fourth := sealedReport(storeID, 4, "some-other-hash")

	chain := []entity.ZReport{*first, *second, *fourth}
	assert.Empty(t, svc.VerifyChain(chain, nil))
}
