package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
)

// HashAlgorithm tags the canonical serialization version a record was sealed
// with. Bump the suffix if the payload layout ever changes so old records
// still verify against the layout they were written with.
const HashAlgorithm = "SHA256-cv1"

// IntegrityService seals reports with a tamper-evident hash chain and
// verifies them later. Verification never repairs anything.
type IntegrityService struct{}

// NewIntegrityService creates a new integrity service
func NewIntegrityService() *IntegrityService {
	return &IntegrityService{}
}

// Seal writes the integrity columns of a report. SequenceNumber and all
// financial fields must already be final; the previous hash is folded into
// the hashed payload so reordering or deleting an earlier record breaks
// every later one.
func (s *IntegrityService) Seal(report *entity.ZReport, previousHash string) {
	report.PreviousHash = previousHash
	report.HashAlgorithm = HashAlgorithm
	report.ContentHash = s.hash(report)
}

// Verify recomputes the hash of a sealed record and compares it against the
// stored value. expectedPrevious is the content hash of the store's prior
// sequence number, or empty for the first record.
func (s *IntegrityService) Verify(report *entity.ZReport, expectedPrevious string) error {
	if report.PreviousHash != expectedPrevious {
		return fmt.Errorf("report %s: previous hash mismatch", report.ID)
	}
	if s.hash(report) != report.ContentHash {
		return fmt.Errorf("report %s: content hash mismatch", report.ID)
	}
	return nil
}

// PreviousHashFn resolves the stored content hash of the record holding the
// given sequence number. VerifyChain calls it for links the slice itself
// cannot witness; it reports false when no such record exists.
type PreviousHashFn func(sequenceNumber int64) (string, bool)

// VerifyChain walks records ordered by sequence number and returns the IDs
// that fail content or linkage verification. The first record of a range and
// any record after a gap have no in-slice predecessor, so their links are
// checked through resolve. Only when resolve comes up empty does the check
// fall back to the record's own stored link, which the content hash still
// covers.
func (s *IntegrityService) VerifyChain(reports []entity.ZReport, resolve PreviousHashFn) []uuid.UUID {
	var failed []uuid.UUID
	for i := range reports {
		expectedPrevious, known := "", false
		switch {
		case i > 0 && reports[i].SequenceNumber == reports[i-1].SequenceNumber+1:
			expectedPrevious, known = reports[i-1].ContentHash, true
		case reports[i].SequenceNumber <= 1:
			known = true
		case resolve != nil:
			expectedPrevious, known = resolve(reports[i].SequenceNumber - 1)
		}
		if !known {
			expectedPrevious = reports[i].PreviousHash
		}
		if err := s.Verify(&reports[i], expectedPrevious); err != nil {
			failed = append(failed, reports[i].ID)
		}
	}
	return failed
}

// hash computes SHA-256 over the cv1 canonical payload.
func (s *IntegrityService) hash(report *entity.ZReport) string {
	sum := sha256.Sum256([]byte(s.canonicalPayload(report)))
	return hex.EncodeToString(sum[:])
}

// canonicalPayload renders the immutable content of a record in the cv1
// layout: versioned, pipe-delimited, fixed field order, amounts at two
// decimal places, timestamps in UTC RFC3339. Approval columns are mutable
// and deliberately absent.
func (s *IntegrityService) canonicalPayload(report *entity.ZReport) string {
	terminal := ""
	if report.TerminalID != nil {
		terminal = *report.TerminalID
	}
	workPeriod := ""
	if report.WorkPeriodID != nil {
		workPeriod = report.WorkPeriodID.String()
	}
	corrects := ""
	if report.CorrectsReportID != nil {
		corrects = report.CorrectsReportID.String()
	}

	payments := make([]string, 0, len(report.Payments))
	for _, p := range report.Payments {
		payments = append(payments, fmt.Sprintf("%s:%d:%s", p.Method, p.Count, p.Amount.StringFixed(2)))
	}
	sort.Strings(payments)

	fields := []string{
		"cv1",
		report.StoreID.String(),
		terminal,
		workPeriod,
		report.Kind.String(),
		fmt.Sprintf("%d", report.SequenceNumber),
		report.ReportDate.UTC().Format("2006-01-02"),
		report.GeneratedAt.UTC().Format(time.RFC3339),
		report.GeneratedByID.String(),
		report.GrossSales.StringFixed(2),
		report.NetSales.StringFixed(2),
		report.TaxTotal.StringFixed(2),
		report.TipTotal.StringFixed(2),
		report.DiscountTotal.StringFixed(2),
		report.RefundTotal.StringFixed(2),
		report.VoidTotal.StringFixed(2),
		strings.Join(payments, ","),
		report.OpeningFloat.StringFixed(2),
		report.CashReceived.StringFixed(2),
		report.CashRefunds.StringFixed(2),
		report.CashPayouts.StringFixed(2),
		report.ExpectedCash.StringFixed(2),
		report.ActualCashCounted.StringFixed(2),
		report.Variance.StringFixed(2),
		report.VarianceLevel.String(),
		corrects,
		report.PreviousHash,
	}
	return strings.Join(fields, "|")
}
