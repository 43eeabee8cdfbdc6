package service

import (
	"github.com/shopspring/decimal"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
)

// ExpectedCash computes the drawer amount the count is checked against.
// Non-cash tenders never enter this figure.
func ExpectedCash(openingFloat, cashReceived, cashRefunds, cashPayouts decimal.Decimal) decimal.Decimal {
	return openingFloat.Add(cashReceived).Sub(cashRefunds).Sub(cashPayouts)
}

// ClassifyVariance grades a cash variance against the store policy. Absolute
// and percentage limits are evaluated independently; either one tripping
// escalates, and critical supersedes warning.
func ClassifyVariance(variance, expectedCash decimal.Decimal, policy *entity.VarianceThreshold) enum.VarianceLevel {
	abs := variance.Abs()
	if abs.IsZero() {
		return enum.VarianceExact
	}

	pct := decimal.Zero
	if !expectedCash.IsZero() {
		pct = abs.Div(expectedCash.Abs()).Mul(decimal.NewFromInt(100))
	}

	if abs.GreaterThanOrEqual(policy.CriticalAbs) || pct.GreaterThanOrEqual(policy.CriticalPct) {
		return enum.VarianceCritical
	}
	if abs.GreaterThanOrEqual(policy.WarningAbs) || pct.GreaterThanOrEqual(policy.WarningPct) {
		return enum.VarianceWarning
	}
	return enum.VarianceExact
}

// RequiresApproval reports whether a report at the given variance level must
// wait for a manager sign-off under the store policy.
func RequiresApproval(level enum.VarianceLevel, policy *entity.VarianceThreshold) bool {
	switch level {
	case enum.VarianceWarning:
		return policy.ApproveOnWarning
	case enum.VarianceCritical:
		return policy.ApproveOnCritical
	default:
		return false
	}
}
