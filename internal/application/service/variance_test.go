package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tillpoint/fiscal-api/internal/domain/entity"
	"github.com/tillpoint/fiscal-api/internal/domain/enum"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func testPolicy() *entity.VarianceThreshold {
	return &entity.VarianceThreshold{
		WarningAbs:        d("10"),
		WarningPct:        d("1"),
		CriticalAbs:       d("20"),
		CriticalPct:       d("5"),
		ApproveOnWarning:  false,
		ApproveOnCritical: true,
	}
}

func TestExpectedCash(t *testing.T) {
	got := ExpectedCash(d("100"), d("1000"), d("50"), d("30"))
	assert.True(t, got.Equal(d("1020")), "got %s", got)

	// Non-cash tenders never enter the figure, so an empty drawer day is just
	// the float.
	got = ExpectedCash(d("200"), decimal.Zero, decimal.Zero, decimal.Zero)
	assert.True(t, got.Equal(d("200")))
}

func TestClassifyVariance(t *testing.T) {
	policy := testPolicy()

	tests := []struct {
		name     string
		variance string
		expected string
		want     enum.VarianceLevel
	}{
		{"zero is exact", "0", "1000", enum.VarianceExact},
		{"under both limits", "-5", "1000", enum.VarianceExact},
		{"abs trips warning", "-15", "1000", enum.VarianceWarning},
		{"abs trips critical", "-25", "1000", enum.VarianceCritical},
		{"positive overage graded the same", "15", "1000", enum.VarianceWarning},
		{"pct trips warning when abs does not", "2", "100", enum.VarianceWarning},
		{"pct trips critical when abs does not", "6", "100", enum.VarianceCritical},
		{"boundary is inclusive", "10", "100000", enum.VarianceWarning},
		{"zero expected uses abs only", "5", "0", enum.VarianceExact},
		{"zero expected abs critical", "25", "0", enum.VarianceCritical},
		{"negative expected uses magnitude", "-15", "-1000", enum.VarianceWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyVariance(d(tt.variance), d(tt.expected), policy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyVarianceCriticalSupersedesWarning(t *testing.T) {
	// A variance that trips both limits is critical, never reported twice.
	got := ClassifyVariance(d("-30"), d("1000"), testPolicy())
	assert.Equal(t, enum.VarianceCritical, got)
}

func TestRequiresApproval(t *testing.T) {
	policy := testPolicy()

	assert.False(t, RequiresApproval(enum.VarianceExact, policy))
	assert.False(t, RequiresApproval(enum.VarianceWarning, policy))
	assert.True(t, RequiresApproval(enum.VarianceCritical, policy))

	policy.ApproveOnWarning = true
	assert.True(t, RequiresApproval(enum.VarianceWarning, policy))

	policy.ApproveOnCritical = false
	assert.False(t, RequiresApproval(enum.VarianceCritical, policy))
}
