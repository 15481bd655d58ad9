package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CategorySpend is the aggregate spend for one category within a window.
type CategorySpend struct {
	Category string
	Amount   decimal.Decimal
}

// PeriodTotals aggregates a user's activity within a window. Spent and
// Income are both reported as non-negative magnitudes.
type PeriodTotals struct {
	Spent  decimal.Decimal
	Income decimal.Decimal
}

// ReportingRepositoryFacade serves read-only spending aggregates.
type ReportingRepositoryFacade interface {
	// GetPeriodTotals sums spend and income for a user from the given date.
	GetPeriodTotals(ctx context.Context, userID string, from time.Time, spendIsPositive bool) (PeriodTotals, error)

	// GetCategorySpending returns per-category spend from the given date,
	// largest first.
	GetCategorySpending(ctx context.Context, userID string, from time.Time, spendIsPositive bool, limit int) ([]CategorySpend, error)
}
