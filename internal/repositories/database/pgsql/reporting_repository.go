package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
)

type ReportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new repository for spending aggregates.
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepositoryFacade {
	return &ReportingRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportingRepositoryFacade = (*ReportingRepository)(nil)

// signedSpend returns the SQL expression for spend magnitude under the given
// sign convention.
func signedSpend(spendIsPositive bool) string {
	if spendIsPositive {
		return "amount"
	}
	return "-amount"
}

// GetPeriodTotals sums spend and income magnitudes for a user from the given
// date.
func (r *ReportingRepository) GetPeriodTotals(ctx context.Context, userID string, from time.Time, spendIsPositive bool) (portsrepo.PeriodTotals, error) {
	spend := signedSpend(spendIsPositive)
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN direction = 'debit' THEN ` + spend + ` ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN direction = 'credit' THEN -(` + spend + `) ELSE 0 END), 0)
		FROM transactions
		WHERE user_id = $1 AND date >= $2;
	`
	var totals portsrepo.PeriodTotals
	if err := r.Pool.QueryRow(ctx, query, userID, from).Scan(&totals.Spent, &totals.Income); err != nil {
		return totals, fmt.Errorf("failed to get period totals for user %s: %w", userID, err)
	}
	return totals, nil
}

// GetCategorySpending returns per-category spend from the given date, largest
// first. Uncategorized rows are grouped under an empty label.
func (r *ReportingRepository) GetCategorySpending(ctx context.Context, userID string, from time.Time, spendIsPositive bool, limit int) ([]portsrepo.CategorySpend, error) {
	spend := signedSpend(spendIsPositive)
	query := `
		SELECT category, COALESCE(SUM(` + spend + `), 0) AS total
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND direction = 'debit'
		GROUP BY category
		ORDER BY total DESC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, userID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get category spending for user %s: %w", userID, err)
	}
	defer rows.Close()

	var spending []portsrepo.CategorySpend
	for rows.Next() {
		var cs portsrepo.CategorySpend
		if err := rows.Scan(&cs.Category, &cs.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan category spend row: %w", err)
		}
		spending = append(spending, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category spend rows: %w", err)
	}
	return spending, nil
}
