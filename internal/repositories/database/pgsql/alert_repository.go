package pgsql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
)

type PgxAlertRepository struct {
	BaseRepository
}

// newPgxAlertRepository creates a new repository for fired budget alerts.
func newPgxAlertRepository(pool *pgxpool.Pool) portsrepo.AlertRepositoryFacade {
	return &PgxAlertRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AlertRepositoryFacade = (*PgxAlertRepository)(nil)

// CreateAlertIfAbsent inserts the alert unless its dedup key already exists.
// The unique index on (budget_id, threshold, period_start) makes the
// insert-or-skip race free across concurrent evaluation passes.
func (r *PgxAlertRepository) CreateAlertIfAbsent(ctx context.Context, alert domain.BudgetAlert) (bool, error) {
	query := `
		INSERT INTO budget_alerts (alert_id, user_id, budget_id, alert_type, threshold, period_start, spent_amount, budget_amount, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (budget_id, threshold, period_start) DO NOTHING;
	`
	tag, err := r.Pool.Exec(ctx, query,
		alert.AlertID,
		alert.UserID,
		alert.BudgetID,
		alert.AlertType,
		alert.Threshold,
		alert.PeriodStart,
		alert.SpentAmount,
		alert.BudgetAmount,
		alert.Category,
		alert.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create alert for budget %s: %w", alert.BudgetID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAlertSent stamps the delivery time after a successful publish.
func (r *PgxAlertRepository) MarkAlertSent(ctx context.Context, alertID string, sentAt time.Time) error {
	query := `UPDATE budget_alerts SET sent_at = $2 WHERE alert_id = $1;`
	tag, err := r.Pool.Exec(ctx, query, alertID, sentAt)
	if err != nil {
		return fmt.Errorf("failed to mark alert %s sent: %w", alertID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListAlerts retrieves a user's alerts, newest first.
func (r *PgxAlertRepository) ListAlerts(ctx context.Context, userID string, limit int) ([]domain.BudgetAlert, error) {
	query := `
		SELECT alert_id, user_id, budget_id, alert_type, threshold, period_start, spent_amount, budget_amount, category, sent_at, created_at
		FROM budget_alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts for user %s: %w", userID, err)
	}
	defer rows.Close()

	var alerts []domain.BudgetAlert
	for rows.Next() {
		var alert domain.BudgetAlert
		var sentAt sql.NullTime
		err := rows.Scan(
			&alert.AlertID,
			&alert.UserID,
			&alert.BudgetID,
			&alert.AlertType,
			&alert.Threshold,
			&alert.PeriodStart,
			&alert.SpentAmount,
			&alert.BudgetAmount,
			&alert.Category,
			&sentAt,
			&alert.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		if sentAt.Valid {
			alert.SentAt = &sentAt.Time
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}
	return alerts, nil
}
