package repositories

import (
	"context"
	"time"

	"github.com/mintflow/syncd/internal/core/domain"
)

// AlertRepositoryFacade persists fired budget alerts.
type AlertRepositoryFacade interface {
	// CreateAlertIfAbsent inserts the alert unless one already exists for
	// its (budget, threshold, period-start) dedup key. It reports whether a
	// row was created; false means the crossing already fired this period.
	CreateAlertIfAbsent(ctx context.Context, alert domain.BudgetAlert) (bool, error)

	// MarkAlertSent stamps the delivery time after a successful publish.
	MarkAlertSent(ctx context.Context, alertID string, sentAt time.Time) error

	// ListAlerts retrieves a user's alerts, newest first.
	ListAlerts(ctx context.Context, userID string, limit int) ([]domain.BudgetAlert, error)
}
