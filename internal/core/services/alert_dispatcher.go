package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/mintflow/syncd/internal/core/ports"
	portsrepo "github.com/mintflow/syncd/internal/core/ports/repositories"
	portssvc "github.com/mintflow/syncd/internal/core/ports/services"
)

// AlertDispatcher publishes fired budget alerts to the notification topic.
// The alert record is the source of truth; a lost publish never un-fires it.
type AlertDispatcher struct {
	BaseService
	alertRepo portsrepo.AlertRepositoryFacade
	publisher ports.NotificationPublisher
	topic     string
}

// NewAlertDispatcher creates a new AlertDispatcher.
func NewAlertDispatcher(alertRepo portsrepo.AlertRepositoryFacade, publisher ports.NotificationPublisher, topic string) *AlertDispatcher {
	return &AlertDispatcher{
		alertRepo: alertRepo,
		publisher: publisher,
		topic:     topic,
	}
}

var _ portssvc.AlertDispatcherSvc = (*AlertDispatcher)(nil)

// Dispatch publishes one alert and stamps its delivery time on success.
func (d *AlertDispatcher) Dispatch(ctx context.Context, alert domain.BudgetAlert) {
	msg := ports.BudgetAlertMessage{
		UserID:       alert.UserID,
		Type:         "budget_alert",
		BudgetID:     alert.BudgetID,
		Threshold:    alert.Threshold,
		SpentAmount:  alert.SpentAmount.String(),
		BudgetAmount: alert.BudgetAmount.String(),
		Category:     alert.Category,
	}
	if err := d.publisher.Publish(ctx, d.topic, msg); err != nil {
		d.LogError(ctx, err, "Failed to publish budget alert",
			slog.String("alert_id", alert.AlertID),
			slog.String("budget_id", alert.BudgetID))
		return
	}
	if err := d.alertRepo.MarkAlertSent(ctx, alert.AlertID, time.Now().UTC()); err != nil {
		d.LogError(ctx, err, "Failed to mark alert sent", slog.String("alert_id", alert.AlertID))
	}
	d.LogInfo(ctx, "Budget alert published",
		slog.String("alert_id", alert.AlertID),
		slog.Int("threshold", alert.Threshold))
}
