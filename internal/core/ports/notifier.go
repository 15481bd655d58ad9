package ports

import "context"

// NotificationPublisher publishes messages to a named topic with
// at-least-once intent. Delivery is best effort; callers decide whether a
// publish failure is fatal.
type NotificationPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close() error
}

// BudgetAlertMessage is the wire shape of a budget alert notification.
type BudgetAlertMessage struct {
	UserID       string `json:"userId"`
	Type         string `json:"type"` // always "budget_alert"
	BudgetID     string `json:"budgetId"`
	Threshold    int    `json:"threshold"`
	SpentAmount  string `json:"spentAmount"`
	BudgetAmount string `json:"budgetAmount"`
	Category     string `json:"category"`
}
