package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertType distinguishes a warning-level crossing from an exceeded budget.
type AlertType string

const (
	AlertTypeWarning  AlertType = "warning"
	AlertTypeExceeded AlertType = "exceeded"
)

// AlertTypeForThreshold maps a threshold percentage to its alert type.
func AlertTypeForThreshold(threshold int) AlertType {
	if threshold >= 100 {
		return AlertTypeExceeded
	}
	return AlertTypeWarning
}

// BudgetAlert records one fired threshold crossing. At most one alert may
// exist per (BudgetID, Threshold, PeriodStart); that uniqueness is the dedup
// key preventing alert storms. Once created the record is never updated,
// except to stamp SentAt after a successful publish.
type BudgetAlert struct {
	AlertID      string          `json:"alertID"`
	UserID       string          `json:"userID"`
	BudgetID     string          `json:"budgetID"`
	AlertType    AlertType       `json:"alertType"`
	Threshold    int             `json:"threshold"` // percentage of the budget amount
	PeriodStart  time.Time       `json:"periodStart"`
	SpentAmount  decimal.Decimal `json:"spentAmount"`
	BudgetAmount decimal.Decimal `json:"budgetAmount"`
	Category     string          `json:"category"`
	SentAt       *time.Time      `json:"sentAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
