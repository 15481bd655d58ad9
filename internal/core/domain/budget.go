package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the recurrence of a budget's spending window.
type BudgetPeriod string

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

// Valid reports whether p is a supported period.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// PeriodStart returns the start of the period instance containing now.
// Anchors are fixed: monthly periods start on the 1st, weekly periods on
// Monday, yearly periods on January 1st.
func (p BudgetPeriod) PeriodStart(now time.Time) time.Time {
	switch p {
	case PeriodWeekly:
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		monday := now.AddDate(0, 0, -daysSinceMonday)
		return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
	case PeriodYearly:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default: // monthly
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

// Budget is a user-defined spending limit for a category over a recurring
// period. Budgets reference transactions by category label only.
type Budget struct {
	BudgetID  string          `json:"budgetID"`
	UserID    string          `json:"userID"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Period    BudgetPeriod    `json:"period"`
	StartDate time.Time       `json:"startDate"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
	IsActive  bool            `json:"isActive"`
	AuditFields
}

// InEffect reports whether the budget applies at the given instant,
// honouring its start/end bounds.
func (b Budget) InEffect(now time.Time) bool {
	if !b.IsActive || now.Before(b.StartDate) {
		return false
	}
	if b.EndDate != nil && now.After(*b.EndDate) {
		return false
	}
	return true
}
