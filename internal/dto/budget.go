package dto

import (
	"time"

	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBudgetRequest defines a new spending limit for a category.
type CreateBudgetRequest struct {
	Name      string          `json:"name" binding:"required"`
	Category  string          `json:"category" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Period    string          `json:"period" binding:"required,oneof=weekly monthly yearly"`
	StartDate time.Time       `json:"startDate" binding:"required"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
}

// UpdateBudgetRequest carries optional budget field updates.
type UpdateBudgetRequest struct {
	Name    *string          `json:"name,omitempty"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	EndDate *time.Time       `json:"endDate,omitempty"`
}

// BudgetResponse is the API representation of a budget, enriched with
// period-to-date progress.
type BudgetResponse struct {
	BudgetID        string          `json:"budgetID"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Period          string          `json:"period"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         *time.Time      `json:"endDate,omitempty"`
	IsActive        bool            `json:"isActive"`
	SpentAmount     decimal.Decimal `json:"spentAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	PercentUsed     decimal.Decimal `json:"percentUsed"`
}

// ToBudgetResponse maps a domain budget plus its period-to-date spend.
func ToBudgetResponse(b domain.Budget, spent decimal.Decimal) BudgetResponse {
	percent := decimal.Zero
	if b.Amount.IsPositive() {
		percent = spent.Div(b.Amount).Mul(decimal.NewFromInt(100))
	}
	return BudgetResponse{
		BudgetID:        b.BudgetID,
		Name:            b.Name,
		Category:        b.Category,
		Amount:          b.Amount,
		Period:          string(b.Period),
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		IsActive:        b.IsActive,
		SpentAmount:     spent,
		RemainingAmount: b.Amount.Sub(spent),
		PercentUsed:     percent,
	}
}
