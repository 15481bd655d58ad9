package dto

import "github.com/shopspring/decimal"

// CategorySpendResponse is one category's share of period spending.
type CategorySpendResponse struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// SpendingSummaryResponse aggregates a user's activity for one period.
type SpendingSummaryResponse struct {
	Period        string                  `json:"period"`
	TotalSpent    decimal.Decimal         `json:"totalSpent"`
	TotalIncome   decimal.Decimal         `json:"totalIncome"`
	NetAmount     decimal.Decimal         `json:"netAmount"`
	TopCategories []CategorySpendResponse `json:"topCategories"`
}
