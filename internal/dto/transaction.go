package dto

import (
	"time"

	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CorrectCategoryRequest is the explicit category correction operation.
// Once applied, reconciliation never overwrites the category again.
type CorrectCategoryRequest struct {
	Category    string `json:"category" binding:"required"`
	Subcategory string `json:"subcategory,omitempty"`
}

// ListTransactionsRequest holds query parameters for transaction listing.
type ListTransactionsRequest struct {
	AccountID string `form:"accountID"`
	Limit     int    `form:"limit,default=100" binding:"omitempty,min=1,max=500"`
	Offset    int    `form:"offset,default=0" binding:"omitempty,min=0"`
}

// TransactionResponse is the API representation of a transaction.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	MerchantName  string          `json:"merchantName,omitempty"`
	Category      string          `json:"category,omitempty"`
	Subcategory   string          `json:"subcategory,omitempty"`
	Pending       bool            `json:"pending"`
	Direction     string          `json:"direction"`
}

// ToTransactionResponse maps a domain transaction to its API shape.
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		AccountID:     t.AccountID,
		Amount:        t.Amount,
		Date:          t.Date,
		Description:   t.Description,
		MerchantName:  t.MerchantName,
		Category:      t.Category,
		Subcategory:   t.Subcategory,
		Pending:       t.Pending,
		Direction:     string(t.Direction),
	}
}

// ToTransactionResponses maps a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, ToTransactionResponse(t))
	}
	return out
}
