package dto

import (
	"time"

	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountResponse is the API representation of a bank account.
type AccountResponse struct {
	AccountID        string          `json:"accountID"`
	ConnectionID     string          `json:"connectionID"`
	Name             string          `json:"name"`
	OfficialName     string          `json:"officialName,omitempty"`
	AccountType      string          `json:"accountType"`
	Subtype          string          `json:"subtype,omitempty"`
	Mask             string          `json:"mask,omitempty"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	CreditLimit      decimal.Decimal `json:"creditLimit"`
	CurrencyCode     string          `json:"currencyCode"`
	IsActive         bool            `json:"isActive"`
	LastSyncAt       time.Time       `json:"lastSyncAt"`
}

// ToAccountResponse maps a domain account to its API shape.
func ToAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        a.AccountID,
		ConnectionID:     a.ConnectionID,
		Name:             a.Name,
		OfficialName:     a.OfficialName,
		AccountType:      a.AccountType,
		Subtype:          a.Subtype,
		Mask:             a.Mask,
		CurrentBalance:   a.CurrentBalance,
		AvailableBalance: a.AvailableBalance,
		CreditLimit:      a.CreditLimit,
		CurrencyCode:     a.CurrencyCode,
		IsActive:         a.IsActive,
		LastSyncAt:       a.LastSyncAt,
	}
}

// ToAccountResponses maps a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ToAccountResponse(a))
	}
	return out
}
