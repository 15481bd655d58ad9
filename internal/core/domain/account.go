package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents one financial account under a bank connection.
// (ConnectionID, ExternalID) is the reconciliation merge key and is unique.
type Account struct {
	AccountID        string          `json:"accountID"`
	ConnectionID     string          `json:"connectionID"`
	UserID           string          `json:"userID"`
	ExternalID       string          `json:"externalID"` // stable account identifier from the provider
	Name             string          `json:"name"`
	OfficialName     string          `json:"officialName,omitempty"`
	AccountType      string          `json:"accountType"` // checking, savings, credit, investment
	Subtype          string          `json:"subtype,omitempty"`
	Mask             string          `json:"mask,omitempty"` // last 4 digits
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	CreditLimit      decimal.Decimal `json:"creditLimit"`
	CurrencyCode     string          `json:"currencyCode"`
	IsActive         bool            `json:"isActive"`
	LastSyncAt       time.Time       `json:"lastSyncAt"`
	AuditFields
}
