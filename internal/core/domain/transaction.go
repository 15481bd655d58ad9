package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Direction classifies a ledger entry as spend or income.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// DirectionForAmount derives the transaction direction from the amount sign.
// spendIsPositive encodes the provider's sign convention: when true, positive
// amounts are spend (debit) and negative amounts are income (credit).
func DirectionForAmount(amount decimal.Decimal, spendIsPositive bool) Direction {
	positive := amount.IsPositive()
	if positive == spendIsPositive {
		return DirectionDebit
	}
	return DirectionCredit
}

// Transaction represents one ledger entry under an account.
// (AccountID, ExternalID) is the reconciliation merge key and is unique.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`
	AccountID       string          `json:"accountID"`
	UserID          string          `json:"userID"`
	ExternalID      string          `json:"externalID"` // stable transaction identifier from the provider
	Amount          decimal.Decimal `json:"amount"`     // signed, provider convention
	Date            time.Time       `json:"date"`
	Description     string          `json:"description"`
	MerchantName    string          `json:"merchantName,omitempty"`
	Category        string          `json:"category,omitempty"`
	Subcategory     string          `json:"subcategory,omitempty"`
	CategoryUserSet bool            `json:"categoryUserSet"` // set via the explicit correction path
	Pending         bool            `json:"pending"`
	Direction       Direction       `json:"direction"`
	RawPayload      json.RawMessage `json:"-"` // provider payload, stored opaque
	AuditFields
}
