package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is the provider's view of one account, validated at the
// provider-client boundary so reconcilers never see untyped payloads.
type AccountSnapshot struct {
	ExternalID       string
	Name             string
	OfficialName     string
	Type             string
	Subtype          string
	Mask             string
	CurrentBalance   decimal.Decimal
	AvailableBalance decimal.Decimal
	CreditLimit      *decimal.Decimal // absent for non-credit accounts
	CurrencyCode     string
}

// Validate checks the fields every snapshot must carry. A violation is a
// provider contract break and aborts the whole reconciliation batch.
func (s AccountSnapshot) Validate() error {
	if s.ExternalID == "" {
		return fmt.Errorf("account snapshot missing external id")
	}
	if s.Name == "" {
		return fmt.Errorf("account snapshot %s missing name", s.ExternalID)
	}
	if s.Type == "" {
		return fmt.Errorf("account snapshot %s missing type", s.ExternalID)
	}
	return nil
}

// TransactionSnapshot is the provider's view of one transaction.
type TransactionSnapshot struct {
	ExternalID        string
	ExternalAccountID string
	Amount            decimal.Decimal
	Date              time.Time
	Description       string
	MerchantName      string
	Pending           bool
	Raw               json.RawMessage
}

// Validate checks the fields every snapshot must carry.
func (s TransactionSnapshot) Validate() error {
	if s.ExternalID == "" {
		return fmt.Errorf("transaction snapshot missing external id")
	}
	if s.ExternalAccountID == "" {
		return fmt.Errorf("transaction snapshot %s missing external account id", s.ExternalID)
	}
	if s.Date.IsZero() {
		return fmt.Errorf("transaction snapshot %s missing date", s.ExternalID)
	}
	if s.Description == "" {
		return fmt.Errorf("transaction snapshot %s missing description", s.ExternalID)
	}
	return nil
}
