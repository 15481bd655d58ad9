// Package ports declares the boundary interfaces the sync pipeline consumes:
// the external bank-data provider, the transaction categorizer and the
// notification topic publisher. Implementations are constructed once at
// process start and injected into services.
package ports

import (
	"context"
	"time"

	"github.com/mintflow/syncd/internal/core/domain"
)

// DateRange bounds an incremental transaction fetch.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// TransactionsPage is one page of a cursor-based transaction fetch.
// An empty NextCursor with HasMore false means the fetch is exhausted;
// NextCursor is persisted on the connection for the next sync run.
type TransactionsPage struct {
	Transactions []domain.TransactionSnapshot
	NextCursor   string
	HasMore      bool
}

// ExchangeResult is the outcome of trading a public token for a stored
// credential reference.
type ExchangeResult struct {
	CredentialRef   string
	InstitutionID   string
	InstitutionName string
}

// BankDataProvider abstracts the external financial-data API.
//
// Implementations fail with apperrors.ErrProviderUnavailable on network
// errors and timeouts, apperrors.ErrProviderAuth when the credential is
// revoked or expired, and apperrors.ErrProviderRateLimited when throttled.
// Snapshots are validated before being returned, so reconcilers never
// handle malformed payloads.
type BankDataProvider interface {
	// Name identifies the provider (e.g. "plaid").
	Name() string

	// FetchAccounts returns the provider's current account snapshots.
	FetchAccounts(ctx context.Context, credentialRef string) ([]domain.AccountSnapshot, error)

	// FetchTransactions returns one page of transaction snapshots. An empty
	// cursor requests a full initial fetch bounded by the date range.
	FetchTransactions(ctx context.Context, credentialRef, cursor string, r DateRange) (TransactionsPage, error)

	// ExchangeToken trades a link-flow public token for a credential.
	ExchangeToken(ctx context.Context, publicToken string) (ExchangeResult, error)

	// CreateLinkToken starts the link flow for a user.
	CreateLinkToken(ctx context.Context, userID string) (string, error)
}
