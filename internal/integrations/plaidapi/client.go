// Package plaidapi implements the bank-data provider boundary against the
// Plaid REST API. It maps HTTP and transport failures onto the provider
// error taxonomy so the sync pipeline never inspects status codes itself.
package plaidapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mintflow/syncd/internal/apperrors"
	"github.com/mintflow/syncd/internal/core/domain"
	"github.com/mintflow/syncd/internal/core/ports"
	"github.com/shopspring/decimal"
)

const providerName = "plaid"

// transactionsPageSize is Plaid's maximum count per transactions/get call.
const transactionsPageSize = 500

// Client talks to the Plaid REST API.
type Client struct {
	baseURL  string
	clientID string
	secret   string
	client   *http.Client
}

// NewClient initializes a new Plaid client.
func NewClient(baseURL, clientID, secret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		clientID: clientID,
		secret:   secret,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ ports.BankDataProvider = (*Client)(nil)

// Name identifies the provider.
func (c *Client) Name() string {
	return providerName
}

type accountsGetRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

type accountBalances struct {
	Current         json.Number `json:"current"`
	Available       json.Number `json:"available"`
	Limit           json.Number `json:"limit"`
	ISOCurrencyCode string      `json:"iso_currency_code"`
}

type accountPayload struct {
	AccountID    string          `json:"account_id"`
	Name         string          `json:"name"`
	OfficialName string          `json:"official_name"`
	Type         string          `json:"type"`
	Subtype      string          `json:"subtype"`
	Mask         string          `json:"mask"`
	Balances     accountBalances `json:"balances"`
}

type accountsGetResponse struct {
	Accounts []accountPayload `json:"accounts"`
	Item     struct {
		InstitutionID   string `json:"institution_id"`
		InstitutionName string `json:"institution_name"`
	} `json:"item"`
}

// FetchAccounts returns the provider's current account snapshots.
func (c *Client) FetchAccounts(ctx context.Context, credentialRef string) ([]domain.AccountSnapshot, error) {
	req := accountsGetRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: credentialRef,
	}
	var resp accountsGetResponse
	if err := c.post(ctx, "/accounts/get", req, &resp); err != nil {
		return nil, err
	}

	snapshots := make([]domain.AccountSnapshot, 0, len(resp.Accounts))
	for _, acc := range resp.Accounts {
		snap, err := toAccountSnapshot(acc)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func toAccountSnapshot(acc accountPayload) (domain.AccountSnapshot, error) {
	current, err := numberToDecimal(acc.Balances.Current)
	if err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("account %s: bad current balance: %w", acc.AccountID, err)
	}
	available, err := numberToDecimal(acc.Balances.Available)
	if err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("account %s: bad available balance: %w", acc.AccountID, err)
	}
	snap := domain.AccountSnapshot{
		ExternalID:       acc.AccountID,
		Name:             acc.Name,
		OfficialName:     acc.OfficialName,
		Type:             acc.Type,
		Subtype:          acc.Subtype,
		Mask:             acc.Mask,
		CurrentBalance:   current,
		AvailableBalance: available,
		CurrencyCode:     acc.Balances.ISOCurrencyCode,
	}
	if acc.Balances.Limit != "" {
		limit, err := numberToDecimal(acc.Balances.Limit)
		if err != nil {
			return domain.AccountSnapshot{}, fmt.Errorf("account %s: bad credit limit: %w", acc.AccountID, err)
		}
		snap.CreditLimit = &limit
	}
	if err := snap.Validate(); err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return snap, nil
}

type transactionsGetRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Options     struct {
		Count  int    `json:"count"`
		Cursor string `json:"cursor,omitempty"`
	} `json:"options"`
}

type transactionPayload struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Amount        json.Number     `json:"amount"`
	Date          string          `json:"date"`
	Name          string          `json:"name"`
	MerchantName  string          `json:"merchant_name"`
	Pending       bool            `json:"pending"`
	Raw           json.RawMessage `json:"-"`
}

type transactionsGetResponse struct {
	Transactions []json.RawMessage `json:"transactions"`
	NextCursor   string            `json:"next_cursor"`
	HasMore      bool              `json:"has_more"`
}

// FetchTransactions returns one page of transaction snapshots.
func (c *Client) FetchTransactions(ctx context.Context, credentialRef, cursor string, r ports.DateRange) (ports.TransactionsPage, error) {
	req := transactionsGetRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: credentialRef,
		StartDate:   r.Start.Format("2006-01-02"),
		EndDate:     r.End.Format("2006-01-02"),
	}
	req.Options.Count = transactionsPageSize
	req.Options.Cursor = cursor

	var resp transactionsGetResponse
	if err := c.post(ctx, "/transactions/get", req, &resp); err != nil {
		return ports.TransactionsPage{}, err
	}

	page := ports.TransactionsPage{
		Transactions: make([]domain.TransactionSnapshot, 0, len(resp.Transactions)),
		NextCursor:   resp.NextCursor,
		HasMore:      resp.HasMore,
	}
	for _, raw := range resp.Transactions {
		var txn transactionPayload
		if err := json.Unmarshal(raw, &txn); err != nil {
			return ports.TransactionsPage{}, fmt.Errorf("%w: malformed transaction payload: %v", apperrors.ErrValidation, err)
		}
		txn.Raw = raw
		snap, err := toTransactionSnapshot(txn)
		if err != nil {
			return ports.TransactionsPage{}, err
		}
		page.Transactions = append(page.Transactions, snap)
	}
	return page, nil
}

func toTransactionSnapshot(txn transactionPayload) (domain.TransactionSnapshot, error) {
	amount, err := numberToDecimal(txn.Amount)
	if err != nil {
		return domain.TransactionSnapshot{}, fmt.Errorf("transaction %s: bad amount: %w", txn.TransactionID, err)
	}
	date, err := time.Parse("2006-01-02", txn.Date)
	if err != nil {
		return domain.TransactionSnapshot{}, fmt.Errorf("transaction %s: bad date %q: %w", txn.TransactionID, txn.Date, err)
	}
	snap := domain.TransactionSnapshot{
		ExternalID:        txn.TransactionID,
		ExternalAccountID: txn.AccountID,
		Amount:            amount,
		Date:              date,
		Description:       txn.Name,
		MerchantName:      txn.MerchantName,
		Pending:           txn.Pending,
		Raw:               txn.Raw,
	}
	if err := snap.Validate(); err != nil {
		return domain.TransactionSnapshot{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return snap, nil
}

type exchangeTokenRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

type exchangeTokenResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// ExchangeToken trades a link-flow public token for a durable credential and
// resolves the institution behind it.
func (c *Client) ExchangeToken(ctx context.Context, publicToken string) (ports.ExchangeResult, error) {
	req := exchangeTokenRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		PublicToken: publicToken,
	}
	var resp exchangeTokenResponse
	if err := c.post(ctx, "/item/public_token/exchange", req, &resp); err != nil {
		return ports.ExchangeResult{}, err
	}
	if resp.AccessToken == "" {
		return ports.ExchangeResult{}, fmt.Errorf("%w: exchange returned empty access token", apperrors.ErrValidation)
	}

	// The exchange response carries no institution info; one accounts call
	// resolves it.
	var accounts accountsGetResponse
	err := c.post(ctx, "/accounts/get", accountsGetRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: resp.AccessToken,
	}, &accounts)
	if err != nil {
		return ports.ExchangeResult{}, err
	}

	name := accounts.Item.InstitutionName
	if name == "" {
		name = "Bank"
	}
	return ports.ExchangeResult{
		CredentialRef:   resp.AccessToken,
		InstitutionID:   accounts.Item.InstitutionID,
		InstitutionName: name,
	}, nil
}

type linkTokenRequest struct {
	ClientID     string   `json:"client_id"`
	Secret       string   `json:"secret"`
	ClientName   string   `json:"client_name"`
	Language     string   `json:"language"`
	CountryCodes []string `json:"country_codes"`
	Products     []string `json:"products"`
	User         struct {
		ClientUserID string `json:"client_user_id"`
	} `json:"user"`
}

type linkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

// CreateLinkToken starts the link flow for a user.
func (c *Client) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	req := linkTokenRequest{
		ClientID:     c.clientID,
		Secret:       c.secret,
		ClientName:   "MintFlow",
		Language:     "en",
		CountryCodes: []string{"US"},
		Products:     []string{"transactions"},
	}
	req.User.ClientUserID = userID

	var resp linkTokenResponse
	if err := c.post(ctx, "/link/token/create", req, &resp); err != nil {
		return "", err
	}
	if resp.LinkToken == "" {
		return "", fmt.Errorf("%w: link token create returned empty token", apperrors.ErrValidation)
	}
	return resp.LinkToken, nil
}

// post sends one JSON request and decodes the response, translating failures
// into the provider error taxonomy.
func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response from %s: %v", apperrors.ErrProviderUnavailable, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s returned %d", apperrors.ErrProviderAuth, path, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s returned 429", apperrors.ErrProviderRateLimited, path)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s returned %d", apperrors.ErrProviderUnavailable, path, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, path, truncate(raw, 200))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func numberToDecimal(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
