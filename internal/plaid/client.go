// Package plaid provides the remote transaction feed used by the sync driver.
package plaid

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	plaidsdk "github.com/plaid/plaid-go/v29/plaid"
	"github.com/shopspring/decimal"
)

// FeedClient is the remote feed capability consumed by the sync driver.
type FeedClient interface {
	// SyncTransactions pulls one page of changes after cursor. An empty cursor
	// starts from the beginning of the item's history.
	SyncTransactions(ctx context.Context, accessToken, cursor string, count int) (*SyncPage, error)

	// GetAccounts returns the current account snapshot for an item.
	GetAccounts(ctx context.Context, accessToken string) ([]Account, error)
}

// APIError is the error Plaid returns with non-2xx responses.
type APIError struct {
	StatusCode     int
	ErrorType      string
	ErrorCode      string
	ErrorMessage   string
	DisplayMessage string
	RequestID      string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("plaid: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("plaid: %s/%s (status %d): %s", e.ErrorType, e.ErrorCode, e.StatusCode, e.ErrorMessage)
}

// Client talks to one Plaid deployment (production or sandbox).
type Client struct {
	api *plaidsdk.APIClient
}

// NewClient creates a Plaid API client for the deployment at baseURL.
func NewClient(baseURL, clientID, secret string, httpClient *http.Client) *Client {
	cfg := plaidsdk.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)
	cfg.UseEnvironment(plaidsdk.Environment(strings.TrimRight(baseURL, "/")))
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &Client{api: plaidsdk.NewAPIClient(cfg)}
}

// SyncTransactions calls /transactions/sync.
func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string, count int) (*SyncPage, error) {
	req := plaidsdk.NewTransactionsSyncRequest(accessToken)
	if cursor != "" {
		req.SetCursor(cursor)
	}
	if count > 0 {
		req.SetCount(int32(count))
	}

	resp, httpResp, err := c.api.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*req).Execute()
	if err != nil {
		return nil, fmt.Errorf("syncing transactions: %w", apiError(err, httpResp))
	}

	page := &SyncPage{
		NextCursor: resp.GetNextCursor(),
		HasMore:    resp.GetHasMore(),
		RequestID:  resp.GetRequestId(),
	}
	for _, tx := range resp.GetAdded() {
		page.Added = append(page.Added, fromSDKTransaction(tx))
	}
	for _, tx := range resp.GetModified() {
		page.Modified = append(page.Modified, fromSDKTransaction(tx))
	}
	for _, r := range resp.GetRemoved() {
		page.Removed = append(page.Removed, RemovedTransaction{TransactionID: r.GetTransactionId()})
	}
	return page, nil
}

// GetAccounts calls /accounts/get.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	req := plaidsdk.NewAccountsGetRequest(accessToken)
	resp, httpResp, err := c.api.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*req).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", apiError(err, httpResp))
	}

	accounts := make([]Account, 0, len(resp.GetAccounts()))
	for _, a := range resp.GetAccounts() {
		accounts = append(accounts, fromSDKAccount(a))
	}
	return accounts, nil
}

// apiError converts an SDK failure into an *APIError when Plaid answered with
// an error status. Transport failures are returned unchanged.
func apiError(err error, resp *http.Response) error {
	if resp == nil {
		return err
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	// A malformed error body still yields the status code.
	if plaidErr, convErr := plaidsdk.ToPlaidError(err); convErr == nil {
		apiErr.ErrorType = string(plaidErr.GetErrorType())
		apiErr.ErrorCode = plaidErr.GetErrorCode()
		apiErr.ErrorMessage = plaidErr.GetErrorMessage()
		apiErr.DisplayMessage = plaidErr.GetDisplayMessage()
		apiErr.RequestID = plaidErr.GetRequestId()
	}
	return apiErr
}

func fromSDKTransaction(tx plaidsdk.Transaction) Transaction {
	out := Transaction{
		TransactionID:          tx.GetTransactionId(),
		AccountID:              tx.GetAccountId(),
		Amount:                 decimal.NewFromFloat(tx.GetAmount()),
		IsoCurrencyCode:        optional(tx.GetIsoCurrencyCode()),
		UnofficialCurrencyCode: optional(tx.GetUnofficialCurrencyCode()),
		Name:                   tx.GetName(),
		MerchantName:           optional(tx.GetMerchantName()),
		Date:                   tx.GetDate(),
		Pending:                tx.GetPending(),
		AccountOwner:           optional(tx.GetAccountOwner()),
		Category:               tx.GetCategory(),
	}
	if pfc, ok := tx.GetPersonalFinanceCategoryOk(); ok && pfc != nil {
		out.PersonalFinanceCategory = &PersonalFinanceCategory{
			Primary:  pfc.GetPrimary(),
			Detailed: pfc.GetDetailed(),
		}
	}
	return out
}

func fromSDKAccount(a plaidsdk.AccountBase) Account {
	balances := a.GetBalances()
	out := Account{
		AccountID:    a.GetAccountId(),
		Name:         a.GetName(),
		OfficialName: optional(a.GetOfficialName()),
		Mask:         optional(a.GetMask()),
		Type:         string(a.GetType()),
		Subtype:      optional(string(a.GetSubtype())),
		Balances: Balances{
			IsoCurrencyCode: optional(balances.GetIsoCurrencyCode()),
		},
	}
	if v, ok := balances.GetAvailableOk(); ok && v != nil {
		out.Balances.Available = decimal.NewNullDecimal(decimal.NewFromFloat(*v))
	}
	if v, ok := balances.GetCurrentOk(); ok && v != nil {
		out.Balances.Current = decimal.NewNullDecimal(decimal.NewFromFloat(*v))
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
