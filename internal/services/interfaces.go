package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/aggregate"
	"finsight/internal/models"
	"finsight/internal/pagination"
	"finsight/internal/plaid"
)

// RuleInput carries the editable fields of a categorization rule.
type RuleInput struct {
	Serial         int
	Name           string
	Category       string
	Subcategory    string
	NewName        string
	NewCategory    string
	NewSubcategory string
}

// RuleServicer defines the contract for categorization rule management.
type RuleServicer interface {
	CreateRule(userID uint, input RuleInput) (*models.Rule, error)
	GetUserRules(ctx context.Context, userID uint) ([]models.Rule, error)
	GetRuleByID(userID, ruleID uint) (*models.Rule, error)
	UpdateRule(userID, ruleID uint, input RuleInput) (*models.Rule, error)
	DeleteRule(userID, ruleID uint) error
}

// NetWorth is the derived balance summary for a user.
type NetWorth struct {
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	NetWorth    decimal.Decimal `json:"net_worth"`
}

// AccountServicer defines the contract for account snapshots and net worth.
type AccountServicer interface {
	GetAccountByExternalID(ctx context.Context, plaidAccountID string) (*models.Account, error)
	UpsertAccounts(ctx context.Context, item *models.Item, accounts []plaid.Account) error
	GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetNetWorth(ctx context.Context, userID uint) (*NetWorth, error)
	RecomputeNetWorth(ctx context.Context, userID uint) (*NetWorth, error)
}

// ItemServicer defines the contract for linked item state, including the sync cursor.
type ItemServicer interface {
	GetItemByExternalID(ctx context.Context, plaidItemID string) (*models.Item, error)
	GetUserItems(ctx context.Context, userID uint) ([]models.Item, error)
	AdvanceCursor(ctx context.Context, itemID uint, cursor string, syncedAt time.Time) error
	ArchiveItem(userID, itemID uint) (*models.Item, error)
	GetUserIDsWithActiveItems(ctx context.Context) ([]uint, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	Category      *string
	AccountID     *uint
	Search        *string
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	IncludeMarked bool
}

// TransactionUpdate is a manual edit. Nil fields are left unchanged.
type TransactionUpdate struct {
	Name        *string
	Category    *string
	Subcategory *string
	Date        *time.Time
}

// TransactionError records one transaction that could not be persisted.
// The rest of its batch is unaffected.
type TransactionError struct {
	TransactionID string
	AccountID     string
	Err           error
}

func (e TransactionError) Error() string {
	return "transaction " + e.TransactionID + ": " + e.Err.Error()
}

func (e TransactionError) Unwrap() error { return e.Err }

// UpsertResult summarizes one UpsertTransactions call.
type UpsertResult struct {
	Upserted       int
	SkippedPending int
	Failures       []TransactionError
}

// TransactionServicer defines the contract for transaction ingestion and edits.
type TransactionServicer interface {
	UpsertTransactions(ctx context.Context, userID uint, transactions []plaid.Transaction) (*UpsertResult, error)
	DeleteByExternalIDs(ctx context.Context, plaidTransactionIDs []string) (int64, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	ExportTransactions(userID uint, filter TransactionFilter) ([]models.Transaction, error)
	GetTransactionsInRange(userID uint, from, to time.Time) ([]models.Transaction, error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, update TransactionUpdate) (*models.Transaction, error)
	SetMarkDelete(userID, transactionID uint, markDelete bool) (*models.Transaction, error)
}

// ItemSyncResult is the outcome of one item's sync run. Err is set when the
// run failed; counts are zero in that case and the cursor was not moved.
type ItemSyncResult struct {
	RunID    string
	ItemID   string
	Added    int
	Modified int
	Removed  int
	// Updated reports that a live fetch happened and the cursor advanced.
	Updated  bool
	Cursor   string
	Failures []TransactionError
	Err      error
}

// UserSyncResult sums the item runs for one user.
type UserSyncResult struct {
	RunID    string           `json:"run_id"`
	UserID   uint             `json:"user_id"`
	Added    int              `json:"added"`
	Modified int              `json:"modified"`
	Removed  int              `json:"removed"`
	Items    []ItemSyncResult `json:"-"`
	Failed   int              `json:"failed_items"`
	NetWorth decimal.Decimal  `json:"net_worth"`
	Duration time.Duration    `json:"-"`
}

// SyncAllResult summarizes a sync across every user with linked items.
type SyncAllResult struct {
	Users       int           `json:"users"`
	FailedUsers int           `json:"failed_users"`
	Added       int           `json:"added"`
	Modified    int           `json:"modified"`
	Removed     int           `json:"removed"`
	Duration    time.Duration `json:"-"`
}

// SyncServicer defines the contract for reconciling items against the remote feed.
type SyncServicer interface {
	SyncItem(ctx context.Context, plaidItemID string) *ItemSyncResult
	SyncUser(ctx context.Context, userID uint) (*UserSyncResult, error)
	SyncAllUsers(ctx context.Context) (*SyncAllResult, error)
}

// MonthlySummary is the chart payload for a date range.
type MonthlySummary struct {
	From   time.Time               `json:"from"`
	To     time.Time               `json:"to"`
	Months aggregate.CategoryCosts `json:"months"`
	Totals []aggregate.MonthTotal  `json:"totals"`
}

// SummaryServicer defines the contract for reporting over persisted transactions.
type SummaryServicer interface {
	GetMonthlySummary(userID uint, from, to time.Time) (*MonthlySummary, error)
}

// AuditFilter narrows an audit listing to one resource type or resource.
type AuditFilter struct {
	ResourceType string
	ResourceID   *uint
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
	GetUserAuditLogs(userID uint, page pagination.PageRequest, filter AuditFilter) (*pagination.PageResponse[models.AuditLog], error)
}
