package plaid

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format Plaid uses for transaction dates.
const DateLayout = "2006-01-02"

// PersonalFinanceCategory is Plaid's newer two-level taxonomy.
type PersonalFinanceCategory struct {
	Primary  string
	Detailed string
}

// Transaction is one entry of the transactions/sync added or modified lists.
type Transaction struct {
	TransactionID           string
	AccountID               string
	Amount                  decimal.Decimal
	IsoCurrencyCode         *string
	UnofficialCurrencyCode  *string
	Name                    string
	MerchantName            *string
	Date                    string
	Pending                 bool
	AccountOwner            *string
	Category                []string
	PersonalFinanceCategory *PersonalFinanceCategory
}

// RemovedTransaction identifies a transaction the feed no longer reports.
type RemovedTransaction struct {
	TransactionID string
}

// SyncPage is one page of transactions/sync output.
type SyncPage struct {
	Added      []Transaction
	Modified   []Transaction
	Removed    []RemovedTransaction
	NextCursor string
	HasMore    bool
	RequestID  string
}

// Balances holds an account's reported balances; either may be null upstream.
type Balances struct {
	Available       decimal.NullDecimal
	Current         decimal.NullDecimal
	IsoCurrencyCode *string
}

// Account is one entry of accounts/get.
type Account struct {
	AccountID    string
	Name         string
	OfficialName *string
	Mask         *string
	Type         string
	Subtype      *string
	Balances     Balances
}

// Categories returns the (category, subcategory) pair for a transaction,
// preferring the legacy hierarchy and falling back to the personal finance
// category when the legacy one is absent.
func (t *Transaction) Categories() (string, string) {
	if len(t.Category) > 0 {
		sub := ""
		if len(t.Category) > 1 {
			sub = t.Category[1]
		}
		return t.Category[0], sub
	}
	if t.PersonalFinanceCategory != nil {
		return t.PersonalFinanceCategory.Primary, t.PersonalFinanceCategory.Detailed
	}
	return "", ""
}

// Currency returns the ISO currency, falling back to the unofficial code and then USD.
func (t *Transaction) Currency() string {
	if t.IsoCurrencyCode != nil && *t.IsoCurrencyCode != "" {
		return *t.IsoCurrencyCode
	}
	if t.UnofficialCurrencyCode != nil && *t.UnofficialCurrencyCode != "" {
		return *t.UnofficialCurrencyCode
	}
	return "USD"
}

// Owner returns the account owner or an empty string.
func (t *Transaction) Owner() string {
	return deref(t.AccountOwner)
}

// ParsedDate parses the transaction date as a UTC calendar date.
func (t *Transaction) ParsedDate() (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, t.Date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid transaction date %q: %w", t.Date, err)
	}
	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OfficialNameOrEmpty returns the official name or an empty string.
func (a *Account) OfficialNameOrEmpty() string { return deref(a.OfficialName) }

// MaskOrEmpty returns the mask or an empty string.
func (a *Account) MaskOrEmpty() string { return deref(a.Mask) }

// SubtypeOrEmpty returns the subtype or an empty string.
func (a *Account) SubtypeOrEmpty() string { return deref(a.Subtype) }

// Currency returns the balance currency, defaulting to USD.
func (a *Account) Currency() string {
	if a.Balances.IsoCurrencyCode != nil && *a.Balances.IsoCurrencyCode != "" {
		return *a.Balances.IsoCurrencyCode
	}
	return "USD"
}
