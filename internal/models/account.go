package models

import "github.com/shopspring/decimal"

// AccountType mirrors the Plaid account type
type AccountType string

const (
	AccountTypeDepository AccountType = "depository"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

// Account represents a bank account reported by a linked item
type Account struct {
	Base
	UserID           uint            `gorm:"not null;index" json:"user_id"`
	ItemID           uint            `gorm:"not null;index" json:"item_id"`
	PlaidAccountID   string          `gorm:"uniqueIndex;not null" json:"plaid_account_id"`
	Name             string          `gorm:"not null" json:"name"`
	OfficialName     string          `json:"official_name"`
	Mask             string          `json:"mask"`
	Type             AccountType     `gorm:"not null" json:"type"`
	Subtype          string          `json:"subtype"`
	CurrentBalance   decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0" json:"current_balance"`
	AvailableBalance decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0" json:"available_balance"`
	IsoCurrencyCode  string          `gorm:"not null;default:'USD'" json:"iso_currency_code"`
}

// IsLiability reports whether the balance counts against net worth.
func (a *Account) IsLiability() bool {
	return a.Type == AccountTypeCredit || a.Type == AccountTypeLoan
}
