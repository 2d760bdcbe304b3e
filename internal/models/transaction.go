package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one financial event synced from a linked item
type Transaction struct {
	Base
	PlaidTransactionID string `gorm:"uniqueIndex;not null" json:"plaid_transaction_id"`
	UserID             uint   `gorm:"not null;index" json:"user_id"`
	AccountID          uint   `gorm:"not null;index" json:"account_id"`

	// Effective values, possibly rewritten by a rule or a manual edit.
	Name        string `gorm:"not null" json:"name"`
	Category    string `gorm:"index" json:"category"`
	Subcategory string `json:"subcategory"`

	// Raw upstream values as last reported by the feed.
	OriginalName        string `json:"original_name"`
	OriginalCategory    string `json:"original_category"`
	OriginalSubcategory string `json:"original_subcategory"`

	Amount          decimal.Decimal `gorm:"type:numeric(16,2);not null" json:"amount"`
	IsoCurrencyCode string          `gorm:"not null;default:'USD'" json:"iso_currency_code"`
	Date            time.Time       `gorm:"not null;index" json:"date"`
	Pending         bool            `gorm:"not null;default:false" json:"pending"`
	AccountOwner    string          `json:"account_owner,omitempty"`

	// RuleID is the rule that produced Name/Category/Subcategory, if any.
	RuleID          *uint `json:"rule_id,omitempty"`
	ManuallyUpdated bool  `gorm:"not null;default:false" json:"manually_updated"`
	MarkDelete      bool  `gorm:"not null;default:false" json:"mark_delete"`

	Account Account `gorm:"foreignKey:AccountID" json:"-"`
}
