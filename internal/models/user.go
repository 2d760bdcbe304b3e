package models

import "github.com/shopspring/decimal"

// User owns linked items and categorization rules. Credentials live with the
// session service; this table only mirrors identity and derived totals.
type User struct {
	Base
	Email     string          `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	NetWorth  decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0" json:"net_worth"`
	Items     []Item          `gorm:"foreignKey:UserID" json:"items,omitempty"`
	Rules     []Rule          `gorm:"foreignKey:UserID" json:"rules,omitempty"`
}
