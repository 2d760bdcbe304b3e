package models

import "time"

// ItemEnvironment selects which Plaid deployment serves an item
type ItemEnvironment string

const (
	ItemEnvironmentProduction ItemEnvironment = "production"
	ItemEnvironmentSandbox    ItemEnvironment = "sandbox"
)

// Item is a linked institution login (a Plaid item). It carries the sync cursor.
type Item struct {
	Base
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	PlaidItemID     string          `gorm:"uniqueIndex;not null" json:"plaid_item_id"`
	AccessToken     string          `gorm:"not null" json:"-"`
	InstitutionID   string          `json:"institution_id"`
	InstitutionName string          `json:"institution_name"`
	Environment     ItemEnvironment `gorm:"not null;default:'sandbox'" json:"environment"`
	IsArchived      bool            `gorm:"not null;default:false" json:"is_archived"`

	// Cursor is the opaque transactions/sync continuation token. Empty means
	// the next sync starts from the beginning of history.
	Cursor string `json:"-"`
	// LastSyncedAt is stamped only when the cursor advances after a live fetch.
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`

	Accounts []Account `gorm:"foreignKey:ItemID" json:"accounts,omitempty"`
}

// IsProduction reports whether the item is served by the production deployment.
func (i *Item) IsProduction() bool {
	return i.Environment == ItemEnvironmentProduction
}
