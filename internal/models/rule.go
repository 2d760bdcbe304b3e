package models

// Rule rewrites transaction descriptors at ingestion time. Match fields are
// case-insensitive substrings; an empty match field matches anything. Empty
// replacement fields leave the value unchanged.
type Rule struct {
	Base
	UserID uint `gorm:"not null;index" json:"user_id"`
	Serial int  `gorm:"not null;default:0" json:"serial"`

	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`

	NewName        string `json:"new_name"`
	NewCategory    string `json:"new_category"`
	NewSubcategory string `json:"new_subcategory"`
}
