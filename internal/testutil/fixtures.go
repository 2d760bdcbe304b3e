package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finsight/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// UniqueID returns a string unique within the test binary, prefixed for readability.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, nextID())
}

// CreateTestUser creates an active user with a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		IsActive: true,
		NetWorth: decimal.Zero,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestItem creates a linked item in the given environment with an empty cursor.
func CreateTestItem(t *testing.T, db *gorm.DB, userID uint, env models.ItemEnvironment) *models.Item {
	t.Helper()

	item := &models.Item{
		UserID:          userID,
		PlaidItemID:     UniqueID("item"),
		AccessToken:     UniqueID("access"),
		InstitutionID:   "ins_1",
		InstitutionName: "Test Bank",
		Environment:     env,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test item: %v", err)
	}
	return item
}

// CreateTestAccount creates a depository account under an item.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID, itemID uint) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, itemID, models.AccountTypeDepository, decimal.Zero)
}

// CreateTestAccountWithBalance creates an account of the given type and current balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID, itemID uint, accountType models.AccountType, balance decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:           userID,
		ItemID:           itemID,
		PlaidAccountID:   UniqueID("acc"),
		Name:             fmt.Sprintf("Test Account %d", nextID()),
		Type:             accountType,
		CurrentBalance:   balance,
		AvailableBalance: balance,
		IsoCurrencyCode:  "USD",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction creates a posted transaction with the given descriptors.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID uint, name, category string, amount decimal.Decimal, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		PlaidTransactionID: UniqueID("tx"),
		UserID:             userID,
		AccountID:          accountID,
		Name:               name,
		Category:           category,
		OriginalName:       name,
		OriginalCategory:   category,
		Amount:             amount,
		IsoCurrencyCode:    "USD",
		Date:               date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestRule creates a rule for the user. Pass the match fields and the replacements.
func CreateTestRule(t *testing.T, db *gorm.DB, userID uint, serial int, match, replace [3]string) *models.Rule {
	t.Helper()

	rule := &models.Rule{
		UserID:         userID,
		Serial:         serial,
		Name:           match[0],
		Category:       match[1],
		Subcategory:    match[2],
		NewName:        replace[0],
		NewCategory:    replace[1],
		NewSubcategory: replace[2],
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}
	return rule
}
