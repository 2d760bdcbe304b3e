package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finsight/internal/cache"
	apperrors "finsight/internal/errors"
	"finsight/internal/models"
	"finsight/internal/pagination"
	"finsight/internal/plaid"
)

// accountService handles account snapshots and net worth.
type accountService struct {
	db    *gorm.DB
	cache cache.Cache[string, models.Account]
	ttl   time.Duration
}

// NewAccountService creates a new AccountServicer. Lookups by Plaid account
// id are memoised in accountCache for ttl.
func NewAccountService(db *gorm.DB, accountCache cache.Cache[string, models.Account], ttl time.Duration) AccountServicer {
	if accountCache == nil {
		accountCache = cache.Nop[string, models.Account]{}
	}
	return &accountService{db: db, cache: accountCache, ttl: ttl}
}

// GetAccountByExternalID resolves a local account from its Plaid account id.
func (s *accountService) GetAccountByExternalID(ctx context.Context, plaidAccountID string) (*models.Account, error) {
	if account, ok := s.cache.Get(plaidAccountID); ok {
		return &account, nil
	}

	var account models.Account
	if err := s.db.WithContext(ctx).Where("plaid_account_id = ?", plaidAccountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Set(plaidAccountID, account, s.ttl)
	return &account, nil
}

func accountType(t string) models.AccountType {
	switch models.AccountType(t) {
	case models.AccountTypeDepository, models.AccountTypeCredit, models.AccountTypeLoan, models.AccountTypeInvestment:
		return models.AccountType(t)
	default:
		return models.AccountTypeOther
	}
}

func balanceOrZero(d decimal.NullDecimal) decimal.Decimal {
	if d.Valid {
		return d.Decimal
	}
	return decimal.Zero
}

// UpsertAccounts stores the item's current account snapshot, keyed by Plaid
// account id, and refreshes the lookup cache with the stored rows.
func (s *accountService) UpsertAccounts(ctx context.Context, item *models.Item, accounts []plaid.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	rows := make([]models.Account, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		rows[i] = models.Account{
			UserID:           item.UserID,
			ItemID:           item.ID,
			PlaidAccountID:   a.AccountID,
			Name:             a.Name,
			OfficialName:     a.OfficialNameOrEmpty(),
			Mask:             a.MaskOrEmpty(),
			Type:             accountType(a.Type),
			Subtype:          a.SubtypeOrEmpty(),
			CurrentBalance:   balanceOrZero(a.Balances.Current),
			AvailableBalance: balanceOrZero(a.Balances.Available),
			IsoCurrencyCode:  a.Currency(),
		}
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "plaid_account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "item_id", "name", "official_name", "mask", "type", "subtype",
			"current_balance", "available_balance", "iso_currency_code", "updated_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Re-read so cached rows carry their persisted ids.
	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].PlaidAccountID
	}
	var stored []models.Account
	if err := s.db.WithContext(ctx).Where("plaid_account_id IN ?", ids).Find(&stored).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, account := range stored {
		s.cache.Set(account.PlaidAccountID, account, s.ttl)
	}
	return nil
}

// GetUserAccounts retrieves a paginated list of the user's accounts.
func (s *accountService) GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	result, err := pagination.Find[models.Account](
		s.db.Model(&models.Account{}).Where("user_id = ?", userID), page, "id ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetNetWorth sums the current balances of accounts under the user's active
// items, subtracting credit and loan balances. Nothing is written.
func (s *accountService) GetNetWorth(ctx context.Context, userID uint) (*NetWorth, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).
		Joins("JOIN items ON items.id = accounts.item_id AND items.deleted_at IS NULL").
		Where("accounts.user_id = ? AND items.is_archived = ?", userID, false).
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	worth := &NetWorth{Assets: decimal.Zero, Liabilities: decimal.Zero}
	for _, a := range accounts {
		if a.IsLiability() {
			worth.Liabilities = worth.Liabilities.Add(a.CurrentBalance)
		} else {
			worth.Assets = worth.Assets.Add(a.CurrentBalance)
		}
	}
	worth.NetWorth = worth.Assets.Sub(worth.Liabilities)
	return worth, nil
}

// RecomputeNetWorth stores the user's current net worth on the user row.
func (s *accountService) RecomputeNetWorth(ctx context.Context, userID uint) (*NetWorth, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	worth, err := s.GetNetWorth(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("net_worth", worth.NetWorth).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return worth, nil
}
