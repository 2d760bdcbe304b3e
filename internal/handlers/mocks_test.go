package handlers

import (
	"context"
	"time"

	"finsight/internal/models"
	"finsight/internal/pagination"
	"finsight/internal/plaid"
	"finsight/internal/services"
)

type mockRuleService struct {
	createRuleFn   func(userID uint, input services.RuleInput) (*models.Rule, error)
	getUserRulesFn func(ctx context.Context, userID uint) ([]models.Rule, error)
	getRuleByIDFn  func(userID, ruleID uint) (*models.Rule, error)
	updateRuleFn   func(userID, ruleID uint, input services.RuleInput) (*models.Rule, error)
	deleteRuleFn   func(userID, ruleID uint) error
}

func (m *mockRuleService) CreateRule(userID uint, input services.RuleInput) (*models.Rule, error) {
	if m.createRuleFn != nil {
		return m.createRuleFn(userID, input)
	}
	return &models.Rule{}, nil
}

func (m *mockRuleService) GetUserRules(ctx context.Context, userID uint) ([]models.Rule, error) {
	if m.getUserRulesFn != nil {
		return m.getUserRulesFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockRuleService) GetRuleByID(userID, ruleID uint) (*models.Rule, error) {
	if m.getRuleByIDFn != nil {
		return m.getRuleByIDFn(userID, ruleID)
	}
	return &models.Rule{}, nil
}

func (m *mockRuleService) UpdateRule(userID, ruleID uint, input services.RuleInput) (*models.Rule, error) {
	if m.updateRuleFn != nil {
		return m.updateRuleFn(userID, ruleID, input)
	}
	return &models.Rule{}, nil
}

func (m *mockRuleService) DeleteRule(userID, ruleID uint) error {
	if m.deleteRuleFn != nil {
		return m.deleteRuleFn(userID, ruleID)
	}
	return nil
}

type mockTransactionService struct {
	getUserTransactionsFn func(userID uint, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn  func(userID, transactionID uint) (*models.Transaction, error)
	updateTransactionFn   func(userID, transactionID uint, update services.TransactionUpdate) (*models.Transaction, error)
	setMarkDeleteFn       func(userID, transactionID uint, markDelete bool) (*models.Transaction, error)
	exportTransactionsFn  func(userID uint, filter services.TransactionFilter) ([]models.Transaction, error)
}

func (m *mockTransactionService) UpsertTransactions(context.Context, uint, []plaid.Transaction) (*services.UpsertResult, error) {
	return &services.UpsertResult{}, nil
}

func (m *mockTransactionService) DeleteByExternalIDs(context.Context, []string) (int64, error) {
	return 0, nil
}

func (m *mockTransactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse[models.Transaction](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) ExportTransactions(userID uint, filter services.TransactionFilter) ([]models.Transaction, error) {
	if m.exportTransactionsFn != nil {
		return m.exportTransactionsFn(userID, filter)
	}
	return nil, nil
}

func (m *mockTransactionService) GetTransactionsInRange(uint, time.Time, time.Time) ([]models.Transaction, error) {
	return nil, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID uint, update services.TransactionUpdate) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, update)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) SetMarkDelete(userID, transactionID uint, markDelete bool) (*models.Transaction, error) {
	if m.setMarkDeleteFn != nil {
		return m.setMarkDeleteFn(userID, transactionID, markDelete)
	}
	return &models.Transaction{MarkDelete: markDelete}, nil
}

type mockItemService struct {
	getUserItemsFn func(ctx context.Context, userID uint) ([]models.Item, error)
	archiveItemFn  func(userID, itemID uint) (*models.Item, error)
}

func (m *mockItemService) GetItemByExternalID(context.Context, string) (*models.Item, error) {
	return &models.Item{}, nil
}

func (m *mockItemService) GetUserItems(ctx context.Context, userID uint) ([]models.Item, error) {
	if m.getUserItemsFn != nil {
		return m.getUserItemsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockItemService) AdvanceCursor(context.Context, uint, string, time.Time) error {
	return nil
}

func (m *mockItemService) ArchiveItem(userID, itemID uint) (*models.Item, error) {
	if m.archiveItemFn != nil {
		return m.archiveItemFn(userID, itemID)
	}
	return &models.Item{IsArchived: true}, nil
}

func (m *mockItemService) GetUserIDsWithActiveItems(context.Context) ([]uint, error) {
	return nil, nil
}

type mockAccountService struct {
	getUserAccountsFn func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	getNetWorthFn     func(ctx context.Context, userID uint) (*services.NetWorth, error)
}

func (m *mockAccountService) GetAccountByExternalID(context.Context, string) (*models.Account, error) {
	return &models.Account{}, nil
}

func (m *mockAccountService) UpsertAccounts(context.Context, *models.Item, []plaid.Account) error {
	return nil
}

func (m *mockAccountService) GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	if m.getUserAccountsFn != nil {
		return m.getUserAccountsFn(userID, page)
	}
	resp := pagination.NewPageResponse[models.Account](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockAccountService) GetNetWorth(ctx context.Context, userID uint) (*services.NetWorth, error) {
	if m.getNetWorthFn != nil {
		return m.getNetWorthFn(ctx, userID)
	}
	return &services.NetWorth{}, nil
}

func (m *mockAccountService) RecomputeNetWorth(ctx context.Context, userID uint) (*services.NetWorth, error) {
	return m.GetNetWorth(ctx, userID)
}

type mockSyncService struct {
	syncUserFn     func(ctx context.Context, userID uint) (*services.UserSyncResult, error)
	syncAllUsersFn func(ctx context.Context) (*services.SyncAllResult, error)
}

func (m *mockSyncService) SyncItem(_ context.Context, plaidItemID string) *services.ItemSyncResult {
	return &services.ItemSyncResult{ItemID: plaidItemID}
}

func (m *mockSyncService) SyncUser(ctx context.Context, userID uint) (*services.UserSyncResult, error) {
	if m.syncUserFn != nil {
		return m.syncUserFn(ctx, userID)
	}
	return &services.UserSyncResult{UserID: userID}, nil
}

func (m *mockSyncService) SyncAllUsers(ctx context.Context) (*services.SyncAllResult, error) {
	if m.syncAllUsersFn != nil {
		return m.syncAllUsersFn(ctx)
	}
	return &services.SyncAllResult{}, nil
}

type mockSummaryService struct {
	getMonthlySummaryFn func(userID uint, from, to time.Time) (*services.MonthlySummary, error)
}

func (m *mockSummaryService) GetMonthlySummary(userID uint, from, to time.Time) (*services.MonthlySummary, error) {
	if m.getMonthlySummaryFn != nil {
		return m.getMonthlySummaryFn(userID, from, to)
	}
	return &services.MonthlySummary{From: from, To: to}, nil
}
