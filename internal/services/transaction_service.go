package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"finsight/internal/batch"
	apperrors "finsight/internal/errors"
	"finsight/internal/logger"
	"finsight/internal/models"
	"finsight/internal/pagination"
	"finsight/internal/plaid"
	"finsight/internal/rules"
)

// UpsertOptions bounds how ingestion writes are spread over the database.
type UpsertOptions struct {
	BatchSize   int
	Concurrency int
}

// transactionService handles transaction ingestion and user edits.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
	ruleService    RuleServicer
	opts           UpsertOptions
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, ruleService RuleServicer, opts UpsertOptions) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
		ruleService:    ruleService,
		opts:           opts,
	}
}

// keepIfManual keeps the stored value of each column when the row was edited
// by hand, and takes the incoming value otherwise.
func keepIfManual(columns ...string) clause.Set {
	set := make(clause.Set, len(columns))
	for i, c := range columns {
		set[i] = clause.Assignment{
			Column: clause.Column{Name: c},
			Value:  gorm.Expr(fmt.Sprintf("CASE WHEN transactions.manually_updated THEN transactions.%s ELSE excluded.%s END", c, c)),
		}
	}
	return set
}

// transactionUpsert resolves a conflict on the Plaid transaction id.
var transactionUpsert = clause.OnConflict{
	Columns: []clause.Column{{Name: "plaid_transaction_id"}},
	DoUpdates: append(
		clause.AssignmentColumns([]string{
			"user_id", "account_id",
			"original_name", "original_category", "original_subcategory",
			"amount", "iso_currency_code", "pending", "account_owner", "updated_at",
		}),
		keepIfManual("name", "category", "subcategory", "date", "rule_id")...,
	),
}

type upsertOutcome struct {
	upserted int
	failures []TransactionError
}

// UpsertTransactions ingests transactions reported by the feed. Pending
// transactions are skipped. Each remaining transaction is resolved to its
// local account, rewritten by the user's rules and upserted on its own; a
// failed row is reported in the result and does not stop the others.
func (s *transactionService) UpsertTransactions(ctx context.Context, userID uint, transactions []plaid.Transaction) (*UpsertResult, error) {
	result := &UpsertResult{}

	posted := make([]plaid.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Pending {
			result.SkippedPending++
			continue
		}
		posted = append(posted, t)
	}
	if len(posted) == 0 {
		return result, nil
	}

	userRules, err := s.ruleService.GetUserRules(ctx, userID)
	if err != nil {
		return nil, err
	}

	outcomes := batch.Run(ctx, posted, s.opts.Concurrency, s.opts.BatchSize,
		func(ctx context.Context, chunk []plaid.Transaction) (upsertOutcome, error) {
			var out upsertOutcome
			for i := range chunk {
				if err := s.upsertOne(ctx, userID, &chunk[i], userRules); err != nil {
					logger.Get().Warnw("failed to upsert transaction",
						"transaction_id", chunk[i].TransactionID,
						"account_id", chunk[i].AccountID,
						"error", err,
					)
					out.failures = append(out.failures, TransactionError{
						TransactionID: chunk[i].TransactionID,
						AccountID:     chunk[i].AccountID,
						Err:           err,
					})
					continue
				}
				out.upserted++
			}
			return out, nil
		})

	for _, o := range outcomes {
		result.Upserted += o.Value.upserted
		result.Failures = append(result.Failures, o.Value.failures...)
	}
	return result, nil
}

func (s *transactionService) upsertOne(ctx context.Context, userID uint, t *plaid.Transaction, userRules []models.Rule) error {
	account, err := s.accountService.GetAccountByExternalID(ctx, t.AccountID)
	if err != nil {
		return err
	}
	if account.UserID != userID {
		return apperrors.WithMessage(apperrors.ErrAccountNotFound, "account belongs to another user")
	}

	date, err := t.ParsedDate()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}

	category, subcategory := t.Categories()
	rewritten := rules.Apply(t.Name, category, subcategory, userRules)

	row := models.Transaction{
		PlaidTransactionID:  t.TransactionID,
		UserID:              userID,
		AccountID:           account.ID,
		Name:                rewritten.Name,
		Category:            rewritten.Category,
		Subcategory:         rewritten.Subcategory,
		OriginalName:        t.Name,
		OriginalCategory:    category,
		OriginalSubcategory: subcategory,
		Amount:              t.Amount,
		IsoCurrencyCode:     t.Currency(),
		Date:                date,
		Pending:             t.Pending,
		AccountOwner:        t.Owner(),
		RuleID:              rewritten.RuleID,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Clauses(transactionUpsert).Create(&row).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteByExternalIDs hard-deletes transactions the feed reported as removed.
func (s *transactionService) DeleteByExternalIDs(ctx context.Context, plaidTransactionIDs []string) (int64, error) {
	if len(plaidTransactionIDs) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).Unscoped().
		Where("plaid_transaction_id IN ?", plaidTransactionIDs).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	q := applyTransactionFilters(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)

	result, err := pagination.Find[models.Transaction](q, page, "date DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// MaxExportRows caps a single ExportTransactions call.
const MaxExportRows = 10000

// ExportTransactions returns every transaction matching filter, oldest first.
// More than MaxExportRows matches is an input error; narrow the filter.
func (s *transactionService) ExportTransactions(userID uint, filter TransactionFilter) ([]models.Transaction, error) {
	q := applyTransactionFilters(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)

	var transactions []models.Transaction
	if err := q.Order("date ASC, id ASC").Limit(MaxExportRows + 1).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(transactions) > MaxExportRows {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("export matches more than %d transactions, narrow the date range", MaxExportRows))
	}
	return transactions, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if !f.IncludeMarked {
		q = q.Where("mark_delete = ?", false)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.Search != nil && *f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(*f.Search)+"%")
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionsInRange returns the user's visible transactions dated
// within [from, to), oldest first.
func (s *transactionService) GetTransactionsInRange(userID uint, from, to time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.
		Where("user_id = ? AND mark_delete = ? AND date >= ? AND date < ?", userID, false, from, to).
		Order("date ASC, id ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a manual edit. The row is flagged so later syncs
// keep the edited name, category, subcategory and date.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"manually_updated": true}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name must not be empty")
		}
		updates["name"] = name
	}
	if update.Category != nil {
		updates["category"] = strings.TrimSpace(*update.Category)
	}
	if update.Subcategory != nil {
		updates["subcategory"] = strings.TrimSpace(*update.Subcategory)
	}
	if update.Date != nil {
		updates["date"] = update.Date.UTC()
	}
	if len(updates) == 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no fields to update")
	}

	if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetTransactionByID(userID, transactionID)
}

// SetMarkDelete hides or restores a transaction without deleting the row.
func (s *transactionService) SetMarkDelete(userID, transactionID uint, markDelete bool) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(transaction).Update("mark_delete", markDelete).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	transaction.MarkDelete = markDelete
	return transaction, nil
}
