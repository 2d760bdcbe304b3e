package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"finsight/internal/batch"
	apperrors "finsight/internal/errors"
	"finsight/internal/events"
	"finsight/internal/logger"
	"finsight/internal/models"
	"finsight/internal/plaid"
	"finsight/internal/uuid"
)

// SyncOptions tunes the sync driver.
type SyncOptions struct {
	// PageSize is the count requested per transactions/sync page.
	PageSize int
	// StalenessWindow skips production items synced more recently than this.
	StalenessWindow time.Duration
	// UserConcurrency bounds how many users SyncAllUsers runs at once.
	UserConcurrency int
}

// syncService reconciles linked items against the remote feed.
type syncService struct {
	items        ItemServicer
	accounts     AccountServicer
	transactions TransactionServicer
	clients      plaid.Clients
	notifier     events.Notifier
	opts         SyncOptions
	now          func() time.Time
}

// NewSyncService creates a new SyncServicer.
func NewSyncService(
	items ItemServicer,
	accounts AccountServicer,
	transactions TransactionServicer,
	clients plaid.Clients,
	notifier events.Notifier,
	opts SyncOptions,
) SyncServicer {
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &syncService{
		items:        items,
		accounts:     accounts,
		transactions: transactions,
		clients:      clients,
		notifier:     notifier,
		opts:         opts,
		now:          time.Now,
	}
}

// itemRun carries the per-run state of one SyncItem call.
type itemRun struct {
	result *ItemSyncResult
	item   *models.Item
	log    *zap.SugaredLogger
}

// syncPull is everything accumulated by the pagination loop. Changes are
// keyed by transaction id so a later page supersedes an earlier one.
type syncPull struct {
	added    int
	modified int
	cursor   string
	pages    int

	order   []string
	latest  map[string]plaid.Transaction
	removed map[string]bool
	dropped []string
}

func newSyncPull(cursor string) *syncPull {
	return &syncPull{
		cursor:  cursor,
		latest:  map[string]plaid.Transaction{},
		removed: map[string]bool{},
	}
}

// merge folds one page into the pull. Within a page removals are applied
// after added and modified entries.
func (p *syncPull) merge(page *plaid.SyncPage) {
	p.added += len(page.Added)
	p.modified += len(page.Modified)

	for _, list := range [][]plaid.Transaction{page.Added, page.Modified} {
		for _, tx := range list {
			if _, seen := p.latest[tx.TransactionID]; !seen {
				p.order = append(p.order, tx.TransactionID)
			}
			p.latest[tx.TransactionID] = tx
			delete(p.removed, tx.TransactionID)
		}
	}
	for _, r := range page.Removed {
		delete(p.latest, r.TransactionID)
		if !p.removed[r.TransactionID] {
			p.removed[r.TransactionID] = true
			p.dropped = append(p.dropped, r.TransactionID)
		}
	}
}

// changed returns the final version of every transaction still present,
// in first-seen order.
func (p *syncPull) changed() []plaid.Transaction {
	out := make([]plaid.Transaction, 0, len(p.latest))
	for _, id := range p.order {
		if tx, ok := p.latest[id]; ok {
			out = append(out, tx)
		}
	}
	return out
}

// removedIDs returns the ids whose last reported state is removed.
func (p *syncPull) removedIDs() []string {
	out := make([]string, 0, len(p.removed))
	for _, id := range p.dropped {
		if p.removed[id] {
			out = append(out, id)
		}
	}
	return out
}

// skipReason returns why the item must not be fetched, or "" to fetch it.
func (s *syncService) skipReason(item *models.Item) string {
	if item.IsArchived {
		return "archived"
	}
	if item.IsProduction() && item.LastSyncedAt != nil && s.now().Sub(*item.LastSyncedAt) < s.opts.StalenessWindow {
		return "synced within staleness window"
	}
	return ""
}

// SyncItem pulls every page of changes since the item's cursor and applies
// them. A failure never escapes as a panic or error return: it is logged,
// reported as a SYNC_ERROR event and carried in the result with zero counts,
// and the stored cursor is left where it was.
func (s *syncService) SyncItem(ctx context.Context, plaidItemID string) *ItemSyncResult {
	runID := uuid.NewRunID()
	run := &itemRun{
		result: &ItemSyncResult{RunID: runID, ItemID: plaidItemID},
		log:    logger.With("run_id", runID, "item_id", plaidItemID),
	}

	item, err := s.items.GetItemByExternalID(ctx, plaidItemID)
	if err != nil {
		return s.fail(run, "failed to load item", err)
	}
	run.item = item
	run.log = run.log.With("user_id", item.UserID, "environment", item.Environment)
	run.result.Cursor = item.Cursor

	if item.IsArchived {
		run.log.Infow("skipping archived item")
		return run.result
	}

	reason := s.skipReason(item)
	if reason != "" {
		run.log.Infow("skipping transaction fetch", "reason", reason)
	}

	// Skipped runs still refresh the account snapshot, so both paths need a client.
	client, err := s.clients.For(item.Environment)
	if err != nil {
		return s.fail(run, "no feed client for item", apperrors.Wrap(apperrors.ErrUnsupportedClient, err))
	}

	pull := newSyncPull(item.Cursor)
	if reason == "" {
		pull, err = s.pullPages(ctx, client, item, run.log)
		if err != nil {
			return s.fail(run, "transaction sync failed", apperrors.Wrap(apperrors.ErrRemoteFeed, err))
		}
		run.result.Updated = true
	}

	if err := s.apply(ctx, client, run, pull); err != nil {
		run.result.Updated = false
		run.result.Cursor = item.Cursor
		return s.fail(run, "failed to apply synced changes", err)
	}

	run.result.Added = pull.added
	run.result.Modified = pull.modified
	run.result.Removed = len(pull.removedIDs())

	run.log.Infow("item sync finished",
		"updated", run.result.Updated,
		"pages", pull.pages,
		"added", run.result.Added,
		"modified", run.result.Modified,
		"removed", run.result.Removed,
		"failed_transactions", len(run.result.Failures),
	)
	s.notifier.Notify(events.Event{
		Name:    events.SyncHappened,
		RunID:   runID,
		ItemID:  plaidItemID,
		UserID:  item.UserID,
		Message: fmt.Sprintf("%s: %d added, %d modified, %d removed", item.InstitutionName, run.result.Added, run.result.Modified, run.result.Removed),
		At:      s.now(),
	})
	return run.result
}

// pullPages follows the cursor until the feed reports no more pages. Pages
// are consumed strictly in order; nothing is persisted here.
func (s *syncService) pullPages(ctx context.Context, client plaid.FeedClient, item *models.Item, log *zap.SugaredLogger) (*syncPull, error) {
	pull := newSyncPull(item.Cursor)
	for {
		page, err := client.SyncTransactions(ctx, item.AccessToken, pull.cursor, s.opts.PageSize)
		if err != nil {
			return nil, err
		}
		pull.pages++

		pull.merge(page)

		log.Debugw("fetched transactions page",
			"page", pull.pages,
			"request_id", page.RequestID,
			"added", len(page.Added),
			"modified", len(page.Modified),
			"removed", len(page.Removed),
			"has_more", page.HasMore,
		)

		if page.HasMore && page.NextCursor == pull.cursor {
			return nil, errors.New("feed reported more pages without advancing the cursor")
		}
		pull.cursor = page.NextCursor
		if !page.HasMore {
			return pull, nil
		}
	}
}

// apply refreshes the account snapshot, writes the pulled changes and, after
// a live fetch, advances the cursor.
func (s *syncService) apply(ctx context.Context, client plaid.FeedClient, run *itemRun, pull *syncPull) error {
	item := run.item

	accounts, err := client.GetAccounts(ctx, item.AccessToken)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRemoteFeed, err)
	}
	if err := s.accounts.UpsertAccounts(ctx, item, accounts); err != nil {
		return err
	}

	upserted, err := s.transactions.UpsertTransactions(ctx, item.UserID, pull.changed())
	if err != nil {
		return err
	}
	run.result.Failures = upserted.Failures
	if upserted.SkippedPending > 0 {
		run.log.Debugw("skipped pending transactions", "count", upserted.SkippedPending)
	}

	if _, err := s.transactions.DeleteByExternalIDs(ctx, pull.removedIDs()); err != nil {
		return err
	}

	if !run.result.Updated {
		return nil
	}
	if err := s.items.AdvanceCursor(ctx, item.ID, pull.cursor, s.now()); err != nil {
		return err
	}
	run.result.Cursor = pull.cursor
	return nil
}

func (s *syncService) fail(run *itemRun, msg string, err error) *ItemSyncResult {
	run.log.Errorw(msg, "error", err)
	run.result.Err = err
	run.result.Added, run.result.Modified, run.result.Removed = 0, 0, 0

	var userID uint
	if run.item != nil {
		userID = run.item.UserID
	}
	s.notifier.Notify(events.Event{
		Name:    events.SyncError,
		RunID:   run.result.RunID,
		ItemID:  run.result.ItemID,
		UserID:  userID,
		Message: fmt.Sprintf("%s: %v", msg, err),
		At:      s.now(),
	})
	return run.result
}

// SyncUser syncs all of the user's items concurrently, waits for every run
// to settle, then recomputes net worth. Item failures are counted in the
// result; only failing to list items or to recompute net worth is returned.
func (s *syncService) SyncUser(ctx context.Context, userID uint) (*UserSyncResult, error) {
	start := s.now()
	runID := uuid.NewRunID()
	log := logger.With("run_id", runID, "user_id", userID)

	items, err := s.items.GetUserItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]ItemSyncResult, len(items))
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int, plaidItemID string) {
			defer wg.Done()
			results[i] = *s.SyncItem(ctx, plaidItemID)
		}(i, items[i].PlaidItemID)
	}
	wg.Wait()

	result := &UserSyncResult{RunID: runID, UserID: userID, Items: results}
	for _, r := range results {
		if r.Err != nil {
			result.Failed++
			continue
		}
		result.Added += r.Added
		result.Modified += r.Modified
		result.Removed += r.Removed
	}

	worth, err := s.accounts.RecomputeNetWorth(ctx, userID)
	if err != nil {
		log.Errorw("failed to recompute net worth", "error", err)
		return nil, err
	}
	result.NetWorth = worth.NetWorth
	result.Duration = s.now().Sub(start)

	log.Infow("user sync finished",
		"items", len(items),
		"failed_items", result.Failed,
		"added", result.Added,
		"modified", result.Modified,
		"removed", result.Removed,
		"duration", result.Duration.String(),
	)
	s.notifier.Notify(events.Event{
		Name:    events.SyncCompleted,
		RunID:   runID,
		UserID:  userID,
		Message: fmt.Sprintf("synced %d items: %d added, %d modified, %d removed", len(items), result.Added, result.Modified, result.Removed),
		At:      s.now(),
	})
	return result, nil
}

// SyncAllUsers runs SyncUser for every user with an active item, at most
// UserConcurrency users at a time.
func (s *syncService) SyncAllUsers(ctx context.Context) (*SyncAllResult, error) {
	start := s.now()

	userIDs, err := s.items.GetUserIDsWithActiveItems(ctx)
	if err != nil {
		return nil, err
	}

	runs := batch.Run(ctx, userIDs, s.opts.UserConcurrency, 1,
		func(ctx context.Context, ids []uint) (*UserSyncResult, error) {
			return s.SyncUser(ctx, ids[0])
		})

	result := &SyncAllResult{Users: len(userIDs)}
	for _, r := range runs {
		if r.Err != nil {
			result.FailedUsers++
			logger.Get().Errorw("user sync failed", "user_id", userIDs[r.Index], "error", r.Err)
			continue
		}
		result.Added += r.Value.Added
		result.Modified += r.Value.Modified
		result.Removed += r.Value.Removed
	}
	result.Duration = s.now().Sub(start)

	logger.Get().Infow("sync of all users finished",
		"users", result.Users,
		"failed_users", result.FailedUsers,
		"added", result.Added,
		"modified", result.Modified,
		"removed", result.Removed,
		"duration", result.Duration.String(),
	)
	return result, nil
}
