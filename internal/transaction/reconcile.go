package transaction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/logger"
	"github.com/MrJamesThe3rd/finplan/internal/provider"
	"github.com/MrJamesThe3rd/finplan/internal/retry"
)

// Item is one provider connection: an access token, the cursor of the last
// completed sync, and the provider accounts it exposes.
type Item struct {
	ID          string
	AccessToken string
	Cursor      string
	AccountIDs  []string
}

// ReconcileInput scopes a reconciliation to one budget.
type ReconcileInput struct {
	BudgetID uuid.UUID
	Items    []Item
	// LinkedAccounts are the accounts attached to the budget, provider and manual alike.
	LinkedAccounts map[string]bool
	// ManualAccounts are the linked accounts with no provider behind them.
	ManualAccounts map[string]bool
}

// Result is the unified transaction set of one run. Nothing in it is
// persisted until Commit.
type Result struct {
	Linked   []*Transaction
	Unlinked []*Transaction
	// Pending writes.
	New              []*Transaction
	Updated          []*Transaction
	Recurring        []*Recurring
	RecurringChanged []*Recurring
	Cursors          map[string]string
	// Removed are stored pending transactions the provider dropped. Commit
	// tombstones them so later runs, which start past the removal, skip them.
	Removed []*Transaction
}

type Reconciler struct {
	repo     Repository
	client   provider.Client
	policy   retry.Policy
	detect   DetectOptions
	now      func() time.Time
	newIDGen func() *IDGenerator
}

func NewReconciler(repo Repository, client provider.Client, policy retry.Policy, detect DetectOptions) *Reconciler {
	return &Reconciler{
		repo:     repo,
		client:   client,
		policy:   policy,
		detect:   detect,
		now:      time.Now,
		newIDGen: func() *IDGenerator { return NewIDGenerator(repo) },
	}
}

// WithIDGenerator replaces how the per-run id generator is built.
func (r *Reconciler) WithIDGenerator(fn func() *IDGenerator) *Reconciler {
	r.newIDGen = fn
	return r
}

type syncedItem struct {
	added    []provider.Transaction
	modified []provider.Transaction
	removed  []string
	cursor   string
}

// Reconcile merges stored transactions with the provider's latest data.
func (r *Reconciler) Reconcile(ctx context.Context, in ReconcileInput) (*Result, error) {
	log := logger.FromContext(ctx)

	stored, err := r.repo.ListTransactions(ctx, ListFilter{BudgetID: in.BudgetID})
	if err != nil {
		return nil, fmt.Errorf("list stored transactions: %w", err)
	}

	storedRecurring, err := r.repo.ListRecurring(ctx, in.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("list stored recurring: %w", err)
	}

	res := &Result{Cursors: make(map[string]string)}

	byKey := make(map[string]*Transaction, len(stored))
	order := make([]string, 0, len(stored))
	persisted := make(map[uuid.UUID]bool, len(stored))

	for _, tx := range stored {
		if _, dup := byKey[tx.Key()]; dup {
			continue
		}

		persisted[tx.ID] = true
		byKey[tx.Key()] = tx
		order = append(order, tx.Key())
	}

	ids := r.newIDGen()
	removed := make(map[string]struct{})

	var streams []provider.Stream

	for _, item := range in.Items {
		synced, err := r.syncItem(ctx, item)
		if err != nil {
			return nil, err
		}

		res.Cursors[item.ID] = synced.cursor

		for _, ptx := range append(synced.added, synced.modified...) {
			key := "p:" + ptx.ID

			if existing, ok := byKey[key]; ok {
				if applyProviderUpdate(existing, ptx) {
					res.Updated = append(res.Updated, existing)
				}

				continue
			}

			tx, err := r.fromProvider(ctx, ids, in.BudgetID, ptx)
			if err != nil {
				return nil, err
			}

			byKey[key] = tx
			order = append(order, key)
			res.New = append(res.New, tx)
		}

		for _, id := range synced.removed {
			removed["p:"+id] = struct{}{}
		}

		itemStreams, err := r.fetchStreams(ctx, item)
		if err != nil {
			return nil, err
		}

		streams = append(streams, itemStreams...)
	}

	dropped := make(map[uuid.UUID]bool)

	for _, key := range order {
		tx := byKey[key]

		if _, gone := removed[key]; gone && tx.Status == StatusPending {
			dropped[tx.ID] = true

			if persisted[tx.ID] {
				res.Removed = append(res.Removed, tx)
			}

			continue
		}

		if in.LinkedAccounts[tx.AccountID] {
			res.Linked = append(res.Linked, tx)
		} else {
			res.Unlinked = append(res.Unlinked, tx)
		}
	}

	res.New = withoutIDs(res.New, dropped)
	res.Updated = withoutIDs(res.Updated, dropped)

	var manual []*Transaction

	for _, tx := range res.Linked {
		if in.ManualAccounts[tx.AccountID] {
			manual = append(manual, tx)
		}
	}

	detected := DetectRecurring(in.BudgetID, manual, r.detect)
	res.Recurring, res.RecurringChanged = mergeRecurring(in.BudgetID, storedRecurring, streams, detected, r.now())

	log.Info().
		Int("linked", len(res.Linked)).
		Int("unlinked", len(res.Unlinked)).
		Int("new", len(res.New)).
		Int("updated", len(res.Updated)).
		Int("removed_pending", len(res.Removed)).
		Int("recurring", len(res.Recurring)).
		Msg("transactions reconciled")

	return res, nil
}

func withoutIDs(txs []*Transaction, ids map[uuid.UUID]bool) []*Transaction {
	if len(ids) == 0 {
		return txs
	}

	out := txs[:0]

	for _, tx := range txs {
		if !ids[tx.ID] {
			out = append(out, tx)
		}
	}

	return out
}

// syncItem pages through the provider starting at the stored cursor. A failed
// page restarts the whole attempt from the stored cursor, so the returned
// cursor always belongs to a complete pass.
func (r *Reconciler) syncItem(ctx context.Context, item Item) (*syncedItem, error) {
	var out *syncedItem

	err := r.policy.Do(ctx, "sync item "+item.ID, func(ctx context.Context) error {
		attempt := &syncedItem{cursor: item.Cursor}

		for {
			page, err := r.client.SyncTransactions(ctx, item.AccessToken, attempt.cursor)
			if err != nil {
				return err
			}

			attempt.added = append(attempt.added, page.Added...)
			attempt.modified = append(attempt.modified, page.Modified...)
			attempt.removed = append(attempt.removed, page.Removed...)
			attempt.cursor = page.NextCursor

			if !page.HasMore {
				break
			}
		}

		out = attempt

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *Reconciler) fetchStreams(ctx context.Context, item Item) ([]provider.Stream, error) {
	var streams *provider.Streams

	err := r.policy.Do(ctx, "recurring streams "+item.ID, func(ctx context.Context) error {
		var err error
		streams, err = r.client.RecurringStreams(ctx, item.AccessToken, item.AccountIDs)

		return err
	})
	if err != nil {
		return nil, err
	}

	return append(streams.Inflow, streams.Outflow...), nil
}

func (r *Reconciler) fromProvider(ctx context.Context, ids *IDGenerator, budgetID uuid.UUID, ptx provider.Transaction) (*Transaction, error) {
	userTxID, err := ids.Generate(ctx, budgetID, ptx.Date, ptx.ID)
	if err != nil {
		return nil, err
	}

	status := StatusPosted
	if ptx.Pending {
		status = StatusPending
	}

	return &Transaction{
		ID:               uuid.New(),
		BudgetID:         budgetID,
		UserTxID:         userTxID,
		ProviderTxID:     ptx.ID,
		AccountID:        ptx.AccountID,
		Source:           SourceProvider,
		Date:             ptx.Date,
		Amount:           ptx.Amount,
		Status:           status,
		Currency:         ptx.Currency,
		Merchant:         ptx.MerchantName,
		Name:             ptx.Name,
		ProviderPrimary:  ptx.PrimaryCategory,
		ProviderDetailed: ptx.DetailedCategory,
	}, nil
}

// applyProviderUpdate refreshes a stored pending transaction from the provider.
// Posted transactions are immutable; user fields are never overwritten.
func applyProviderUpdate(tx *Transaction, ptx provider.Transaction) bool {
	if tx.Status == StatusPosted {
		return false
	}

	tx.Date = ptx.Date
	tx.Amount = ptx.Amount
	tx.Name = ptx.Name
	tx.ProviderPrimary = ptx.PrimaryCategory
	tx.ProviderDetailed = ptx.DetailedCategory

	if !ptx.Pending {
		tx.Status = StatusPosted
	}

	if tx.Merchant == "" {
		tx.Merchant = ptx.MerchantName
	}

	return true
}

// mergeRecurring supersedes stored recurring records with provider streams
// (matched by stream id) and locally detected ones (matched by id).
func mergeRecurring(budgetID uuid.UUID, stored []*Recurring, streams []provider.Stream, detected []*Recurring, now time.Time) ([]*Recurring, []*Recurring) {
	byStream := make(map[string]*Recurring)
	byID := make(map[uuid.UUID]*Recurring)

	all := make([]*Recurring, 0, len(stored)+len(streams)+len(detected))

	for _, rec := range stored {
		if rec.StreamID != "" {
			byStream[rec.StreamID] = rec
		}

		byID[rec.ID] = rec
		all = append(all, rec)
	}

	var changed []*Recurring

	for _, s := range streams {
		keys := make([]string, len(s.TransactionIDs))
		for i, id := range s.TransactionIDs {
			keys[i] = "p:" + id
		}

		dir := DirectionOutflow
		if s.Direction == provider.Inflow {
			dir = DirectionInflow
		}

		rec, ok := byStream[s.ID]
		if !ok {
			rec = &Recurring{
				ID:       uuid.New(),
				BudgetID: budgetID,
				StreamID: s.ID,
				Source:   SourceProvider,
			}
			byStream[s.ID] = rec
			all = append(all, rec)
		}

		rec.AccountID = s.AccountID
		rec.Direction = dir
		rec.Description = s.Description
		rec.Merchant = s.MerchantName
		rec.ProviderPrimary = s.PrimaryCategory
		rec.ProviderDetailed = s.DetailedCategory
		rec.InstanceKeys = keys
		rec.AverageAmount = s.AverageAmount
		rec.Frequency = s.Frequency
		rec.Active = s.Active
		rec.LastDate = s.LastDate
		rec.UpdatedAt = now

		changed = append(changed, rec)
	}

	for _, d := range detected {
		rec, ok := byID[d.ID]
		if !ok {
			d.UpdatedAt = now
			byID[d.ID] = d
			all = append(all, d)
			changed = append(changed, d)

			continue
		}

		rec.InstanceKeys = d.InstanceKeys
		rec.AverageAmount = d.AverageAmount
		rec.Frequency = d.Frequency
		rec.Active = d.Active
		rec.LastDate = d.LastDate
		rec.UpdatedAt = now

		if rec.CategoryID == nil {
			rec.CategoryID = d.CategoryID
		}

		changed = append(changed, rec)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].LastDate.After(all[j].LastDate) })

	return all, changed
}

// Commit persists the pending writes of res and advances provider cursors in one
// database transaction.
func (r *Reconciler) Commit(ctx context.Context, budgetID uuid.UUID, res *Result) error {
	itx, err := r.repo.BeginImport(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("begin reconcile commit: %w", err)
	}
	defer itx.Rollback()

	pending := append(append([]*Transaction{}, res.New...), res.Updated...)
	if len(pending) > 0 {
		if err := itx.UpsertTransactions(ctx, pending); err != nil {
			return fmt.Errorf("upsert transactions: %w", err)
		}
	}

	if len(res.RecurringChanged) > 0 {
		if err := itx.UpsertRecurring(ctx, res.RecurringChanged); err != nil {
			return fmt.Errorf("upsert recurring: %w", err)
		}
	}

	if len(res.Removed) > 0 {
		ids := make([]uuid.UUID, len(res.Removed))
		for i, tx := range res.Removed {
			ids[i] = tx.ID
		}

		if err := itx.MarkRemoved(ctx, ids); err != nil {
			return fmt.Errorf("mark removed transactions: %w", err)
		}
	}

	itemIDs := make([]string, 0, len(res.Cursors))
	for id := range res.Cursors {
		itemIDs = append(itemIDs, id)
	}

	sort.Strings(itemIDs)

	for _, id := range itemIDs {
		if err := itx.UpdateCursor(ctx, id, res.Cursors[id]); err != nil {
			return fmt.Errorf("update cursor for item %s: %w", id, err)
		}
	}

	if err := itx.Commit(); err != nil {
		return fmt.Errorf("commit reconcile: %w", err)
	}

	return nil
}
