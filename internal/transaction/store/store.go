package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order matches selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx                     transaction.Transaction
		source, status         string
		providerTxID, currency sql.NullString
		primary, detailed      sql.NullString
		note                   sql.NullString
	)

	if err := s.Scan(
		&tx.ID, &tx.BudgetID, &tx.UserTxID, &providerTxID, &tx.AccountID, &source,
		&tx.Date, &tx.Amount, &status, &currency, &tx.Merchant, &tx.Name,
		&primary, &detailed, &tx.CategoryID, &note, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Source = transaction.Source(source)
	tx.Status = transaction.Status(status)
	tx.ProviderTxID = providerTxID.String
	tx.Currency = currency.String
	tx.ProviderPrimary = primary.String
	tx.ProviderDetailed = detailed.String
	tx.Note = note.String

	return &tx, nil
}

const selectTransactionColumns = `
	id, budget_id, user_tx_id, provider_tx_id, account_id, source,
	date, amount, status, currency, merchant, name,
	provider_primary, provider_detailed, category_id, note, created_at, updated_at
`

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE id = $1 AND removed_at IS NULL`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE budget_id = $1 AND removed_at IS NULL`

	args := []any{filter.BudgetID}
	argIdx := 2

	if filter.AccountID != nil {
		query += fmt.Sprintf(" AND account_id = $%d", argIdx)

		args = append(args, *filter.AccountID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY date ASC, user_tx_id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

func (s *Store) UpdateDetails(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET category_id = $1, merchant = $2, note = $3, updated_at = NOW()
		WHERE id = $4
	`

	res, err := s.db.ExecContext(ctx, query, tx.CategoryID, tx.Merchant, nullable(tx.Note), tx.ID)
	if err != nil {
		return fmt.Errorf("updating transaction details: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func (s *Store) ExistingUserTxIDs(ctx context.Context, budgetID uuid.UUID, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_tx_id FROM transactions WHERE budget_id = $1 AND user_tx_id = ANY($2)`,
		budgetID, candidates,
	)
	if err != nil {
		return nil, fmt.Errorf("checking user transaction ids: %w", err)
	}
	defer rows.Close()

	var taken []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user transaction id: %w", err)
		}

		taken = append(taken, id)
	}

	return taken, rows.Err()
}

const selectRecurringColumns = `
	id, budget_id, stream_id, account_id, source, direction, description, merchant,
	provider_primary, provider_detailed, instance_keys, average_amount, frequency,
	active, category_id, last_date, updated_at
`

func (s *Store) ListRecurring(ctx context.Context, budgetID uuid.UUID) ([]*transaction.Recurring, error) {
	query := `SELECT ` + selectRecurringColumns + `
		FROM recurring_transactions
		WHERE budget_id = $1
		ORDER BY last_date DESC`

	rows, err := s.db.QueryContext(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("listing recurring transactions: %w", err)
	}
	defer rows.Close()

	var recs []*transaction.Recurring

	for rows.Next() {
		var (
			rec                   transaction.Recurring
			streamID, source, dir string
			primary, detailed     sql.NullString
			keys                  []byte
			lastDate              sql.NullTime
		)

		if err := rows.Scan(
			&rec.ID, &rec.BudgetID, &streamID, &rec.AccountID, &source, &dir, &rec.Description, &rec.Merchant,
			&primary, &detailed, &keys, &rec.AverageAmount, &rec.Frequency,
			&rec.Active, &rec.CategoryID, &lastDate, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning recurring transaction: %w", err)
		}

		if err := json.Unmarshal(keys, &rec.InstanceKeys); err != nil {
			return nil, fmt.Errorf("decoding instance keys of %s: %w", rec.ID, err)
		}

		rec.StreamID = streamID
		rec.Source = transaction.Source(source)
		rec.Direction = transaction.Direction(dir)
		rec.ProviderPrimary = primary.String
		rec.ProviderDetailed = detailed.String
		rec.LastDate = lastDate.Time

		recs = append(recs, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recurring rows: %w", err)
	}

	return recs, nil
}

// importLockKey serializes writers of one budget.
func importLockKey(budgetID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("transactions:"))
	h.Write(budgetID[:])

	return int64(h.Sum64())
}

type importTx struct {
	tx       *sql.Tx
	budgetID uuid.UUID
}

func (s *Store) BeginImport(ctx context.Context, budgetID uuid.UUID) (transaction.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(budgetID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx, budgetID: budgetID}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		AccountID string
		Date      string
		Amount    string
		Merchant  string
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			AccountID: p.AccountID,
			Date:      p.Date.Format(time.DateOnly),
			Amount:    p.Amount.StringFixed(2),
			Merchant:  p.Merchant,
		}] = struct{}{}
	}

	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE budget_id = $1 AND date >= $2 AND date <= $3 AND removed_at IS NULL
		ORDER BY date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, itx.budgetID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		k := lookupKey{
			AccountID: tx.AccountID,
			Date:      tx.Date.Format(time.DateOnly),
			Amount:    tx.Amount.StringFixed(2),
			Merchant:  tx.Merchant,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

// MarkRemoved only touches pending rows; posted transactions are immutable.
func (itx *importTx) MarkRemoved(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	query := `
		UPDATE transactions
		SET removed_at = NOW(), updated_at = NOW()
		WHERE budget_id = $1 AND id = ANY($2::uuid[]) AND status = $3 AND removed_at IS NULL
	`

	if _, err := itx.tx.ExecContext(ctx, query, itx.budgetID, keys, transaction.StatusPending); err != nil {
		return fmt.Errorf("marking transactions removed: %w", err)
	}

	return nil
}

// UpsertTransactions inserts new rows and refreshes provider-owned fields of
// existing ones. User edits (category, note) are never overwritten.
func (itx *importTx) UpsertTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, budget_id, user_tx_id, provider_tx_id, account_id, source,
			date, amount, status, currency, merchant, name,
			provider_primary, provider_detailed, category_id, note, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			amount = EXCLUDED.amount,
			status = EXCLUDED.status,
			name = EXCLUDED.name,
			merchant = EXCLUDED.merchant,
			provider_primary = EXCLUDED.provider_primary,
			provider_detailed = EXCLUDED.provider_detailed,
			updated_at = NOW()
		RETURNING created_at
	`

	for _, tx := range txs {
		err := itx.tx.QueryRowContext(ctx, query,
			tx.ID,
			tx.BudgetID,
			tx.UserTxID,
			nullable(tx.ProviderTxID),
			tx.AccountID,
			tx.Source,
			tx.Date,
			tx.Amount,
			tx.Status,
			nullable(tx.Currency),
			tx.Merchant,
			tx.Name,
			nullable(tx.ProviderPrimary),
			nullable(tx.ProviderDetailed),
			tx.CategoryID,
			nullable(tx.Note),
		).Scan(&tx.CreatedAt)
		if err != nil {
			return fmt.Errorf("upserting transaction %s: %w", tx.UserTxID, err)
		}
	}

	return nil
}

func (itx *importTx) UpsertRecurring(ctx context.Context, recs []*transaction.Recurring) error {
	query := `
		INSERT INTO recurring_transactions (` + selectRecurringColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			direction = EXCLUDED.direction,
			description = EXCLUDED.description,
			merchant = EXCLUDED.merchant,
			provider_primary = EXCLUDED.provider_primary,
			provider_detailed = EXCLUDED.provider_detailed,
			instance_keys = EXCLUDED.instance_keys,
			average_amount = EXCLUDED.average_amount,
			frequency = EXCLUDED.frequency,
			active = EXCLUDED.active,
			category_id = EXCLUDED.category_id,
			last_date = EXCLUDED.last_date,
			updated_at = EXCLUDED.updated_at
	`

	for _, rec := range recs {
		keys, err := json.Marshal(rec.InstanceKeys)
		if err != nil {
			return fmt.Errorf("encoding instance keys of %s: %w", rec.ID, err)
		}

		var lastDate sql.NullTime
		if !rec.LastDate.IsZero() {
			lastDate = sql.NullTime{Time: rec.LastDate, Valid: true}
		}

		if _, err := itx.tx.ExecContext(ctx, query,
			rec.ID,
			rec.BudgetID,
			rec.StreamID,
			rec.AccountID,
			rec.Source,
			rec.Direction,
			rec.Description,
			rec.Merchant,
			nullable(rec.ProviderPrimary),
			nullable(rec.ProviderDetailed),
			keys,
			rec.AverageAmount,
			rec.Frequency,
			rec.Active,
			rec.CategoryID,
			lastDate,
			rec.UpdatedAt,
		); err != nil {
			return fmt.Errorf("upserting recurring transaction %s: %w", rec.ID, err)
		}
	}

	return nil
}

func (itx *importTx) UpdateCursor(ctx context.Context, itemID, cursor string) error {
	res, err := itx.tx.ExecContext(ctx,
		`UPDATE provider_items SET cursor = $1, synced_at = NOW() WHERE id = $2 AND budget_id = $3`,
		cursor, itemID, itx.budgetID,
	)
	if err != nil {
		return fmt.Errorf("updating cursor: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("provider item %s not found", itemID)
	}

	return nil
}
