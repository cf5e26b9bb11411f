package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/models"

	"github.com/jackc/pgx/v5"
)

const transactionColumns = `
	id, user_id, account_id, type, amount, category, date, description, receipt_url,
	is_recurring, recurring_interval, next_recurring_date, last_processed, status,
	created_at, updated_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	var txType, category, status string
	var interval *string
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &txType, &t.Amount, &category, &t.Date,
		&t.Description, &t.ReceiptURL, &t.IsRecurring, &interval, &t.NextRecurringDate,
		&t.LastProcessed, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	t.Type = models.TransactionType(txType)
	t.Category = models.Category(category)
	t.Status = models.TransactionStatus(status)
	if interval != nil {
		ri := models.RecurringInterval(*interval)
		t.RecurringInterval = &ri
	}
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	txs := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func intervalArg(ri *models.RecurringInterval) *string {
	if ri == nil {
		return nil
	}
	s := string(*ri)
	return &s
}

func (q *Queries) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, account_id, type, amount, category, date, description, receipt_url,
			is_recurring, recurring_interval, next_recurring_date, last_processed, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := q.db.Exec(ctx, query,
		t.ID, t.UserID, t.AccountID, string(t.Type), t.Amount, string(t.Category), t.Date,
		t.Description, t.ReceiptURL, t.IsRecurring, intervalArg(t.RecurringInterval),
		t.NextRecurringDate, t.LastProcessed, string(t.Status), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (q *Queries) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	return scanTransaction(q.db.QueryRow(ctx, query, id, userID))
}

func (q *Queries) GetTransactionForUpdate(ctx context.Context, userID, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE`
	return scanTransaction(q.db.QueryRow(ctx, query, id, userID))
}

func (q *Queries) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE transactions
		SET account_id = $1, type = $2, amount = $3, category = $4, date = $5,
		    description = $6, receipt_url = $7, is_recurring = $8, recurring_interval = $9,
		    next_recurring_date = $10, last_processed = $11, status = $12, updated_at = $13
		WHERE id = $14 AND user_id = $15
	`
	tag, err := q.db.Exec(ctx, query,
		t.AccountID, string(t.Type), t.Amount, string(t.Category), t.Date,
		t.Description, t.ReceiptURL, t.IsRecurring, intervalArg(t.RecurringInterval),
		t.NextRecurringDate, t.LastProcessed, string(t.Status), t.UpdatedAt,
		t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrTransactionNotFound
	}
	return nil
}

// listQuery builds the filtered listing for one user. Dates are a half-open
// range [From, To).
func listQuery(userID string, f models.TransactionFilter) (string, []any) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.AccountID != "" {
		add("account_id = $%d", f.AccountID)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.From != nil {
		add("date >= $%d", *f.From)
	}
	if f.To != nil {
		add("date < $%d", *f.To)
	}
	if f.Recurring != nil {
		add("is_recurring = $%d", *f.Recurring)
	}
	query += " ORDER BY date DESC, created_at DESC, id"
	return query, args
}

func (q *Queries) ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]models.Transaction, error) {
	query, args := listQuery(userID, f)
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return collectTransactions(rows)
}

// ListTransactionsByIDs locks the returned rows, ordered by id so concurrent
// bulk deletes acquire them in the same order.
func (q *Queries) ListTransactionsByIDs(ctx context.Context, userID string, ids []string) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE
	`
	rows, err := q.db.Query(ctx, query, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return collectTransactions(rows)
}

func (q *Queries) DeleteTransactions(ctx context.Context, userID string, ids []string) (int, error) {
	query := `DELETE FROM transactions WHERE user_id = $1 AND id = ANY($2)`
	tag, err := q.db.Exec(ctx, query, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (q *Queries) ListDueRecurring(ctx context.Context, now time.Time, limit int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE is_recurring AND next_recurring_date <= $1
		ORDER BY next_recurring_date, id
		LIMIT $2
	`
	rows, err := q.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return collectTransactions(rows)
}
