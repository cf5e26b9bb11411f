package db

import (
	"context"
	"errors"
	"fmt"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `
	a.id, a.user_id, a.name, a.type, a.balance, a.is_default, a.created_at, a.updated_at,
	(SELECT COUNT(*) FROM transactions t WHERE t.account_id = a.id)`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	var accountType string
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &accountType, &a.Balance, &a.IsDefault,
		&a.CreatedAt, &a.UpdatedAt, &a.TransactionCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrAccountNotFound
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	a.Type = models.AccountType(accountType)
	return &a, nil
}

func (q *Queries) CreateAccount(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, name, type, balance, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.db.Exec(ctx, query, a.ID, a.UserID, a.Name, string(a.Type), a.Balance, a.IsDefault, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (q *Queries) GetAccount(ctx context.Context, userID, accountID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts a WHERE a.id = $1 AND a.user_id = $2`
	return scanAccount(q.db.QueryRow(ctx, query, accountID, userID))
}

func (q *Queries) GetDefaultAccount(ctx context.Context, userID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts a WHERE a.user_id = $1 AND a.is_default`
	return scanAccount(q.db.QueryRow(ctx, query, userID))
}

func (q *Queries) ListAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC, a.id
	`
	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (q *Queries) CountAccounts(ctx context.Context, userID string) (int, error) {
	var n int
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("query error: %w", err)
	}
	return n, nil
}

func (q *Queries) ClearDefaultAccounts(ctx context.Context, userID string) error {
	query := `UPDATE accounts SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`
	if _, err := q.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear default account: %w", err)
	}
	return nil
}

func (q *Queries) SetDefaultAccount(ctx context.Context, userID, accountID string) error {
	query := `UPDATE accounts SET is_default = TRUE, updated_at = NOW() WHERE id = $1 AND user_id = $2`
	tag, err := q.db.Exec(ctx, query, accountID, userID)
	if err != nil {
		return fmt.Errorf("failed to set default account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrAccountNotFound
	}
	return nil
}

func (q *Queries) IncrementBalance(ctx context.Context, accountID string, delta decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2`
	tag, err := q.db.Exec(ctx, query, delta, accountID)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrAccountNotFound
	}
	return nil
}
