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

const budgetColumns = `id, user_id, amount, last_alert_sent, created_at, updated_at`

func scanBudget(row pgx.Row) (*models.Budget, error) {
	var b models.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.Amount, &b.LastAlertSent, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrBudgetNotFound
		}
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &b, nil
}

func (q *Queries) GetBudget(ctx context.Context, userID string) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1`
	return scanBudget(q.db.QueryRow(ctx, query, userID))
}

// UpsertBudget keeps the existing row's id when the user already has a
// budget.
func (q *Queries) UpsertBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (id, user_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET amount = EXCLUDED.amount, updated_at = NOW()
		RETURNING ` + budgetColumns
	return scanBudget(q.db.QueryRow(ctx, query, b.ID, b.UserID, b.Amount))
}

func (q *Queries) ListBudgets(ctx context.Context) ([]models.Budget, error) {
	rows, err := q.db.Query(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (q *Queries) SetBudgetAlertSent(ctx context.Context, budgetID string, at time.Time) error {
	query := `UPDATE budgets SET last_alert_sent = $1, updated_at = NOW() WHERE id = $2`
	tag, err := q.db.Exec(ctx, query, at, budgetID)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrBudgetNotFound
	}
	return nil
}
