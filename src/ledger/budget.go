package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// alertThreshold is the share of the budget, in percent, at which the
// monthly alert fires.
const alertThreshold = 80.0

// GetBudget reports the user's budget together with this month's expenses
// on accountID, or on the default account when accountID is empty. A user
// without a budget gets a nil Budget rather than an error.
func (s *Service) GetBudget(ctx context.Context, userID, accountID string) (*models.BudgetProgress, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.budgetProgress(ctx, s.store, userID, accountID, s.now())
}

func (s *Service) UpsertBudget(ctx context.Context, userID string, amount decimal.Decimal) (*models.Budget, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, apperr.Validation("budget amount must be greater than zero")
	}
	if err := models.ValidateAmount("budget amount", amount); err != nil {
		return nil, err
	}

	now := s.now()
	b, err := s.store.UpsertBudget(ctx, &models.Budget{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	})
	s.observe("upsert_budget", now, err)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateUser(userID)
	return b, nil
}

func (s *Service) budgetProgress(ctx context.Context, q Queries, userID, accountID string, now time.Time) (*models.BudgetProgress, error) {
	progress := &models.BudgetProgress{CurrentExpenses: decimal.Zero}

	budget, err := q.GetBudget(ctx, userID)
	switch {
	case errors.Is(err, apperr.ErrBudgetNotFound):
	case err != nil:
		return nil, fmt.Errorf("load budget: %w", err)
	default:
		progress.Budget = budget
	}

	acc, err := s.resolveAccount(ctx, q, userID, accountID)
	if err != nil {
		// no default account yet means nothing has been spent
		if accountID == "" && isNotFound(err) {
			return progress, nil
		}
		return nil, err
	}
	progress.AccountID = acc.ID

	expenses, err := monthExpenses(ctx, q, userID, acc.ID, now)
	if err != nil {
		return nil, err
	}
	progress.CurrentExpenses = expenses
	if progress.Budget != nil {
		progress.PercentUsed = percentOf(expenses, progress.Budget.Amount)
	}
	return progress, nil
}

func monthExpenses(ctx context.Context, q Queries, userID, accountID string, now time.Time) (decimal.Decimal, error) {
	from, to := monthBounds(now)
	txs, err := q.ListTransactions(ctx, userID, models.TransactionFilter{
		AccountID: accountID,
		Type:      models.TransactionTypeExpense,
		From:      &from,
		To:        &to,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("load month expenses: %w", err)
	}
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total, nil
}

func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	f, _ := part.Mul(decimal.NewFromInt(100)).Div(whole).Round(2).Float64()
	return f
}
