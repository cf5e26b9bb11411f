package ledger

import (
	"context"
	"fmt"
	"time"

	"cashlytic-server/src/models"
)

type AlertResult struct {
	Checked int `json:"checked"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

// CheckBudgetAlerts emails every user whose default account has used at
// least 80% of their budget this month, at most once per calendar month.
func (s *Service) CheckBudgetAlerts(ctx context.Context, now time.Time) (AlertResult, error) {
	var res AlertResult
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return res, fmt.Errorf("list budgets: %w", err)
	}

	for _, b := range budgets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++
		if b.LastAlertSent != nil && sameMonth(*b.LastAlertSent, now) {
			continue
		}

		sent, err := s.checkBudget(ctx, b, now)
		if err != nil {
			res.Failed++
			s.log.Error().Err(err).Str("user_id", b.UserID).Msg("failed to check budget")
			continue
		}
		if sent {
			res.Sent++
		}
	}
	return res, nil
}

func (s *Service) checkBudget(ctx context.Context, b models.Budget, now time.Time) (bool, error) {
	progress, err := s.budgetProgress(ctx, s.store, b.UserID, "", now)
	if err != nil {
		return false, err
	}
	if progress.AccountID == "" || progress.PercentUsed < alertThreshold {
		return false, nil
	}

	user, err := s.store.GetUser(ctx, b.UserID)
	if err != nil {
		return false, fmt.Errorf("load budget owner: %w", err)
	}
	s.notifier.SendBudgetAlert(ctx, user.Email, models.BudgetAlert{
		UserName:    user.Name,
		Month:       now.Format("January 2006"),
		Budget:      b.Amount,
		Spent:       progress.CurrentExpenses,
		PercentUsed: progress.PercentUsed,
	})

	if err := s.store.SetBudgetAlertSent(ctx, b.ID, now); err != nil {
		return false, fmt.Errorf("record budget alert: %w", err)
	}
	s.log.Info().Str("user_id", b.UserID).Float64("percent_used", progress.PercentUsed).Msg("budget alert sent")
	return true, nil
}

func sameMonth(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}
