package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Dashboard loads the user's accounts, transactions and budget progress
// concurrently. The result is cached until the user's next mutation.
func (s *Service) Dashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if v, ok := s.cache.Get(userID, cacheKeyDashboard); ok {
		if d, ok := v.(*models.Dashboard); ok {
			return d, nil
		}
	}

	// Concurrent misses for the same user share one load, which must not
	// fail for every waiter when the first caller goes away.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.flight.Do(userID, func() (interface{}, error) {
		return s.loadDashboard(loadCtx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Dashboard), nil
}

func (s *Service) loadDashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	gen := s.cache.Generation(userID)
	var d models.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		accounts, err := s.store.ListAccounts(gctx, userID)
		d.Accounts = accounts
		return err
	})
	g.Go(func() error {
		txs, err := s.store.ListTransactions(gctx, userID, models.TransactionFilter{})
		d.Transactions = txs
		return err
	})
	g.Go(func() error {
		progress, err := s.budgetProgress(gctx, s.store, userID, "", s.now())
		d.Budget = progress
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.cache.Set(userID, cacheKeyDashboard, &d, gen)
	return &d, nil
}

// MonthlyOverview totals one account's income and expenses for the calendar
// month containing month. An empty accountID means the default account.
func (s *Service) MonthlyOverview(ctx context.Context, userID, accountID string, month time.Time) (*models.MonthlyOverview, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	acc, err := s.resolveAccount(ctx, s.store, userID, accountID)
	if err != nil {
		return nil, err
	}

	from, to := monthBounds(month)
	txs, err := s.store.ListTransactions(ctx, userID, models.TransactionFilter{
		AccountID: acc.ID,
		From:      &from,
		To:        &to,
	})
	if err != nil {
		return nil, err
	}

	out := &models.MonthlyOverview{
		AccountID:    acc.ID,
		Month:        from.Format("2006-01"),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Categories:   []models.CategoryTotal{},
	}
	byCategory := make(map[models.Category]decimal.Decimal)
	for _, t := range txs {
		if t.Type == models.TransactionTypeIncome {
			out.TotalIncome = out.TotalIncome.Add(t.Amount)
			continue
		}
		out.TotalExpense = out.TotalExpense.Add(t.Amount)
		byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
	}
	out.Net = out.TotalIncome.Sub(out.TotalExpense)

	for c, amount := range byCategory {
		out.Categories = append(out.Categories, models.CategoryTotal{Category: c, Amount: amount})
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		a, b := out.Categories[i], out.Categories[j]
		if cmp := a.Amount.Cmp(b.Amount); cmp != 0 {
			return cmp > 0
		}
		return a.Category < b.Category
	})
	return out, nil
}

// resolveAccount returns accountID scoped to the user, or the user's default
// account when accountID is empty.
func (s *Service) resolveAccount(ctx context.Context, q Queries, userID, accountID string) (*models.Account, error) {
	if accountID != "" {
		return q.GetAccount(ctx, userID, accountID)
	}
	return q.GetDefaultAccount(ctx, userID)
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
