package ledger_test

import (
	"context"
	"testing"
	"time"

	"cashlytic-server/src/db/memory"
	"cashlytic-server/src/ledger"
	"cashlytic-server/src/ledger/mocks"
	"cashlytic-server/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestProcessRecurringTransactions(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	acc := openAccount(t, svc, userID, "Main", "1000")

	rent := input(acc.ID, models.TransactionTypeExpense, 50)
	rent.Description = "Rent"
	rent.Date = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	rent.IsRecurring = true
	monthly := models.IntervalMonthly
	rent.RecurringInterval = &monthly
	tmpl, err := svc.CreateTransaction(ctx, userID, rent)
	require.NoError(t, err)
	require.Equal(t, "950", balanceOf(t, store, userID, acc.ID))

	res, err := svc.ProcessRecurringTransactions(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, ledger.ProcessResult{Processed: 1}, res)
	assert.Equal(t, "900", balanceOf(t, store, userID, acc.ID))

	txs, err := svc.ListTransactions(ctx, userID, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	child := txs[0]
	assert.Equal(t, "Rent (Recurring)", child.Description)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), child.Date)
	assert.False(t, child.IsRecurring)
	assert.Equal(t, models.TransactionStatusCompleted, child.Status)

	updated, err := svc.GetTransaction(ctx, userID, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC), *updated.NextRecurringDate)
	require.NotNil(t, updated.LastProcessed)
	assert.Equal(t, fixedNow, *updated.LastProcessed)

	// nothing is due until the 29th
	res, err = svc.ProcessRecurringTransactions(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, ledger.ProcessResult{}, res)
	assert.Equal(t, "900", balanceOf(t, store, userID, acc.ID))
}

func TestProcessRecurringTransactions_FailureDoesNotStopRun(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	acc := openAccount(t, svc, userID, "Main", "0")

	monthly := models.IntervalMonthly
	past := fixedNow.AddDate(0, 0, -1)
	// a template pointing at an account that no longer exists
	require.NoError(t, store.CreateTransaction(ctx, &models.Transaction{
		ID: "orphan", UserID: userID, AccountID: "gone", Type: models.TransactionTypeIncome,
		Amount: decimal.NewFromInt(1), IsRecurring: true, RecurringInterval: &monthly, NextRecurringDate: &past,
	}))
	require.NoError(t, store.CreateTransaction(ctx, &models.Transaction{
		ID: "salary", UserID: userID, AccountID: acc.ID, Type: models.TransactionTypeIncome,
		Amount: decimal.NewFromInt(10), IsRecurring: true, RecurringInterval: &monthly, NextRecurringDate: &past,
	}))

	res, err := svc.ProcessRecurringTransactions(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, "10", balanceOf(t, store, userID, acc.ID))

	orphan, err := store.GetTransaction(ctx, userID, "orphan")
	require.NoError(t, err)
	assert.Equal(t, past, *orphan.NextRecurringDate, "failed template is left untouched")
}

func TestCheckBudgetAlerts(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	ctx := context.Background()
	store := memory.New()
	svc := newService(store, ledger.WithNotifier(notifier))

	ann, err := svc.EnsureUser(ctx, models.User{ClerkUserID: "sub-ann", Email: "ann@example.com", Name: "Ann"})
	require.NoError(t, err)
	bob, err := svc.EnsureUser(ctx, models.User{ClerkUserID: "sub-bob", Email: "bob@example.com", Name: "Bob"})
	require.NoError(t, err)

	for _, u := range []struct {
		id    string
		spent int64
	}{{ann.ID, 85}, {bob.ID, 10}} {
		acc := openAccount(t, svc, u.id, "Main", "0")
		_, err := svc.UpsertBudget(ctx, u.id, decimal.NewFromInt(100))
		require.NoError(t, err)
		_, err = svc.CreateTransaction(ctx, u.id, input(acc.ID, models.TransactionTypeExpense, u.spent))
		require.NoError(t, err)
	}

	notifier.EXPECT().
		SendBudgetAlert(gomock.Any(), "ann@example.com", gomock.Any()).
		Do(func(_ context.Context, _ string, alert models.BudgetAlert) {
			assert.Equal(t, "Ann", alert.UserName)
			assert.Equal(t, "March 2024", alert.Month)
			assert.Equal(t, 85.0, alert.PercentUsed)
		})

	res, err := svc.CheckBudgetAlerts(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, ledger.AlertResult{Checked: 2, Sent: 1}, res)

	// once per month
	res, err = svc.CheckBudgetAlerts(ctx, fixedNow.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sent)

	b, err := store.GetBudget(ctx, ann.ID)
	require.NoError(t, err)
	require.NotNil(t, b.LastAlertSent)
}
