package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/db/memory"
	"cashlytic-server/src/ledger"
	"cashlytic-server/src/ledger/mocks"
	"cashlytic-server/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const userID = "user-1"

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newService(store ledger.Store, opts ...ledger.Option) *ledger.Service {
	opts = append([]ledger.Option{ledger.WithClock(func() time.Time { return fixedNow })}, opts...)
	return ledger.NewService(store, opts...)
}

func openAccount(t *testing.T, svc *ledger.Service, user, name, balance string) *models.Account {
	t.Helper()
	acc, err := svc.CreateAccount(context.Background(), user, models.CreateAccountInput{
		Name:    name,
		Type:    "CURRENT",
		Balance: balance,
	})
	require.NoError(t, err)
	return acc
}

func input(accountID string, typ models.TransactionType, amount int64) models.TransactionInput {
	return models.TransactionInput{
		AccountID:   accountID,
		Type:        typ,
		Amount:      decimal.NewFromInt(amount),
		Category:    models.CategoryOtherExpense,
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Description: "test",
	}
}

func balanceOf(t *testing.T, store ledger.Store, user, accountID string) string {
	t.Helper()
	acc, err := store.GetAccount(context.Background(), user, accountID)
	require.NoError(t, err)
	return acc.Balance.String()
}

func TestBalanceScenarios(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	acc := openAccount(t, svc, userID, "Main", "1000")

	// A: income 500 on 1000
	income, err := svc.CreateTransaction(ctx, userID, input(acc.ID, models.TransactionTypeIncome, 500))
	require.NoError(t, err)
	assert.Equal(t, "1500", balanceOf(t, store, userID, acc.ID))

	// B: expense 200 on 1500
	expense, err := svc.CreateTransaction(ctx, userID, input(acc.ID, models.TransactionTypeExpense, 200))
	require.NoError(t, err)
	assert.Equal(t, "1300", balanceOf(t, store, userID, acc.ID))

	// C: expense 200 -> 300
	updated, err := svc.UpdateTransaction(ctx, userID, expense.ID, input(acc.ID, models.TransactionTypeExpense, 300))
	require.NoError(t, err)
	assert.Equal(t, "300", updated.Amount.String())
	assert.Equal(t, "1200", balanceOf(t, store, userID, acc.ID))

	// D: delete A and C
	res, err := svc.BulkDeleteTransactions(ctx, userID, []string{income.ID, expense.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
	assert.Equal(t, "1000", balanceOf(t, store, userID, acc.ID))
}

func TestBulkDelete_ExcludesOtherUsersTransactions(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	mine := openAccount(t, svc, userID, "Mine", "100")
	theirs := openAccount(t, svc, "user-2", "Theirs", "100")

	own, err := svc.CreateTransaction(ctx, userID, input(mine.ID, models.TransactionTypeExpense, 40))
	require.NoError(t, err)
	foreign, err := svc.CreateTransaction(ctx, "user-2", input(theirs.ID, models.TransactionTypeExpense, 30))
	require.NoError(t, err)

	res, err := svc.BulkDeleteTransactions(ctx, userID, []string{own.ID, foreign.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, "100", balanceOf(t, store, userID, mine.ID))
	assert.Equal(t, "70", balanceOf(t, store, "user-2", theirs.ID))

	_, err = svc.GetTransaction(ctx, "user-2", foreign.ID)
	assert.NoError(t, err)
}

func TestBulkDelete_EmptyAndForeignOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	theirs := openAccount(t, svc, "user-2", "Theirs", "100")
	foreign, err := svc.CreateTransaction(ctx, "user-2", input(theirs.ID, models.TransactionTypeIncome, 30))
	require.NoError(t, err)

	res, err := svc.BulkDeleteTransactions(ctx, userID, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)

	res, err = svc.BulkDeleteTransactions(ctx, userID, []string{foreign.ID, foreign.ID})
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)
	assert.Equal(t, "130", balanceOf(t, store, "user-2", theirs.ID))
}

func TestBulkDelete_SpansAccounts(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	a := openAccount(t, svc, userID, "A", "0")
	b := openAccount(t, svc, userID, "B", "0")

	var ids []string
	for _, in := range []models.TransactionInput{
		input(a.ID, models.TransactionTypeIncome, 100),
		input(a.ID, models.TransactionTypeExpense, 30),
		input(b.ID, models.TransactionTypeExpense, 20),
	} {
		tx, err := svc.CreateTransaction(ctx, userID, in)
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}

	res, err := svc.BulkDeleteTransactions(ctx, userID, ids)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Deleted)
	assert.Equal(t, "0", balanceOf(t, store, userID, a.ID))
	assert.Equal(t, "0", balanceOf(t, store, userID, b.ID))
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	acc := openAccount(t, svc, userID, "Main", "50")
	tx, err := svc.CreateTransaction(ctx, userID, input(acc.ID, models.TransactionTypeExpense, 20))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(ctx, userID, tx.ID))
	assert.Equal(t, "50", balanceOf(t, store, userID, acc.ID))
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, userID, tx.ID), apperr.ErrTransactionNotFound)
}

func TestReversalDeltas(t *testing.T) {
	deltas := ledger.ReversalDeltas([]models.Transaction{
		{AccountID: "a", Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(500)},
		{AccountID: "a", Type: models.TransactionTypeExpense, Amount: decimal.NewFromInt(300)},
		{AccountID: "b", Type: models.TransactionTypeExpense, Amount: decimal.RequireFromString("12.50")},
	})
	assert.Equal(t, "-200", deltas["a"].String())
	assert.Equal(t, "12.5", deltas["b"].String())
}

func TestUpdateTransaction_MovesBetweenAccounts(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	from := openAccount(t, svc, userID, "From", "1000")
	to := openAccount(t, svc, userID, "To", "1000")

	tx, err := svc.CreateTransaction(ctx, userID, input(from.ID, models.TransactionTypeExpense, 200))
	require.NoError(t, err)
	require.Equal(t, "800", balanceOf(t, store, userID, from.ID))

	_, err = svc.UpdateTransaction(ctx, userID, tx.ID, input(to.ID, models.TransactionTypeExpense, 300))
	require.NoError(t, err)
	assert.Equal(t, "1000", balanceOf(t, store, userID, from.ID))
	assert.Equal(t, "700", balanceOf(t, store, userID, to.ID))
}

func TestUpdateTransaction_TypeFlip(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	acc := openAccount(t, svc, userID, "Main", "1000")

	tx, err := svc.CreateTransaction(ctx, userID, input(acc.ID, models.TransactionTypeExpense, 100))
	require.NoError(t, err)
	_, err = svc.UpdateTransaction(ctx, userID, tx.ID, input(acc.ID, models.TransactionTypeIncome, 100))
	require.NoError(t, err)
	assert.Equal(t, "1100", balanceOf(t, store, userID, acc.ID))
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	mine := openAccount(t, svc, userID, "Mine", "0")
	theirs := openAccount(t, svc, "user-2", "Theirs", "0")
	foreign, err := svc.CreateTransaction(ctx, "user-2", input(theirs.ID, models.TransactionTypeExpense, 5))
	require.NoError(t, err)

	_, err = svc.UpdateTransaction(ctx, userID, foreign.ID, input(mine.ID, models.TransactionTypeExpense, 1))
	assert.ErrorIs(t, err, apperr.ErrTransactionNotFound)

	own, err := svc.CreateTransaction(ctx, userID, input(mine.ID, models.TransactionTypeExpense, 5))
	require.NoError(t, err)
	_, err = svc.UpdateTransaction(ctx, userID, own.ID, input(theirs.ID, models.TransactionTypeExpense, 1))
	assert.ErrorIs(t, err, apperr.ErrAccountNotFound)
	assert.Equal(t, "-5", balanceOf(t, store, userID, mine.ID))
	assert.Equal(t, "-5", balanceOf(t, store, "user-2", theirs.ID))
}

func TestCreateTransaction_Errors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	acc := openAccount(t, svc, userID, "Main", "10")

	_, err := svc.CreateTransaction(ctx, "", input(acc.ID, models.TransactionTypeIncome, 1))
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.CreateTransaction(ctx, userID, input("missing", models.TransactionTypeIncome, 1))
	assert.ErrorIs(t, err, apperr.ErrAccountNotFound)

	bad := input(acc.ID, models.TransactionTypeIncome, -1)
	_, err = svc.CreateTransaction(ctx, userID, bad)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	other := openAccount(t, svc, "user-2", "Other", "0")
	_, err = svc.CreateTransaction(ctx, userID, input(other.ID, models.TransactionTypeIncome, 1))
	assert.ErrorIs(t, err, apperr.ErrAccountNotFound)

	txs, err := svc.ListTransactions(ctx, userID, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Equal(t, "10", balanceOf(t, store, userID, acc.ID))
}

func TestCreateTransaction_Recurring(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.New())
	acc := openAccount(t, svc, userID, "Main", "0")

	in := input(acc.ID, models.TransactionTypeExpense, 10)
	in.Date = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	in.IsRecurring = true
	monthly := models.RecurringInterval("monthly")
	in.RecurringInterval = &monthly

	tx, err := svc.CreateTransaction(ctx, userID, in)
	require.NoError(t, err)
	require.NotNil(t, tx.NextRecurringDate)
	assert.Equal(t, models.IntervalMonthly, *tx.RecurringInterval)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), *tx.NextRecurringDate)

	// turning recurrence off clears the schedule
	in.IsRecurring = false
	in.RecurringInterval = nil
	updated, err := svc.UpdateTransaction(ctx, userID, tx.ID, in)
	require.NoError(t, err)
	assert.False(t, updated.IsRecurring)
	assert.Nil(t, updated.NextRecurringDate)
}

func TestCreateTransaction_RateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := mocks.NewMockRateLimiter(ctrl)
	ctx := context.Background()
	store := memory.New()
	svc := newService(store, ledger.WithRateLimiter(limiter))
	acc := openAccount(t, svc, userID, "Main", "10")

	limiter.EXPECT().Allow(gomock.Any(), userID).Return(false, nil)
	_, err := svc.CreateTransaction(ctx, userID, input(acc.ID, models.TransactionTypeIncome, 1))
	assert.ErrorIs(t, err, apperr.ErrTooManyRequests)
	assert.Equal(t, "10", balanceOf(t, store, userID, acc.ID))

	// an unavailable limiter lets the write through
	limiter.EXPECT().Allow(gomock.Any(), userID).Return(false, errors.New("redis down"))
	_, err = svc.CreateTransaction(ctx, userID, input(acc.ID, models.TransactionTypeIncome, 1))
	require.NoError(t, err)
	assert.Equal(t, "11", balanceOf(t, store, userID, acc.ID))
}

// failingStore fails every balance write made inside a unit of work.
type failingStore struct {
	*memory.Store
}

func (f failingStore) InTx(ctx context.Context, fn func(q ledger.Queries) error) error {
	return f.Store.InTx(ctx, func(q ledger.Queries) error {
		return fn(failingBalance{q})
	})
}

type failingBalance struct {
	ledger.Queries
}

func (failingBalance) IncrementBalance(context.Context, string, decimal.Decimal) error {
	return errors.New("disk full")
}

func TestMutations_RollBackWhenBalanceWriteFails(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	healthy := newService(store)
	acc := openAccount(t, healthy, userID, "Main", "100")
	existing, err := healthy.CreateTransaction(ctx, userID, input(acc.ID, models.TransactionTypeExpense, 10))
	require.NoError(t, err)

	broken := newService(failingStore{store})

	_, err = broken.CreateTransaction(ctx, userID, input(acc.ID, models.TransactionTypeIncome, 50))
	require.Error(t, err)

	_, err = broken.UpdateTransaction(ctx, userID, existing.ID, input(acc.ID, models.TransactionTypeExpense, 99))
	require.Error(t, err)

	_, err = broken.BulkDeleteTransactions(ctx, userID, []string{existing.ID})
	require.Error(t, err)

	txs, err := store.ListTransactions(ctx, userID, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "10", txs[0].Amount.String())
	assert.Equal(t, "90", balanceOf(t, store, userID, acc.ID))
}

func TestBalanceInvariant_RandomOperations(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	rng := rand.New(rand.NewSource(7))

	initial := map[string]decimal.Decimal{}
	var accountIDs []string
	for i := 0; i < 3; i++ {
		opening := decimal.New(rng.Int63n(100000), -2)
		acc := openAccount(t, svc, userID, fmt.Sprintf("acc-%d", i), opening.String())
		initial[acc.ID] = opening
		accountIDs = append(accountIDs, acc.ID)
	}

	randomInput := func() models.TransactionInput {
		typ := models.TransactionTypeIncome
		if rng.Intn(2) == 0 {
			typ = models.TransactionTypeExpense
		}
		in := input(accountIDs[rng.Intn(len(accountIDs))], typ, 0)
		in.Amount = decimal.New(rng.Int63n(50000), -2)
		return in
	}

	var live []string
	for i := 0; i < 300; i++ {
		if rng.Intn(10) == 0 {
			// sub-cent amounts never reach the store
			in := randomInput()
			in.Amount = decimal.New(1+rng.Int63n(50000)*10+rng.Int63n(9), -3)
			_, err := svc.CreateTransaction(ctx, userID, in)
			require.ErrorIs(t, err, apperr.ErrValidation)
			assertBalancesConsistent(t, store, initial)
			continue
		}
		switch op := rng.Intn(4); {
		case op < 2 || len(live) == 0:
			tx, err := svc.CreateTransaction(ctx, userID, randomInput())
			require.NoError(t, err)
			live = append(live, tx.ID)
		case op == 2:
			id := live[rng.Intn(len(live))]
			_, err := svc.UpdateTransaction(ctx, userID, id, randomInput())
			require.NoError(t, err)
		default:
			n := 1 + rng.Intn(3)
			picked := map[string]bool{}
			ids := []string{"not-a-transaction"}
			for j := 0; j < n; j++ {
				id := live[rng.Intn(len(live))]
				picked[id] = true
				ids = append(ids, id)
			}
			res, err := svc.BulkDeleteTransactions(ctx, userID, ids)
			require.NoError(t, err)
			require.Equal(t, len(picked), res.Deleted)
			kept := live[:0]
			for _, id := range live {
				if !picked[id] {
					kept = append(kept, id)
				}
			}
			live = kept
		}
		assertBalancesConsistent(t, store, initial)
	}
}

func assertBalancesConsistent(t *testing.T, store ledger.Store, initial map[string]decimal.Decimal) {
	t.Helper()
	ctx := context.Background()
	accounts, err := store.ListAccounts(ctx, userID)
	require.NoError(t, err)
	for _, acc := range accounts {
		txs, err := store.ListTransactions(ctx, userID, models.TransactionFilter{AccountID: acc.ID})
		require.NoError(t, err)
		want := initial[acc.ID]
		for _, tx := range txs {
			want = want.Add(tx.SignedAmount())
		}
		require.True(t, want.Equal(acc.Balance), "account %s: want %s, stored %s", acc.ID, want, acc.Balance)
	}
}

func TestAmountPrecision(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newService(store)
	acc := openAccount(t, svc, userID, "Main", "100.00")

	subCent := input(acc.ID, models.TransactionTypeExpense, 0)
	subCent.Amount = decimal.RequireFromString("0.005")
	_, err := svc.CreateTransaction(ctx, userID, subCent)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "100", balanceOf(t, store, userID, acc.ID))

	tooLarge := input(acc.ID, models.TransactionTypeIncome, 0)
	tooLarge.Amount = decimal.New(1, 12)
	_, err = svc.CreateTransaction(ctx, userID, tooLarge)
	require.ErrorIs(t, err, apperr.ErrValidation)

	tx, err := svc.CreateTransaction(ctx, userID, input(acc.ID, models.TransactionTypeExpense, 10))
	require.NoError(t, err)
	_, err = svc.UpdateTransaction(ctx, userID, tx.ID, subCent)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "90", balanceOf(t, store, userID, acc.ID))

	got, err := svc.GetTransaction(ctx, userID, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", got.Amount.String())

	txs, err := store.ListTransactions(ctx, userID, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
