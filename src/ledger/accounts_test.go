package ledger_test

import (
	"context"
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

func defaults(t *testing.T, svc *ledger.Service, user string) []string {
	t.Helper()
	accounts, err := svc.ListAccounts(context.Background(), user)
	require.NoError(t, err)
	var ids []string
	for _, a := range accounts {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestCreateAccount_DefaultInvariant(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.New())

	first := openAccount(t, svc, userID, "First", "0")
	assert.True(t, first.IsDefault, "first account is always default")

	second := openAccount(t, svc, userID, "Second", "0")
	assert.False(t, second.IsDefault)
	assert.Equal(t, []string{first.ID}, defaults(t, svc, userID))

	third, err := svc.CreateAccount(ctx, userID, models.CreateAccountInput{
		Name: "Third", Type: "savings", Balance: "12.34", IsDefault: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AccountTypeSavings, third.Type)
	assert.Equal(t, []string{third.ID}, defaults(t, svc, userID))

	_, err = svc.SetDefaultAccount(ctx, userID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, defaults(t, svc, userID))

	// another user's account cannot become our default
	other := openAccount(t, svc, "user-2", "Other", "0")
	_, err = svc.SetDefaultAccount(ctx, userID, other.ID)
	assert.ErrorIs(t, err, apperr.ErrAccountNotFound)
	assert.Equal(t, []string{second.ID}, defaults(t, svc, userID))
	assert.Equal(t, []string{other.ID}, defaults(t, svc, "user-2"))
}

func TestCreateAccount_Validation(t *testing.T) {
	svc := newService(memory.New())
	ctx := context.Background()

	for _, in := range []models.CreateAccountInput{
		{Name: "", Type: "CURRENT", Balance: "1"},
		{Name: "x", Type: "CHECKING", Balance: "1"},
		{Name: "x", Type: "CURRENT", Balance: "abc"},
		{Name: "x", Type: "CURRENT", Balance: "10.001"},
		{Name: "x", Type: "CURRENT", Balance: "1000000000000"},
	} {
		_, err := svc.CreateAccount(ctx, userID, in)
		assert.ErrorIs(t, err, apperr.ErrValidation, "%+v", in)
	}
}

func TestGetAccountWithTransactions(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.New())
	acc := openAccount(t, svc, userID, "Main", "0")
	other := openAccount(t, svc, userID, "Other", "0")

	for _, in := range []models.TransactionInput{
		input(acc.ID, models.TransactionTypeIncome, 10),
		input(acc.ID, models.TransactionTypeExpense, 3),
		input(other.ID, models.TransactionTypeExpense, 1),
	} {
		_, err := svc.CreateTransaction(ctx, userID, in)
		require.NoError(t, err)
	}

	got, err := svc.GetAccountWithTransactions(ctx, userID, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "7", got.Balance.String())
	assert.Equal(t, 2, got.TransactionCount)
	assert.Len(t, got.Transactions, 2)

	_, err = svc.GetAccountWithTransactions(ctx, "user-2", acc.ID)
	assert.ErrorIs(t, err, apperr.ErrAccountNotFound)
}

func TestListAccounts_UsesCacheAndInvalidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockReadCache(ctrl)
	ctx := context.Background()
	svc := newService(memory.New(), ledger.WithCache(cache))

	cache.EXPECT().InvalidateUser(userID)
	openAccount(t, svc, userID, "Main", "0")

	cache.EXPECT().Get(userID, "accounts").Return(nil, false)
	cache.EXPECT().Generation(userID).Return(uint64(4))
	cache.EXPECT().Set(userID, "accounts", gomock.Any(), uint64(4))
	accounts, err := svc.ListAccounts(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	cached := []models.Account{{ID: "from-cache"}}
	cache.EXPECT().Get(userID, "accounts").Return(cached, true)
	accounts, err = svc.ListAccounts(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, cached, accounts)
}

func TestUpsertBudget(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.New())

	_, err := svc.UpsertBudget(ctx, userID, decimal.Zero)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.UpsertBudget(ctx, userID, decimal.RequireFromString("100.005"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.UpsertBudget(ctx, userID, decimal.New(1, 12))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	b, err := svc.UpsertBudget(ctx, userID, decimal.NewFromInt(500))
	require.NoError(t, err)
	again, err := svc.UpsertBudget(ctx, userID, decimal.NewFromInt(800))
	require.NoError(t, err)
	assert.Equal(t, b.ID, again.ID)
	assert.Equal(t, "800", again.Amount.String())
}

func TestGetBudget(t *testing.T) {
	ctx := context.Background()
	svc := newService(memory.New())

	// nothing set up yet
	progress, err := svc.GetBudget(ctx, userID, "")
	require.NoError(t, err)
	assert.Nil(t, progress.Budget)
	assert.True(t, progress.CurrentExpenses.IsZero())

	acc := openAccount(t, svc, userID, "Main", "1000")
	_, err = svc.UpsertBudget(ctx, userID, decimal.NewFromInt(400))
	require.NoError(t, err)

	lastMonth := input(acc.ID, models.TransactionTypeExpense, 999)
	lastMonth.Date = time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	for _, in := range []models.TransactionInput{
		input(acc.ID, models.TransactionTypeExpense, 100),
		input(acc.ID, models.TransactionTypeIncome, 1000),
		lastMonth,
	} {
		_, err := svc.CreateTransaction(ctx, userID, in)
		require.NoError(t, err)
	}

	progress, err = svc.GetBudget(ctx, userID, "")
	require.NoError(t, err)
	require.NotNil(t, progress.Budget)
	assert.Equal(t, acc.ID, progress.AccountID)
	assert.Equal(t, "100", progress.CurrentExpenses.String())
	assert.Equal(t, 25.0, progress.PercentUsed)

	_, err = svc.GetBudget(ctx, userID, "missing")
	assert.ErrorIs(t, err, apperr.ErrAccountNotFound)
}
