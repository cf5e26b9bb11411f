package ledger

import (
	"context"
	"time"

	"cashlytic-server/src/models"

	"github.com/shopspring/decimal"
)

// Queries is the set of persistence operations the ledger needs. Lookups that
// take a userID are scoped to that user; a row owned by someone else reports
// the same not-found error as a missing one.
type Queries interface {
	UpsertUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)

	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccount(ctx context.Context, userID, accountID string) (*models.Account, error)
	GetDefaultAccount(ctx context.Context, userID string) (*models.Account, error)
	// ListAccounts returns accounts newest first with TransactionCount set.
	ListAccounts(ctx context.Context, userID string) ([]models.Account, error)
	CountAccounts(ctx context.Context, userID string) (int, error)
	ClearDefaultAccounts(ctx context.Context, userID string) error
	SetDefaultAccount(ctx context.Context, userID, accountID string) error
	// IncrementBalance adds delta to the stored balance. It returns
	// apperr.ErrAccountNotFound when no row was touched.
	IncrementBalance(ctx context.Context, accountID string, delta decimal.Decimal) error

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	// GetTransactionForUpdate is GetTransaction plus a row lock held until
	// the surrounding unit of work ends.
	GetTransactionForUpdate(ctx context.Context, userID, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	// ListTransactions returns matches ordered by date, newest first. From is
	// inclusive and To exclusive.
	ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]models.Transaction, error)
	// ListTransactionsByIDs locks and returns the subset of ids owned by userID.
	ListTransactionsByIDs(ctx context.Context, userID string, ids []string) ([]models.Transaction, error)
	DeleteTransactions(ctx context.Context, userID string, ids []string) (int, error)
	// ListDueRecurring returns recurring templates of every user whose next
	// occurrence is at or before now.
	ListDueRecurring(ctx context.Context, now time.Time, limit int) ([]models.Transaction, error)

	GetBudget(ctx context.Context, userID string) (*models.Budget, error)
	UpsertBudget(ctx context.Context, b *models.Budget) (*models.Budget, error)
	ListBudgets(ctx context.Context) ([]models.Budget, error)
	SetBudgetAlertSent(ctx context.Context, budgetID string, at time.Time) error
}

// Store runs Queries directly or inside an atomic unit of work. When fn
// returns an error every write made through q is discarded.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
}
