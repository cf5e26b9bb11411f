// Package memory is an in-process implementation of ledger.Store used by
// tests and by STORE=memory local runs. A unit of work operates on a copy of
// the data that replaces the live copy only when the work succeeds.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/ledger"
	"cashlytic-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type state struct {
	users        map[string]models.User
	accounts     map[string]models.Account
	transactions map[string]models.Transaction
	budgets      map[string]models.Budget // keyed by user id
}

func newState() *state {
	return &state{
		users:        make(map[string]models.User),
		accounts:     make(map[string]models.Account),
		transactions: make(map[string]models.Transaction),
		budgets:      make(map[string]models.Budget),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = cloneTx(v)
	}
	for k, v := range s.budgets {
		c.budgets[k] = v
	}
	return c
}

// Store must not be used directly from inside its own InTx callback; use
// the Queries handed to the callback instead.
type Store struct {
	*queries
	guard sync.Mutex
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	s := &Store{}
	s.queries = &queries{st: newState(), now: time.Now, mu: &s.guard}
	return s
}

func (s *Store) InTx(ctx context.Context, fn func(q ledger.Queries) error) error {
	s.guard.Lock()
	defer s.guard.Unlock()
	if err := ctx.Err(); err != nil {
		return apperr.StoreFailure("begin", err)
	}

	work := &queries{st: s.st.clone(), now: s.now}
	if err := fn(work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apperr.StoreFailure("commit", err)
	}
	s.st = work.st
	return nil
}

// queries implements ledger.Queries over one state. mu is nil inside a unit
// of work, where InTx already holds the lock.
type queries struct {
	st  *state
	now func() time.Time
	mu  *sync.Mutex
}

func (q *queries) lock() func() {
	if q.mu == nil {
		return func() {}
	}
	q.mu.Lock()
	return q.mu.Unlock
}

func (q *queries) UpsertUser(ctx context.Context, u *models.User) (*models.User, error) {
	defer q.lock()()
	now := q.now()
	for id, existing := range q.st.users {
		if existing.ClerkUserID == u.ClerkUserID {
			existing.Email = u.Email
			existing.Name = u.Name
			existing.ImageURL = u.ImageURL
			existing.UpdatedAt = now
			q.st.users[id] = existing
			return &existing, nil
		}
	}
	created := *u
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.CreatedAt, created.UpdatedAt = now, now
	q.st.users[created.ID] = created
	return &created, nil
}

func (q *queries) GetUser(ctx context.Context, userID string) (*models.User, error) {
	defer q.lock()()
	u, ok := q.st.users[userID]
	if !ok {
		return nil, apperr.ErrUserNotFound
	}
	return &u, nil
}

func (q *queries) CreateAccount(ctx context.Context, a *models.Account) error {
	defer q.lock()()
	stored := *a
	stored.TransactionCount = 0
	q.st.accounts[a.ID] = stored
	return nil
}

func (q *queries) GetAccount(ctx context.Context, userID, accountID string) (*models.Account, error) {
	defer q.lock()()
	a, ok := q.st.accounts[accountID]
	if !ok || a.UserID != userID {
		return nil, apperr.ErrAccountNotFound
	}
	a.TransactionCount = q.countTransactions(a.ID)
	return &a, nil
}

func (q *queries) GetDefaultAccount(ctx context.Context, userID string) (*models.Account, error) {
	defer q.lock()()
	for _, a := range q.st.accounts {
		if a.UserID == userID && a.IsDefault {
			a.TransactionCount = q.countTransactions(a.ID)
			return &a, nil
		}
	}
	return nil, apperr.ErrAccountNotFound
}

func (q *queries) ListAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	defer q.lock()()
	out := []models.Account{}
	for _, a := range q.st.accounts {
		if a.UserID == userID {
			a.TransactionCount = q.countTransactions(a.ID)
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (q *queries) CountAccounts(ctx context.Context, userID string) (int, error) {
	defer q.lock()()
	n := 0
	for _, a := range q.st.accounts {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (q *queries) ClearDefaultAccounts(ctx context.Context, userID string) error {
	defer q.lock()()
	for id, a := range q.st.accounts {
		if a.UserID == userID && a.IsDefault {
			a.IsDefault = false
			a.UpdatedAt = q.now()
			q.st.accounts[id] = a
		}
	}
	return nil
}

func (q *queries) SetDefaultAccount(ctx context.Context, userID, accountID string) error {
	defer q.lock()()
	a, ok := q.st.accounts[accountID]
	if !ok || a.UserID != userID {
		return apperr.ErrAccountNotFound
	}
	a.IsDefault = true
	a.UpdatedAt = q.now()
	q.st.accounts[accountID] = a
	return nil
}

func (q *queries) IncrementBalance(ctx context.Context, accountID string, delta decimal.Decimal) error {
	defer q.lock()()
	a, ok := q.st.accounts[accountID]
	if !ok {
		return apperr.ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(delta)
	a.UpdatedAt = q.now()
	q.st.accounts[accountID] = a
	return nil
}

func (q *queries) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	defer q.lock()()
	q.st.transactions[t.ID] = cloneTx(*t)
	return nil
}

func (q *queries) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	defer q.lock()()
	return q.getTransaction(userID, id)
}

func (q *queries) GetTransactionForUpdate(ctx context.Context, userID, id string) (*models.Transaction, error) {
	defer q.lock()()
	return q.getTransaction(userID, id)
}

func (q *queries) getTransaction(userID, id string) (*models.Transaction, error) {
	t, ok := q.st.transactions[id]
	if !ok || t.UserID != userID {
		return nil, apperr.ErrTransactionNotFound
	}
	t = cloneTx(t)
	return &t, nil
}

func (q *queries) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	defer q.lock()()
	existing, ok := q.st.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return apperr.ErrTransactionNotFound
	}
	q.st.transactions[t.ID] = cloneTx(*t)
	return nil
}

func (q *queries) ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]models.Transaction, error) {
	defer q.lock()()
	out := []models.Transaction{}
	for _, t := range q.st.transactions {
		if t.UserID == userID && matches(t, f) {
			out = append(out, cloneTx(t))
		}
	}
	sortByDateDesc(out)
	return out, nil
}

func (q *queries) ListTransactionsByIDs(ctx context.Context, userID string, ids []string) ([]models.Transaction, error) {
	defer q.lock()()
	out := []models.Transaction{}
	for _, id := range ids {
		if t, ok := q.st.transactions[id]; ok && t.UserID == userID {
			out = append(out, cloneTx(t))
		}
	}
	return out, nil
}

func (q *queries) DeleteTransactions(ctx context.Context, userID string, ids []string) (int, error) {
	defer q.lock()()
	n := 0
	for _, id := range ids {
		if t, ok := q.st.transactions[id]; ok && t.UserID == userID {
			delete(q.st.transactions, id)
			n++
		}
	}
	return n, nil
}

func (q *queries) ListDueRecurring(ctx context.Context, now time.Time, limit int) ([]models.Transaction, error) {
	defer q.lock()()
	out := []models.Transaction{}
	for _, t := range q.st.transactions {
		if t.IsRecurring && t.NextRecurringDate != nil && !t.NextRecurringDate.After(now) {
			out = append(out, cloneTx(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextRecurringDate.Equal(*out[j].NextRecurringDate) {
			return out[i].NextRecurringDate.Before(*out[j].NextRecurringDate)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (q *queries) GetBudget(ctx context.Context, userID string) (*models.Budget, error) {
	defer q.lock()()
	b, ok := q.st.budgets[userID]
	if !ok {
		return nil, apperr.ErrBudgetNotFound
	}
	return &b, nil
}

func (q *queries) UpsertBudget(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	defer q.lock()()
	stored, ok := q.st.budgets[b.UserID]
	if ok {
		stored.Amount = b.Amount
		stored.UpdatedAt = b.UpdatedAt
	} else {
		stored = *b
	}
	q.st.budgets[b.UserID] = stored
	return &stored, nil
}

func (q *queries) ListBudgets(ctx context.Context) ([]models.Budget, error) {
	defer q.lock()()
	out := make([]models.Budget, 0, len(q.st.budgets))
	for _, b := range q.st.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (q *queries) SetBudgetAlertSent(ctx context.Context, budgetID string, at time.Time) error {
	defer q.lock()()
	for userID, b := range q.st.budgets {
		if b.ID == budgetID {
			b.LastAlertSent = &at
			q.st.budgets[userID] = b
			return nil
		}
	}
	return apperr.ErrBudgetNotFound
}

func (q *queries) countTransactions(accountID string) int {
	n := 0
	for _, t := range q.st.transactions {
		if t.AccountID == accountID {
			n++
		}
	}
	return n
}

func matches(t models.Transaction, f models.TransactionFilter) bool {
	if f.AccountID != "" && t.AccountID != f.AccountID {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.Date.Before(*f.To) {
		return false
	}
	if f.Recurring != nil && t.IsRecurring != *f.Recurring {
		return false
	}
	return true
}

func sortByDateDesc(txs []models.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		if !txs[i].CreatedAt.Equal(txs[j].CreatedAt) {
			return txs[i].CreatedAt.After(txs[j].CreatedAt)
		}
		return txs[i].ID < txs[j].ID
	})
}

func cloneTx(t models.Transaction) models.Transaction {
	if t.ReceiptURL != nil {
		v := *t.ReceiptURL
		t.ReceiptURL = &v
	}
	if t.RecurringInterval != nil {
		v := *t.RecurringInterval
		t.RecurringInterval = &v
	}
	if t.NextRecurringDate != nil {
		v := *t.NextRecurringDate
		t.NextRecurringDate = &v
	}
	if t.LastProcessed != nil {
		v := *t.LastProcessed
		t.LastProcessed = &v
	}
	return t
}
