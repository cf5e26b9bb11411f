package ledger

import (
	"context"
	"fmt"
	"strings"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTransaction records a transaction on one of the user's accounts and
// moves that account's balance by the signed amount. Creation is rate limited
// per user.
func (s *Service) CreateTransaction(ctx context.Context, userID string, in models.TransactionInput) (*models.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.checkRateLimit(ctx, userID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	start := s.now()
	tx := &models.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccountID:   in.AccountID,
		Type:        in.Type,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		ReceiptURL:  in.ReceiptURL,
		Status:      models.TransactionStatusCompleted,
		CreatedAt:   start,
		UpdatedAt:   start,
	}
	if err := setRecurrence(tx, in); err != nil {
		return nil, err
	}

	err := s.store.InTx(ctx, func(q Queries) error {
		if _, err := q.GetAccount(ctx, userID, in.AccountID); err != nil {
			return err
		}
		if err := q.CreateTransaction(ctx, tx); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return ApplyDelta(ctx, q, in.AccountID, tx.SignedAmount())
	})
	s.observe("create", start, err)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(userID)
	s.log.Info().
		Str("user_id", userID).
		Str("transaction_id", tx.ID).
		Str("account_id", tx.AccountID).
		Str("amount", tx.SignedAmount().String()).
		Msg("transaction created")
	return tx, nil
}

// UpdateTransaction replaces the mutable fields of a transaction. When the
// account is unchanged its balance moves by the difference of the signed
// amounts; when the transaction moves between accounts the old account gets
// the old effect reversed and the new account receives the new effect.
func (s *Service) UpdateTransaction(ctx context.Context, userID, id string, in models.TransactionInput) (*models.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	start := s.now()
	var updated models.Transaction
	err := s.store.InTx(ctx, func(q Queries) error {
		existing, err := q.GetTransactionForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if _, err := q.GetAccount(ctx, userID, in.AccountID); err != nil {
			return err
		}

		updated = *existing
		updated.AccountID = in.AccountID
		updated.Type = in.Type
		updated.Amount = in.Amount
		updated.Category = in.Category
		updated.Date = in.Date
		updated.Description = strings.TrimSpace(in.Description)
		updated.ReceiptURL = in.ReceiptURL
		updated.UpdatedAt = start
		if err := setRecurrence(&updated, in); err != nil {
			return err
		}
		if err := q.UpdateTransaction(ctx, &updated); err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}

		oldDelta, newDelta := existing.SignedAmount(), updated.SignedAmount()
		if existing.AccountID == updated.AccountID {
			return ApplyDelta(ctx, q, updated.AccountID, newDelta.Sub(oldDelta))
		}
		deltas := map[string]decimal.Decimal{
			existing.AccountID: oldDelta.Neg(),
			updated.AccountID:  newDelta,
		}
		for _, accountID := range sortedAccounts(deltas) {
			if err := ApplyDelta(ctx, q, accountID, deltas[accountID]); err != nil {
				return err
			}
		}
		return nil
	})
	s.observe("update", start, err)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(userID)
	s.log.Info().Str("user_id", userID).Str("transaction_id", id).Msg("transaction updated")
	return &updated, nil
}

func (s *Service) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *Service) ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]models.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if f.Type != "" && !f.Type.IsValid() {
		return nil, apperr.Validation("invalid transaction type %q", f.Type)
	}
	return s.store.ListTransactions(ctx, userID, f)
}

// DeleteTransaction removes one transaction through the bulk path.
func (s *Service) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.BulkDeleteTransactions(ctx, userID, []string{id})
	if err != nil {
		return err
	}
	if res.Deleted == 0 {
		return apperr.ErrTransactionNotFound
	}
	return nil
}

// BulkDeleteTransactions deletes the subset of ids owned by userID and
// reverses their effect on every affected account in one unit of work. Ids
// that are unknown or owned by another user are ignored.
func (s *Service) BulkDeleteTransactions(ctx context.Context, userID string, ids []string) (models.BulkDeleteResult, error) {
	if err := requireUser(userID); err != nil {
		return models.BulkDeleteResult{}, err
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return models.BulkDeleteResult{}, nil
	}

	start := s.now()
	var result models.BulkDeleteResult
	err := s.store.InTx(ctx, func(q Queries) error {
		txs, err := q.ListTransactionsByIDs(ctx, userID, ids)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		if len(txs) == 0 {
			return nil
		}

		deltas := ReversalDeltas(txs)
		owned := make([]string, len(txs))
		for i, t := range txs {
			owned[i] = t.ID
		}
		n, err := q.DeleteTransactions(ctx, userID, owned)
		if err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		if n != len(owned) {
			return apperr.StoreFailure("delete transactions", fmt.Errorf("deleted %d of %d rows", n, len(owned)))
		}
		for _, accountID := range sortedAccounts(deltas) {
			if err := ApplyDelta(ctx, q, accountID, deltas[accountID]); err != nil {
				return err
			}
		}
		result.Deleted = n
		return nil
	})
	s.observe("bulk_delete", start, err)
	if err != nil {
		return models.BulkDeleteResult{}, err
	}

	if result.Deleted > 0 {
		s.cache.InvalidateUser(userID)
		s.log.Info().Str("user_id", userID).Int("deleted", result.Deleted).Msg("transactions deleted")
	}
	return result, nil
}

// setRecurrence derives the recurrence fields of t from in. The first
// generated occurrence follows the transaction's own date.
func setRecurrence(t *models.Transaction, in models.TransactionInput) error {
	if !in.IsRecurring {
		t.IsRecurring = false
		t.RecurringInterval = nil
		t.NextRecurringDate = nil
		return nil
	}
	interval, err := models.ParseRecurringInterval(string(*in.RecurringInterval))
	if err != nil {
		return err
	}
	next, err := NextDate(in.Date, interval)
	if err != nil {
		return err
	}
	t.IsRecurring = true
	t.RecurringInterval = &interval
	t.NextRecurringDate = &next
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
