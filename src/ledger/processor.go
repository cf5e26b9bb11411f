package ledger

import (
	"context"
	"fmt"
	"time"

	"cashlytic-server/src/models"

	"github.com/google/uuid"
)

// recurringBatch bounds how many templates one run materializes.
const recurringBatch = 500

const recurringSuffix = " (Recurring)"

type ProcessResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// ProcessRecurringTransactions materializes the next occurrence of every
// recurring template that is due at now. Each template is handled in its own
// unit of work; a failing template is logged and counted and does not stop
// the run. A template that is several periods behind advances one period per
// run.
func (s *Service) ProcessRecurringTransactions(ctx context.Context, now time.Time) (ProcessResult, error) {
	var res ProcessResult
	due, err := s.store.ListDueRecurring(ctx, now, recurringBatch)
	if err != nil {
		return res, fmt.Errorf("list due recurring transactions: %w", err)
	}

	for _, tmpl := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		start := s.now()
		processed, err := s.processRecurring(ctx, tmpl.UserID, tmpl.ID, now)
		s.observe("recurring", start, err)
		switch {
		case err != nil:
			res.Failed++
			s.log.Error().Err(err).
				Str("user_id", tmpl.UserID).
				Str("transaction_id", tmpl.ID).
				Msg("failed to process recurring transaction")
		case processed:
			res.Processed++
			s.cache.InvalidateUser(tmpl.UserID)
		default:
			res.Skipped++
		}
	}

	s.log.Info().
		Int("processed", res.Processed).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("recurring run finished")
	return res, nil
}

func (s *Service) processRecurring(ctx context.Context, userID, id string, now time.Time) (bool, error) {
	processed := false
	err := s.store.InTx(ctx, func(q Queries) error {
		tmpl, err := q.GetTransactionForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		// another run got here first
		if !tmpl.IsRecurring || tmpl.RecurringInterval == nil ||
			tmpl.NextRecurringDate == nil || tmpl.NextRecurringDate.After(now) {
			return nil
		}

		occurrence := *tmpl.NextRecurringDate
		next, err := NextDate(occurrence, *tmpl.RecurringInterval)
		if err != nil {
			return err
		}

		child := &models.Transaction{
			ID:          uuid.NewString(),
			UserID:      tmpl.UserID,
			AccountID:   tmpl.AccountID,
			Type:        tmpl.Type,
			Amount:      tmpl.Amount,
			Category:    tmpl.Category,
			Date:        occurrence,
			Description: tmpl.Description + recurringSuffix,
			Status:      models.TransactionStatusCompleted,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := q.CreateTransaction(ctx, child); err != nil {
			return fmt.Errorf("insert recurring occurrence: %w", err)
		}
		if err := ApplyDelta(ctx, q, child.AccountID, child.SignedAmount()); err != nil {
			return err
		}

		tmpl.NextRecurringDate = &next
		tmpl.LastProcessed = &now
		tmpl.UpdatedAt = now
		if err := q.UpdateTransaction(ctx, tmpl); err != nil {
			return fmt.Errorf("advance recurring template: %w", err)
		}
		processed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return processed, nil
}
