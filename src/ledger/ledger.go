package ledger

import (
	"context"
	"fmt"
	"sort"

	"cashlytic-server/src/models"

	"github.com/shopspring/decimal"
)

// ApplyDelta adjusts accountID's stored balance by delta through q. It must
// run in the same unit of work as the transaction write it accounts for.
func ApplyDelta(ctx context.Context, q Queries, accountID string, delta decimal.Decimal) error {
	if err := q.IncrementBalance(ctx, accountID, delta); err != nil {
		return fmt.Errorf("apply balance delta to account %s: %w", accountID, err)
	}
	return nil
}

// ReversalDeltas returns, per account, the balance change that undoes txs.
func ReversalDeltas(txs []models.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range txs {
		out[t.AccountID] = out[t.AccountID].Sub(t.SignedAmount())
	}
	return out
}

// sortedAccounts fixes the order balance rows are touched in so concurrent
// units of work lock them consistently.
func sortedAccounts(deltas map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
