package ledger

//go:generate mockgen -source=deps.go -destination=mocks/deps_mock.go -package=mocks

import (
	"context"

	"cashlytic-server/src/models"
)

// RateLimiter decides whether key may perform one more rate limited action.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ReadCache memoizes per-user read models. Every successful mutation drops
// the user's entries and moves the user to a new generation. Set stores a
// value only while the user is still at the generation read before the
// value was loaded.
type ReadCache interface {
	Get(userID, key string) (any, bool)
	Generation(userID string) uint64
	Set(userID, key string, value any, gen uint64)
	InvalidateUser(userID string)
}

// Notifier delivers budget alerts. Delivery failures are the notifier's
// concern and never surface to the caller.
type Notifier interface {
	SendBudgetAlert(ctx context.Context, to string, alert models.BudgetAlert)
}
