// Package ledger owns every operation that moves money: it keeps each
// account's stored balance equal to its opening balance plus the signed sum
// of its transactions by pairing each transaction write with the matching
// balance write in one unit of work.
package ledger

import (
	"context"
	"errors"
	"time"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/metrics"
	"cashlytic-server/src/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	store    Store
	limiter  RateLimiter
	cache    ReadCache
	notifier Notifier
	metrics  metrics.Collector
	log      zerolog.Logger
	now      func() time.Time
	flight   singleflight.Group
}

type Option func(*Service)

func WithRateLimiter(l RateLimiter) Option { return func(s *Service) { s.limiter = l } }
func WithCache(c ReadCache) Option         { return func(s *Service) { s.cache = c } }
func WithNotifier(n Notifier) Option       { return func(s *Service) { s.notifier = n } }
func WithMetrics(m metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		limiter:  allowAll{},
		cache:    noCache{},
		notifier: noNotifier{},
		metrics:  metrics.NoOpCollector{},
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureUser records the identity asserted by the auth provider, creating
// the user on first sight.
func (s *Service) EnsureUser(ctx context.Context, u models.User) (*models.User, error) {
	if u.ClerkUserID == "" {
		return nil, apperr.ErrUnauthorized
	}
	return s.store.UpsertUser(ctx, &u)
}

func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, userID)
}

func (s *Service) checkRateLimit(ctx context.Context, userID string) error {
	allowed, err := s.limiter.Allow(ctx, userID)
	if err != nil {
		// the limiter backend being down should not take writes down with it
		s.log.Warn().Err(err).Str("user_id", userID).Msg("rate limiter unavailable, allowing request")
		return nil
	}
	if !allowed {
		s.metrics.RecordRateLimited()
		return apperr.ErrTooManyRequests
	}
	return nil
}

func (s *Service) observe(op string, start time.Time, err error) {
	s.metrics.RecordMutation(op, err == nil, s.now().Sub(start))
	if err != nil && !isClientError(err) {
		s.log.Error().Err(err).Str("op", op).Msg("ledger operation failed")
	}
}

func requireUser(userID string) error {
	if userID == "" {
		return apperr.ErrUnauthorized
	}
	return nil
}

func isClientError(err error) bool {
	return errors.Is(err, apperr.ErrValidation) ||
		errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrUnauthorized) ||
		errors.Is(err, apperr.ErrTooManyRequests)
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) (bool, error) { return true, nil }

type noCache struct{}

func (noCache) Get(string, string) (any, bool)  { return nil, false }
func (noCache) Generation(string) uint64        { return 0 }
func (noCache) Set(string, string, any, uint64) {}
func (noCache) InvalidateUser(string)           {}

type noNotifier struct{}

func (noNotifier) SendBudgetAlert(context.Context, string, models.BudgetAlert) {}
