package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashlytic-server/src/resilience"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

var ErrSenderUnavailable = errors.New("email sender unavailable")

// ResendSender sends through the Resend API with a per-call timeout behind
// a circuit breaker. Failed sends are not retried.
type ResendSender struct {
	client  *resend.Client
	from    string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
}

func NewResendSender(apiKey, from string, timeout time.Duration, log zerolog.Logger) *ResendSender {
	return &ResendSender{
		client:  resend.NewClient(apiKey),
		from:    from,
		timeout: timeout,
		cb:      resilience.NewBreaker("resend", resilience.DefaultBreakerConfig(), log),
	}
}

func (s *ResendSender) Send(ctx context.Context, email Email) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	_, err := s.cb.Execute(func() (interface{}, error) {
		return s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
			From:    s.from,
			To:      email.To,
			Subject: email.Subject,
			Html:    email.HTML,
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ErrSenderUnavailable
		}
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}
