package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestNewBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := NewBreaker("model", BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             time.Minute,
		ConsecutiveFailures: 2,
	}, zerolog.Nop())

	fail := func() (interface{}, error) { return nil, errors.New("upstream down") }
	for i := 0; i < 2; i++ {
		_, err := cb.Execute(fail)
		assert.EqualError(t, err, "upstream down")
	}

	_, err := cb.Execute(func() (interface{}, error) { return "ok", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}
