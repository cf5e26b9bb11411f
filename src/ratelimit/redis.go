package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"
)

const keyPrefix = "ratelimit:"

// Redis counts requests per key in fixed windows shared by every instance
// talking to the same server.
type Redis struct {
	client rueidis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRedis(ctx context.Context, addr string, limit int, window time.Duration) (*Redis, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:   []string{addr},
		MaxFlushDelay: 100 * time.Microsecond,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: failed to create client: %w", err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}
	return &Redis{client: client, limit: int64(limit), window: window, now: time.Now}, nil
}

// Allow creates the window key with its expiry before counting, so a key
// can never exist without a TTL even if a later command fails.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := windowKey(key, r.now(), r.window)

	create := r.client.B().Set().Key(k).Value("0").Nx().ExSeconds(int64(r.window / time.Second)).Build()
	if err := r.client.Do(ctx, create).Error(); err != nil && !rueidis.IsRedisNil(err) {
		return false, fmt.Errorf("redis set window: %w", err)
	}
	n, err := r.client.Do(ctx, r.client.B().Incr().Key(k).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	return n <= r.limit, nil
}

func (r *Redis) Close() {
	r.client.Close()
}

func windowKey(key string, now time.Time, window time.Duration) string {
	return keyPrefix + key + ":" + strconv.FormatInt(now.Unix()/int64(window/time.Second), 10)
}
