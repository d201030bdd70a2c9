// internal/pkg/session/rate_limiter.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) checkWindow(ctx context.Context, key string, max int64, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		r.client.Expire(ctx, key, window)
	}
	return count <= max, nil
}

// CheckLoginAttempt allows up to 5 attempts per email/IP pair in 15 minutes.
func (r *RateLimiter) CheckLoginAttempt(ctx context.Context, ip, email string) (bool, error) {
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, email)
	return r.checkWindow(ctx, key, 5, 15*time.Minute)
}

// ResetLoginAttempts clears the counter after a successful login.
func (r *RateLimiter) ResetLoginAttempts(ctx context.Context, ip, email string) error {
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, email)
	return r.client.Del(ctx, key).Err()
}

// CheckSTKPushAttempt throttles payment initiation per phone number. Each
// push triggers a PIN prompt on the customer's handset, so repeated pushes
// are more likely abuse than retries.
func (r *RateLimiter) CheckSTKPushAttempt(ctx context.Context, phone string) (bool, error) {
	key := fmt.Sprintf("ratelimit:stkpush:%s", phone)
	return r.checkWindow(ctx, key, 3, 5*time.Minute)
}
