// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Manager struct {
	client *redis.Client
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

func (m *Manager) sessionKey(userID, jti string) string {
	return fmt.Sprintf("session:%s:%s", userID, jti)
}

// Create stores a session with a TTL matching the token expiry.
func (m *Manager) Create(ctx context.Context, s *Data) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := m.client.Set(ctx, m.sessionKey(s.UserID, s.JTI), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (m *Manager) Get(ctx context.Context, userID, jti string) (*Data, error) {
	raw, err := m.client.Get(ctx, m.sessionKey(userID, jti)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	var s Data
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (m *Manager) Revoke(ctx context.Context, userID, jti string) error {
	return m.client.Del(ctx, m.sessionKey(userID, jti)).Err()
}

// RevokeAll deletes every session for a user.
func (m *Manager) RevokeAll(ctx context.Context, userID string) error {
	pattern := fmt.Sprintf("session:%s:*", userID)
	iter := m.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to revoke session: %w", err)
		}
	}
	return iter.Err()
}
