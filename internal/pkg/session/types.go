// internal/pkg/session/types.go
package session

import (
	"errors"
	"time"
)

// Data is the Redis-backed session record keyed by (user id, JTI). A token
// is only valid while its session record exists, so logout revokes tokens
// before they expire.
type Data struct {
	JTI       string    `json:"jti"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	LoginAt   time.Time `json:"login_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

var ErrSessionNotFound = errors.New("session not found")
