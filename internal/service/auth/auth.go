// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"time"

	"hesabu-service/internal/domain/user"
	"hesabu-service/internal/pkg/jwt"
	"hesabu-service/internal/pkg/session"
	"hesabu-service/internal/pkg/xerrors"
	"hesabu-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  *postgres.UserRepository
	generator *jwt.Generator
	sessions  *session.Manager
	limiter   *session.RateLimiter
	logger    *zap.Logger
}

func NewAuthService(
	userRepo *postgres.UserRepository,
	generator *jwt.Generator,
	sessions *session.Manager,
	limiter *session.RateLimiter,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		generator: generator,
		sessions:  sessions,
		limiter:   limiter,
		logger:    logger,
	}
}

// Register creates a user account and logs it in.
func (s *AuthService) Register(ctx context.Context, input *user.RegisterInput) (*user.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to hash password")
	}

	u := &user.User{
		ID:           ulid.Make().String(),
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID))
	return s.issueToken(ctx, u)
}

// Login verifies credentials and issues a token. Attempts are rate limited
// per (IP, email) pair; the same ErrUnauthorized covers both unknown email
// and wrong password so the response does not leak which one it was.
func (s *AuthService) Login(ctx context.Context, ip string, input *user.LoginInput) (*user.AuthResponse, error) {
	allowed, err := s.limiter.CheckLoginAttempt(ctx, ip, input.Email)
	if err != nil {
		s.logger.Warn("login rate limit check failed", zap.Error(err))
	} else if !allowed {
		return nil, xerrors.ErrRateLimited
	}

	u, err := s.userRepo.FindByEmail(ctx, input.Email)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	if err := s.limiter.ResetLoginAttempts(ctx, ip, input.Email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	s.logger.Info("user logged in", zap.String("user_id", u.ID))
	return s.issueToken(ctx, u)
}

func (s *AuthService) issueToken(ctx context.Context, u *user.User) (*user.AuthResponse, error) {
	token, jti, err := s.generator.Generate(u.ID, u.Email)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to sign token")
	}

	now := time.Now()
	err = s.sessions.Create(ctx, &session.Data{
		JTI:       jti,
		UserID:    u.ID,
		Email:     u.Email,
		LoginAt:   now,
		ExpiresAt: now.Add(s.generator.Ttl),
	})
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to store session")
	}

	return &user.AuthResponse{Token: token, User: u}, nil
}

// Logout revokes the session behind the presented token's JTI.
func (s *AuthService) Logout(ctx context.Context, userID, jti string) error {
	return s.sessions.Revoke(ctx, userID, jti)
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*user.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}
