package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/voting-identity/internal/auth"
	"github.com/spec-kit/voting-identity/internal/config"
	"github.com/spec-kit/voting-identity/internal/domain"
	"github.com/spec-kit/voting-identity/internal/events"
	"github.com/spec-kit/voting-identity/internal/repository"
	apperrors "github.com/spec-kit/voting-identity/pkg/util"
)

// The same message is returned for unknown emails and wrong passwords so
// account existence cannot be probed through the login endpoint.
const badCredentialsMessage = "incorrect username and/or password"

// SignInResult is the outcome of a credential check. When FirstLogin is set
// the caller must complete the first-login password change before a token
// is issued.
type SignInResult struct {
	FirstLogin bool
	Message    string
	Token      string
	ExpiresAt  time.Time
	User       *domain.PublicUser
}

// AuthService coordinates sign-in and the first-login password gate.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// SignIn verifies credentials. Accounts that have not completed the
// first-login password change get a notice instead of a token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("missing data", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("sign-in failed: unknown email", zap.String("email", email))
			return nil, apperrors.NewUnauthorized(badCredentialsMessage)
		}
		return nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Debug("sign-in failed: password mismatch", zap.String("user_id", user.ID))
		return nil, apperrors.NewUnauthorized(badCredentialsMessage)
	}

	if user.IsFirstLogin {
		return &SignInResult{
			FirstLogin: true,
			Message:    "you need to change your password to log in",
		}, nil
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.Email, user.RoleNames())
	if err != nil {
		return nil, err
	}

	return &SignInResult{
		Message:   "login successful, your session will expire in 1 hour",
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	}, nil
}

// CompleteFirstLogin verifies the current password and replaces it, clearing
// the first-login flag. The flag never reverts to true once cleared.
func (s *AuthService) CompleteFirstLogin(ctx context.Context, dni int64, currentPassword, newPassword, confirmPassword string) (string, error) {
	if dni == 0 || currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return "", apperrors.NewValidationError("missing data", nil)
	}

	user, err := s.users.GetByDNI(ctx, dni)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewNotFound("user", nil)
		}
		return "", err
	}

	if newPassword != confirmPassword {
		return "", apperrors.NewUnauthorized("passwords do not match")
	}

	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return "", apperrors.NewUnauthorized("incorrect current password")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return "", err
	}

	firstLoginCompleted := user.IsFirstLogin
	user.IsFirstLogin = false
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user, nil); err != nil {
		return "", err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPasswordChanged,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload:   events.PasswordChangedPayload{FirstLoginCompleted: firstLoginCompleted},
	})

	return "password changed successfully", nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
