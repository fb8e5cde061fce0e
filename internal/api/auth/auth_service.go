package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/bcrypt"

	"github.com/cineshelf/cineshelf/app/observability/metrics"
	"github.com/cineshelf/cineshelf/config"
	"github.com/cineshelf/cineshelf/internal/types"
)

// Ensure AuthServiceImpl implements the AuthService interface
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Login authenticates a user and returns an access token with the user record.
	Login(ctx context.Context, email, password string) (string, *types.User, error)

	// Register creates a new user and returns an access token with the user record.
	Register(ctx context.Context, name, email, password string) (string, *types.User, error)

	// GetUserByID resolves a token subject to a stored user.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	jwtCfg config.JWTConfig
}

func NewAuthService(repo AuthRepo, jwtCfg config.JWTConfig, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

// Login authenticates a user. Unknown email and wrong password both surface
// as types.ErrUnauthenticated, so callers cannot tell which one failed.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			metrics.Get().LoginAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failure")))
			return "", nil, fmt.Errorf("login failed: %w", types.ErrUnauthenticated)
		}
		return "", nil, fmt.Errorf("login failed: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		l.WarnContext(ctx, "Password mismatch", slog.String("user_id", user.ID.String()))
		metrics.Get().LoginAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failure")))
		return "", nil, fmt.Errorf("login failed: %w", types.ErrUnauthenticated)
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	metrics.Get().LoginAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "success")))
	return accessToken, user, nil
}

// Register hashes the password, creates the user and issues a token.
// A duplicate email propagates as types.ErrConflict from the store layer.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (string, *types.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, name, email, string(hashedPassword))
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			return "", nil, fmt.Errorf("registration failed: %w", types.ErrConflict)
		}
		return "", nil, fmt.Errorf("registration failed: %w", err)
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	metrics.Get().RegisterRequestsTotal.Add(ctx, 1)
	s.logger.InfoContext(ctx, "User registered", slog.String("user_id", user.ID.String()))
	return accessToken, user, nil
}

// GetUserByID resolves a token subject to a stored user.
func (s *AuthServiceImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return user, nil
}

// generateAccessToken mints a signed, time-bound token for the user. Pure
// function of user + config + clock; the secret is read-only after startup.
func (s *AuthServiceImpl) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
