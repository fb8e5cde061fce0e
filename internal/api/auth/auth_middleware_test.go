package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cineshelf/cineshelf/config"
	"github.com/cineshelf/cineshelf/internal/types"
)

func mintToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := types.Claims{
		UserID: userID.String(),
		Email:  "mw@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
	require.NoError(t, err)
	return signed
}

func runProtected(t *testing.T, cfg config.JWTConfig, service AuthService, authHeader string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	var seen *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	Authenticate(slog.Default(), cfg, service)(next).ServeHTTP(rr, req)
	return rr, seen
}

func TestAuthenticate(t *testing.T) {
	cfg := testJWTConfig()

	t.Run("MissingHeader", func(t *testing.T) {
		service := new(MockAuthService)
		rr, seen := runProtected(t, cfg, service, "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, seen)
	})

	t.Run("WrongScheme", func(t *testing.T) {
		service := new(MockAuthService)
		rr, seen := runProtected(t, cfg, service, "Basic abc123")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, seen)
	})

	t.Run("MalformedToken", func(t *testing.T) {
		service := new(MockAuthService)
		rr, seen := runProtected(t, cfg, service, "Bearer not.a.jwt")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Malformed token")
		assert.Nil(t, seen)
	})

	t.Run("TamperedToken", func(t *testing.T) {
		service := new(MockAuthService)
		token := mintToken(t, cfg, uuid.New(), time.Minute)
		// Swap the last signature character for a different base64url one.
		last := "A"
		if token[len(token)-1] == 'A' {
			last = "B"
		}
		tampered := token[:len(token)-1] + last

		rr, seen := runProtected(t, cfg, service, "Bearer "+tampered)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, seen)
		service.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		service := new(MockAuthService)
		other := cfg
		other.SecretKey = "a-different-secret"
		token := mintToken(t, other, uuid.New(), time.Minute)

		rr, seen := runProtected(t, cfg, service, "Bearer "+token)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid token signature")
		assert.Nil(t, seen)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		service := new(MockAuthService)
		token := mintToken(t, cfg, uuid.New(), -time.Minute)

		rr, seen := runProtected(t, cfg, service, "Bearer "+token)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Token has expired")
		assert.Nil(t, seen)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		service := new(MockAuthService)
		other := cfg
		other.Issuer = "someone-else"
		token := mintToken(t, other, uuid.New(), time.Minute)

		rr, seen := runProtected(t, cfg, service, "Bearer "+token)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid token issuer")
		assert.Nil(t, seen)
	})

	t.Run("UnknownSubject", func(t *testing.T) {
		service := new(MockAuthService)
		userID := uuid.New()
		token := mintToken(t, cfg, userID, time.Minute)

		// Valid signature but the user was deleted since the token was minted.
		service.On("GetUserByID", mock.Anything, userID).Return(nil, types.ErrNotFound).Once()

		rr, seen := runProtected(t, cfg, service, "Bearer "+token)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid token subject")
		assert.Nil(t, seen)
		service.AssertExpectations(t)
	})

	t.Run("Success", func(t *testing.T) {
		service := new(MockAuthService)
		user := &types.User{ID: uuid.New(), Email: "mw@example.com"}
		token := mintToken(t, cfg, user.ID, time.Minute)

		service.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

		rr, seen := runProtected(t, cfg, service, "Bearer "+token)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, seen)

		gotID, ok := GetUserIDFromContext(seen.Context())
		assert.True(t, ok)
		assert.Equal(t, user.ID, gotID)

		gotUser, ok := GetUserFromContext(seen.Context())
		assert.True(t, ok)
		assert.Equal(t, user, gotUser)
		service.AssertExpectations(t)
	})

	t.Run("SubjectLookupIsCached", func(t *testing.T) {
		service := new(MockAuthService)
		user := &types.User{ID: uuid.New(), Email: "mw@example.com"}
		token := mintToken(t, cfg, user.ID, time.Minute)

		service.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

		middleware := Authenticate(slog.Default(), cfg, service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()
			middleware.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusOK, rr.Code)
		}

		// Three requests, one repository lookup.
		service.AssertExpectations(t)
	})
}

func TestAuthenticatePanicsOnEmptySecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.SecretKey = ""

	assert.Panics(t, func() {
		Authenticate(slog.Default(), cfg, new(MockAuthService))
	})
}
