package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineshelf/cineshelf/app/observability/metrics"
	"github.com/cineshelf/cineshelf/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresAuthRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	metrics.InitAppMetrics()

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	return NewPostgresAuthRepo(mockPool, slog.Default()), mockPool
}

func userRows(user *types.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
		AddRow(user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
}

func TestGetUserByEmail(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		now := time.Now().UTC()
		user := &types.User{
			ID:           uuid.New(),
			Name:         "tester",
			Email:        "test@example.com",
			PasswordHash: "$2a$10$hash",
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		mockPool.ExpectQuery("SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email").
			WithArgs(user.Email).
			WillReturnRows(userRows(user))

		got, err := repo.GetUserByEmail(context.Background(), user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.PasswordHash, got.PasswordHash)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectQuery("SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email").
			WithArgs("ghost@example.com").
			WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresGetUserByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		now := time.Now().UTC()
		user := &types.User{
			ID:           uuid.New(),
			Name:         "tester",
			Email:        "test@example.com",
			PasswordHash: "$2a$10$hash",
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		mockPool.ExpectQuery("SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE id").
			WithArgs(user.ID).
			WillReturnRows(userRows(user))

		got, err := repo.GetUserByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		userID := uuid.New()

		mockPool.ExpectQuery("SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE id").
			WithArgs(userID).
			WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetUserByID(context.Background(), userID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), "newuser", "new@example.com", "$2a$10$hash", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		user, err := repo.CreateUser(context.Background(), "newuser", "new@example.com", "$2a$10$hash")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "new@example.com", user.Email)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), "racer", "taken@example.com", "$2a$10$hash", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		user, err := repo.CreateUser(context.Background(), "racer", "taken@example.com", "$2a$10$hash")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, types.ErrConflict)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("OtherError", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), "u", "u@example.com", "h", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection reset"))

		user, err := repo.CreateUser(context.Background(), "u", "u@example.com", "h")
		assert.Nil(t, user)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrConflict)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
