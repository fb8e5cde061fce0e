package movie

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineshelf/cineshelf/app/observability/metrics"
	"github.com/cineshelf/cineshelf/internal/types"
)

func newMockRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	metrics.InitAppMetrics()

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	return NewRepository(mockPool, slog.Default()), mockPool
}

var movieColumnList = []string{
	"id", "user_id", "title", "description", "release_date",
	"rating", "poster_url", "created_at", "updated_at",
}

func movieRow(m *types.Movie) *pgxmock.Rows {
	return pgxmock.NewRows(movieColumnList).AddRow(
		m.ID, m.UserID, m.Title, m.Description, m.ReleaseDate,
		m.Rating, m.PosterURL, m.CreatedAt, m.UpdatedAt,
	)
}

func TestRepoGetMovie(t *testing.T) {
	userID := uuid.New()
	movieID := uuid.New()

	t.Run("Found", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		now := time.Now().UTC()
		movie := &types.Movie{ID: movieID, UserID: userID, Title: "Alien", CreatedAt: now, UpdatedAt: now}

		mockPool.ExpectQuery("SELECT .+ FROM movies WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(movieID, userID).
			WillReturnRows(movieRow(movie))

		got, err := repo.GetMovie(context.Background(), movieID, userID)
		require.NoError(t, err)
		assert.Equal(t, movie.Title, got.Title)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("WrongOwnerIsNotFound", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		otherUser := uuid.New()

		// The ownership predicate lives in the query, so another user's
		// movie produces zero rows, not a permission error.
		mockPool.ExpectQuery("SELECT .+ FROM movies WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(movieID, otherUser).
			WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetMovie(context.Background(), movieID, otherUser)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepoCreateMovie(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	now := time.Now().UTC()
	movie := &types.Movie{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "Alien",
		CreatedAt: now,
		UpdatedAt: now,
	}

	mockPool.ExpectExec("INSERT INTO movies").
		WithArgs(movie.ID, movie.UserID, movie.Title, movie.Description, movie.ReleaseDate,
			movie.Rating, movie.PosterURL, movie.CreatedAt, movie.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.CreateMovie(context.Background(), movie)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepoListMovies(t *testing.T) {
	userID := uuid.New()

	t.Run("PageAndCount", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		// The page and count queries run concurrently.
		mockPool.MatchExpectationsInOrder(false)

		now := time.Now().UTC()
		rows := pgxmock.NewRows(movieColumnList).
			AddRow(uuid.New(), userID, "Alien", nil, nil, nil, nil, now, now).
			AddRow(uuid.New(), userID, "Aliens", nil, nil, nil, nil, now.Add(-time.Hour), now)

		mockPool.ExpectQuery("SELECT .+ FROM movies WHERE user_id = \\$1 ORDER BY created_at DESC").
			WithArgs(userID, 8, 0).
			WillReturnRows(rows)
		mockPool.ExpectQuery("SELECT COUNT").
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(10))

		page, err := repo.ListMovies(context.Background(), userID, types.MovieFilter{Page: 1, Limit: 8})
		require.NoError(t, err)
		assert.Len(t, page.Data, 2)
		assert.Equal(t, 10, page.Pagination.Total)
		assert.Equal(t, 2, page.Pagination.TotalPages)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("SearchFilter", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.MatchExpectationsInOrder(false)

		mockPool.ExpectQuery("SELECT .+ FROM movies WHERE user_id = \\$1 AND title ILIKE").
			WithArgs(userID, "alien", 8, 0).
			WillReturnRows(pgxmock.NewRows(movieColumnList))
		mockPool.ExpectQuery("SELECT COUNT").
			WithArgs(userID, "alien").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

		page, err := repo.ListMovies(context.Background(), userID, types.MovieFilter{Page: 1, Limit: 8, Search: "alien"})
		require.NoError(t, err)
		// An empty page marshals as [] rather than null.
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("WildcardsMatchedLiterally", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.MatchExpectationsInOrder(false)

		// "100%" must reach the database as an escaped literal, not a pattern.
		mockPool.ExpectQuery("SELECT .+ FROM movies WHERE user_id = \\$1 AND title ILIKE").
			WithArgs(userID, `100\%`, 8, 0).
			WillReturnRows(pgxmock.NewRows(movieColumnList))
		mockPool.ExpectQuery("SELECT COUNT").
			WithArgs(userID, `100\%`).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

		_, err := repo.ListMovies(context.Background(), userID, types.MovieFilter{Page: 1, Limit: 8, Search: "100%"})
		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestRepoUpdateMovie(t *testing.T) {
	userID := uuid.New()
	movieID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		now := time.Now().UTC()
		title := "Aliens"
		updated := &types.Movie{ID: movieID, UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}

		mockPool.ExpectQuery("UPDATE movies SET updated_at = \\$1, title = \\$2 WHERE id = \\$3 AND user_id = \\$4 RETURNING").
			WithArgs(pgxmock.AnyArg(), title, movieID, userID).
			WillReturnRows(movieRow(updated))

		got, err := repo.UpdateMovie(context.Background(), movieID, userID, types.UpdateMovieParams{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		title := "Aliens"

		mockPool.ExpectQuery("UPDATE movies SET").
			WithArgs(pgxmock.AnyArg(), title, movieID, userID).
			WillReturnError(pgx.ErrNoRows)

		got, err := repo.UpdateMovie(context.Background(), movieID, userID, types.UpdateMovieParams{Title: &title})
		assert.Nil(t, got)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepoDeleteMovie(t *testing.T) {
	userID := uuid.New()
	movieID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectExec("DELETE FROM movies WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(movieID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		err := repo.DeleteMovie(context.Background(), movieID, userID)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NoRowsIsNotFound", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)

		mockPool.ExpectExec("DELETE FROM movies WHERE id = \\$1 AND user_id = \\$2").
			WithArgs(movieID, userID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.DeleteMovie(context.Background(), movieID, userID)
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
