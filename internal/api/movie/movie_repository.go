package movie

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"

	"github.com/cineshelf/cineshelf/app/observability/metrics"
	"github.com/cineshelf/cineshelf/internal/types"
)

// Ensure RepositoryImpl implements the Repository interface
var _ Repository = (*RepositoryImpl)(nil)

// Repository defines movie persistence. Every operation takes the owner's
// user ID and applies it inside the query itself; a movie owned by someone
// else is indistinguishable from a missing one.
type Repository interface {
	CreateMovie(ctx context.Context, movie *types.Movie) error
	GetMovie(ctx context.Context, movieID, userID uuid.UUID) (*types.Movie, error)
	ListMovies(ctx context.Context, userID uuid.UUID, filter types.MovieFilter) (*types.PaginatedMovies, error)
	UpdateMovie(ctx context.Context, movieID, userID uuid.UUID, params types.UpdateMovieParams) (*types.Movie, error)
	DeleteMovie(ctx context.Context, movieID, userID uuid.UUID) error
}

// DB is the subset of pgxpool.Pool the repository needs. Declared here so
// tests can substitute a pgxmock pool.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     DB
}

func NewRepository(db DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

const movieColumns = "id, user_id, title, description, release_date, rating, poster_url, created_at, updated_at"

// escapeLike neutralizes LIKE metacharacters so search terms match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanMovie(row pgx.Row) (*types.Movie, error) {
	var m types.Movie
	err := row.Scan(
		&m.ID, &m.UserID, &m.Title, &m.Description, &m.ReleaseDate,
		&m.Rating, &m.PosterURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMovie inserts a new movie row.
func (r *RepositoryImpl) CreateMovie(ctx context.Context, movie *types.Movie) error {
	query := `
        INSERT INTO movies (
            id, user_id, title, description, release_date, rating, poster_url,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9
        )
    `
	_, err := r.db.Exec(ctx, query,
		movie.ID, movie.UserID, movie.Title, movie.Description, movie.ReleaseDate,
		movie.Rating, movie.PosterURL, movie.CreatedAt, movie.UpdatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create movie", slog.Any("error", err))
		return fmt.Errorf("failed to create movie: %w", err)
	}
	return nil
}

// GetMovie retrieves one movie scoped to its owner.
func (r *RepositoryImpl) GetMovie(ctx context.Context, movieID, userID uuid.UUID) (*types.Movie, error) {
	start := time.Now()
	query := fmt.Sprintf("SELECT %s FROM movies WHERE id = $1 AND user_id = $2", movieColumns)
	movie, err := scanMovie(r.db.QueryRow(ctx, query, movieID, userID))
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get movie", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return movie, nil
}

// ListMovies returns one page of the owner's movies, newest first, with the
// total count. The page and count queries run concurrently.
func (r *RepositoryImpl) ListMovies(ctx context.Context, userID uuid.UUID, filter types.MovieFilter) (*types.PaginatedMovies, error) {
	start := time.Now()
	where := "WHERE user_id = $1"
	args := []any{userID}
	if filter.Search != "" {
		where += " AND title ILIKE '%' || $2 || '%'"
		args = append(args, escapeLike(filter.Search))
	}

	offset := (filter.Page - 1) * filter.Limit
	listQuery := fmt.Sprintf(
		"SELECT %s FROM movies %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		movieColumns, where, len(args)+1, len(args)+2,
	)
	listArgs := append(append([]any{}, args...), filter.Limit, offset)
	countQuery := "SELECT COUNT(*) FROM movies " + where

	var (
		movies []*types.Movie
		total  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.db.Query(gctx, listQuery, listArgs...)
		if err != nil {
			return fmt.Errorf("failed to list movies: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			movie, err := scanMovie(rows)
			if err != nil {
				return fmt.Errorf("failed to scan movie: %w", err)
			}
			movies = append(movies, movie)
		}
		return rows.Err()
	})
	g.Go(func() error {
		if err := r.db.QueryRow(gctx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count movies: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to list movies", slog.Any("error", err))
		return nil, err
	}
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())

	if movies == nil {
		movies = []*types.Movie{}
	}

	return &types.PaginatedMovies{
		Data: movies,
		Pagination: types.Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: (total + filter.Limit - 1) / filter.Limit,
		},
	}, nil
}

// UpdateMovie applies a partial update scoped to the owner and returns the
// updated row.
func (r *RepositoryImpl) UpdateMovie(ctx context.Context, movieID, userID uuid.UUID, params types.UpdateMovieParams) (*types.Movie, error) {
	setClauses := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	addSet := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Title != nil {
		addSet("title", *params.Title)
	}
	if params.Description != nil {
		addSet("description", *params.Description)
	}
	if params.ReleaseDate != nil {
		addSet("release_date", *params.ReleaseDate)
	}
	if params.Rating != nil {
		addSet("rating", *params.Rating)
	}
	if params.PosterURL != nil {
		addSet("poster_url", *params.PosterURL)
	}

	query := fmt.Sprintf(
		"UPDATE movies SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args)+1, len(args)+2, movieColumns,
	)
	args = append(args, movieID, userID)

	movie, err := scanMovie(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update movie", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}
	return movie, nil
}

// DeleteMovie removes a movie scoped to the owner.
func (r *RepositoryImpl) DeleteMovie(ctx context.Context, movieID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		"DELETE FROM movies WHERE id = $1 AND user_id = $2",
		movieID, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete movie", slog.Any("error", err))
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
