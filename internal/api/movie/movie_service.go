package movie

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cineshelf/cineshelf/app/observability/metrics"
	"github.com/cineshelf/cineshelf/internal/media"
	"github.com/cineshelf/cineshelf/internal/types"
)

const (
	defaultPageLimit = 8
	maxPageLimit     = 100
)

// Ensure ServiceImpl implements the Service interface
var _ Service = (*ServiceImpl)(nil)

// Service defines the movie operations exposed to handlers. Every method is
// scoped to the authenticated user's ID.
type Service interface {
	CreateMovie(ctx context.Context, userID uuid.UUID, params types.CreateMovieParams, poster *media.Upload) (*types.Movie, error)
	GetMovie(ctx context.Context, movieID, userID uuid.UUID) (*types.Movie, error)
	ListMovies(ctx context.Context, userID uuid.UUID, filter types.MovieFilter) (*types.PaginatedMovies, error)
	UpdateMovie(ctx context.Context, movieID, userID uuid.UUID, params types.UpdateMovieParams, poster *media.Upload) (*types.Movie, error)
	DeleteMovie(ctx context.Context, movieID, userID uuid.UUID) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	media  media.Store
}

func NewService(repo Repository, mediaStore media.Store, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		media:  mediaStore,
	}
}

func validRating(rating *float64) bool {
	return rating == nil || (*rating >= 0 && *rating <= 10)
}

// CreateMovie validates input, uploads the poster when present and persists
// the new movie under the caller's ownership.
func (s *ServiceImpl) CreateMovie(ctx context.Context, userID uuid.UUID, params types.CreateMovieParams, poster *media.Upload) (*types.Movie, error) {
	if params.Title == "" {
		return nil, fmt.Errorf("title is required: %w", types.ErrValidation)
	}
	if !validRating(params.Rating) {
		return nil, fmt.Errorf("rating must be between 0 and 10: %w", types.ErrValidation)
	}

	now := time.Now().UTC()
	movie := &types.Movie{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		ReleaseDate: params.ReleaseDate,
		Rating:      params.Rating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if poster != nil {
		posterURL, err := s.media.UploadPoster(ctx, *poster)
		if err != nil {
			return nil, fmt.Errorf("error storing poster: %w", err)
		}
		movie.PosterURL = &posterURL
		metrics.Get().PosterUploadBytesTotal.Add(ctx, poster.Size)
	}

	if err := s.repo.CreateMovie(ctx, movie); err != nil {
		return nil, fmt.Errorf("error creating movie: %w", err)
	}

	metrics.Get().MovieOperationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "create")))
	s.logger.InfoContext(ctx, "Movie created", slog.String("movie_id", movie.ID.String()), slog.String("user_id", userID.String()))
	return movie, nil
}

func (s *ServiceImpl) GetMovie(ctx context.Context, movieID, userID uuid.UUID) (*types.Movie, error) {
	movie, err := s.repo.GetMovie(ctx, movieID, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching movie: %w", err)
	}
	metrics.Get().MovieOperationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "get")))
	return movie, nil
}

// ListMovies normalizes the paging filter and returns one page.
func (s *ServiceImpl) ListMovies(ctx context.Context, userID uuid.UUID, filter types.MovieFilter) (*types.PaginatedMovies, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	page, err := s.repo.ListMovies(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing movies: %w", err)
	}
	metrics.Get().MovieOperationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "list")))
	return page, nil
}

// UpdateMovie validates and applies a partial update, replacing the poster
// when a new file is supplied.
func (s *ServiceImpl) UpdateMovie(ctx context.Context, movieID, userID uuid.UUID, params types.UpdateMovieParams, poster *media.Upload) (*types.Movie, error) {
	if params.Title != nil && *params.Title == "" {
		return nil, fmt.Errorf("title must not be empty: %w", types.ErrValidation)
	}
	if !validRating(params.Rating) {
		return nil, fmt.Errorf("rating must be between 0 and 10: %w", types.ErrValidation)
	}

	if poster != nil {
		// Resolve ownership before touching the bucket, or a PATCH against
		// a missing or foreign movie would strand the uploaded object.
		if _, err := s.repo.GetMovie(ctx, movieID, userID); err != nil {
			return nil, fmt.Errorf("error fetching movie: %w", err)
		}
		posterURL, err := s.media.UploadPoster(ctx, *poster)
		if err != nil {
			return nil, fmt.Errorf("error storing poster: %w", err)
		}
		params.PosterURL = &posterURL
		metrics.Get().PosterUploadBytesTotal.Add(ctx, poster.Size)
	}

	movie, err := s.repo.UpdateMovie(ctx, movieID, userID, params)
	if err != nil {
		return nil, fmt.Errorf("error updating movie: %w", err)
	}

	metrics.Get().MovieOperationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "update")))
	return movie, nil
}

func (s *ServiceImpl) DeleteMovie(ctx context.Context, movieID, userID uuid.UUID) error {
	if err := s.repo.DeleteMovie(ctx, movieID, userID); err != nil {
		return fmt.Errorf("error deleting movie: %w", err)
	}
	metrics.Get().MovieOperationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "delete")))
	return nil
}
