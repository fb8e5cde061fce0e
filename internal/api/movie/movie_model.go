package movie

import (
	"fmt"
	"time"

	"github.com/cineshelf/cineshelf/internal/types"
)

// CreateMovieRequest is the JSON body for movie creation. The multipart
// variant carries the same fields as form values plus the poster file.
type CreateMovieRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	ReleaseDate *string  `json:"release_date,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
}

// UpdateMovieRequest is the JSON body for partial movie updates.
type UpdateMovieRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	ReleaseDate *string  `json:"release_date,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
}

// parseReleaseDate accepts a plain date or a full RFC 3339 timestamp.
func parseReleaseDate(value string) (*time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("release_date must be YYYY-MM-DD or RFC 3339: %w", types.ErrValidation)
}

func (req *CreateMovieRequest) toParams() (types.CreateMovieParams, error) {
	params := types.CreateMovieParams{
		Title:       req.Title,
		Description: req.Description,
		Rating:      req.Rating,
	}
	if req.ReleaseDate != nil && *req.ReleaseDate != "" {
		date, err := parseReleaseDate(*req.ReleaseDate)
		if err != nil {
			return types.CreateMovieParams{}, err
		}
		params.ReleaseDate = date
	}
	return params, nil
}

func (req *UpdateMovieRequest) toParams() (types.UpdateMovieParams, error) {
	params := types.UpdateMovieParams{
		Title:       req.Title,
		Description: req.Description,
		Rating:      req.Rating,
	}
	if req.ReleaseDate != nil && *req.ReleaseDate != "" {
		date, err := parseReleaseDate(*req.ReleaseDate)
		if err != nil {
			return types.UpdateMovieParams{}, err
		}
		params.ReleaseDate = date
	}
	return params, nil
}
