package types

import (
	"time"

	"github.com/google/uuid"
)

type Movie struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Rating      *float64   `json:"rating,omitempty"`
	PosterURL   *string    `json:"poster_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateMovieParams struct {
	Title       string
	Description *string
	ReleaseDate *time.Time
	Rating      *float64
}

// UpdateMovieParams uses pointers so partial updates can distinguish
// "not provided" from zero values.
type UpdateMovieParams struct {
	Title       *string
	Description *string
	ReleaseDate *time.Time
	Rating      *float64
	PosterURL   *string
}

type MovieFilter struct {
	Page   int
	Limit  int
	Search string
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type PaginatedMovies struct {
	Data       []*Movie   `json:"data"`
	Pagination Pagination `json:"pagination"`
}
