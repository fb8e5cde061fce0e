package movie

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cineshelf/cineshelf/internal/api"
	"github.com/cineshelf/cineshelf/internal/api/auth"
	"github.com/cineshelf/cineshelf/internal/media"
	"github.com/cineshelf/cineshelf/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

// respondError maps domain errors to HTTP statuses. Ownership denials were
// already collapsed into ErrNotFound at the query layer.
func (h *HandlerImpl) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Movie not found")
	case errors.Is(err, types.ErrValidation):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Movie operation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func movieIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "movieID"))
}

// posterFromRequest extracts the optional poster file from a multipart form.
func posterFromRequest(r *http.Request) (*media.Upload, error) {
	file, header, err := r.FormFile("poster")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return &media.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Size:        header.Size,
	}, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// CreateMovie handles POST /movies. Accepts JSON, or multipart/form-data
// when a poster file is included.
func (h *HandlerImpl) CreateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var (
		params types.CreateMovieParams
		poster *media.Upload
	)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(media.MaxUploadSize); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "invalid multipart form")
			return
		}
		req := CreateMovieRequest{Title: r.FormValue("title")}
		if v := r.FormValue("description"); v != "" {
			req.Description = &v
		}
		if v := r.FormValue("release_date"); v != "" {
			req.ReleaseDate = &v
		}
		if v := r.FormValue("rating"); v != "" {
			rating, err := strconv.ParseFloat(v, 64)
			if err != nil {
				api.ErrorResponse(w, r, http.StatusBadRequest, "rating must be a number")
				return
			}
			req.Rating = &rating
		}

		var err error
		if params, err = req.toParams(); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if poster, err = posterFromRequest(r); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "invalid poster upload")
			return
		}
	} else {
		var req CreateMovieRequest
		if err := api.DecodeJSONBody(w, r, &req); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		var err error
		if params, err = req.toParams(); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	movie, err := h.service.CreateMovie(ctx, userID, params, poster)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, movie)
}

// ListMovies handles GET /movies with page, limit and search query params.
func (h *HandlerImpl) ListMovies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	filter := types.MovieFilter{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	page, err := h.service.ListMovies(ctx, userID, filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, page)
}

// GetMovie handles GET /movies/{movieID}.
func (h *HandlerImpl) GetMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	movieID, err := movieIDFromRequest(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid movie ID")
		return
	}

	movie, err := h.service.GetMovie(ctx, movieID, userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, movie)
}

// UpdateMovie handles PATCH /movies/{movieID}. Accepts JSON, or
// multipart/form-data when replacing the poster.
func (h *HandlerImpl) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	movieID, err := movieIDFromRequest(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid movie ID")
		return
	}

	var (
		params types.UpdateMovieParams
		poster *media.Upload
	)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(media.MaxUploadSize); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "invalid multipart form")
			return
		}
		var req UpdateMovieRequest
		if v := r.FormValue("title"); v != "" {
			req.Title = &v
		}
		if v := r.FormValue("description"); v != "" {
			req.Description = &v
		}
		if v := r.FormValue("release_date"); v != "" {
			req.ReleaseDate = &v
		}
		if v := r.FormValue("rating"); v != "" {
			rating, err := strconv.ParseFloat(v, 64)
			if err != nil {
				api.ErrorResponse(w, r, http.StatusBadRequest, "rating must be a number")
				return
			}
			req.Rating = &rating
		}

		if params, err = req.toParams(); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if poster, err = posterFromRequest(r); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "invalid poster upload")
			return
		}
	} else {
		var req UpdateMovieRequest
		if err := api.DecodeJSONBody(w, r, &req); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if params, err = req.toParams(); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	movie, err := h.service.UpdateMovie(ctx, movieID, userID, params, poster)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, movie)
}

// DeleteMovie handles DELETE /movies/{movieID}.
func (h *HandlerImpl) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	movieID, err := movieIDFromRequest(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid movie ID")
		return
	}

	if err := h.service.DeleteMovie(ctx, movieID, userID); err != nil {
		h.respondError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
