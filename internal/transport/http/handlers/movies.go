package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/usecase"
)

// MovieService is the movie catalogue consumed by MovieHandler.
type MovieService interface {
	List(ctx context.Context) ([]domain.Movie, error)
	Create(ctx context.Context, input usecase.CreateMovieInput) (*domain.Movie, error)
	Update(ctx context.Context, id int64, patch domain.MoviePatch) (*domain.Movie, error)
	Delete(ctx context.Context, id int64) error
	ListCast(ctx context.Context, movieID int64) ([]domain.Actor, error)
	Cast(ctx context.Context, movieID, actorID int64) ([]domain.Actor, error)
	Uncast(ctx context.Context, movieID, actorID int64) ([]domain.Actor, error)
}

// MovieHandler serves the /movies endpoints and their cast.
type MovieHandler struct {
	movies MovieService
}

// NewMovieHandler constructs a MovieHandler.
func NewMovieHandler(movies MovieService) *MovieHandler {
	return &MovieHandler{movies: movies}
}

// List handles GET /movies.
func (h *MovieHandler) List(c *gin.Context) {
	movies, err := h.movies.List(c.Request.Context())
	if err != nil {
		respondResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MoviesResponse{Success: true, Movies: toMoviePayloads(movies)})
}

// Create handles POST /movies.
func (h *MovieHandler) Create(c *gin.Context) {
	var req CreateMovieRequest
	if !bindJSON(c, &req) {
		return
	}

	input := usecase.CreateMovieInput{Title: req.Title}
	if strings.TrimSpace(req.ReleaseDate) != "" {
		releaseDate, err := parseReleaseDate(req.ReleaseDate)
		if err != nil {
			respondResourceError(c, err)
			return
		}
		input.ReleaseDate = releaseDate
	}

	movie, err := h.movies.Create(c.Request.Context(), input)
	if err != nil {
		respondResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MoviesResponse{Success: true, Movies: []MoviePayload{toMoviePayload(*movie)}})
}

// Update handles PATCH /movies/:id.
func (h *MovieHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateMovieRequest
	if !bindJSON(c, &req) {
		return
	}

	patch := domain.MoviePatch{Title: req.Title}
	if req.ReleaseDate != nil {
		releaseDate, err := parseReleaseDate(*req.ReleaseDate)
		if err != nil {
			respondResourceError(c, err)
			return
		}
		patch.ReleaseDate = &releaseDate
	}

	movie, err := h.movies.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MoviesResponse{Success: true, Movies: []MoviePayload{toMoviePayload(*movie)}})
}

// Delete handles DELETE /movies/:id.
func (h *MovieHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.movies.Delete(c.Request.Context(), id); err != nil {
		respondResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{Success: true, Delete: id})
}

// ListCast handles GET /movies/:id/actors.
func (h *MovieHandler) ListCast(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	cast, err := h.movies.ListCast(c.Request.Context(), id)
	if err != nil {
		respondResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ActorsResponse{Success: true, Actors: toActorPayloads(cast)})
}

// Cast handles PUT /movies/:id/actors/:actor_id.
func (h *MovieHandler) Cast(c *gin.Context) {
	h.changeCast(c, h.movies.Cast)
}

// Uncast handles DELETE /movies/:id/actors/:actor_id.
func (h *MovieHandler) Uncast(c *gin.Context) {
	h.changeCast(c, h.movies.Uncast)
}

func (h *MovieHandler) changeCast(c *gin.Context, change func(ctx context.Context, movieID, actorID int64) ([]domain.Actor, error)) {
	movieID, ok := pathID(c, "id")
	if !ok {
		return
	}
	actorID, ok := pathID(c, "actor_id")
	if !ok {
		return
	}

	cast, err := change(c.Request.Context(), movieID, actorID)
	if err != nil {
		respondResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ActorsResponse{Success: true, Actors: toActorPayloads(cast)})
}

func parseReleaseDate(value string) (time.Time, error) {
	releaseDate, err := domain.ParseReleaseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: release_date %q: %v", usecase.ErrInvalidInput, value, err)
	}
	return releaseDate, nil
}
