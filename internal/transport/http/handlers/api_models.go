package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-agency/internal/core/domain"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, status int, message string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Success: false,
		Error:   status,
		Message: message,
		TraceID: traceIDStr,
	}
}

// ActorPayload is the wire form of an actor.
type ActorPayload struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// MoviePayload is the wire form of a movie. ReleaseDate is formatted YYYY-MM-DD.
type MoviePayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// ActorsResponse wraps one or more actors.
type ActorsResponse struct {
	Success bool           `json:"success"`
	Actors  []ActorPayload `json:"actors"`
}

// MoviesResponse wraps one or more movies.
type MoviesResponse struct {
	Success bool           `json:"success"`
	Movies  []MoviePayload `json:"movies"`
}

// DeleteResponse reports the id of a removed entity.
type DeleteResponse struct {
	Success bool  `json:"success"`
	Delete  int64 `json:"delete"`
}

// CreateActorRequest is the body of POST /actors. Unknown keys are ignored.
type CreateActorRequest struct {
	Name   string `json:"name"`
	Age    *int   `json:"age"`
	Gender string `json:"gender"`
}

// UpdateActorRequest is the body of PATCH /actors/:id. Absent fields keep their value.
type UpdateActorRequest struct {
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
}

// CreateMovieRequest is the body of POST /movies.
type CreateMovieRequest struct {
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// UpdateMovieRequest is the body of PATCH /movies/:id.
type UpdateMovieRequest struct {
	Title       *string `json:"title"`
	ReleaseDate *string `json:"release_date"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func toActorPayload(actor domain.Actor) ActorPayload {
	return ActorPayload{
		ID:     actor.ID,
		Name:   actor.Name,
		Age:    actor.Age,
		Gender: actor.Gender,
	}
}

func toActorPayloads(actors []domain.Actor) []ActorPayload {
	out := make([]ActorPayload, 0, len(actors))
	for _, actor := range actors {
		out = append(out, toActorPayload(actor))
	}
	return out
}

func toMoviePayload(movie domain.Movie) MoviePayload {
	payload := MoviePayload{ID: movie.ID, Title: movie.Title}
	if !movie.ReleaseDate.IsZero() {
		payload.ReleaseDate = movie.ReleaseDate.Format(domain.ReleaseDateLayout)
	}
	return payload
}

func toMoviePayloads(movies []domain.Movie) []MoviePayload {
	out := make([]MoviePayload, 0, len(movies))
	for _, movie := range movies {
		out = append(out, toMoviePayload(movie))
	}
	return out
}
