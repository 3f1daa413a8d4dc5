package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/usecase"
)

// ActorService is the actor catalogue consumed by ActorHandler.
type ActorService interface {
	List(ctx context.Context) ([]domain.Actor, error)
	Create(ctx context.Context, input usecase.CreateActorInput) (*domain.Actor, error)
	Update(ctx context.Context, id int64, patch domain.ActorPatch) (*domain.Actor, error)
	Delete(ctx context.Context, id int64) error
}

// ActorHandler serves the /actors endpoints.
type ActorHandler struct {
	actors ActorService
}

// NewActorHandler constructs an ActorHandler.
func NewActorHandler(actors ActorService) *ActorHandler {
	return &ActorHandler{actors: actors}
}

// List handles GET /actors.
func (h *ActorHandler) List(c *gin.Context) {
	actors, err := h.actors.List(c.Request.Context())
	if err != nil {
		respondResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ActorsResponse{Success: true, Actors: toActorPayloads(actors)})
}

// Create handles POST /actors.
func (h *ActorHandler) Create(c *gin.Context) {
	var req CreateActorRequest
	if !bindJSON(c, &req) {
		return
	}

	actor, err := h.actors.Create(c.Request.Context(), usecase.CreateActorInput{
		Name:   req.Name,
		Age:    req.Age,
		Gender: req.Gender,
	})
	if err != nil {
		respondResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ActorsResponse{Success: true, Actors: []ActorPayload{toActorPayload(*actor)}})
}

// Update handles PATCH /actors/:id.
func (h *ActorHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateActorRequest
	if !bindJSON(c, &req) {
		return
	}

	actor, err := h.actors.Update(c.Request.Context(), id, domain.ActorPatch{
		Name:   req.Name,
		Age:    req.Age,
		Gender: req.Gender,
	})
	if err != nil {
		respondResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ActorsResponse{Success: true, Actors: []ActorPayload{toActorPayload(*actor)}})
}

// Delete handles DELETE /actors/:id.
func (h *ActorHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.actors.Delete(c.Request.Context(), id); err != nil {
		respondResourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{Success: true, Delete: id})
}
