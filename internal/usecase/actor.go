package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/core/port"
	"github.com/arklim/casting-agency/internal/infra/logger"
	"github.com/arklim/casting-agency/internal/infra/telemetry"
	"github.com/arklim/casting-agency/internal/repository"
)

// CreateActorInput captures the payload for creating an actor.
type CreateActorInput struct {
	Name   string
	Age    *int
	Gender string
}

// ActorService manages the actor catalogue.
type ActorService struct {
	actors  port.ActorRepository
	events  port.EventPublisher
	metrics *telemetry.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewActorService constructs an ActorService. events may be nil.
func NewActorService(actors port.ActorRepository, events port.EventPublisher, metrics *telemetry.Metrics, logger *zap.Logger) *ActorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActorService{
		actors:  actors,
		events:  events,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// List returns every actor ordered by id.
func (s *ActorService) List(ctx context.Context) ([]domain.Actor, error) {
	actors, err := s.actors.List(ctx)
	if err != nil {
		s.logger.Error("list actors failed", zap.Error(err))
		return nil, fmt.Errorf("list actors: %w", err)
	}
	return actors, nil
}

// Create validates and stores a new actor.
func (s *ActorService) Create(ctx context.Context, input CreateActorInput) (*domain.Actor, error) {
	actor := domain.Actor{
		Name:   strings.TrimSpace(input.Name),
		Gender: strings.TrimSpace(input.Gender),
	}
	if input.Age != nil {
		actor.Age = *input.Age
	}
	if err := validateActor(actor); err != nil {
		return nil, err
	}

	created, err := s.actors.Create(ctx, actor)
	if err != nil {
		s.logger.Error("create actor failed", zap.Error(err))
		return nil, fmt.Errorf("create actor: %w", err)
	}

	s.publish(ctx, domain.ChangeCreated, *created)
	return created, nil
}

// Update overwrites the fields present in patch and returns the stored actor.
func (s *ActorService) Update(ctx context.Context, id int64, patch domain.ActorPatch) (*domain.Actor, error) {
	actor, err := s.actors.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}

	if patch.IsEmpty() {
		return actor, nil
	}

	patch.Apply(actor)
	if err := validateActor(*actor); err != nil {
		return nil, err
	}

	if err := s.actors.Update(ctx, *actor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActorNotFound
		}
		s.logger.Error("update actor failed", zap.Int64("actor_id", id), zap.Error(err))
		return nil, fmt.Errorf("update actor: %w", err)
	}

	s.publish(ctx, domain.ChangeUpdated, *actor)
	return actor, nil
}

// Delete removes the actor and every casting that references it.
func (s *ActorService) Delete(ctx context.Context, id int64) error {
	actor, err := s.actors.GetByID(ctx, id)
	if err != nil {
		return s.lookupError(id, err)
	}

	if err := s.actors.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrActorNotFound
		}
		s.logger.Error("delete actor failed", zap.Int64("actor_id", id), zap.Error(err))
		return fmt.Errorf("delete actor: %w", err)
	}

	s.publish(ctx, domain.ChangeDeleted, *actor)
	return nil
}

func (s *ActorService) lookupError(id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrActorNotFound
	}
	s.logger.Error("load actor failed", zap.Int64("actor_id", id), zap.Error(err))
	return fmt.Errorf("load actor: %w", err)
}

func (s *ActorService) publish(ctx context.Context, change domain.EntityChange, actor domain.Actor) {
	if s.events == nil {
		return
	}

	event := domain.ActorChangedEvent{
		EventID:    uuid.NewString(),
		Change:     change,
		Actor:      actor,
		Subject:    logger.SubjectFromContext(ctx),
		OccurredAt: s.now(),
	}

	if err := s.events.PublishActorChanged(ctx, event); err != nil {
		s.metrics.ObservePublishFailure("casting.actor." + string(change))
		s.logger.Warn("failed to publish actor event",
			zap.String("change", string(change)),
			zap.Int64("actor_id", actor.ID),
			zap.Error(err),
		)
	}
}

func validateActor(actor domain.Actor) error {
	if actor.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if actor.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
	}
	return nil
}
