package port

import (
	"context"

	"github.com/arklim/casting-agency/internal/core/domain"
)

// EventPublisher publishes entity change events to the message bus.
type EventPublisher interface {
	PublishActorChanged(ctx context.Context, event domain.ActorChangedEvent) error
	PublishMovieChanged(ctx context.Context, event domain.MovieChangedEvent) error
	PublishCastingChanged(ctx context.Context, event domain.CastingChangedEvent) error
}
