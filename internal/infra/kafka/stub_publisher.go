package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, aggregateID int64, subject string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Int64("aggregate_id", aggregateID),
		zap.String("subject", subject),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishActorChanged logs casting.actor.* events.
func (p *StubPublisher) PublishActorChanged(_ context.Context, event domain.ActorChangedEvent) error {
	payload := map[string]any{
		"id":     event.Actor.ID,
		"name":   event.Actor.Name,
		"age":    event.Actor.Age,
		"gender": event.Actor.Gender,
	}
	p.logEvent(ActorEventType(event.Change), event.Actor.ID, event.Subject, event.OccurredAt, payload)
	return nil
}

// PublishMovieChanged logs casting.movie.* events.
func (p *StubPublisher) PublishMovieChanged(_ context.Context, event domain.MovieChangedEvent) error {
	payload := map[string]any{
		"id":           event.Movie.ID,
		"title":        event.Movie.Title,
		"release_date": event.Movie.ReleaseDate.Format(releaseDateLayout),
	}
	p.logEvent(MovieEventType(event.Change), event.Movie.ID, event.Subject, event.OccurredAt, payload)
	return nil
}

// PublishCastingChanged logs casting.movie.actor_cast and actor_uncast events.
func (p *StubPublisher) PublishCastingChanged(_ context.Context, event domain.CastingChangedEvent) error {
	eventType := EventActorCast
	if event.Removed {
		eventType = EventActorUncast
	}
	payload := map[string]any{
		"movie_id": event.Casting.MovieID,
		"actor_id": event.Casting.ActorID,
	}
	p.logEvent(eventType, event.Casting.MovieID, event.Subject, event.OccurredAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
