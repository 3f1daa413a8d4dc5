package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/core/port"
	"github.com/arklim/casting-agency/internal/infra/config"
)

const schemaVersion = "1.0"

const (
	eventActorPrefix  = "casting.actor."
	eventMoviePrefix  = "casting.movie."
	EventActorCast    = "casting.movie.actor_cast"
	EventActorUncast  = "casting.movie.actor_uncast"
	releaseDateLayout = domain.ReleaseDateLayout
)

// ActorEventType maps an entity change onto its casting.actor.* event name.
func ActorEventType(change domain.EntityChange) string {
	return eventActorPrefix + string(change)
}

// MovieEventType maps an entity change onto its casting.movie.* event name.
func MovieEventType(change domain.EntityChange) string {
	return eventMoviePrefix + string(change)
}

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID     string           `json:"event_id"`
	EventType   string           `json:"event_type"`
	AggregateID string           `json:"aggregate_id"`
	Subject     string           `json:"subject,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	Version     string           `json:"version"`
	Payload     any              `json:"payload"`
	Metadata    envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, aggregateID, subject string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	envelope := eventEnvelope{
		EventID:     id,
		EventType:   eventType,
		AggregateID: aggregateID,
		Subject:     subject,
		Timestamp:   ts.UTC(),
		Version:     schemaVersion,
		Payload:     payload,
		Metadata:    metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	if err := p.producer.Send(ctx, eventType, aggregateID, bytes); err != nil {
		return fmt.Errorf("enqueue %s: %w", eventType, err)
	}
	return nil
}

type actorPayload struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

type moviePayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

type castingPayload struct {
	MovieID int64 `json:"movie_id"`
	ActorID int64 `json:"actor_id"`
}

// PublishActorChanged publishes casting.actor.{created,updated,deleted} events keyed by actor id.
func (p *EventPublisher) PublishActorChanged(ctx context.Context, event domain.ActorChangedEvent) error {
	payload := actorPayload{
		ID:     event.Actor.ID,
		Name:   event.Actor.Name,
		Age:    event.Actor.Age,
		Gender: event.Actor.Gender,
	}

	return p.publish(ctx, event.EventID, ActorEventType(event.Change), strconv.FormatInt(event.Actor.ID, 10), event.Subject, event.OccurredAt, payload)
}

// PublishMovieChanged publishes casting.movie.{created,updated,deleted} events keyed by movie id.
func (p *EventPublisher) PublishMovieChanged(ctx context.Context, event domain.MovieChangedEvent) error {
	payload := moviePayload{
		ID:    event.Movie.ID,
		Title: event.Movie.Title,
	}
	if !event.Movie.ReleaseDate.IsZero() {
		payload.ReleaseDate = event.Movie.ReleaseDate.Format(releaseDateLayout)
	}

	return p.publish(ctx, event.EventID, MovieEventType(event.Change), strconv.FormatInt(event.Movie.ID, 10), event.Subject, event.OccurredAt, payload)
}

// PublishCastingChanged publishes casting.movie.actor_cast and casting.movie.actor_uncast events keyed by movie id.
func (p *EventPublisher) PublishCastingChanged(ctx context.Context, event domain.CastingChangedEvent) error {
	eventType := EventActorCast
	if event.Removed {
		eventType = EventActorUncast
	}

	payload := castingPayload{
		MovieID: event.Casting.MovieID,
		ActorID: event.Casting.ActorID,
	}

	return p.publish(ctx, event.EventID, eventType, strconv.FormatInt(event.Casting.MovieID, 10), event.Subject, event.OccurredAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
