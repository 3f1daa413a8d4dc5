package domain

import "time"

// EntityChange names the kind of mutation carried by a change event.
type EntityChange string

const (
	ChangeCreated EntityChange = "created"
	ChangeUpdated EntityChange = "updated"
	ChangeDeleted EntityChange = "deleted"
)

// ActorChangedEvent represents the payload for casting.actor.* messages.
type ActorChangedEvent struct {
	EventID    string
	Change     EntityChange
	Actor      Actor
	Subject    string
	OccurredAt time.Time
}

// MovieChangedEvent represents the payload for casting.movie.* messages.
type MovieChangedEvent struct {
	EventID    string
	Change     EntityChange
	Movie      Movie
	Subject    string
	OccurredAt time.Time
}

// CastingChangedEvent represents the payload for casting.movie.actor_cast and
// casting.movie.actor_uncast messages.
type CastingChangedEvent struct {
	EventID    string
	Casting    Casting
	Removed    bool
	Subject    string
	OccurredAt time.Time
}
