package domain

import (
	"strings"
	"time"
)

// ReleaseDateLayout is the wire format for movie release dates.
const ReleaseDateLayout = "2006-01-02"

// Actor is a performer that can be cast in movies.
type Actor struct {
	ID     int64
	Name   string
	Age    int
	Gender string
}

// Movie is a production actors are cast into.
type Movie struct {
	ID          int64
	Title       string
	ReleaseDate time.Time
}

// Casting links an actor to a movie.
type Casting struct {
	MovieID int64
	ActorID int64
}

// ActorPatch lists the actor fields a partial update may overwrite. Nil fields are left untouched.
type ActorPatch struct {
	Name   *string
	Age    *int
	Gender *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ActorPatch) IsEmpty() bool {
	return p.Name == nil && p.Age == nil && p.Gender == nil
}

// Apply overwrites the fields present in the patch.
func (p ActorPatch) Apply(actor *Actor) {
	if p.Name != nil {
		actor.Name = strings.TrimSpace(*p.Name)
	}
	if p.Age != nil {
		actor.Age = *p.Age
	}
	if p.Gender != nil {
		actor.Gender = strings.TrimSpace(*p.Gender)
	}
}

// MoviePatch lists the movie fields a partial update may overwrite.
type MoviePatch struct {
	Title       *string
	ReleaseDate *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p MoviePatch) IsEmpty() bool {
	return p.Title == nil && p.ReleaseDate == nil
}

// Apply overwrites the fields present in the patch.
func (p MoviePatch) Apply(movie *Movie) {
	if p.Title != nil {
		movie.Title = strings.TrimSpace(*p.Title)
	}
	if p.ReleaseDate != nil {
		movie.ReleaseDate = p.ReleaseDate.UTC()
	}
}

// ParseReleaseDate accepts either a calendar date (2006-01-02) or an RFC 3339 timestamp.
// Timestamps keep the calendar day written in their own offset.
func ParseReleaseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(ReleaseDateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
