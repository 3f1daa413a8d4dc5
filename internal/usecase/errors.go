package usecase

import "errors"

var (
	// ErrActorNotFound indicates the referenced actor does not exist.
	ErrActorNotFound = errors.New("actor not found")
	// ErrMovieNotFound indicates the referenced movie does not exist.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrCastingNotFound indicates the actor is not cast in the movie.
	ErrCastingNotFound = errors.New("actor is not cast in movie")
	// ErrInvalidInput indicates the request payload failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
