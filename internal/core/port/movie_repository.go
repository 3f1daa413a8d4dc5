package port

import (
	"context"

	"github.com/arklim/casting-agency/internal/core/domain"
)

// MovieRepository persists movies.
type MovieRepository interface {
	List(ctx context.Context) ([]domain.Movie, error)
	GetByID(ctx context.Context, id int64) (*domain.Movie, error)
	Create(ctx context.Context, movie domain.Movie) (*domain.Movie, error)
	Update(ctx context.Context, movie domain.Movie) error
	Delete(ctx context.Context, id int64) error
}

// CastingRepository maintains the movie/actor association.
type CastingRepository interface {
	ListActorsByMovie(ctx context.Context, movieID int64) ([]domain.Actor, error)
	Add(ctx context.Context, casting domain.Casting) (bool, error)
	Remove(ctx context.Context, casting domain.Casting) (bool, error)
}
