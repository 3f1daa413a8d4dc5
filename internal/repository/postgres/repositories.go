package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Actors   *ActorRepository
	Movies   *MovieRepository
	Castings *CastingRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Actors:   NewActorRepository(pool),
		Movies:   NewMovieRepository(pool),
		Castings: NewCastingRepository(pool),
	}
}
