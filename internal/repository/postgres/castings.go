package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/core/port"
)

const castingsTable = "casting.movie_actors"

// CastingRepository implements port.CastingRepository backed by PostgreSQL.
type CastingRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCastingRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewCastingRepository(exec pgExecutor) *CastingRepository {
	return &CastingRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListActorsByMovie returns the actors cast in the movie ordered by actor id.
func (r *CastingRepository) ListActorsByMovie(ctx context.Context, movieID int64) ([]domain.Actor, error) {
	stmt, args, err := r.builder.Select("a.id", "a.name", "a.age", "a.gender").
		From(actorsTable + " a").
		Join(castingsTable + " ma ON ma.actor_id = a.id").
		Where(squirrel.Eq{"ma.movie_id": movieID}).
		OrderBy("a.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cast sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query cast: %w", err)
	}
	defer rows.Close()

	actors := make([]domain.Actor, 0)
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cast member: %w", err)
		}
		actors = append(actors, actor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cast: %w", err)
	}

	return actors, nil
}

// Add links the actor to the movie. It reports false when the pair already existed.
func (r *CastingRepository) Add(ctx context.Context, casting domain.Casting) (bool, error) {
	stmt, args, err := r.builder.Insert(castingsTable).
		Columns("movie_id", "actor_id").
		Values(casting.MovieID, casting.ActorID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert casting sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("insert casting: %w", translateError(err))
	}

	return res.RowsAffected() > 0, nil
}

// Remove unlinks the actor from the movie. It reports false when no such pair existed.
func (r *CastingRepository) Remove(ctx context.Context, casting domain.Casting) (bool, error) {
	stmt, args, err := r.builder.Delete(castingsTable).
		Where(squirrel.Eq{"movie_id": casting.MovieID, "actor_id": casting.ActorID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete casting sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("delete casting: %w", err)
	}

	return res.RowsAffected() > 0, nil
}

var _ port.CastingRepository = (*CastingRepository)(nil)
