package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/core/port"
	"github.com/arklim/casting-agency/internal/repository"
)

const actorsTable = "casting.actors"

var actorColumns = []string{"id", "name", "age", "gender"}

// ActorRepository implements port.ActorRepository backed by PostgreSQL.
type ActorRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewActorRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewActorRepository(exec pgExecutor) *ActorRepository {
	return &ActorRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns every actor ordered by id.
func (r *ActorRepository) List(ctx context.Context) ([]domain.Actor, error) {
	stmt, args, err := r.builder.Select(actorColumns...).
		From(actorsTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list actors sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query actors: %w", err)
	}
	defer rows.Close()

	actors := make([]domain.Actor, 0)
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		actors = append(actors, actor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actors: %w", err)
	}

	return actors, nil
}

// GetByID fetches a single actor.
func (r *ActorRepository) GetByID(ctx context.Context, id int64) (*domain.Actor, error) {
	stmt, args, err := r.builder.Select(actorColumns...).
		From(actorsTable).
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select actor sql: %w", err)
	}

	actor, err := scanActor(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan actor by id: %w", err)
	}

	return &actor, nil
}

// Create inserts the actor and returns it with the store-assigned id.
func (r *ActorRepository) Create(ctx context.Context, actor domain.Actor) (*domain.Actor, error) {
	stmt, args, err := r.builder.Insert(actorsTable).
		Columns("name", "age", "gender").
		Values(actor.Name, actor.Age, actor.Gender).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert actor sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&actor.ID); err != nil {
		return nil, fmt.Errorf("insert actor: %w", err)
	}

	return &actor, nil
}

// Update overwrites the mutable columns of an existing actor.
func (r *ActorRepository) Update(ctx context.Context, actor domain.Actor) error {
	stmt, args, err := r.builder.Update(actorsTable).
		Set("name", actor.Name).
		Set("age", actor.Age).
		Set("gender", actor.Gender).
		Where(squirrel.Eq{"id": actor.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update actor sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update actor: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes an actor; castings referencing it cascade.
func (r *ActorRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete(actorsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete actor sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete actor: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanActor(row pgx.Row) (domain.Actor, error) {
	var actor domain.Actor
	err := row.Scan(&actor.ID, &actor.Name, &actor.Age, &actor.Gender)
	return actor, err
}

var _ port.ActorRepository = (*ActorRepository)(nil)
