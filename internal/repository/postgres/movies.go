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

const moviesTable = "casting.movies"

var movieColumns = []string{"id", "title", "release_date"}

// MovieRepository implements port.MovieRepository backed by PostgreSQL.
type MovieRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMovieRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewMovieRepository(exec pgExecutor) *MovieRepository {
	return &MovieRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns every movie ordered by id.
func (r *MovieRepository) List(ctx context.Context) ([]domain.Movie, error) {
	stmt, args, err := r.builder.Select(movieColumns...).
		From(moviesTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movies sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}

	return movies, nil
}

// GetByID fetches a single movie.
func (r *MovieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	stmt, args, err := r.builder.Select(movieColumns...).
		From(moviesTable).
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select movie sql: %w", err)
	}

	movie, err := scanMovie(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan movie by id: %w", err)
	}

	return &movie, nil
}

// Create inserts the movie and returns it with the store-assigned id.
func (r *MovieRepository) Create(ctx context.Context, movie domain.Movie) (*domain.Movie, error) {
	stmt, args, err := r.builder.Insert(moviesTable).
		Columns("title", "release_date").
		Values(movie.Title, movie.ReleaseDate.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert movie sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&movie.ID); err != nil {
		return nil, fmt.Errorf("insert movie: %w", err)
	}

	return &movie, nil
}

// Update overwrites the mutable columns of an existing movie.
func (r *MovieRepository) Update(ctx context.Context, movie domain.Movie) error {
	stmt, args, err := r.builder.Update(moviesTable).
		Set("title", movie.Title).
		Set("release_date", movie.ReleaseDate.UTC()).
		Where(squirrel.Eq{"id": movie.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update movie sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update movie: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a movie; its castings cascade.
func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete(moviesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete movie sql: %w", err)
	}

	res, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	if err := row.Scan(&movie.ID, &movie.Title, &movie.ReleaseDate); err != nil {
		return movie, err
	}
	movie.ReleaseDate = movie.ReleaseDate.UTC()
	return movie, nil
}

var _ port.MovieRepository = (*MovieRepository)(nil)
