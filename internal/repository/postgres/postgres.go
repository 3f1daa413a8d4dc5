package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/casting-agency/internal/repository"
)

const foreignKeyViolation = "23503"

//go:embed schema.sql
var schemaDDL string

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EnsureSchema creates the casting tables when they do not exist yet.
func EnsureSchema(ctx context.Context, exec pgExecutor) error {
	if _, err := exec.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply casting schema: %w", err)
	}
	return nil
}

func translateError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: %s", repository.ErrDanglingReference, pgErr.ConstraintName)
	}
	return err
}
