package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/repository"
)

func TestActorRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewActorRepository(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "age", "gender"}).
		AddRow(int64(1), "Meryl Streep", 74, "female").
		AddRow(int64(2), "Denzel Washington", 69, "male")

	mock.ExpectQuery(`SELECT id, name, age, gender FROM casting\.actors ORDER BY id ASC`).WillReturnRows(rows)

	actors, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(actors) != 2 {
		t.Fatalf("expected 2 actors, got %d", len(actors))
	}
	if actors[1].Name != "Denzel Washington" || actors[1].Age != 69 {
		t.Fatalf("unexpected second actor: %+v", actors[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActorRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewActorRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM casting\.actors WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "age", "gender"}))

	_, err = repo.GetByID(context.Background(), 42)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActorRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewActorRepository(mock)

	mock.ExpectQuery(`INSERT INTO casting\.actors \(name,age,gender\) VALUES \(\$1,\$2,\$3\) RETURNING id`).
		WithArgs("Viola Davis", 58, "female").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))

	created, err := repo.Create(context.Background(), domain.Actor{Name: "Viola Davis", Age: 58, Gender: "female"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 9 {
		t.Fatalf("expected store-assigned id 9, got %d", created.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActorRepository_UpdateMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewActorRepository(mock)

	mock.ExpectExec(`UPDATE casting\.actors SET name = \$1, age = \$2, gender = \$3 WHERE id = \$4`).
		WithArgs("Nobody", 30, "", int64(404)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Update(context.Background(), domain.Actor{ID: 404, Name: "Nobody", Age: 30})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActorRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewActorRepository(mock)

	mock.ExpectExec(`DELETE FROM casting\.actors WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
