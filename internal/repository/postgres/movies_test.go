package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/casting-agency/internal/core/domain"
)

func TestMovieRepository_CreateWithReleaseDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewMovieRepository(mock)
	release := time.Date(2021, 10, 22, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO casting\.movies \(title,release_date\) VALUES \(\$1,\$2\) RETURNING id`).
		WithArgs("Dune", release).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	created, err := repo.Create(context.Background(), domain.Movie{Title: "Dune", ReleaseDate: release})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 1 || created.Title != "Dune" || !created.ReleaseDate.Equal(release) {
		t.Fatalf("unexpected created movie: %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMovieRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewMovieRepository(mock)
	release := time.Date(1994, 9, 23, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "title", "release_date"}).
		AddRow(int64(5), "The Shawshank Redemption", release)

	mock.ExpectQuery(`SELECT id, title, release_date FROM casting\.movies WHERE id = \$1 LIMIT 1`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	movie, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if movie.Title != "The Shawshank Redemption" || !movie.ReleaseDate.Equal(release) {
		t.Fatalf("unexpected movie: %+v", movie)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMovieRepository_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewMovieRepository(mock)
	release := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE casting\.movies SET title = \$1, release_date = \$2 WHERE id = \$3`).
		WithArgs("Dune: Part Two", release, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.Update(context.Background(), domain.Movie{ID: 1, Title: "Dune: Part Two", ReleaseDate: release}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
