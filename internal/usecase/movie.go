package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/core/port"
	"github.com/arklim/casting-agency/internal/infra/logger"
	"github.com/arklim/casting-agency/internal/infra/telemetry"
	"github.com/arklim/casting-agency/internal/repository"
)

// CreateMovieInput captures the payload for creating a movie.
type CreateMovieInput struct {
	Title       string
	ReleaseDate time.Time
}

// MovieService manages movies and the actors cast in them.
type MovieService struct {
	movies   port.MovieRepository
	actors   port.ActorRepository
	castings port.CastingRepository
	events   port.EventPublisher
	metrics  *telemetry.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewMovieService constructs a MovieService. events may be nil.
func NewMovieService(
	movies port.MovieRepository,
	actors port.ActorRepository,
	castings port.CastingRepository,
	events port.EventPublisher,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
) *MovieService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovieService{
		movies:   movies,
		actors:   actors,
		castings: castings,
		events:   events,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns every movie ordered by id.
func (s *MovieService) List(ctx context.Context) ([]domain.Movie, error) {
	movies, err := s.movies.List(ctx)
	if err != nil {
		s.logger.Error("list movies failed", zap.Error(err))
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// Create validates and stores a new movie.
func (s *MovieService) Create(ctx context.Context, input CreateMovieInput) (*domain.Movie, error) {
	movie := domain.Movie{
		Title:       strings.TrimSpace(input.Title),
		ReleaseDate: input.ReleaseDate.UTC(),
	}
	if err := validateMovie(movie); err != nil {
		return nil, err
	}

	created, err := s.movies.Create(ctx, movie)
	if err != nil {
		s.logger.Error("create movie failed", zap.Error(err))
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.publishMovie(ctx, domain.ChangeCreated, *created)
	return created, nil
}

// Update overwrites the fields present in patch and returns the stored movie.
func (s *MovieService) Update(ctx context.Context, id int64, patch domain.MoviePatch) (*domain.Movie, error) {
	movie, err := s.loadMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return movie, nil
	}

	patch.Apply(movie)
	if err := validateMovie(*movie); err != nil {
		return nil, err
	}

	if err := s.movies.Update(ctx, *movie); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		s.logger.Error("update movie failed", zap.Int64("movie_id", id), zap.Error(err))
		return nil, fmt.Errorf("update movie: %w", err)
	}

	s.publishMovie(ctx, domain.ChangeUpdated, *movie)
	return movie, nil
}

// Delete removes the movie and its castings.
func (s *MovieService) Delete(ctx context.Context, id int64) error {
	movie, err := s.loadMovie(ctx, id)
	if err != nil {
		return err
	}

	if err := s.movies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMovieNotFound
		}
		s.logger.Error("delete movie failed", zap.Int64("movie_id", id), zap.Error(err))
		return fmt.Errorf("delete movie: %w", err)
	}

	s.publishMovie(ctx, domain.ChangeDeleted, *movie)
	return nil
}

// ListCast returns the actors cast in the movie.
func (s *MovieService) ListCast(ctx context.Context, movieID int64) ([]domain.Actor, error) {
	if _, err := s.loadMovie(ctx, movieID); err != nil {
		return nil, err
	}

	cast, err := s.castings.ListActorsByMovie(ctx, movieID)
	if err != nil {
		s.logger.Error("list cast failed", zap.Int64("movie_id", movieID), zap.Error(err))
		return nil, fmt.Errorf("list cast: %w", err)
	}
	return cast, nil
}

// Cast links the actor to the movie and returns the resulting cast. Casting twice is a no-op.
func (s *MovieService) Cast(ctx context.Context, movieID, actorID int64) ([]domain.Actor, error) {
	if _, err := s.loadMovie(ctx, movieID); err != nil {
		return nil, err
	}
	if _, err := s.actors.GetByID(ctx, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActorNotFound
		}
		s.logger.Error("load actor failed", zap.Int64("actor_id", actorID), zap.Error(err))
		return nil, fmt.Errorf("load actor: %w", err)
	}

	casting := domain.Casting{MovieID: movieID, ActorID: actorID}
	added, err := s.castings.Add(ctx, casting)
	if err != nil {
		s.logger.Error("cast actor failed",
			zap.Int64("movie_id", movieID),
			zap.Int64("actor_id", actorID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("cast actor: %w", err)
	}

	if added {
		s.publishCasting(ctx, casting, false)
	}

	return s.ListCast(ctx, movieID)
}

// Uncast removes the actor from the movie and returns the remaining cast.
func (s *MovieService) Uncast(ctx context.Context, movieID, actorID int64) ([]domain.Actor, error) {
	if _, err := s.loadMovie(ctx, movieID); err != nil {
		return nil, err
	}

	casting := domain.Casting{MovieID: movieID, ActorID: actorID}
	removed, err := s.castings.Remove(ctx, casting)
	if err != nil {
		s.logger.Error("uncast actor failed",
			zap.Int64("movie_id", movieID),
			zap.Int64("actor_id", actorID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("uncast actor: %w", err)
	}
	if !removed {
		return nil, ErrCastingNotFound
	}

	s.publishCasting(ctx, casting, true)
	return s.ListCast(ctx, movieID)
}

func (s *MovieService) loadMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		s.logger.Error("load movie failed", zap.Int64("movie_id", id), zap.Error(err))
		return nil, fmt.Errorf("load movie: %w", err)
	}
	return movie, nil
}

func (s *MovieService) publishMovie(ctx context.Context, change domain.EntityChange, movie domain.Movie) {
	if s.events == nil {
		return
	}

	event := domain.MovieChangedEvent{
		EventID:    uuid.NewString(),
		Change:     change,
		Movie:      movie,
		Subject:    logger.SubjectFromContext(ctx),
		OccurredAt: s.now(),
	}

	if err := s.events.PublishMovieChanged(ctx, event); err != nil {
		s.metrics.ObservePublishFailure("casting.movie." + string(change))
		s.logger.Warn("failed to publish movie event",
			zap.String("change", string(change)),
			zap.Int64("movie_id", movie.ID),
			zap.Error(err),
		)
	}
}

func (s *MovieService) publishCasting(ctx context.Context, casting domain.Casting, removed bool) {
	if s.events == nil {
		return
	}

	event := domain.CastingChangedEvent{
		EventID:    uuid.NewString(),
		Casting:    casting,
		Removed:    removed,
		Subject:    logger.SubjectFromContext(ctx),
		OccurredAt: s.now(),
	}

	if err := s.events.PublishCastingChanged(ctx, event); err != nil {
		eventType := "casting.movie.actor_cast"
		if removed {
			eventType = "casting.movie.actor_uncast"
		}
		s.metrics.ObservePublishFailure(eventType)
		s.logger.Warn("failed to publish casting event",
			zap.Int64("movie_id", casting.MovieID),
			zap.Int64("actor_id", casting.ActorID),
			zap.Bool("removed", removed),
			zap.Error(err),
		)
	}
}

func validateMovie(movie domain.Movie) error {
	if movie.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if movie.ReleaseDate.IsZero() {
		return fmt.Errorf("%w: release_date is required", ErrInvalidInput)
	}
	return nil
}
