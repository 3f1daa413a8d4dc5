package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/repository"
)

type memActorRepo struct {
	mu      sync.Mutex
	nextID  int64
	actors  map[int64]domain.Actor
	failAll error
}

func newMemActorRepo(seed ...domain.Actor) *memActorRepo {
	repo := &memActorRepo{actors: make(map[int64]domain.Actor)}
	for _, actor := range seed {
		repo.actors[actor.ID] = actor
		if actor.ID > repo.nextID {
			repo.nextID = actor.ID
		}
	}
	return repo
}

func (r *memActorRepo) List(context.Context) ([]domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	out := make([]domain.Actor, 0, len(r.actors))
	for _, actor := range r.actors {
		out = append(out, actor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memActorRepo) GetByID(_ context.Context, id int64) (*domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	actor, ok := r.actors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &actor, nil
}

func (r *memActorRepo) Create(_ context.Context, actor domain.Actor) (*domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	r.nextID++
	actor.ID = r.nextID
	r.actors[actor.ID] = actor
	return &actor, nil
}

func (r *memActorRepo) Update(_ context.Context, actor domain.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	if _, ok := r.actors[actor.ID]; !ok {
		return repository.ErrNotFound
	}
	r.actors[actor.ID] = actor
	return nil
}

func (r *memActorRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	if _, ok := r.actors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.actors, id)
	return nil
}

type memMovieRepo struct {
	mu     sync.Mutex
	nextID int64
	movies map[int64]domain.Movie
}

func newMemMovieRepo(seed ...domain.Movie) *memMovieRepo {
	repo := &memMovieRepo{movies: make(map[int64]domain.Movie)}
	for _, movie := range seed {
		repo.movies[movie.ID] = movie
		if movie.ID > repo.nextID {
			repo.nextID = movie.ID
		}
	}
	return repo
}

func (r *memMovieRepo) List(context.Context) ([]domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Movie, 0, len(r.movies))
	for _, movie := range r.movies {
		out = append(out, movie)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memMovieRepo) GetByID(_ context.Context, id int64) (*domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	movie, ok := r.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &movie, nil
}

func (r *memMovieRepo) Create(_ context.Context, movie domain.Movie) (*domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	movie.ID = r.nextID
	r.movies[movie.ID] = movie
	return &movie, nil
}

func (r *memMovieRepo) Update(_ context.Context, movie domain.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[movie.ID]; !ok {
		return repository.ErrNotFound
	}
	r.movies[movie.ID] = movie
	return nil
}

func (r *memMovieRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.movies, id)
	return nil
}

type memCastingRepo struct {
	mu     sync.Mutex
	actors *memActorRepo
	pairs  map[domain.Casting]struct{}
}

func newMemCastingRepo(actors *memActorRepo) *memCastingRepo {
	return &memCastingRepo{actors: actors, pairs: make(map[domain.Casting]struct{})}
}

func (r *memCastingRepo) ListActorsByMovie(ctx context.Context, movieID int64) ([]domain.Actor, error) {
	r.mu.Lock()
	ids := make([]int64, 0)
	for pair := range r.pairs {
		if pair.MovieID == movieID {
			ids = append(ids, pair.ActorID)
		}
	}
	r.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]domain.Actor, 0, len(ids))
	for _, id := range ids {
		actor, err := r.actors.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *actor)
	}
	return out, nil
}

func (r *memCastingRepo) Add(_ context.Context, casting domain.Casting) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pairs[casting]; ok {
		return false, nil
	}
	r.pairs[casting] = struct{}{}
	return true, nil
}

func (r *memCastingRepo) Remove(_ context.Context, casting domain.Casting) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pairs[casting]; !ok {
		return false, nil
	}
	delete(r.pairs, casting)
	return true, nil
}

var errPublishUnavailable = errors.New("broker unavailable")

type recordingPublisher struct {
	mu       sync.Mutex
	actors   []domain.ActorChangedEvent
	movies   []domain.MovieChangedEvent
	castings []domain.CastingChangedEvent
	fail     bool
}

func (p *recordingPublisher) PublishActorChanged(_ context.Context, event domain.ActorChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errPublishUnavailable
	}
	p.actors = append(p.actors, event)
	return nil
}

func (p *recordingPublisher) PublishMovieChanged(_ context.Context, event domain.MovieChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errPublishUnavailable
	}
	p.movies = append(p.movies, event)
	return nil
}

func (p *recordingPublisher) PublishCastingChanged(_ context.Context, event domain.CastingChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errPublishUnavailable
	}
	p.castings = append(p.castings, event)
	return nil
}
