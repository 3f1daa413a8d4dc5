package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/infra/logger"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestActorService_CreatePublishesEvent(t *testing.T) {
	repo := newMemActorRepo()
	events := &recordingPublisher{}
	service := NewActorService(repo, events, nil, zaptest.NewLogger(t))

	ctx := logger.WithSubject(context.Background(), "auth0|director")
	actor, err := service.Create(ctx, CreateActorInput{Name: "  Zendaya ", Age: intPtr(28), Gender: "female"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if actor.ID == 0 || actor.Name != "Zendaya" {
		t.Fatalf("unexpected actor: %+v", actor)
	}

	if len(events.actors) != 1 {
		t.Fatalf("expected one event, got %d", len(events.actors))
	}
	event := events.actors[0]
	if event.Change != domain.ChangeCreated || event.Subject != "auth0|director" || event.EventID == "" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestActorService_CreateValidation(t *testing.T) {
	service := NewActorService(newMemActorRepo(), nil, nil, zaptest.NewLogger(t))

	cases := map[string]CreateActorInput{
		"blank name":   {Name: "  ", Age: intPtr(30)},
		"negative age": {Name: "Timothée Chalamet", Age: intPtr(-1)},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := service.Create(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestActorService_UpdateChangesOnlyPresentFields(t *testing.T) {
	repo := newMemActorRepo(domain.Actor{ID: 7, Name: "Old Name", Age: 41, Gender: "female"})
	service := NewActorService(repo, nil, nil, zaptest.NewLogger(t))

	updated, err := service.Update(context.Background(), 7, domain.ActorPatch{Name: strPtr("New Name")})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	want := domain.Actor{ID: 7, Name: "New Name", Age: 41, Gender: "female"}
	if *updated != want {
		t.Fatalf("unexpected actor %+v, want %+v", *updated, want)
	}

	stored, _ := repo.GetByID(context.Background(), 7)
	if *stored != want {
		t.Fatalf("stored actor %+v, want %+v", *stored, want)
	}
}

func TestActorService_UpdateMissingActor(t *testing.T) {
	service := NewActorService(newMemActorRepo(), nil, nil, zaptest.NewLogger(t))

	_, err := service.Update(context.Background(), 404, domain.ActorPatch{Name: strPtr("Nobody")})
	if !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}
}

func TestActorService_EmptyPatchSkipsWrite(t *testing.T) {
	repo := newMemActorRepo(domain.Actor{ID: 1, Name: "Rebecca Ferguson", Age: 41})
	events := &recordingPublisher{}
	service := NewActorService(repo, events, nil, zaptest.NewLogger(t))

	actor, err := service.Update(context.Background(), 1, domain.ActorPatch{})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if actor.Name != "Rebecca Ferguson" {
		t.Fatalf("unexpected actor: %+v", actor)
	}
	if len(events.actors) != 0 {
		t.Fatalf("expected no events for an empty patch, got %d", len(events.actors))
	}
}

func TestActorService_DeleteThenListOmitsActor(t *testing.T) {
	repo := newMemActorRepo(
		domain.Actor{ID: 1, Name: "Oscar Isaac"},
		domain.Actor{ID: 2, Name: "Josh Brolin"},
	)
	service := NewActorService(repo, nil, nil, zaptest.NewLogger(t))

	if err := service.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	actors, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	for _, actor := range actors {
		if actor.ID == 1 {
			t.Fatalf("deleted actor still listed: %+v", actor)
		}
	}

	if err := service.Delete(context.Background(), 1); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound on second delete, got %v", err)
	}
}

func TestActorService_PersistenceFailureIsWrapped(t *testing.T) {
	storeErr := errors.New("connection reset by peer")
	repo := newMemActorRepo()
	repo.failAll = storeErr
	service := NewActorService(repo, nil, nil, zaptest.NewLogger(t))

	_, err := service.List(context.Background())
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if errors.Is(err, ErrActorNotFound) || errors.Is(err, ErrInvalidInput) {
		t.Fatalf("store failure must not look like a client error: %v", err)
	}
}

func TestActorService_PublishFailureDoesNotFailRequest(t *testing.T) {
	service := NewActorService(newMemActorRepo(), &recordingPublisher{fail: true}, nil, zaptest.NewLogger(t))

	if _, err := service.Create(context.Background(), CreateActorInput{Name: "Javier Bardem"}); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got %v", err)
	}
}
