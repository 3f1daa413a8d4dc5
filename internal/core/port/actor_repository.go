package port

import (
	"context"

	"github.com/arklim/casting-agency/internal/core/domain"
)

// ActorRepository persists actors.
type ActorRepository interface {
	List(ctx context.Context) ([]domain.Actor, error)
	GetByID(ctx context.Context, id int64) (*domain.Actor, error)
	Create(ctx context.Context, actor domain.Actor) (*domain.Actor, error)
	Update(ctx context.Context, actor domain.Actor) error
	Delete(ctx context.Context, id int64) error
}
