package usecase

import (
	"context"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID string
	Role   entity.Role
	IP     string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
