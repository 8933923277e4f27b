package backend

import (
	"context"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

type principalKey struct{}

// ContextManager stores the authenticated principal on request contexts.
type ContextManager struct{}

func NewContextManager() *ContextManager {
	return &ContextManager{}
}

var _ model.ContextManager = (*ContextManager)(nil)

func (m *ContextManager) SetPrincipalToContext(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func (m *ContextManager) GetPrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(model.Principal)
	return p, ok
}
