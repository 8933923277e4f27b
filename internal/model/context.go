package model

import "context"

// ContextManager stores the authenticated principal on a request context.
type ContextManager interface {
	SetPrincipalToContext(ctx context.Context, p Principal) context.Context
	GetPrincipalFromContext(ctx context.Context) (Principal, bool)
}
