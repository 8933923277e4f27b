// Package session resolves which principal kind is logged in from the persisted
// session markers.
package session

import (
	"context"
	"errors"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

// Resolver derives the active principal kind and its endpoints from a MarkerStore.
type Resolver struct {
	store  model.MarkerStore
	routes model.Routes
	logger *logger.Logger
}

func NewResolver(store model.MarkerStore, routes model.Routes, logger *logger.Logger) *Resolver {
	return &Resolver{store: store, routes: routes, logger: logger}
}

// CurrentKind reports the active principal kind. The secondary marker wins if both
// are present. A marker that cannot be read counts as absent.
func (r *Resolver) CurrentKind(ctx context.Context) model.Kind {
	if r.has(ctx, r.routes.Secondary.Marker) {
		return model.KindSecondary
	}
	if r.has(ctx, r.routes.Primary.Marker) {
		return model.KindPrimary
	}
	return model.KindNone
}

// RenewalEndpoint returns the refresh path of kind, or "" for KindNone.
func (r *Resolver) RenewalEndpoint(kind model.Kind) string {
	if kind == model.KindNone {
		return ""
	}
	return r.routes.For(kind).RefreshPath
}

// LoginDestination returns the login route of kind. KindNone maps to the primary login.
func (r *Resolver) LoginDestination(kind model.Kind) string {
	return r.routes.For(kind).LoginPath
}

// SetKind writes the marker for kind and removes the other one.
func (r *Resolver) SetKind(ctx context.Context, kind model.Kind, blob []byte) error {
	if kind == model.KindNone {
		return model.ErrNoPrincipal
	}
	other := r.routes.Primary.Marker
	if kind == model.KindPrimary {
		other = r.routes.Secondary.Marker
	}
	if err := r.store.Delete(ctx, other); err != nil {
		return err
	}
	return r.store.Save(ctx, r.routes.For(kind).Marker, blob)
}

// Clear removes every session marker.
func (r *Resolver) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, r.routes.Markers()...)
}

func (r *Resolver) has(ctx context.Context, key string) bool {
	_, err := r.store.Load(ctx, key)
	if err == nil {
		return true
	}
	if !errors.Is(err, model.ErrNotFound) {
		r.logger.Warn("failed to read session marker", "marker", key, "error", err)
	}
	return false
}
