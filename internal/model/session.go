package model

import "context"

// MarkerStore persists the opaque session markers written at login.
type MarkerStore interface {
	// Load returns the marker blob stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Navigator sends the host application to a client-side route.
type Navigator interface {
	Navigate(destination string)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(destination string)

// Navigate calls f(destination).
func (f NavigatorFunc) Navigate(destination string) {
	f(destination)
}
