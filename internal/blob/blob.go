// Package blob stores image payloads behind a pluggable backend and hands out
// opaque references to them.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by backends when a reference resolves to nothing.
var ErrNotFound = errors.New("blob not found")

// Object is a stored payload and its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// Backend is a concrete blob store. References returned by Put are opaque to
// callers and only meaningful to the backend that issued them.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Put stores obj and returns a fresh reference. filename is a hint.
	Put(ctx context.Context, obj *Object, filename string) (string, error)
	// Get returns ErrNotFound when ref does not resolve.
	Get(ctx context.Context, ref string) (*Object, error)
	// Remove returns ErrNotFound when ref does not resolve.
	Remove(ctx context.Context, ref string) error
	// URL maps a reference to the path clients fetch it from. It must not
	// perform I/O.
	URL(ref string) string
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// Initializer is implemented by backends that need a connectivity step (bucket
// creation, directory setup) before they can serve requests.
type Initializer interface {
	Init(ctx context.Context) error
}
