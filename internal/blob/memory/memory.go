// Package memory is an in-process blob backend for tests and local runs.
package memory

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/fancystore/storeadmin/internal/blob"
)

// Store keeps objects in a map. Contents are lost on restart.
type Store struct {
	mu      sync.RWMutex
	objects map[string]blob.Object
	baseURL string
}

// New creates an empty store. baseURL prefixes public URLs and may be empty.
func New(baseURL string) *Store {
	return &Store{
		objects: make(map[string]blob.Object),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Put(_ context.Context, obj *blob.Object, _ string) (string, error) {
	ref := uuid.NewString()
	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)

	s.mu.Lock()
	s.objects[ref] = blob.Object{Data: data, ContentType: obj.ContentType}
	s.mu.Unlock()
	return ref, nil
}

func (s *Store) Get(_ context.Context, ref string) (*blob.Object, error) {
	s.mu.RLock()
	obj, ok := s.objects[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, blob.ErrNotFound
	}
	data := make([]byte, len(obj.Data))
	copy(data, obj.Data)
	return &blob.Object{Data: data, ContentType: obj.ContentType}, nil
}

func (s *Store) Remove(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[ref]; !ok {
		return blob.ErrNotFound
	}
	delete(s.objects, ref)
	return nil
}

func (s *Store) URL(ref string) string {
	return s.baseURL + "/api/images/" + url.PathEscape(ref)
}

func (s *Store) Ping(context.Context) error { return nil }

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
