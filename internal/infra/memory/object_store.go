package memory

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
)

// ObjectStore keeps uploads in memory and serves them under baseURL.
type ObjectStore struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

// Object is a stored upload.
type Object struct {
	Data        []byte
	ContentType string
}

func NewObjectStore(baseURL string) *ObjectStore {
	return &ObjectStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

func (s *ObjectStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{Data: slices.Clone(data), ContentType: contentType}
	return s.baseURL + "/" + key, nil
}

// Get returns a stored object by key.
func (s *ObjectStore) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// ServeHTTP serves stored objects by key; mount it under the base URL prefix.
func (s *ObjectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.Get(strings.TrimPrefix(r.URL.Path, "/"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	w.Write(obj.Data)
}
