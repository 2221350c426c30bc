package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/storeadmin/backend/internal/domain/shared"
)

var _ shared.ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObject is a stored object of the in-memory backend
type MemoryObject struct {
	Data        []byte
	ContentType string
}

// MemoryObjectStorage keeps objects in process memory. Fault hooks let
// tests fail individual uploads and deletions.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]MemoryObject

	// UploadHook and DeleteHook run before the operation; a non-nil error aborts it
	UploadHook func(key string) error
	DeleteHook func(key string) error
}

// NewMemoryObjectStorage creates an empty in-memory backend. URLs are built from baseURL.
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &MemoryObjectStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]MemoryObject),
	}
}

// Upload stores the body under key
func (s *MemoryObjectStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if hook := s.hook(true); hook != nil {
		if err := hook(key); err != nil {
			return fmt.Errorf("failed to upload object %s: %w", key, err)
		}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}

	s.mu.Lock()
	s.objects[key] = MemoryObject{Data: buf.Bytes(), ContentType: contentType}
	s.mu.Unlock()
	return nil
}

// Delete removes an object
func (s *MemoryObjectStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if hook := s.hook(false); hook != nil {
		if err := hook(key); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", key, err)
		}
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// URL returns baseURL/key for stored objects
func (s *MemoryObjectStorage) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("object %s does not exist", key)
	}
	return s.baseURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
}

// List returns the keys under prefix in lexical order
func (s *MemoryObjectStorage) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0)
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Exists checks if an object exists
func (s *MemoryObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Object returns a stored object
func (s *MemoryObjectStorage) Object(key string) (MemoryObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

func (s *MemoryObjectStorage) hook(upload bool) func(string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if upload {
		return s.UploadHook
	}
	return s.DeleteHook
}
