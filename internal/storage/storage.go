package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ObjectStore is the narrow upload capability the file-list materializer
// depends on. Put writes a complete object under the store's configured
// target location and returns the object's external URI.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte) (uri string, err error)
}

// MemoryStore is an in-memory ObjectStore for tests.
type MemoryStore struct {
	mu      sync.Mutex
	scheme  string
	bucket  string
	subdir  string
	objects map[string][]byte

	// FailPut, when set, makes every Put return this error.
	FailPut error
}

// NewMemoryStore creates a MemoryStore rooted at the given target URI.
func NewMemoryStore(target string) (*MemoryStore, error) {
	scheme, bucket, subdir, err := SplitBucket(target)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		scheme:  scheme,
		bucket:  bucket,
		subdir:  subdir,
		objects: make(map[string][]byte),
	}, nil
}

// Put stores the object and returns its URI.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut != nil {
		return "", m.FailPut
	}
	key := joinKey(m.subdir, name)
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[key] = buf
	return BuildURI(m.scheme, m.bucket, key), nil
}

// Object returns the stored content for a key (relative to the target
// subdirectory) and whether it exists.
func (m *MemoryStore) Object(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[joinKey(m.subdir, name)]
	return data, ok
}

// Keys returns all stored object keys, sorted.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinKey(subdir, name string) string {
	if subdir == "" {
		return name
	}
	return subdir + "/" + name
}

// IOError wraps a failure talking to remote storage. Uploads are fatal to
// the whole run, so callers surface this directly.
type IOError struct {
	Op  string
	URI string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.URI, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
