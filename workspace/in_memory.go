package workspace

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/XinyueZ/tinyagent/core"
)

// InMemoryStore is a process-local core.Workspace keyed by cleaned location
// paths. Suitable for tests and demos; swap for DirStore when results should
// survive the process.
//
// Concurrency: protected by RWMutex.
type InMemoryStore struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewInMemoryStore creates an empty in-memory workspace.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{files: make(map[string]string)}
}

func normalize(location string) string {
	return strings.TrimPrefix(path.Clean("/"+location), "/")
}

// Read returns the text stored at location.
func (s *InMemoryStore) Read(location string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.files[normalize(location)]
	if !ok {
		return "", fmt.Errorf("read %s: %w", location, core.ErrNotFound)
	}
	return text, nil
}

// Write stores text at location, replacing previous content.
func (s *InMemoryStore) Write(location, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[normalize(location)] = text
	return nil
}

// Append appends text to location, creating it when absent.
func (s *InMemoryStore) Append(location, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalize(location)
	s.files[key] += text
	return nil
}

// Exists reports whether text is stored at location.
func (s *InMemoryStore) Exists(location string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[normalize(location)]
	return ok
}

// List returns the entry names directly under location.
func (s *InMemoryStore) List(location string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := normalize(location)
	if prefix != "" {
		prefix += "/"
	}
	seen := map[string]bool{}
	for key := range s.files {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		seen[rest] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Len returns the number of stored locations.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
