package workspace

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/XinyueZ/tinyagent/core"
)

// DirStore is a filesystem-backed core.Workspace rooted at a directory.
// Workspace locations are slash-separated and resolved relative to the root;
// attempts to escape the root are rejected.
type DirStore struct {
	root string
}

// NewDirStore creates a workspace rooted at dir. The directory is created on
// first write, not here.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

// Root returns the root directory of the store.
func (s *DirStore) Root() string { return s.root }

func (s *DirStore) resolve(location string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(location, "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("workspace: location %q escapes store root", location)
	}
	if clean == "." {
		return s.root, nil
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Read returns the text stored at location.
func (s *DirStore) Read(location string) (string, error) {
	p, err := s.resolve(location)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("read %s: %w", location, core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", location, err)
	}
	return string(data), nil
}

// Write stores text at location, creating parent directories as needed.
func (s *DirStore) Write(location, text string) error {
	p, err := s.resolve(location)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", location, err)
	}
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", location, err)
	}
	return nil
}

// Append appends text to location, creating it when absent.
func (s *DirStore) Append(location, text string) error {
	p, err := s.resolve(location)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("append %s: %w", location, err)
	}
	f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append %s: %w", location, err)
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("append %s: %w", location, err)
	}
	return nil
}

// Exists reports whether a file exists at location.
func (s *DirStore) Exists(location string) bool {
	p, err := s.resolve(location)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// List returns the entry names directly under location.
func (s *DirStore) List(location string) ([]string, error) {
	p, err := s.resolve(location)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("list %s: %w", location, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", location, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
