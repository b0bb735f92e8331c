// pkg/store/store.go - whole-file JSON key-value sidecar stores

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store is a string-keyed map persisted as one pretty-printed JSON object.
// It is loaded at the start of a run and rewritten atomically at the end;
// nothing touches the file in between.
type Store[V any] struct {
	path string
	data map[string]V
}

// Open loads the store at path. A missing file yields an empty store.
func Open[V any](path string) (*Store[V], error) {
	s := &Store[V]{path: path, data: make(map[string]V)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", path, err)
	}
	return s, nil
}

// Get returns the value for key and whether the key exists. A present key may
// still carry a null value (e.g. an artist known to have no genre).
func (s *Store[V]) Get(key string) (V, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Has reports whether key exists.
func (s *Store[V]) Has(key string) bool {
	_, ok := s.data[key]
	return ok
}

// Set inserts or overwrites key.
func (s *Store[V]) Set(key string, value V) {
	s.data[key] = value
}

// Delete removes key if present.
func (s *Store[V]) Delete(key string) {
	delete(s.data, key)
}

// Len returns the number of entries.
func (s *Store[V]) Len() int { return len(s.data) }

// Keys returns all keys in sorted order.
func (s *Store[V]) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flush rewrites the whole file: marshal, write to a temp file in the same
// directory, rename into place. Readers never observe a partial store.
func (s *Store[V]) Flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store %s: %w", s.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write store %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
