// Package lazyjson provides a thread-safe, lazy-loading reader for JSON files.
package lazyjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Manager loads a JSON document on first access and keeps it in memory.
type Manager[T any] struct {
	filepath     string
	defaultValue func() *T

	mu     sync.RWMutex
	data   *T
	loaded bool
}

// New creates a Manager for the given file path. defaultValue supplies the
// document used when the file does not exist, and the base the file's
// contents are decoded onto; it may be nil.
func New[T any](filepath string, defaultValue func() *T) *Manager[T] {
	return &Manager[T]{
		filepath:     filepath,
		defaultValue: defaultValue,
	}
}

// Get returns the current data, loading it lazily if needed.
func (m *Manager[T]) Get() (*T, error) {
	m.mu.RLock()
	if m.loaded {
		defer m.mu.RUnlock()
		return m.data, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if m.loaded {
		return m.data, nil
	}
	return m.data, m.loadLocked()
}

// Reload discards the in-memory copy so the next Get reads the file again.
func (m *Manager[T]) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = false
	m.data = nil
}

func (m *Manager[T]) loadLocked() error {
	data := new(T)
	if m.defaultValue != nil {
		data = m.defaultValue()
	}

	raw, err := os.ReadFile(m.filepath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.data = data
			m.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", m.filepath, err)
	}

	if err := json.Unmarshal(raw, data); err != nil {
		return fmt.Errorf("failed to parse %s: %w", m.filepath, err)
	}
	m.data = data
	m.loaded = true
	return nil
}
