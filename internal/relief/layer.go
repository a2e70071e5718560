package relief

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Layer is the persistence layer every repository goes through. Each key
// holds one JSON document and is always read and written whole.
//
// The layer keeps the last value written under each key. When the backend
// rejects a write, that value stays visible to readers in this process while
// durable storage keeps the previous one; the divergence lasts until restart.
// Two processes sharing a backend overwrite each other's collections
// (last writer wins).
type Layer struct {
	backend Backend
	logger  Logger

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewLayer creates a Layer over the given backend.
func NewLayer(backend Backend, logger Logger) *Layer {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Layer{
		backend: backend,
		logger:  logger,
		cache:   make(map[string][]byte),
	}
}

// Read decodes the value stored under key. It returns def when the key is
// missing, unreadable, or holds JSON that does not decode into T. Use it for
// display; writes that rebuild a collection go through Load.
func Read[T any](l *Layer, key string, def T) T {
	data, ok := l.Raw(key)
	if !ok {
		return def
	}
	return decode(l, key, data, def)
}

// Load is Read for read-modify-write callers. A missing or corrupt value
// still yields def, but a backend failure is returned as a *ReadError so the
// caller does not overwrite a collection it could not see.
func Load[T any](l *Layer, key string, def T) (T, error) {
	data, found, err := l.Fetch(key)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	return decode(l, key, data, def), nil
}

func decode[T any](l *Layer, key string, data []byte, def T) T {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		l.logger.Warn("ignoring corrupt collection", "key", key, "error", err)
		return def
	}
	return v
}

// Raw returns the JSON document stored under key. A backend failure is
// logged and reported as not found.
func (l *Layer) Raw(key string) ([]byte, bool) {
	data, found, err := l.Fetch(key)
	if err != nil {
		l.logger.Warn("reading collection failed, using default", "key", key, "error", err)
		return nil, false
	}
	return data, found
}

// Fetch returns the JSON document stored under key. found is false when
// nothing was ever written; a backend failure is a *ReadError.
func (l *Layer) Fetch(key string) ([]byte, bool, error) {
	l.mu.RLock()
	data, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return data, true, nil
	}

	data, found, err := l.backend.Get(key)
	if err != nil {
		return nil, false, &ReadError{Key: key, Err: err}
	}
	if !found {
		return nil, false, nil
	}

	l.mu.Lock()
	// A write may have raced us; it wins.
	if cached, ok := l.cache[key]; ok {
		data = cached
	} else {
		l.cache[key] = data
	}
	l.mu.Unlock()
	return data, true, nil
}

// Write serializes value and replaces the collection stored under key.
// A *PersistenceError means the new value is visible in memory but was not
// stored durably.
func (l *Layer) Write(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &PersistenceError{Key: key, Err: fmt.Errorf("encoding: %w", err)}
	}
	return l.WriteRaw(key, data)
}

// WriteRaw replaces the collection stored under key with an already encoded
// JSON document.
func (l *Layer) WriteRaw(key string, data []byte) error {
	if !json.Valid(data) {
		return &PersistenceError{Key: key, Err: fmt.Errorf("value is not valid JSON")}
	}

	l.mu.Lock()
	l.cache[key] = data
	l.mu.Unlock()

	if err := l.backend.Put(key, data); err != nil {
		l.logger.Warn("collection kept in memory only", "key", key, "error", err)
		return &PersistenceError{Key: key, Err: err}
	}
	return nil
}

// Close closes the backend.
func (l *Layer) Close() error {
	return l.backend.Close()
}
