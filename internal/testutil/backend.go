package testutil

import (
	"errors"
	"sync"

	"relief-go/internal/backend"
	"relief-go/internal/relief"
)

// ErrInjected is returned by FailingBackend while failures are switched on.
var ErrInjected = errors.New("injected backend failure")

// FailingBackend is an in-memory backend whose reads and writes can be made
// to fail, to exercise the degraded paths of the Layer.
type FailingBackend struct {
	*backend.MemoryBackend

	mu       sync.Mutex
	failPuts bool
	failGets bool
	putCalls int
}

func NewFailingBackend() *FailingBackend {
	return &FailingBackend{MemoryBackend: backend.NewMemoryBackend()}
}

// FailPuts makes every subsequent Put fail (or succeed again).
func (b *FailingBackend) FailPuts(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failPuts = fail
}

// FailGets makes every subsequent Get fail (or succeed again).
func (b *FailingBackend) FailGets(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failGets = fail
}

// PutCalls returns how many Puts were attempted.
func (b *FailingBackend) PutCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.putCalls
}

func (b *FailingBackend) Get(key string) ([]byte, bool, error) {
	b.mu.Lock()
	fail := b.failGets
	b.mu.Unlock()
	if fail {
		return nil, false, ErrInjected
	}
	return b.MemoryBackend.Get(key)
}

func (b *FailingBackend) Put(key string, data []byte) error {
	b.mu.Lock()
	b.putCalls++
	fail := b.failPuts
	b.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return b.MemoryBackend.Put(key, data)
}

var _ relief.Backend = (*FailingBackend)(nil)
