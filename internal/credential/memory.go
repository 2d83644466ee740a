package credential

import (
	"context"
	"sync"

	domainauth "github.com/target/storefront-edge/internal/domain/auth"
	"github.com/target/storefront-edge/internal/ports"
)

// MemoryBackend is an in-process credential backend for single-instance
// deployments and tests. Unlike the cooperative single-threaded client this
// design descends from, request handlers run in parallel goroutines, so
// access is mutex-guarded.
type MemoryBackend struct {
	mu   sync.RWMutex
	cred domainauth.Credential
	held bool
}

var _ ports.CredentialBackend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Save(_ context.Context, cred domainauth.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = cred
	m.held = true
	return nil
}

func (m *MemoryBackend) Get(_ context.Context) (domainauth.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.held {
		return domainauth.Credential{}, ErrNotFound
	}
	return m.cred, nil
}

func (m *MemoryBackend) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = domainauth.Credential{}
	m.held = false
	return nil
}
