package secret

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Manager routes secret references to registered sources by URI scheme.
type Manager struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewManager creates a secret manager with no sources registered.
func NewManager() *Manager {
	return &Manager{sources: make(map[string]Source)}
}

// Register registers a source for a scheme (e.g. "env", "vault").
func (m *Manager) Register(scheme string, src Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[scheme] = src
}

// Resolve returns the secret value for a reference. A reference without
// a scheme is returned as-is (literal secret support).
func (m *Manager) Resolve(ctx context.Context, ref string) (string, error) {
	scheme, path, ok := strings.Cut(ref, "://")
	if !ok {
		return ref, nil
	}

	m.mu.RLock()
	src, registered := m.sources[scheme]
	m.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("no secret source registered for scheme %q", scheme)
	}
	return src.Get(ctx, path)
}

// Close closes all registered sources.
func (m *Manager) Close() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []string
	for scheme, src := range m.sources {
		if err := src.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", scheme, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close secret sources: %s", strings.Join(errs, "; "))
	}
	return nil
}
