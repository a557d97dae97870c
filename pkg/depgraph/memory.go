package depgraph

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. Each product keeps its dependencies in
// insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	repos map[string]Repository
	deps  map[string][]Dependency
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		repos: make(map[string]Repository),
		deps:  make(map[string][]Dependency),
	}
}

// FindRepository implements Store.
func (s *MemoryStore) FindRepository(_ context.Context, productID string) (*Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repo, ok := s.repos[productID]
	if !ok {
		return nil, nil
	}
	return &repo, nil
}

// FindVersionless implements Store.
func (s *MemoryStore) FindVersionless(_ context.Context, productID string) ([]Dependency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []Dependency
	for _, d := range s.deps[productID] {
		if d.Version == "" {
			res = append(res, d)
		}
	}
	return res, nil
}

// FindDependencies implements Store.
func (s *MemoryStore) FindDependencies(_ context.Context, productID string) ([]Dependency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Dependency(nil), s.deps[productID]...), nil
}

// ApplyVersionUpdates implements Store. Updates are applied under a single
// lock, so readers see either none or all of them.
func (s *MemoryStore) ApplyVersionUpdates(_ context.Context, productID string, updates []VersionUpdate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deps := s.deps[productID]
	index := make(map[string]int, len(deps))
	for i, d := range deps {
		index[d.PURL] = i
	}

	count := 0
	for _, u := range updates {
		i, ok := index[u.PURL]
		if !ok {
			continue
		}
		if _, taken := index[u.NewPURL]; taken {
			continue
		}
		delete(index, u.PURL)
		index[u.NewPURL] = i
		deps[i].Version = u.Version
		deps[i].PURL = u.NewPURL
		deps[i].VersionSource = VersionSourceLockfile
		deps[i].HashGapReason = ""
		count++
	}
	return count, nil
}

// SetRepository implements Store.
func (s *MemoryStore) SetRepository(_ context.Context, productID string, repo Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.repos[productID] = repo
	return nil
}

// AddDependencies implements Store.
func (s *MemoryStore) AddDependencies(_ context.Context, deps []Dependency) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range deps {
		existing := s.deps[d.ProductID]
		replaced := false
		for i := range existing {
			if existing[i].PURL == d.PURL {
				existing[i] = d
				replaced = true
				break
			}
		}
		if !replaced {
			s.deps[d.ProductID] = append(existing, d)
		}
	}
	return nil
}
