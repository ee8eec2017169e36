package storage

import (
	"sort"
	"sync"

	"vehicle-scraper/models"
)

// MemoryStore is an in-memory VehicleStore used by tests and dry runs. It
// mirrors the replace-sync semantics of the Postgres store.
type MemoryStore struct {
	mu         sync.RWMutex
	byCategory map[string][]*models.Vehicle
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byCategory: make(map[string][]*models.Vehicle)}
}

// SyncCategory replaces the category's records with the given set.
func (ms *MemoryStore) SyncCategory(category string, vehicles []*models.Vehicle) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	fresh := make([]*models.Vehicle, len(vehicles))
	copy(fresh, vehicles)
	ms.byCategory[category] = fresh
	return nil
}

// FetchAll returns every stored vehicle ordered by id.
func (ms *MemoryStore) FetchAll() ([]*models.Vehicle, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var all []*models.Vehicle
	for _, vs := range ms.byCategory {
		all = append(all, vs...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

// FetchCategory returns the stored vehicles of one category.
func (ms *MemoryStore) FetchCategory(category string) ([]*models.Vehicle, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	vs := ms.byCategory[category]
	out := make([]*models.Vehicle, len(vs))
	copy(out, vs)
	return out, nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
