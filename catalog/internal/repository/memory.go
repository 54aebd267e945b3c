package repository

import (
	"context"
	"sync"

	"github.com/Astemirdum/book-catalog/catalog/internal/model"
)

// MemoryRepository keeps the last saved snapshot in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	state model.Catalog
	saves int
}

func NewMemoryRepository(seed model.Catalog) *MemoryRepository {
	return &MemoryRepository{state: cloneCatalog(seed)}
}

func (r *MemoryRepository) Load(_ context.Context) (model.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneCatalog(r.state), nil
}

func (r *MemoryRepository) Save(_ context.Context, c model.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = cloneCatalog(c)
	r.saves++
	return nil
}

// Saves reports how many snapshots have been written.
func (r *MemoryRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

func (r *MemoryRepository) Close() error {
	return nil
}
