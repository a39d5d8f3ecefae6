package store

import (
	"context"
	"sort"
	"sync"

	"github.com/meenmo/curvelib/errors"
)

// MemoryStore keeps snapshots in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snaps: make(map[string]*Snapshot),
	}
}

func (ms *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New(errors.TypeStore, "nil snapshot")
	}
	if snap.ID == "" {
		return errors.New(errors.TypeStore, "snapshot id must not be empty")
	}
	ms.mu.Lock()
	ms.snaps[snap.ID] = snap.clone()
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) Load(_ context.Context, id string) (*Snapshot, error) {
	ms.mu.RLock()
	snap, ok := ms.snaps[id]
	ms.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("snapshot", id)
	}
	return snap.clone(), nil
}

func (ms *MemoryStore) List(_ context.Context) ([]string, error) {
	ms.mu.RLock()
	ids := make([]string, 0, len(ms.snaps))
	for id := range ms.snaps {
		ids = append(ids, id)
	}
	ms.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

func (ms *MemoryStore) Delete(_ context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.snaps[id]; !ok {
		return errors.NotFound("snapshot", id)
	}
	delete(ms.snaps, id)
	return nil
}

func (ms *MemoryStore) Close() error {
	return nil
}
