// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todos

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/taibuivan/todoapi/internal/platform/dberr"
)

// MemoryRepository implements [Repository] in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Todo
	order []string
}

// NewMemoryRepository creates an empty in-memory todo store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*Todo)}
}

func (repository *MemoryRepository) Create(_ context.Context, todo *Todo) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, exists := repository.items[todo.ID]; exists {
		return dberr.ErrConflict
	}
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = time.Now()
	}

	copied := *todo
	repository.items[todo.ID] = &copied
	repository.order = append(repository.order, todo.ID)
	return nil
}

func (repository *MemoryRepository) ListByCreator(_ context.Context, creator string) ([]*Todo, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	result := make([]*Todo, 0)
	for _, id := range repository.order {
		if todo := repository.items[id]; todo.Creator == creator {
			copied := *todo
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (repository *MemoryRepository) FindOwned(_ context.Context, id, creator string) (*Todo, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	todo, found := repository.items[id]
	if !found || todo.Creator != creator {
		return nil, dberr.ErrNotFound
	}
	copied := *todo
	return &copied, nil
}

func (repository *MemoryRepository) UpdateOwned(_ context.Context, id, creator string, patch Patch) (*Todo, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	todo, found := repository.items[id]
	if !found || todo.Creator != creator {
		return nil, dberr.ErrNotFound
	}

	patch.apply(todo)
	copied := *todo
	return &copied, nil
}

func (repository *MemoryRepository) DeleteOwned(_ context.Context, id, creator string) (*Todo, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	todo, found := repository.items[id]
	if !found || todo.Creator != creator {
		return nil, dberr.ErrNotFound
	}

	delete(repository.items, id)
	repository.order = slices.DeleteFunc(repository.order, func(candidate string) bool { return candidate == id })
	return todo, nil
}
