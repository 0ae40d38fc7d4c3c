// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/todoapi/internal/platform/dberr"
	"github.com/taibuivan/todoapi/internal/platform/sec"
)

// MemoryRepository implements [Repository] in process memory.
//
// It backs the "memory" store driver and the package tests. Records are
// copied on the way in and out so callers never share state with the map.
type MemoryRepository struct {
	mu      sync.RWMutex
	hasher  *sec.Hasher
	byID    map[string]*User
	byEmail map[string]string
}

// NewMemoryRepository creates an empty in-memory user store.
func NewMemoryRepository(hasher *sec.Hasher) *MemoryRepository {
	return &MemoryRepository{
		hasher:  hasher,
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (repository *MemoryRepository) Create(_ context.Context, user *User) error {
	if err := hashIfChanged(repository.hasher, user); err != nil {
		return err
	}

	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, taken := repository.byEmail[user.Email]; taken {
		return dberr.ErrConflict
	}
	if _, taken := repository.byID[user.ID]; taken {
		return dberr.ErrConflict
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	repository.byID[user.ID] = user.clone()
	repository.byEmail[user.Email] = user.ID
	return nil
}

func (repository *MemoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	user, found := repository.byID[id]
	if !found {
		return nil, dberr.ErrNotFound
	}
	return user.clone(), nil
}

func (repository *MemoryRepository) FindByEmail(context context.Context, email string) (*User, error) {
	repository.mu.RLock()
	id, found := repository.byEmail[email]
	repository.mu.RUnlock()

	if !found {
		return nil, dberr.ErrNotFound
	}
	return repository.FindByID(context, id)
}

func (repository *MemoryRepository) FindByIDAndToken(_ context.Context, id, access, token string) (*User, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	user, found := repository.byID[id]
	if !found || !user.HasToken(access, token) {
		return nil, dberr.ErrNotFound
	}
	return user.clone(), nil
}

func (repository *MemoryRepository) AppendToken(_ context.Context, userID string, token SessionToken) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, found := repository.byID[userID]
	if !found {
		return dberr.ErrNotFound
	}

	user.Tokens = append(user.Tokens, token)
	user.UpdatedAt = time.Now()
	return nil
}

func (repository *MemoryRepository) RemoveToken(_ context.Context, userID, token string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, found := repository.byID[userID]
	if !found {
		return nil
	}

	kept := user.Tokens[:0]
	for _, entry := range user.Tokens {
		if entry.Token != token {
			kept = append(kept, entry)
		}
	}
	user.Tokens = kept
	user.UpdatedAt = time.Now()
	return nil
}
