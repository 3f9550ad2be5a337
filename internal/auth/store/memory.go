// Package store persists users. In-memory and postgres implementations
// share the sentinel-error contract so services stay storage-agnostic.
package store

import (
	"context"
	"sync"

	"formbridge/internal/auth/models"
	"formbridge/pkg/platform/sentinel"
)

// InMemory keeps users in a map. It intentionally favors clarity over
// performance; production deployments use the postgres store.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[string]models.User
	byProv map[string]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[string]models.User),
		byProv: make(map[string]string),
	}
}

// Save upserts a user by ID.
func (s *InMemory) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[user.ID] = *user
	s.byProv[user.AirtableUserID] = user.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.byID[id]; ok {
		u := user
		return &u, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByAirtableUserID(_ context.Context, providerID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byProv[providerID]; ok {
		u := s.byID[id]
		return &u, nil
	}
	return nil, sentinel.ErrNotFound
}
