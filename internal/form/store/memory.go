// Package store persists form definitions.
package store

import (
	"context"
	"sort"
	"sync"

	"formbridge/internal/form/models"
	"formbridge/pkg/platform/sentinel"
)

// InMemory keeps forms in a map, for tests and single-node development.
type InMemory struct {
	mu    sync.RWMutex
	forms map[string]models.Form
}

func NewInMemory() *InMemory {
	return &InMemory{forms: make(map[string]models.Form)}
}

// Save upserts a form by ID.
func (s *InMemory) Save(_ context.Context, form *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *form
	stored.Questions = append([]models.Question(nil), form.Questions...)
	s.forms[form.ID] = stored
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.forms[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := form
	out.Questions = append([]models.Question(nil), form.Questions...)
	return &out, nil
}

// ListByOwner returns the owner's active forms, newest first.
func (s *InMemory) ListByOwner(_ context.Context, ownerID string) ([]models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Form
	for _, form := range s.forms {
		if form.OwnerID == ownerID && form.Active {
			f := form
			f.Questions = append([]models.Question(nil), form.Questions...)
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
