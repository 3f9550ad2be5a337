// Package store persists form responses.
package store

import (
	"context"
	"sort"
	"sync"

	"formbridge/internal/response/models"
	"formbridge/pkg/platform/sentinel"
)

// InMemory keeps responses in a map, for tests and single-node development.
type InMemory struct {
	mu        sync.RWMutex
	responses map[string]models.Response
	byRecord  map[string]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		responses: make(map[string]models.Response),
		byRecord:  make(map[string]string),
	}
}

// Save upserts a response by ID.
func (s *InMemory) Save(_ context.Context, resp *models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[resp.ID] = copyResponse(resp)
	if resp.AirtableRecordID != "" {
		s.byRecord[resp.AirtableRecordID] = resp.ID
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp, ok := s.responses[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := copyResponse(&resp)
	return &out, nil
}

// FindByRecordID looks a response up by its provider record ID. Webhook
// sync resolves change notifications through this index.
func (s *InMemory) FindByRecordID(_ context.Context, recordID string) (*models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byRecord[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	resp := s.responses[id]
	out := copyResponse(&resp)
	return &out, nil
}

// ListByForm returns a form's responses, newest first.
func (s *InMemory) ListByForm(_ context.Context, formID string) ([]models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Response
	for _, resp := range s.responses {
		if resp.FormID == formID {
			out = append(out, copyResponse(&resp))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func copyResponse(resp *models.Response) models.Response {
	out := *resp
	out.Answers = resp.Answers.Clone()
	return out
}
