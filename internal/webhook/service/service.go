// Package service applies provider change notifications to stored
// responses, keeping the local copy in sync with edits made directly in the
// provider UI.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"formbridge/internal/events"
	formModels "formbridge/internal/form/models"
	"formbridge/internal/platform/metrics"
	"formbridge/internal/response/models"
	"formbridge/pkg/platform/sentinel"
	"formbridge/pkg/requestcontext"
)

// maxConcurrentRecords bounds how many record changes from one notification
// are applied in parallel.
const maxConcurrentRecords = 8

// Notification is the provider change payload. Unknown fields are ignored.
type Notification struct {
	ChangedTablesByID map[string]TableChanges `json:"changedTablesById"`
}

// TableChanges carries per-table record changes.
type TableChanges struct {
	ChangedRecordsByID map[string]RecordChange `json:"changedRecordsById"`
	DestroyedRecordIDs []string                `json:"destroyedRecordIds"`
}

// RecordChange is one record's change entry. The provider sends changed
// cells under current and untouched cells under unchanged.
type RecordChange struct {
	Current   *RecordData `json:"current"`
	Unchanged *RecordData `json:"unchanged"`
}

// RecordData holds cell values keyed by provider field ID.
type RecordData struct {
	CellValuesByFieldID map[string]any `json:"cellValuesByFieldId"`
}

// ResponseStore is the subset of the response store webhook sync needs.
type ResponseStore interface {
	Save(ctx context.Context, resp *models.Response) error
	FindByRecordID(ctx context.Context, recordID string) (*models.Response, error)
}

// FormLoader loads forms regardless of their active flag: responses of
// soft-deleted forms still sync.
type FormLoader interface {
	FindByID(ctx context.Context, id string) (*formModels.Form, error)
}

// EventPublisher emits record lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.RecordEvent)
}

// Service applies change notifications.
type Service struct {
	responses ResponseStore
	forms     FormLoader
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(responses ResponseStore, forms FormLoader, publisher EventPublisher,
	m *metrics.Metrics, logger *slog.Logger) (*Service, error) {
	if responses == nil {
		return nil, errors.New("response store is required")
	}
	if forms == nil {
		return nil, errors.New("form loader is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		responses: responses,
		forms:     forms,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}, nil
}

// Process applies one notification and returns how many record changes were
// applied. Malformed or unmatched entries are counted and skipped, never
// escalated: the provider retries failed deliveries, and a permanent 500
// would wedge the whole subscription.
func (s *Service) Process(ctx context.Context, n Notification) int {
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRecords)

	for _, table := range n.ChangedTablesByID {
		for recordID, change := range table.ChangedRecordsByID {
			g.Go(func() error {
				if s.applyChange(gctx, recordID, change) {
					processed.Add(1)
				}
				return nil
			})
		}
		for _, recordID := range table.DestroyedRecordIDs {
			g.Go(func() error {
				if s.applyDestroy(gctx, recordID) {
					processed.Add(1)
				}
				return nil
			})
		}
	}

	// Workers never return errors; Wait only fences completion.
	_ = g.Wait()
	return int(processed.Load())
}

func (s *Service) applyChange(ctx context.Context, recordID string, change RecordChange) bool {
	resp, err := s.responses.FindByRecordID(ctx, recordID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "webhook record lookup failed", "record_id", recordID, "error", err)
		}
		s.observe("skipped")
		return false
	}

	form, err := s.forms.FindByID(ctx, resp.FormID)
	if err != nil {
		s.logger.WarnContext(ctx, "webhook form lookup failed",
			"record_id", recordID, "form_id", resp.FormID, "error", err)
		s.observe("skipped")
		return false
	}

	cells := mergedCells(change)
	if len(cells) == 0 {
		s.observe("malformed")
		return false
	}

	if resp.Answers == nil {
		resp.Answers = formModels.AnswerSet{}
	}
	changed := false
	for fieldID, value := range cells {
		question, ok := questionByFieldID(form, fieldID)
		if !ok {
			continue
		}
		resp.Answers.Set(question.QuestionKey, formModels.AnswerFromValue(normalizeCellValue(value)))
		changed = true
	}
	if !changed {
		s.observe("skipped")
		return false
	}

	now := requestcontext.Now(ctx)
	resp.LastSyncedAt = now
	resp.UpdatedAt = now
	if err := s.responses.Save(ctx, resp); err != nil {
		s.logger.ErrorContext(ctx, "failed to sync response", "record_id", recordID, "error", err)
		s.observe("failed")
		return false
	}

	s.observe("updated")
	s.publish(ctx, events.RecordUpdated, resp)
	return true
}

func (s *Service) applyDestroy(ctx context.Context, recordID string) bool {
	resp, err := s.responses.FindByRecordID(ctx, recordID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "webhook record lookup failed", "record_id", recordID, "error", err)
		}
		s.observe("skipped")
		return false
	}

	now := requestcontext.Now(ctx)
	resp.DeletedInAirtable = true
	resp.LastSyncedAt = now
	resp.UpdatedAt = now
	if err := s.responses.Save(ctx, resp); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark response deleted", "record_id", recordID, "error", err)
		s.observe("failed")
		return false
	}

	s.observe("deleted")
	s.publish(ctx, events.RecordDeleted, resp)
	return true
}

// mergedCells flattens a change entry, with changed cells winning over
// unchanged ones.
func mergedCells(change RecordChange) map[string]any {
	out := make(map[string]any)
	if change.Unchanged != nil {
		for id, v := range change.Unchanged.CellValuesByFieldID {
			out[id] = v
		}
	}
	if change.Current != nil {
		for id, v := range change.Current.CellValuesByFieldID {
			out[id] = v
		}
	}
	return out
}

func questionByFieldID(form *formModels.Form, fieldID string) (formModels.Question, bool) {
	for _, q := range form.Questions {
		if q.AirtableFieldID == fieldID {
			return q, true
		}
	}
	return formModels.Question{}, false
}

// normalizeCellValue unwraps the provider's object-shaped select cells
// ({"name": ...} and arrays of them) down to plain strings.
func normalizeCellValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
		return nil
	case []any:
		out := make([]any, 0, len(v))
		for _, el := range v {
			if m, ok := el.(map[string]any); ok {
				if name, ok := m["name"].(string); ok {
					out = append(out, name)
				}
				continue
			}
			out = append(out, el)
		}
		return out
	default:
		return value
	}
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.WebhookEvents.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) publish(ctx context.Context, eventType string, resp *models.Response) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, events.RecordEvent{
		Type:       eventType,
		FormID:     resp.FormID,
		ResponseID: resp.ID,
		RecordID:   resp.AirtableRecordID,
		OccurredAt: requestcontext.Now(ctx),
	})
}
