// Package service implements response collection: the authoritative
// validation gate, provider record creation, persistence, and owner reads.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"formbridge/internal/airtable"
	"formbridge/internal/events"
	"formbridge/internal/form/logic"
	formModels "formbridge/internal/form/models"
	"formbridge/internal/platform/metrics"
	"formbridge/internal/response/models"
	dErrors "formbridge/pkg/domain-errors"
	"formbridge/pkg/platform/sentinel"
	"formbridge/pkg/requestcontext"
)

// ResponseStore persists responses.
type ResponseStore interface {
	Save(ctx context.Context, resp *models.Response) error
	FindByID(ctx context.Context, id string) (*models.Response, error)
	ListByForm(ctx context.Context, formID string) ([]models.Response, error)
}

// FormSource loads published forms.
type FormSource interface {
	Get(ctx context.Context, formID string) (*formModels.Form, error)
}

// TokenSource resolves a user's provider access token.
type TokenSource interface {
	AccessToken(ctx context.Context, userID string) (string, error)
}

// RecordCreator inserts rows into the provider table.
type RecordCreator interface {
	CreateRecord(ctx context.Context, token, baseID, tableID string, fields map[string]any) (*airtable.Record, error)
}

// EventPublisher emits record lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.RecordEvent)
}

// Service orchestrates submissions and owner reads.
type Service struct {
	responses ResponseStore
	forms     FormSource
	tokens    TokenSource
	provider  RecordCreator
	publisher EventPublisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

func New(responses ResponseStore, forms FormSource, tokens TokenSource,
	provider RecordCreator, publisher EventPublisher, m *metrics.Metrics,
	logger *slog.Logger) (*Service, error) {
	if responses == nil {
		return nil, errors.New("response store is required")
	}
	if forms == nil {
		return nil, errors.New("form source is required")
	}
	if tokens == nil {
		return nil, errors.New("token source is required")
	}
	if provider == nil {
		return nil, errors.New("record creator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		responses: responses,
		forms:     forms,
		tokens:    tokens,
		provider:  provider,
		publisher: publisher,
		metrics:   m,
		tracer:    otel.Tracer("formbridge/response"),
		logger:    logger,
	}, nil
}

// Submit runs the full submission path. Field errors are returned as data,
// not as an error: the handler forwards them to the client unchanged.
//
// The stored answers are the complete submitted snapshot, hidden questions
// included. Filtering happens only at the provider boundary, where blank
// answers are dropped from the created record.
func (s *Service) Submit(ctx context.Context, formID string, answers formModels.AnswerSet) (*models.Response, []logic.FieldError, error) {
	ctx, span := s.tracer.Start(ctx, "response.submit")
	defer span.End()

	form, err := s.forms.Get(ctx, formID)
	if err != nil {
		return nil, nil, err
	}

	if fieldErrs := logic.ValidateAnswers(form.Questions, answers); len(fieldErrs) > 0 {
		if s.metrics != nil {
			s.metrics.ValidationFailures.Inc()
		}
		return nil, fieldErrs, nil
	}

	token, err := s.tokens.AccessToken(ctx, form.OwnerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "no provider token for form owner",
			"form_id", form.ID, "error", err)
		return nil, nil, dErrors.New(dErrors.CodeUnavailable, "form is not accepting submissions")
	}

	record, err := s.provider.CreateRecord(ctx, token, form.AirtableBaseID, form.AirtableTableID,
		recordFields(form, answers))
	if err != nil {
		s.logger.ErrorContext(ctx, "provider record creation failed",
			"form_id", form.ID, "error", err)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "could not store the submission")
	}

	now := requestcontext.Now(ctx)
	resp := &models.Response{
		ID:               uuid.NewString(),
		FormID:           form.ID,
		AirtableRecordID: record.ID,
		Answers:          answers,
		RespondentAgent:  agentSummary(requestcontext.UserAgent(ctx)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.responses.Save(ctx, resp); err != nil {
		// The provider already has the record; surface the inconsistency
		// loudly but do not pretend the submission failed.
		s.logger.ErrorContext(ctx, "response persisted in provider but not locally",
			"form_id", form.ID, "record_id", record.ID, "error", err)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save response")
	}

	if s.metrics != nil {
		s.metrics.ResponsesSubmitted.Inc()
	}
	s.publish(ctx, events.RecordCreated, resp)

	return resp, nil, nil
}

// recordFields maps answered questions to provider cells keyed by field
// name. Blank answers are omitted so the provider applies its own column
// defaults; multiselect lists pass through as arrays.
func recordFields(form *formModels.Form, answers formModels.AnswerSet) map[string]any {
	fields := make(map[string]any)
	for _, q := range form.Questions {
		answer := answers.Get(q.QuestionKey)
		if answer.IsBlank() || q.AirtableFieldName == "" {
			continue
		}
		if list, ok := answer.List(); ok {
			fields[q.AirtableFieldName] = list
			continue
		}
		if scalar, ok := answer.Scalar(); ok {
			fields[q.AirtableFieldName] = scalar
		}
	}
	return fields
}

// agentSummary reduces a raw User-Agent header to "browser/os" for owner
// dashboards without retaining the full fingerprint.
func agentSummary(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OS()
	switch {
	case browser != "" && os != "":
		return browser + "/" + os
	case browser != "":
		return browser
	default:
		return os
	}
}

// ListByForm returns a form's responses to its owner, newest first.
func (s *Service) ListByForm(ctx context.Context, ownerID, formID string) ([]models.Response, error) {
	form, err := s.forms.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.OwnerID != ownerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "form belongs to another user")
	}

	responses, err := s.responses.ListByForm(ctx, formID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list responses")
	}
	return responses, nil
}

// Get returns one response to the owning form's owner.
func (s *Service) Get(ctx context.Context, ownerID, responseID string) (*models.Response, error) {
	resp, err := s.responses.FindByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "response not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load response")
	}

	form, err := s.forms.Get(ctx, resp.FormID)
	if err != nil {
		return nil, err
	}
	if form.OwnerID != ownerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "response belongs to another user's form")
	}
	return resp, nil
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
