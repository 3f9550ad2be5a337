// Package service implements form authoring: publish-time validation,
// listing, soft deletion, and provider schema discovery for the builder UI.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"formbridge/internal/airtable"
	"formbridge/internal/form/models"
	"formbridge/internal/platform/metrics"
	dErrors "formbridge/pkg/domain-errors"
	"formbridge/pkg/platform/sentinel"
	"formbridge/pkg/requestcontext"
)

// FormStore persists form definitions.
type FormStore interface {
	Save(ctx context.Context, form *models.Form) error
	FindByID(ctx context.Context, id string) (*models.Form, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Form, error)
}

// TokenSource resolves a user's provider access token.
type TokenSource interface {
	AccessToken(ctx context.Context, userID string) (string, error)
}

// ProviderClient covers the provider operations form authoring needs.
type ProviderClient interface {
	ListBases(ctx context.Context, token string) ([]airtable.Base, error)
	ListTables(ctx context.Context, token, baseID string) ([]airtable.Table, error)
	TableFields(ctx context.Context, token, baseID, tableID string) ([]airtable.DiscoveredField, error)
	CreateWebhook(ctx context.Context, token, baseID, tableID, notificationURL string) (*airtable.Webhook, error)
	DeleteWebhook(ctx context.Context, token, baseID, webhookID string) error
}

// Service orchestrates form authoring.
type Service struct {
	forms       FormStore
	tokens      TokenSource
	provider    ProviderClient
	schemaCache *airtable.SchemaCache
	metrics     *metrics.Metrics
	logger      *slog.Logger
	webhookURL  string
}

func New(forms FormStore, tokens TokenSource, provider ProviderClient,
	schemaCache *airtable.SchemaCache, m *metrics.Metrics, webhookURL string,
	logger *slog.Logger) (*Service, error) {
	if forms == nil {
		return nil, errors.New("form store is required")
	}
	if tokens == nil {
		return nil, errors.New("token source is required")
	}
	if provider == nil {
		return nil, errors.New("provider client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		forms:       forms,
		tokens:      tokens,
		provider:    provider,
		schemaCache: schemaCache,
		metrics:     m,
		logger:      logger,
		webhookURL:  webhookURL,
	}, nil
}

// CreateFormInput is the publish request.
type CreateFormInput struct {
	Title             string            `json:"title"`
	AirtableBaseID    string            `json:"airtableBaseId"`
	AirtableTableID   string            `json:"airtableTableId"`
	AirtableTableName string            `json:"airtableTableName"`
	Questions         []models.Question `json:"questions"`
}

// Create validates and publishes a form. Questions are frozen at this point:
// the forward-reference invariant on conditional rules is enforced here and
// never re-checked by the evaluation engine.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateFormInput) (*models.Form, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	form := &models.Form{
		ID:                uuid.NewString(),
		Title:             strings.TrimSpace(input.Title),
		OwnerID:           ownerID,
		AirtableBaseID:    input.AirtableBaseID,
		AirtableTableID:   input.AirtableTableID,
		AirtableTableName: input.AirtableTableName,
		Questions:         input.Questions,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.forms.Save(ctx, form); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save form")
	}
	if s.metrics != nil {
		s.metrics.FormsCreated.Inc()
	}

	// Change notifications are an enhancement, not a prerequisite: the form
	// is live even if the provider refuses the subscription.
	s.registerWebhook(ctx, form)

	return form, nil
}

func (s *Service) registerWebhook(ctx context.Context, form *models.Form) {
	if s.webhookURL == "" {
		return
	}
	token, err := s.tokens.AccessToken(ctx, form.OwnerID)
	if err != nil {
		s.logger.WarnContext(ctx, "webhook registration skipped: no provider token",
			"form_id", form.ID, "error", err)
		return
	}
	webhook, err := s.provider.CreateWebhook(ctx, token, form.AirtableBaseID, form.AirtableTableID, s.webhookURL)
	if err != nil {
		s.logger.WarnContext(ctx, "webhook registration failed",
			"form_id", form.ID, "error", err)
		return
	}
	form.WebhookID = webhook.ID
	if err := s.forms.Save(ctx, form); err != nil {
		s.logger.WarnContext(ctx, "failed to persist webhook ID",
			"form_id", form.ID, "error", err)
	}
}

func validateInput(input CreateFormInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "form title is required")
	}
	if input.AirtableBaseID == "" || input.AirtableTableID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "form must be bound to a base and table")
	}
	if len(input.Questions) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "form must have at least one question")
	}

	var badTypes []string
	for _, q := range input.Questions {
		if !q.Type.Valid() {
			badTypes = append(badTypes, q.Label)
		}
	}
	if len(badTypes) > 0 {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"unsupported field types for questions: %s", strings.Join(badTypes, ", "))
	}

	seen := make(map[string]bool, len(input.Questions))
	for _, q := range input.Questions {
		if q.QuestionKey == "" {
			return dErrors.Newf(dErrors.CodeInvalidInput, "question %q has no key", q.Label)
		}
		if seen[q.QuestionKey] {
			return dErrors.Newf(dErrors.CodeInvalidInput, "duplicate question key: %s", q.QuestionKey)
		}
		seen[q.QuestionKey] = true
	}

	return validateRuleReferences(input.Questions)
}

// validateRuleReferences enforces that every condition references a question
// strictly earlier in the ordered list. Self and forward references would
// make visibility depend on evaluation order.
func validateRuleReferences(questions []models.Question) error {
	earlier := make(map[string]bool, len(questions))
	for _, q := range questions {
		if q.ConditionalRules != nil {
			for _, cond := range q.ConditionalRules.Conditions {
				if !earlier[cond.QuestionKey] {
					return dErrors.Newf(dErrors.CodeInvalidInput,
						"question %q has a condition on %q, which is not an earlier question",
						q.QuestionKey, cond.QuestionKey)
				}
				switch cond.Operator {
				case models.OpEquals, models.OpNotEquals, models.OpContains:
				default:
					return dErrors.Newf(dErrors.CodeInvalidInput,
						"question %q has an unknown operator %q", q.QuestionKey, cond.Operator)
				}
			}
		}
		earlier[q.QuestionKey] = true
	}
	return nil
}

// List returns the owner's active forms, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]models.Form, error) {
	forms, err := s.forms.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list forms")
	}
	return forms, nil
}

// Get loads a form for rendering. It is public: respondents fetch the
// definition without authenticating. Soft-deleted forms are gone.
func (s *Service) Get(ctx context.Context, formID string) (*models.Form, error) {
	form, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "form not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load form")
	}
	if !form.Active {
		return nil, dErrors.New(dErrors.CodeNotFound, "form not found")
	}
	return form, nil
}

// Delete soft-deletes an owner's form and deregisters its webhook
// best-effort.
func (s *Service) Delete(ctx context.Context, ownerID, formID string) error {
	form, err := s.Get(ctx, formID)
	if err != nil {
		return err
	}
	if form.OwnerID != ownerID {
		return dErrors.New(dErrors.CodeForbidden, "form belongs to another user")
	}

	form.Active = false
	form.UpdatedAt = requestcontext.Now(ctx)
	if err := s.forms.Save(ctx, form); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete form")
	}

	if form.WebhookID != "" {
		token, err := s.tokens.AccessToken(ctx, ownerID)
		if err == nil {
			err = s.provider.DeleteWebhook(ctx, token, form.AirtableBaseID, form.WebhookID)
		}
		if err != nil {
			s.logger.WarnContext(ctx, "webhook deregistration failed",
				"form_id", form.ID, "error", err)
		}
	}
	return nil
}

// Bases lists the provider bases reachable with the owner's token.
func (s *Service) Bases(ctx context.Context, userID string) ([]airtable.Base, error) {
	token, err := s.tokens.AccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	bases, err := s.provider.ListBases(ctx, token)
	if err != nil {
		return nil, wrapProviderErr(err, "failed to list bases")
	}
	return bases, nil
}

// Tables lists a base's tables.
func (s *Service) Tables(ctx context.Context, userID, baseID string) ([]airtable.Table, error) {
	token, err := s.tokens.AccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	tables, err := s.provider.ListTables(ctx, token, baseID)
	if err != nil {
		return nil, wrapProviderErr(err, "failed to list tables")
	}
	return tables, nil
}

// Fields discovers the bindable columns of a table, serving repeat requests
// from the schema cache.
func (s *Service) Fields(ctx context.Context, userID, baseID, tableID string) ([]airtable.DiscoveredField, error) {
	if fields, ok := s.schemaCache.Get(ctx, baseID, tableID); ok {
		return fields, nil
	}

	token, err := s.tokens.AccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields, err := s.provider.TableFields(ctx, token, baseID, tableID)
	if err != nil {
		return nil, wrapProviderErr(err, "failed to discover fields")
	}

	s.schemaCache.Put(ctx, baseID, tableID, fields)
	return fields, nil
}

func wrapProviderErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("%s: provider request failed", msg))
}
