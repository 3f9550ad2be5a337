package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"formbridge/internal/form/models"
	"formbridge/pkg/platform/sentinel"
)

// Postgres persists forms in PostgreSQL. The ordered question list is stored
// as a JSONB document since it is immutable after creation and always read
// whole.
//
// Schema:
//
//	CREATE TABLE forms (
//	    id                  UUID PRIMARY KEY,
//	    title               TEXT NOT NULL,
//	    owner_id            UUID NOT NULL,
//	    airtable_base_id    TEXT NOT NULL,
//	    airtable_table_id   TEXT NOT NULL,
//	    airtable_table_name TEXT NOT NULL,
//	    questions           JSONB NOT NULL,
//	    webhook_id          TEXT NOT NULL DEFAULT '',
//	    is_active           BOOLEAN NOT NULL DEFAULT TRUE,
//	    created_at          TIMESTAMPTZ NOT NULL,
//	    updated_at          TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX forms_owner_idx ON forms (owner_id) WHERE is_active;
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, form *models.Form) error {
	questions, err := json.Marshal(form.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	const q = `
		INSERT INTO forms (id, title, owner_id, airtable_base_id, airtable_table_id,
		                   airtable_table_name, questions, webhook_id, is_active,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			questions = EXCLUDED.questions,
			webhook_id = EXCLUDED.webhook_id,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`
	_, err = s.db.ExecContext(ctx, q,
		form.ID, form.Title, form.OwnerID, form.AirtableBaseID, form.AirtableTableID,
		form.AirtableTableName, questions, form.WebhookID, form.Active,
		form.CreatedAt, form.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save form: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Form, error) {
	const q = `
		SELECT id, title, owner_id, airtable_base_id, airtable_table_id,
		       airtable_table_name, questions, webhook_id, is_active,
		       created_at, updated_at
		FROM forms WHERE id = $1`
	form, err := scanForm(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return form, nil
}

func (s *Postgres) ListByOwner(ctx context.Context, ownerID string) ([]models.Form, error) {
	const q = `
		SELECT id, title, owner_id, airtable_base_id, airtable_table_id,
		       airtable_table_name, questions, webhook_id, is_active,
		       created_at, updated_at
		FROM forms
		WHERE owner_id = $1 AND is_active
		ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	var out []models.Form
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *form)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner) (*models.Form, error) {
	var f models.Form
	var questions []byte
	err := row.Scan(&f.ID, &f.Title, &f.OwnerID, &f.AirtableBaseID, &f.AirtableTableID,
		&f.AirtableTableName, &questions, &f.WebhookID, &f.Active,
		&f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan form: %w", err)
	}
	if err := json.Unmarshal(questions, &f.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return &f, nil
}
