package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"formbridge/internal/response/models"
	"formbridge/pkg/platform/sentinel"
)

// Postgres persists responses in PostgreSQL. Answers are a JSONB document:
// the submitted snapshot is written and overwritten whole, never queried by
// key server-side.
//
// Schema:
//
//	CREATE TABLE responses (
//	    id                  UUID PRIMARY KEY,
//	    form_id             UUID NOT NULL,
//	    airtable_record_id  TEXT NOT NULL DEFAULT '',
//	    answers             JSONB NOT NULL,
//	    respondent_agent    TEXT NOT NULL DEFAULT '',
//	    deleted_in_airtable BOOLEAN NOT NULL DEFAULT FALSE,
//	    last_synced_at      TIMESTAMPTZ,
//	    created_at          TIMESTAMPTZ NOT NULL,
//	    updated_at          TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX responses_form_idx ON responses (form_id, created_at DESC);
//	CREATE INDEX responses_record_idx ON responses (airtable_record_id);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, resp *models.Response) error {
	answers, err := json.Marshal(resp.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	const q = `
		INSERT INTO responses (id, form_id, airtable_record_id, answers, respondent_agent,
		                       deleted_in_airtable, last_synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			answers = EXCLUDED.answers,
			deleted_in_airtable = EXCLUDED.deleted_in_airtable,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = EXCLUDED.updated_at`
	_, err = s.db.ExecContext(ctx, q,
		resp.ID, resp.FormID, resp.AirtableRecordID, answers, resp.RespondentAgent,
		resp.DeletedInAirtable, nullableTime(resp.LastSyncedAt), resp.CreatedAt, resp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Response, error) {
	const q = selectResponse + ` WHERE id = $1`
	return scanResponse(s.db.QueryRowContext(ctx, q, id))
}

func (s *Postgres) FindByRecordID(ctx context.Context, recordID string) (*models.Response, error) {
	const q = selectResponse + ` WHERE airtable_record_id = $1`
	return scanResponse(s.db.QueryRowContext(ctx, q, recordID))
}

func (s *Postgres) ListByForm(ctx context.Context, formID string) ([]models.Response, error) {
	const q = selectResponse + ` WHERE form_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, formID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var out []models.Response
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, rows.Err()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

const selectResponse = `
	SELECT id, form_id, airtable_record_id, answers, respondent_agent,
	       deleted_in_airtable, last_synced_at, created_at, updated_at
	FROM responses`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResponse(row rowScanner) (*models.Response, error) {
	var r models.Response
	var answers []byte
	var synced sql.NullTime
	err := row.Scan(&r.ID, &r.FormID, &r.AirtableRecordID, &answers, &r.RespondentAgent,
		&r.DeletedInAirtable, &synced, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan response: %w", err)
	}
	if err := json.Unmarshal(answers, &r.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if synced.Valid {
		r.LastSyncedAt = synced.Time
	}
	return &r, nil
}
