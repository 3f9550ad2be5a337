// Package models defines the stored form response.
package models

import (
	"time"

	formModels "formbridge/internal/form/models"
)

// Response is one submission, persisted after the provider accepted the
// record. Answers are the full submitted snapshot, hidden questions
// included, so webhook sync can overwrite them wholesale.
type Response struct {
	ID                string               `json:"id"`
	FormID            string               `json:"formId"`
	AirtableRecordID  string               `json:"airtableRecordId"`
	Answers           formModels.AnswerSet `json:"answers"`
	RespondentAgent   string               `json:"respondentAgent,omitempty"`
	DeletedInAirtable bool                 `json:"deletedInAirtable"`
	LastSyncedAt      time.Time            `json:"lastSyncedAt"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}
