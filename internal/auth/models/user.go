package models

import "time"

// User is a form owner authenticated against the tabular data provider.
//
// Invariants:
//   - AirtableUserID is unique across users and immutable
//   - token fields hold sealed blobs, never plaintext provider tokens
type User struct {
	ID             string    `json:"id"`
	AirtableUserID string    `json:"airtableUserId"`
	Email          string    `json:"email,omitempty"`
	SealedAccess   string    `json:"-"`
	SealedRefresh  string    `json:"-"`
	TokenExpiresAt time.Time `json:"-"`
	LoginAt        time.Time `json:"loginTimestamp"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
