package airtable

import "formbridge/internal/form/models"

// UserInfo is the provider's whoami payload.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Base is one provider base the token can reach.
type Base struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PermissionLevel string `json:"permissionLevel,omitempty"`
}

// Table is one table within a base, including its raw field schema.
type Table struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Field is a raw provider column definition.
type Field struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Type    string        `json:"type"`
	Options *FieldOptions `json:"options,omitempty"`
}

// FieldOptions carries select choices for single/multi select columns.
type FieldOptions struct {
	Choices []Choice `json:"choices,omitempty"`
}

// Choice is one select option.
type Choice struct {
	Name string `json:"name"`
}

// DiscoveredField is a provider column narrowed to the shapes this system
// can bind a question to, with the provider type mapped to a question type.
type DiscoveredField struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Type       string              `json:"type"`
	MappedType models.QuestionType `json:"mappedType"`
	Options    []string            `json:"options"`
}

// Record is a provider row.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Webhook is a registered change notification subscription.
type Webhook struct {
	ID              string `json:"id"`
	MacSecretBase64 string `json:"macSecretBase64,omitempty"`
	ExpirationTime  string `json:"expirationTime,omitempty"`
}

// TokenResponse is the OAuth token endpoint payload.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}
