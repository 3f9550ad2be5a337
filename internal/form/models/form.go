package models

import "time"

// QuestionType enumerates the supported form field types. Each maps to one
// provider column type (see internal/airtable field mapping).
type QuestionType string

const (
	TypeText        QuestionType = "text"
	TypeTextarea    QuestionType = "textarea"
	TypeSelect      QuestionType = "select"
	TypeMultiselect QuestionType = "multiselect"
	TypeFile        QuestionType = "file"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeText, TypeTextarea, TypeSelect, TypeMultiselect, TypeFile:
		return true
	}
	return false
}

// Operator is a comparison between a prior answer and a literal value.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "notEquals"
	OpContains  Operator = "contains"
)

// Logic combines condition results within one rule tree.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition is a single comparison against the stored answer of an earlier
// question.
type Condition struct {
	QuestionKey string   `json:"questionKey"`
	Operator    Operator `json:"operator"`
	Value       string   `json:"value"`
}

// ConditionalRules is a question's visibility rule tree: a logic combinator
// over an ordered condition list. A nil tree or an empty condition list
// means the question is always visible.
type ConditionalRules struct {
	Logic      Logic       `json:"logic,omitempty"`
	Conditions []Condition `json:"conditions"`
}

// Question is one form field bound to one provider column.
//
// Invariants (enforced at publish time by the form service, not re-checked
// by the evaluation engine):
//   - QuestionKey is unique within the owning form
//   - conditions reference only questionKeys that appear strictly earlier
//     in the form's ordered question list
type Question struct {
	QuestionKey       string            `json:"questionKey"`
	AirtableFieldID   string            `json:"airtableFieldId"`
	AirtableFieldName string            `json:"airtableFieldName"`
	Label             string            `json:"label"`
	Type              QuestionType      `json:"type"`
	Required          bool              `json:"required"`
	Options           []string          `json:"options,omitempty"`
	ConditionalRules  *ConditionalRules `json:"conditionalRules,omitempty"`
}

// Form is the published form definition. Questions are ordered and
// immutable once the form is created.
type Form struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	OwnerID           string     `json:"ownerId"`
	AirtableBaseID    string     `json:"airtableBaseId"`
	AirtableTableID   string     `json:"airtableTableId"`
	AirtableTableName string     `json:"airtableTableName"`
	Questions         []Question `json:"questions"`
	WebhookID         string     `json:"webhookId,omitempty"`
	Active            bool       `json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// QuestionByKey returns the question with the given key, if any.
func (f *Form) QuestionByKey(key string) (Question, bool) {
	for _, q := range f.Questions {
		if q.QuestionKey == key {
			return q, true
		}
	}
	return Question{}, false
}
