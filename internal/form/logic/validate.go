package logic

import (
	"strings"

	"formbridge/internal/form/models"
)

// FieldError is one field-level validation failure. The message is the
// externally visible feedback contract: it is returned to submitters
// unchanged.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateAnswers walks the ordered question list, skips questions hidden
// by their rule trees, and checks required/option constraints on the
// visible ones. The returned errors preserve question order; an empty slice
// means the submission is valid.
//
// This is the sole gate before any side-effecting commit on the
// authoritative path. Clients may also call it continuously for live
// feedback, where its result is advisory only.
func ValidateAnswers(questions []models.Question, answers models.AnswerSet) []FieldError {
	var errs []FieldError

	for _, q := range VisibleQuestions(questions, answers) {
		answer := answers.Get(q.QuestionKey)

		if q.Required && answer.IsBlank() {
			errs = append(errs, FieldError{
				Field:   q.QuestionKey,
				Message: q.Label + " is required",
			})
			// A missing answer gets no type/option checks.
			continue
		}

		if answer.IsBlank() {
			continue
		}

		switch q.Type {
		case models.TypeSelect:
			if len(q.Options) == 0 {
				continue
			}
			if scalar, ok := answer.Scalar(); !ok || !contains(q.Options, scalar) {
				errs = append(errs, FieldError{
					Field:   q.QuestionKey,
					Message: "Invalid option for " + q.Label,
				})
			}
		case models.TypeMultiselect:
			if len(q.Options) == 0 {
				continue
			}
			items, ok := answer.List()
			if !ok {
				errs = append(errs, FieldError{
					Field:   q.QuestionKey,
					Message: q.Label + " must be an array",
				})
				continue
			}
			var invalid []string
			for _, item := range items {
				if !contains(q.Options, item) {
					invalid = append(invalid, item)
				}
			}
			if len(invalid) > 0 {
				errs = append(errs, FieldError{
					Field:   q.QuestionKey,
					Message: "Invalid options for " + q.Label + ": " + strings.Join(invalid, ", "),
				})
			}
		}
	}

	return errs
}

func contains(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
