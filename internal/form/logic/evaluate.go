// Package logic is the conditional visibility and validation engine.
//
// This is pure domain logic - no I/O, no side effects, no stored state.
// The same functions run on the authoritative submission path and behind
// live client previews, so every outcome must be a total function of
// (form definition, answer snapshot). Malformed rule data degrades to a
// conservative boolean instead of an error: a bad rule must never take
// down a form render.
package logic

import (
	"strings"

	"formbridge/internal/form/models"
)

// Evaluate reports whether a single condition is satisfied by the answers
// collected so far.
//
// An absent dependency answer fails every operator, including notEquals.
// A "not equals X" rule on an unanswered question reads as "not yet
// decidable", not "vacuously true". Downstream forms depend on this
// closed-world behavior; do not flip it without flagging stakeholders.
func Evaluate(cond models.Condition, answers models.AnswerSet) bool {
	answer := answers.Get(cond.QuestionKey)
	if answer.IsAbsent() {
		return false
	}

	switch cond.Operator {
	case models.OpEquals:
		return answerEquals(answer, cond.Value)
	case models.OpNotEquals:
		return !answerEquals(answer, cond.Value)
	case models.OpContains:
		return answerContains(answer, cond.Value)
	default:
		// Unknown operator: condition not satisfied, never an error.
		return false
	}
}

// answerEquals is the shared membership/equality test behind equals and
// notEquals: list answers match when value is a member, scalar answers
// match on string equality.
func answerEquals(answer models.Answer, value string) bool {
	if items, ok := answer.List(); ok {
		for _, item := range items {
			if item == value {
				return true
			}
		}
		return false
	}
	s, _ := answer.Scalar()
	return s == value
}

// answerContains is a case-insensitive substring test. Scalar answers are
// tested directly; list answers match when any element matches.
func answerContains(answer models.Answer, value string) bool {
	needle := strings.ToLower(value)
	if s, ok := answer.Scalar(); ok {
		return strings.Contains(strings.ToLower(s), needle)
	}
	if items, ok := answer.List(); ok {
		for _, item := range items {
			if strings.Contains(strings.ToLower(item), needle) {
				return true
			}
		}
	}
	return false
}
