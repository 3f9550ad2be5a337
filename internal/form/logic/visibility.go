package logic

import "formbridge/internal/form/models"

// IsVisible reports whether a question is currently shown given the answer
// snapshot. No rule tree, or a tree with no conditions, means always
// visible. Evaluation is cheap and stateless, so callers recompute on every
// answer change instead of memoizing.
func IsVisible(q models.Question, answers models.AnswerSet) bool {
	rules := q.ConditionalRules
	if rules == nil || len(rules.Conditions) == 0 {
		return true
	}

	// Condition order is preserved so repeated evaluations are
	// reproducible when debugging a rule tree.
	results := make([]bool, len(rules.Conditions))
	for i, cond := range rules.Conditions {
		results[i] = Evaluate(cond, answers)
	}

	if rules.Logic == models.LogicOr {
		for _, r := range results {
			if r {
				return true
			}
		}
		return false
	}

	// Missing logic defaults to AND.
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}

// VisibleQuestions filters questions through IsVisible, preserving form
// order. Visibility of question N depends only on stored answers to earlier
// questions, regardless of whether those questions are themselves shown, so
// the full answer snapshot is used for every question.
func VisibleQuestions(questions []models.Question, answers models.AnswerSet) []models.Question {
	visible := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if IsVisible(q, answers) {
			visible = append(visible, q)
		}
	}
	return visible
}
