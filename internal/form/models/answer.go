package models

import (
	"encoding/json"
	"strconv"
)

// Answer is the value a respondent supplied for one question: a scalar
// string, an ordered list of strings (multiselect), or absent. Modeling it
// as a closed union keeps the evaluation engine free of ad hoc type probing.
type Answer struct {
	kind   answerKind
	scalar string
	list   []string
}

type answerKind uint8

const (
	answerAbsent answerKind = iota
	answerScalar
	answerList
)

// AbsentAnswer is the zero Answer; it also results from JSON null.
var AbsentAnswer = Answer{}

// ScalarAnswer wraps a single string value.
func ScalarAnswer(s string) Answer {
	return Answer{kind: answerScalar, scalar: s}
}

// ListAnswer wraps an ordered list of string values.
func ListAnswer(items ...string) Answer {
	return Answer{kind: answerList, list: items}
}

// IsAbsent reports whether no value was supplied at all.
func (a Answer) IsAbsent() bool { return a.kind == answerAbsent }

// IsBlank reports whether the answer counts as unanswered for required
// checks: absent, or an empty scalar string. An empty list is still an
// answer (the respondent touched the field).
func (a Answer) IsBlank() bool {
	return a.kind == answerAbsent || (a.kind == answerScalar && a.scalar == "")
}

// Scalar returns the scalar value and whether the answer is a scalar.
func (a Answer) Scalar() (string, bool) {
	return a.scalar, a.kind == answerScalar
}

// List returns the list value and whether the answer is a list.
func (a Answer) List() ([]string, bool) {
	return a.list, a.kind == answerList
}

// MarshalJSON renders absent as null, scalar as a string, list as an array.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case answerScalar:
		return json.Marshal(a.scalar)
	case answerList:
		if a.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.list)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts string, array, null, or primitive scalars. Numbers
// and booleans coerce to their literal text; shapes the engine cannot
// interpret degrade to absent rather than failing the decode, so one bad
// value never rejects a whole submission envelope.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = coerceAnswer(raw)
	return nil
}

// AnswerFromValue coerces an arbitrary decoded JSON value into an Answer,
// with the same rules as UnmarshalJSON. Webhook sync uses it for provider
// cell values.
func AnswerFromValue(raw any) Answer {
	return coerceAnswer(raw)
}

func coerceAnswer(raw any) Answer {
	switch v := raw.(type) {
	case nil:
		return AbsentAnswer
	case string:
		return ScalarAnswer(v)
	case bool:
		return ScalarAnswer(strconv.FormatBool(v))
	case float64:
		return ScalarAnswer(strconv.FormatFloat(v, 'f', -1, 64))
	case []any:
		items := make([]string, 0, len(v))
		for _, el := range v {
			switch s := el.(type) {
			case string:
				items = append(items, s)
			case bool:
				items = append(items, strconv.FormatBool(s))
			case float64:
				items = append(items, strconv.FormatFloat(s, 'f', -1, 64))
			}
		}
		return Answer{kind: answerList, list: items}
	default:
		return AbsentAnswer
	}
}

// AnswerSet maps questionKey to the respondent's answer. Missing keys and
// explicitly absent values are equivalent.
type AnswerSet map[string]Answer

// Get returns the answer for key, or an absent answer.
func (s AnswerSet) Get(key string) Answer {
	if s == nil {
		return AbsentAnswer
	}
	return s[key]
}

// Set records an answer, dropping the key entirely for absent values so the
// map stays canonical.
func (s AnswerSet) Set(key string, a Answer) {
	if a.IsAbsent() {
		delete(s, key)
		return
	}
	s[key] = a
}

// Clone returns an independent copy of the set.
func (s AnswerSet) Clone() AnswerSet {
	if s == nil {
		return nil
	}
	out := make(AnswerSet, len(s))
	for key, a := range s {
		if list, ok := a.List(); ok {
			a = ListAnswer(append([]string(nil), list...)...)
		}
		out[key] = a
	}
	return out
}
