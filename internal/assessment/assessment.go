// Package assessment implements the runtime rules of a job assessment: which
// questions are visible for a set of answers, and whether those answers are
// acceptable for submission.
package assessment

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/talentflow/internal/types"
)

// Validation messages shown next to the offending question.
const (
	MsgRequired  = "This field is required"
	MsgNotNumber = "Value must be a number"
	MsgNotOption = "Select one of the available options"
)

// ValidationError lists every rejected answer, in question order.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single rejected answer.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Fields returns the errors keyed by field, the shape the API sends to clients.
func (ve *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(ve.Errors))
	for _, e := range ve.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

func (ve *ValidationError) add(field, msg string) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Message: msg})
}

func (ve *ValidationError) errOrNil() error {
	if len(ve.Errors) == 0 {
		return nil
	}
	return ve
}

// Visible reports whether q is shown given the current answers.
//
// A question without a condition is always visible. A conditional question is
// hidden while the question it depends on has no answer. Otherwise it is visible
// when the answer equals the condition value, or is one of the values when the
// condition lists several. A list answer matches when any of its items does.
func Visible(q types.Question, answers types.Answers) bool {
	cond := q.ConditionalOn
	if cond == nil {
		return true
	}
	raw, ok := answers[cond.QuestionID]
	if !ok || isEmpty(raw) {
		return false
	}
	for _, v := range answerStrings(raw) {
		if cond.Value.Matches(v) {
			return true
		}
	}
	return false
}

// VisibleQuestions returns the questions of a that are shown for answers, in document order.
func VisibleQuestions(a *types.Assessment, answers types.Answers) []types.Question {
	var out []types.Question
	for _, q := range a.Questions() {
		if Visible(q, answers) {
			out = append(out, q)
		}
	}
	return out
}

// Validate checks answers against every visible question of a. Hidden questions
// are never validated. It returns a *ValidationError when any answer is rejected.
func Validate(a *types.Assessment, answers types.Answers) error {
	ve := &ValidationError{}
	for _, q := range VisibleQuestions(a, answers) {
		if msg := checkAnswer(q, answers[q.ID]); msg != "" {
			ve.add(q.ID, msg)
		}
	}
	return ve.errOrNil()
}

func checkAnswer(q types.Question, raw any) string {
	if isEmpty(raw) {
		if q.Required {
			return MsgRequired
		}
		return ""
	}

	switch {
	case q.Type == types.QuestionNumeric:
		n, ok := toNumber(raw)
		if !ok {
			return MsgNotNumber
		}
		if v := q.Validation; v != nil {
			if v.Min != nil && n < *v.Min {
				return "Value must be at least " + formatNumber(*v.Min)
			}
			if v.Max != nil && n > *v.Max {
				return "Value must be at most " + formatNumber(*v.Max)
			}
		}
	case q.Type.IsText():
		if v := q.Validation; v != nil && v.MaxLength != nil {
			s, _ := raw.(string)
			if utf8.RuneCountInString(s) > *v.MaxLength {
				return fmt.Sprintf("Maximum %d characters allowed", *v.MaxLength)
			}
		}
	case q.Type.IsChoice():
		values := answerStrings(raw)
		if q.Type == types.QuestionSingleChoice && len(values) != 1 {
			return MsgNotOption
		}
		for _, v := range values {
			if !contains(q.Options, v) {
				return MsgNotOption
			}
		}
	}
	return ""
}

// CheckStructure reports authoring mistakes in an assessment definition: duplicate
// question ids, choice questions without options, inverted numeric bounds, and
// conditions that point at a missing question or at the question itself.
func CheckStructure(a *types.Assessment) error {
	ve := &ValidationError{}
	seenSections := map[string]bool{}
	seen := map[string]bool{}
	for _, s := range a.Sections {
		if seenSections[s.ID] {
			ve.add(s.ID, "duplicate section id")
		}
		seenSections[s.ID] = true
		for _, q := range s.Questions {
			if seen[q.ID] {
				ve.add(q.ID, "duplicate question id")
			}
			seen[q.ID] = true
		}
	}

	for _, q := range a.Questions() {
		if q.Type.IsChoice() && len(q.Options) == 0 {
			ve.add(q.ID, "choice questions need at least one option")
		}
		if v := q.Validation; v != nil {
			if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
				ve.add(q.ID, "min must not exceed max")
			}
			if v.MaxLength != nil && *v.MaxLength < 1 {
				ve.add(q.ID, "maxLength must be positive")
			}
		}
		if c := q.ConditionalOn; c != nil {
			switch {
			case c.QuestionID == q.ID:
				ve.add(q.ID, "question cannot depend on itself")
			case !seen[c.QuestionID]:
				ve.add(q.ID, fmt.Sprintf("condition references unknown question %q", c.QuestionID))
			case len(c.Value.Values) == 0:
				ve.add(q.ID, "condition needs a value")
			}
		}
	}
	return ve.errOrNil()
}

// Unanswered returns the ids of required visible questions that have no answer, sorted.
func Unanswered(a *types.Assessment, answers types.Answers) []string {
	var ids []string
	for _, q := range VisibleQuestions(a, answers) {
		if q.Required && isEmpty(answers[q.ID]) {
			ids = append(ids, q.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case bool:
		return !t
	}
	return false
}

// answerStrings flattens an answer to the string values a condition or option list compares against.
func answerStrings(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, scalarString(item))
		}
		return out
	}
	return []string{scalarString(v)}
}

func scalarString(v any) string {
	if n, ok := toNumber(v); ok {
		if _, isString := v.(string); !isString {
			return formatNumber(n)
		}
	}
	return fmt.Sprint(v)
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case interface{ Float64() (float64, error) }:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
