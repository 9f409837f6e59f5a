package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// QuestionType is the answer widget a question expects.
type QuestionType string

// Question types
const (
	QuestionSingleChoice QuestionType = "single-choice"
	QuestionMultiChoice  QuestionType = "multi-choice"
	QuestionShortText    QuestionType = "short-text"
	QuestionLongText     QuestionType = "long-text"
	QuestionNumeric      QuestionType = "numeric"
	QuestionFileUpload   QuestionType = "file-upload"
)

// IsChoice reports whether answers must be drawn from Options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultiChoice
}

// IsText reports whether MaxLength applies.
func (t QuestionType) IsText() bool {
	return t == QuestionShortText || t == QuestionLongText
}

// Assessment is the questionnaire attached to a job. There is at most one per job.
type Assessment struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	Title     string    `json:"title"`
	Sections  []Section `json:"sections"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Questions returns every question of every section, in document order.
func (a *Assessment) Questions() []Question {
	var out []Question
	for _, s := range a.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

// FindQuestion looks up a question by id.
func (a *Assessment) FindQuestion(id string) (Question, bool) {
	for _, s := range a.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// Section groups questions under a heading.
type Section struct {
	ID        string     `json:"id" validate:"required"`
	Title     string     `json:"title" validate:"required"`
	Questions []Question `json:"questions" validate:"dive"`
}

// Question is a single prompt within a section.
type Question struct {
	ID            string       `json:"id" validate:"required"`
	Type          QuestionType `json:"type" validate:"required,oneof=single-choice multi-choice short-text long-text numeric file-upload"`
	Label         string       `json:"label" validate:"required"`
	Required      bool         `json:"required"`
	Options       []string     `json:"options,omitempty"`
	Validation    *Validation  `json:"validation,omitempty"`
	ConditionalOn *Condition   `json:"conditionalOn,omitempty"`
}

// Validation holds the optional numeric and length bounds of a question.
type Validation struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
}

// Condition makes a question visible only when another question's answer matches Value.
type Condition struct {
	QuestionID string         `json:"questionId" validate:"required"`
	Value      ConditionValue `json:"value"`
}

// ConditionValue is either a single expected value or a set of accepted values.
// On the wire it is a JSON string or an array of strings.
type ConditionValue struct {
	Values []string
	Multi  bool
}

// Single returns a condition value matching exactly v.
func Single(v string) ConditionValue {
	return ConditionValue{Values: []string{v}}
}

// AnyOf returns a condition value matching any of vs.
func AnyOf(vs ...string) ConditionValue {
	return ConditionValue{Values: vs, Multi: true}
}

// Matches reports whether answer satisfies the condition.
func (v ConditionValue) Matches(answer string) bool {
	for _, want := range v.Values {
		if want == answer {
			return true
		}
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (v ConditionValue) MarshalJSON() ([]byte, error) {
	if v.Multi {
		vals := v.Values
		if vals == nil {
			vals = []string{}
		}
		return json.Marshal(vals)
	}
	if len(v.Values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(v.Values[0])
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Single(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("condition value must be a string or an array of strings: %w", err)
	}
	*v = ConditionValue{Values: list, Multi: true}
	return nil
}

// Answers maps question ids to answer values. Values are strings, numbers, or
// lists of strings as decoded from JSON.
type Answers map[string]any

// SaveAssessmentRequest is the payload for creating or replacing a job's assessment.
type SaveAssessmentRequest struct {
	Title    string    `json:"title" validate:"required,min=1,max=200"`
	Sections []Section `json:"sections" validate:"dive"`
}

// Validate validates the SaveAssessmentRequest using the validator.
func (r *SaveAssessmentRequest) Validate() error {
	return validate.Struct(r)
}

// AssessmentResponse is a candidate's submitted answers. Responses are never modified.
type AssessmentResponse struct {
	ID           string    `json:"id"`
	AssessmentID string    `json:"assessmentId"`
	CandidateID  string    `json:"candidateId"`
	Responses    Answers   `json:"responses"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// SubmitResponseRequest is the payload for submitting answers to an assessment.
type SubmitResponseRequest struct {
	AssessmentID string  `json:"assessmentId" validate:"required"`
	CandidateID  string  `json:"candidateId" validate:"required"`
	Responses    Answers `json:"responses"`
}

// Validate validates the SubmitResponseRequest using the validator.
func (r *SubmitResponseRequest) Validate() error {
	return validate.Struct(r)
}
