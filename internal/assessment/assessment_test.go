package assessment

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/talentflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sample() *types.Assessment {
	return &types.Assessment{
		ID:    "a1",
		JobID: "j1",
		Title: "Backend screen",
		Sections: []types.Section{
			{
				ID:    "s1",
				Title: "Experience",
				Questions: []types.Question{
					{ID: "remote", Type: types.QuestionSingleChoice, Label: "Open to remote?", Required: true, Options: []string{"Yes", "No"}},
					{
						ID: "timezone", Type: types.QuestionShortText, Label: "Time zone", Required: true,
						ConditionalOn: &types.Condition{QuestionID: "remote", Value: types.Single("Yes")},
					},
					{
						ID: "years", Type: types.QuestionNumeric, Label: "Years of Go", Required: true,
						Validation: &types.Validation{Min: ptr(0.0), Max: ptr(10.0)},
					},
				},
			},
			{
				ID:    "s2",
				Title: "Skills",
				Questions: []types.Question{
					{ID: "langs", Type: types.QuestionMultiChoice, Label: "Languages", Options: []string{"Go", "Rust", "TypeScript"}},
					{
						ID: "systems", Type: types.QuestionLongText, Label: "Systems work", Required: true,
						Validation:    &types.Validation{MaxLength: ptr(20)},
						ConditionalOn: &types.Condition{QuestionID: "langs", Value: types.AnyOf("Go", "Rust")},
					},
				},
			},
		},
	}
}

func TestVisible(t *testing.T) {
	a := sample()
	timezone, _ := a.FindQuestion("timezone")
	systems, _ := a.FindQuestion("systems")
	years, _ := a.FindQuestion("years")

	tests := []struct {
		name    string
		q       types.Question
		answers types.Answers
		want    bool
	}{
		{name: "unconditional", q: years, answers: types.Answers{}, want: true},
		{name: "dependency unanswered", q: timezone, answers: types.Answers{}, want: false},
		{name: "dependency empty string", q: timezone, answers: types.Answers{"remote": ""}, want: false},
		{name: "equal value", q: timezone, answers: types.Answers{"remote": "Yes"}, want: true},
		{name: "different value", q: timezone, answers: types.Answers{"remote": "No"}, want: false},
		{name: "value in set", q: systems, answers: types.Answers{"langs": "Rust"}, want: true},
		{name: "list answer with match", q: systems, answers: types.Answers{"langs": []any{"TypeScript", "Go"}}, want: true},
		{name: "list answer without match", q: systems, answers: types.Answers{"langs": []any{"TypeScript"}}, want: false},
		{name: "empty list answer", q: systems, answers: types.Answers{"langs": []any{}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.q, tt.answers))
		})
	}
}

func TestValidate_NumericMax(t *testing.T) {
	err := Validate(sample(), types.Answers{"remote": "No", "years": 11.0})
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "years", ve.Errors[0].Field)
	assert.Equal(t, "Value must be at most 10", ve.Errors[0].Message)
}

func TestValidate_HiddenQuestionsSkipped(t *testing.T) {
	// timezone is required but hidden because remote is "No".
	assert.NoError(t, Validate(sample(), types.Answers{"remote": "No", "years": "4"}))
}

func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name    string
		answers types.Answers
		field   string
		message string
	}{
		{
			name:    "required visible question",
			answers: types.Answers{"remote": "Yes", "years": 3.0},
			field:   "timezone",
			message: "This field is required",
		},
		{
			name:    "below min",
			answers: types.Answers{"remote": "No", "years": -1.0},
			field:   "years",
			message: "Value must be at least 0",
		},
		{
			name:    "numeric string over max",
			answers: types.Answers{"remote": "No", "years": "12.5"},
			field:   "years",
			message: "Value must be at most 10",
		},
		{
			name:    "not a number",
			answers: types.Answers{"remote": "No", "years": "lots"},
			field:   "years",
			message: MsgNotNumber,
		},
		{
			name:    "too long",
			answers: types.Answers{"remote": "No", "years": 2.0, "langs": []any{"Go"}, "systems": strings.Repeat("x", 21)},
			field:   "systems",
			message: "Maximum 20 characters allowed",
		},
		{
			name:    "unknown option",
			answers: types.Answers{"remote": "Maybe", "years": 2.0},
			field:   "remote",
			message: MsgNotOption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(sample(), tt.answers)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
			assert.Equal(t, tt.message, ve.Fields()[tt.field])
		})
	}
}

func TestValidate_JSONDecodedAnswers(t *testing.T) {
	var answers types.Answers
	require.NoError(t, json.Unmarshal([]byte(`{"remote":"Yes","timezone":"UTC","years":7,"langs":["Go"],"systems":"queues"}`), &answers))
	assert.NoError(t, Validate(sample(), answers))
	assert.Empty(t, Unanswered(sample(), answers))
}

func TestUnanswered(t *testing.T) {
	assert.Equal(t, []string{"remote", "years"}, Unanswered(sample(), types.Answers{}))
	assert.Equal(t, []string{"timezone", "years"}, Unanswered(sample(), types.Answers{"remote": "Yes"}))
}

func TestCheckStructure(t *testing.T) {
	assert.NoError(t, CheckStructure(sample()))

	bad := sample()
	bad.Sections[0].Questions[0].Options = nil
	bad.Sections[0].Questions[2].Validation = &types.Validation{Min: ptr(5.0), Max: ptr(1.0)}
	bad.Sections[1].Questions[1].ConditionalOn = &types.Condition{QuestionID: "ghost", Value: types.Single("x")}
	bad.Sections[1].Questions = append(bad.Sections[1].Questions, types.Question{ID: "years", Type: types.QuestionNumeric, Label: "dup"})

	err := CheckStructure(bad)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	fields := ve.Fields()
	assert.Contains(t, fields["remote"], "option")
	assert.Contains(t, fields["years"], "duplicate")
	assert.Contains(t, fields["systems"], "ghost")
	assert.Contains(t, err.Error(), "validation failed")
}

func TestCheckStructure_SelfReference(t *testing.T) {
	a := sample()
	a.Sections[0].Questions[1].ConditionalOn = &types.Condition{QuestionID: "timezone", Value: types.Single("x")}

	err := CheckStructure(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "itself")
}
