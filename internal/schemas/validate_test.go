package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/talentflow/internal/types"
	embedded "github.com/jonathan/talentflow/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAssessment() types.Assessment {
	max := 10.0
	return types.Assessment{
		Title: "Frontend screen",
		Sections: []types.Section{{
			ID:    "s1",
			Title: "Basics",
			Questions: []types.Question{
				{ID: "q1", Type: types.QuestionSingleChoice, Label: "Remote?", Options: []string{"Yes", "No"}},
				{
					ID: "q2", Type: types.QuestionNumeric, Label: "Years", Required: true,
					Validation:    &types.Validation{Max: &max},
					ConditionalOn: &types.Condition{QuestionID: "q1", Value: types.Single("Yes")},
				},
			},
		}},
	}
}

func TestValidateDocument_Assessment(t *testing.T) {
	assert.NoError(t, ValidateDocument(embedded.Assessment, validAssessment()))
}

func TestValidateDocument_InvalidQuestionType(t *testing.T) {
	a := validAssessment()
	a.Sections[0].Questions[0].Type = "essay"

	err := ValidateDocument(embedded.Assessment, a)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
	assert.Contains(t, err.Error(), "sections.0.questions.0.type")
}

func TestValidateDocument_MissingSections(t *testing.T) {
	err := ValidateDocument(embedded.Assessment, map[string]any{"title": "x"})
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields(), "(root)")
}

func TestValidateDocument_Response(t *testing.T) {
	ok := types.SubmitResponseRequest{
		AssessmentID: "a1",
		CandidateID:  "c1",
		Responses:    types.Answers{"q1": "Yes", "q2": 4, "q3": []string{"Go"}},
	}
	assert.NoError(t, ValidateDocument(embedded.Response, ok))

	bad := ok
	bad.CandidateID = ""
	assert.Error(t, ValidateDocument(embedded.Response, bad))
}

func TestValidateDocument_UnknownSchema(t *testing.T) {
	err := ValidateDocument("nope.schema.json", map[string]any{})
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"title":"Screen","sections":[]}`), 0o600))
	assert.NoError(t, ValidateFile(embedded.Assessment, good))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"title":"","sections":"nope"}`), 0o600))
	assert.Error(t, ValidateFile(embedded.Assessment, bad))

	assert.Error(t, ValidateFile(embedded.Assessment, filepath.Join(dir, "missing.json")))
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "title", Message: "is required"},
			{Field: "sections", Message: "must be array"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "1. title: is required")
	assert.Contains(t, msg, "2. sections: must be array")
}
