//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionValue_JSON(t *testing.T) {
	t.Run("single string", func(t *testing.T) {
		var c Condition
		require.NoError(t, json.Unmarshal([]byte(`{"questionId":"q1","value":"Yes"}`), &c))
		assert.False(t, c.Value.Multi)
		assert.True(t, c.Value.Matches("Yes"))
		assert.False(t, c.Value.Matches("No"))

		out, err := json.Marshal(c)
		require.NoError(t, err)
		assert.JSONEq(t, `{"questionId":"q1","value":"Yes"}`, string(out))
	})

	t.Run("string list", func(t *testing.T) {
		var c Condition
		require.NoError(t, json.Unmarshal([]byte(`{"questionId":"q1","value":["A","B"]}`), &c))
		assert.True(t, c.Value.Multi)
		assert.True(t, c.Value.Matches("B"))
		assert.False(t, c.Value.Matches("C"))

		out, err := json.Marshal(c)
		require.NoError(t, err)
		assert.JSONEq(t, `{"questionId":"q1","value":["A","B"]}`, string(out))
	})

	t.Run("rejects numbers", func(t *testing.T) {
		var c Condition
		assert.Error(t, json.Unmarshal([]byte(`{"questionId":"q1","value":3}`), &c))
	})
}

func TestAssessment_FindQuestion(t *testing.T) {
	a := Assessment{Sections: []Section{
		{ID: "s1", Questions: []Question{{ID: "q1"}, {ID: "q2"}}},
		{ID: "s2", Questions: []Question{{ID: "q3"}}},
	}}

	q, ok := a.FindQuestion("q3")
	assert.True(t, ok)
	assert.Equal(t, "q3", q.ID)

	_, ok = a.FindQuestion("missing")
	assert.False(t, ok)
	assert.Len(t, a.Questions(), 3)
}

func TestSaveAssessmentRequest_Validation(t *testing.T) {
	valid := SaveAssessmentRequest{
		Title: "Frontend screen",
		Sections: []Section{{
			ID:    "s1",
			Title: "Basics",
			Questions: []Question{
				{ID: "q1", Type: QuestionShortText, Label: "Name", Required: true},
			},
		}},
	}
	assert.NoError(t, valid.Validate())

	badType := valid
	badType.Sections = []Section{{
		ID:        "s1",
		Title:     "Basics",
		Questions: []Question{{ID: "q1", Type: "essay", Label: "Name"}},
	}}
	assert.Error(t, badType.Validate())

	noTitle := valid
	noTitle.Title = ""
	assert.Error(t, noTitle.Validate())
}
