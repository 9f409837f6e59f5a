//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Senior Frontend Developer", "senior-frontend-developer"},
		{"  DevOps   Engineer ", "devops-engineer"},
		{"C++ / Rust Engineer", "c--rust-engineer"},
		{"QA", "qa"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestCreateJobRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request CreateJobRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: CreateJobRequest{Title: "Backend Engineer", Tags: []string{"go", "remote"}},
		},
		{
			name:    "missing title",
			request: CreateJobRequest{Tags: []string{"go"}},
			wantErr: true,
		},
		{
			name:    "unknown status",
			request: CreateJobRequest{Title: "Backend Engineer", Status: "paused"},
			wantErr: true,
		},
		{
			name:    "empty tag",
			request: CreateJobRequest{Title: "Backend Engineer", Tags: []string{""}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJobPatch_Apply(t *testing.T) {
	job := Job{Title: "Old", Status: JobStatusActive, Tags: []string{"a"}, Order: 3}

	var patch JobPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"archived"}`), &patch))
	assert.True(t, patch.Apply(&job))
	assert.Equal(t, JobStatusArchived, job.Status)
	assert.Equal(t, "Old", job.Title)
	assert.Equal(t, []string{"a"}, job.Tags, "absent tags must be left alone")

	require.NoError(t, json.Unmarshal([]byte(`{"tags":[]}`), &patch))
	patch.Apply(&job)
	assert.Empty(t, job.Tags)

	assert.False(t, (&JobPatch{}).Apply(&job))
}

func TestStage(t *testing.T) {
	for i, s := range Stages {
		assert.True(t, s.Valid())
		assert.Equal(t, i, s.Index())
	}
	assert.False(t, Stage("interview").Valid())

	_, err := ParseStage("interview")
	assert.Error(t, err)
	s, err := ParseStage("offer")
	require.NoError(t, err)
	assert.Equal(t, StageOffer, s)
}

func TestExtractMentions(t *testing.T) {
	assert.Equal(t, []string{"alice", "bob_2"}, ExtractMentions("ping @alice and @bob_2, thanks"))
	assert.Empty(t, ExtractMentions("no mentions here"))
	assert.Equal(t, []string{"x"}, ExtractMentions("email me @x!"))
}
