package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jonathan/talentflow/internal/board"
	"github.com/jonathan/talentflow/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintJobs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	page := types.Paginate([]types.Job{
		{ID: "j1", Title: "Backend Developer", Status: types.JobStatusActive, Order: 1, Tags: []string{"Remote", "Senior"}},
		{ID: "j2", Title: "UX Designer", Status: types.JobStatusArchived, Order: 2},
	}, 1, 10)
	p.PrintJobs(&page)
	output := buf.String()

	assert.Contains(t, output, "JOBS")
	assert.Contains(t, output, "Page 1 of 1  (2 jobs)")
	assert.Contains(t, output, "Backend Developer")
	assert.Contains(t, output, "Remote, Senior")
	assert.Contains(t, output, "▪   2  UX Designer")
}

func TestPrintJobs_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobs(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_LinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.printBox("TITLE", "short\n"+strings.Repeat("é", 200))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for _, l := range lines {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(l), l)
	}
}

func TestPrintCandidatesAndKanban(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	cands := make([]types.Candidate, 30)
	for i := range cands {
		cands[i] = types.Candidate{Name: "Ava Lee", Email: "ava@example.com", Stage: types.StageTech}
	}
	page := types.Paginate(cands, 1, 50)
	p.PrintCandidates(&page)
	assert.Contains(t, buf.String(), "Technical")
	assert.Contains(t, buf.String(), "... and 5 more on this page")

	buf.Reset()
	p.PrintKanban(map[types.Stage]int{types.StageApplied: 3, types.StageHired: 1})
	assert.Contains(t, buf.String(), "Applied")
	assert.Contains(t, buf.String(), "Total: 4")
}

func TestPrintTimeline(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	applied := types.StageApplied
	ts := time.Date(2024, 2, 3, 10, 30, 0, 0, time.UTC)
	p.PrintTimeline(&types.Candidate{Name: "Noah", Email: "noah@example.com", Stage: types.StageScreen}, []types.TimelineEntry{
		{ToStage: types.StageApplied, Timestamp: ts},
		{FromStage: &applied, ToStage: types.StageScreen, Timestamp: ts.Add(time.Hour)},
	})
	assert.Contains(t, buf.String(), "2024-02-03 10:30  — → Applied")
	assert.Contains(t, buf.String(), "Applied → Screening")
}

func TestPrintNotice(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintNotice(&board.Notice{Kind: board.NoticeError, Title: "Failed to reorder", Description: "Could not update job order. Please try again."})
	assert.Contains(t, buf.String(), "✗ Failed to reorder")

	buf.Reset()
	p.PrintNotice(nil)
	assert.Empty(t, buf.String())
}

func TestPrintAssessment(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	a := &types.Assessment{Title: "Screen", Sections: []types.Section{{
		ID: "s1", Title: "Basics",
		Questions: []types.Question{
			{ID: "q1", Type: types.QuestionSingleChoice, Label: "TypeScript?", Required: true, Options: []string{"Yes", "No"}},
			{ID: "q2", Type: types.QuestionShortText, Label: "Favorite feature", ConditionalOn: &types.Condition{QuestionID: "q1", Value: types.Single("Yes")}},
		},
	}}}

	p.PrintAssessment(a, types.Answers{})
	out := buf.String()
	assert.Contains(t, out, "! q1   TypeScript?")
	assert.NotContains(t, out, "Favorite feature")

	buf.Reset()
	p.PrintAssessment(a, types.Answers{"q1": "Yes"})
	assert.Contains(t, buf.String(), "* q1")
	assert.Contains(t, buf.String(), "Favorite feature")
}

func TestPrintFieldErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintFieldErrors("INVALID", map[string]string{"q2": "Value must be at most 10", "q1": "This field is required"})

	out := buf.String()
	assert.Less(t, strings.Index(out, "q1"), strings.Index(out, "q2"), "sorted by key")
}
