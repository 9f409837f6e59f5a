package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jonathan/talentflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) addCandidate(t *testing.T, name, jobID string, stage types.Stage) *types.Candidate {
	t.Helper()
	c, err := f.svc.CreateCandidate(context.Background(), &types.CreateCandidateRequest{
		Name:  name,
		Email: fmt.Sprintf("%s@example.com", name),
		JobID: jobID,
		Stage: stage,
	})
	require.NoError(t, err)
	return c
}

func TestCreateCandidate_AppendsTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.addCandidate(t, "ada", "", "")
	assert.Equal(t, types.StageApplied, c.Stage)

	entries, err := f.svc.Timeline(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].FromStage)
	assert.Equal(t, types.StageApplied, entries[0].ToStage)
}

func TestCreateCandidate_UnknownJob(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateCandidate(context.Background(), &types.CreateCandidateRequest{
		Name: "ada", Email: "ada@example.com", JobID: "ghost",
	})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "jobId")
}

func TestCreateCandidate_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateCandidate(context.Background(), &types.CreateCandidateRequest{Name: "ada", Email: "not-an-email"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Must be a valid email address", ve.Fields["email"])
}

func TestUpdateCandidate_TimelineOnlyOnStageChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addCandidate(t, "grace", "", "")

	screen := types.StageScreen
	_, err := f.svc.UpdateCandidate(ctx, c.ID, &types.CandidatePatch{Stage: &screen})
	require.NoError(t, err)

	// Same stage again: no new entry.
	_, err = f.svc.UpdateCandidate(ctx, c.ID, &types.CandidatePatch{Stage: &screen})
	require.NoError(t, err)

	phone := "+1-555-0100"
	updated, err := f.svc.UpdateCandidate(ctx, c.ID, &types.CandidatePatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)

	rejected := types.StageRejected
	_, err = f.svc.UpdateCandidate(ctx, c.ID, &types.CandidatePatch{Stage: &rejected})
	require.NoError(t, err)

	entries, err := f.svc.Timeline(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, types.StageApplied, *entries[1].FromStage)
	assert.Equal(t, types.StageScreen, entries[1].ToStage)
	assert.Equal(t, types.StageScreen, *entries[2].FromStage)
	assert.Equal(t, types.StageRejected, entries[2].ToStage)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Timestamp.Before(entries[i-1].Timestamp))
	}
}

func TestUpdateCandidate_NotFound(t *testing.T) {
	f := newFixture(t)
	hired := types.StageHired
	_, err := f.svc.UpdateCandidate(context.Background(), "missing", &types.CandidatePatch{Stage: &hired})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	jobs := f.seedJobs(t, "Backend", "Frontend")

	f.addCandidate(t, "alice", jobs[0].ID, types.StageTech)
	f.addCandidate(t, "bob", jobs[0].ID, "")
	f.addCandidate(t, "alina", jobs[1].ID, types.StageTech)
	f.addCandidate(t, "carol", jobs[1].ID, types.StageOffer)

	tests := []struct {
		name  string
		query types.CandidateQuery
		want  []string
	}{
		{name: "all in creation order", query: types.CandidateQuery{}, want: []string{"alice", "bob", "alina", "carol"}},
		{name: "search name", query: types.CandidateQuery{Search: "ALI"}, want: []string{"alice", "alina"}},
		{name: "search email", query: types.CandidateQuery{Search: "carol@"}, want: []string{"carol"}},
		{name: "stage", query: types.CandidateQuery{Stage: types.StageTech}, want: []string{"alice", "alina"}},
		{name: "job", query: types.CandidateQuery{JobID: jobs[0].ID}, want: []string{"alice", "bob"}},
		{name: "job and stage", query: types.CandidateQuery{JobID: jobs[1].ID, Stage: types.StageTech}, want: []string{"alina"}},
		{name: "page size", query: types.CandidateQuery{PageSize: 3, Page: 2}, want: []string{"carol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.ListCandidates(ctx, tt.query)
			require.NoError(t, err)
			names := make([]string, len(page.Data))
			for i, c := range page.Data {
				names[i] = c.Name
			}
			assert.Equal(t, tt.want, names)
		})
	}

	page, err := f.svc.ListCandidates(ctx, types.CandidateQuery{})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultCandidatePageSize, page.Pagination.PageSize)
}

func TestNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.addCandidate(t, "linus", "", "")

	first, err := f.svc.AddNote(ctx, c.ID, &types.CreateNoteRequest{Content: "Strong systems background, @maria please review"})
	require.NoError(t, err)
	assert.Equal(t, []string{"maria"}, first.Mentions)
	assert.Equal(t, DefaultNoteAuthor, first.CreatedBy)

	_, err = f.svc.AddNote(ctx, c.ID, &types.CreateNoteRequest{Content: "Scheduled tech round", CreatedBy: "sam"})
	require.NoError(t, err)

	notes, err := f.svc.ListNotes(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Scheduled tech round", notes[0].Content, "newest first")

	_, err = f.svc.AddNote(ctx, "missing", &types.CreateNoteRequest{Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.AddNote(ctx, c.ID, &types.CreateNoteRequest{})
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}
