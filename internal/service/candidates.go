package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/talentflow/internal/db"
	"github.com/jonathan/talentflow/internal/events"
	"github.com/jonathan/talentflow/internal/types"
)

// ListCandidates returns one page of candidates in primary-key (creation) order.
// Search is a case-insensitive substring match on name or email.
func (s *Service) ListCandidates(ctx context.Context, q types.CandidateQuery) (*types.Page[types.Candidate], error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, invalid("invalid candidate query", err)
	}
	q = q.Normalize()
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))

	var page types.Page[types.Candidate]
	ticket, hit := s.cached(ctx, db.Candidates, q, &page)
	if hit {
		return &page, nil
	}

	var (
		all []types.Candidate
		err error
	)
	switch {
	case q.JobID != "":
		all, err = s.candidates.Where(ctx, "jobId", q.JobID)
	case q.Stage != "":
		all, err = s.candidates.Where(ctx, "stage", string(q.Stage))
	default:
		all, err = s.candidates.All(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	matched := make([]types.Candidate, 0, len(all))
	for _, c := range all {
		if q.Stage != "" && c.Stage != q.Stage {
			continue
		}
		if q.Search != "" &&
			!strings.Contains(strings.ToLower(c.Name), q.Search) &&
			!strings.Contains(strings.ToLower(c.Email), q.Search) {
			continue
		}
		matched = append(matched, c)
	}

	page = types.Paginate(matched, q.Page, q.PageSize)
	s.remember(ctx, ticket, page)
	return &page, nil
}

// GetCandidate returns a single candidate.
func (s *Service) GetCandidate(ctx context.Context, id string) (*types.Candidate, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	return s.loadCandidate(ctx, id)
}

func (s *Service) loadCandidate(ctx context.Context, id string) (*types.Candidate, error) {
	c, err := s.candidates.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	if c == nil {
		return nil, &NotFoundError{Kind: "candidate", ID: id}
	}
	return c, nil
}

// CreateCandidate adds a candidate and records its entry into the pipeline as
// the first timeline entry.
func (s *Service) CreateCandidate(ctx context.Context, req *types.CreateCandidateRequest) (*types.Candidate, error) {
	if err := s.beginWrite(ctx, "create candidate"); err != nil {
		return nil, err
	}
	trimmed := *req
	trimmed.Name = strings.TrimSpace(req.Name)
	trimmed.Email = strings.TrimSpace(req.Email)
	req = &trimmed
	if err := req.Validate(); err != nil {
		return nil, invalid("invalid candidate", err)
	}
	if req.JobID != "" {
		job, err := s.jobs.Get(ctx, req.JobID)
		if err != nil {
			return nil, fmt.Errorf("failed to check job: %w", err)
		}
		if job == nil {
			return nil, &ValidationError{Message: "invalid candidate", Fields: map[string]string{"jobId": "Job does not exist"}}
		}
	}

	now := s.now()
	c := &types.Candidate{
		ID:        s.newID(),
		Name:      req.Name,
		Email:     req.Email,
		Stage:     req.Stage,
		JobID:     req.JobID,
		Phone:     req.Phone,
		Resume:    req.Resume,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Stage == "" {
		c.Stage = types.StageApplied
	}

	if err := s.candidates.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	if err := s.appendTimeline(ctx, c.ID, nil, c.Stage); err != nil {
		return nil, err
	}
	s.changed(ctx, db.Candidates, events.CandidateCreated, c.ID)
	return c, nil
}

// UpdateCandidate merges patch into the candidate. A stage change appends one
// timeline entry; any other edit appends none.
func (s *Service) UpdateCandidate(ctx context.Context, id string, patch *types.CandidatePatch) (*types.Candidate, error) {
	if err := s.beginWrite(ctx, "update candidate"); err != nil {
		return nil, err
	}
	trimmed := *patch
	trimmed.Name = trimPtr(patch.Name)
	trimmed.Email = trimPtr(patch.Email)
	patch = &trimmed
	if err := patch.Validate(); err != nil {
		return nil, invalid("invalid candidate update", err)
	}

	c, err := s.loadCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	from := c.Stage
	patch.Apply(c)
	c.UpdatedAt = s.now()

	if err := s.candidates.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}
	if c.Stage != from {
		if err := s.appendTimeline(ctx, c.ID, &from, c.Stage); err != nil {
			return nil, err
		}
	}
	s.changed(ctx, db.Candidates, events.CandidateUpdated, c.ID)
	return c, nil
}

func (s *Service) appendTimeline(ctx context.Context, candidateID string, from *types.Stage, to types.Stage) error {
	entry := &types.TimelineEntry{
		ID:          s.newID(),
		CandidateID: candidateID,
		FromStage:   from,
		ToStage:     to,
		Timestamp:   s.now(),
	}
	if err := s.timeline.Put(ctx, entry); err != nil {
		return fmt.Errorf("failed to record stage change: %w", err)
	}
	return nil
}

// Timeline returns a candidate's stage history, oldest first.
func (s *Service) Timeline(ctx context.Context, candidateID string) ([]types.TimelineEntry, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	entries, err := s.timeline.Where(ctx, "candidateId", candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load timeline: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}
