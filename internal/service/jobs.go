package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jonathan/talentflow/internal/db"
	"github.com/jonathan/talentflow/internal/events"
	"github.com/jonathan/talentflow/internal/reorder"
	"github.com/jonathan/talentflow/internal/types"
)

// ListJobs returns one page of jobs matching q. Search is a case-insensitive
// substring match on the title or any tag.
func (s *Service) ListJobs(ctx context.Context, q types.JobQuery) (*types.Page[types.Job], error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, invalid("invalid job query", err)
	}
	q = q.Normalize()
	q.Search = strings.ToLower(strings.TrimSpace(q.Search))

	var page types.Page[types.Job]
	ticket, hit := s.cached(ctx, db.Jobs, q, &page)
	if hit {
		return &page, nil
	}

	all, err := s.jobs.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	matched := make([]types.Job, 0, len(all))
	for _, j := range all {
		if q.Status != "" && j.Status != q.Status {
			continue
		}
		if q.Search != "" && !jobMatches(j, q.Search) {
			continue
		}
		matched = append(matched, j)
	}
	sortJobs(matched, q.Sort)

	page = types.Paginate(matched, q.Page, q.PageSize)
	s.remember(ctx, ticket, page)
	return &page, nil
}

func jobMatches(j types.Job, search string) bool {
	if strings.Contains(strings.ToLower(j.Title), search) {
		return true
	}
	for _, tag := range j.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func sortJobs(jobs []types.Job, by types.JobSort) {
	sort.SliceStable(jobs, func(i, k int) bool {
		a, b := jobs[i], jobs[k]
		if by == types.JobSortTitle {
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				return at < bt
			}
			return a.ID < b.ID
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
}

// GetJob returns a single job.
func (s *Service) GetJob(ctx context.Context, id string) (*types.Job, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	return s.loadJob(ctx, id)
}

func (s *Service) loadJob(ctx context.Context, id string) (*types.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, &NotFoundError{Kind: "job", ID: id}
	}
	return job, nil
}

// CreateJob adds a job. Slug defaults to the slugified title, status to active
// and order to one past the current highest order.
func (s *Service) CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.Job, error) {
	if err := s.beginWrite(ctx, "create job"); err != nil {
		return nil, err
	}
	trimmed := *req
	trimmed.Title = strings.TrimSpace(req.Title)
	req = &trimmed
	if err := req.Validate(); err != nil {
		return nil, invalid("invalid job", err)
	}

	now := s.now()
	job := &types.Job{
		ID:          s.newID(),
		Title:       req.Title,
		Slug:        req.Slug,
		Status:      req.Status,
		Tags:        append([]string{}, req.Tags...),
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if job.Slug == "" {
		job.Slug = types.Slugify(job.Title)
	}
	if job.Status == "" {
		job.Status = types.JobStatusActive
	}

	if req.Order != nil {
		job.Order = *req.Order
	} else {
		// Hold the reorder lock so the new order cannot collide with a concurrent shift.
		s.reorderMu.Lock()
		defer s.reorderMu.Unlock()
		entries, err := s.jobEntries(ctx)
		if err != nil {
			return nil, err
		}
		job.Order = reorder.Next(entries)
	}

	if err := s.jobs.Put(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	s.changed(ctx, db.Jobs, events.JobCreated, job.ID)
	return job, nil
}

// UpdateJob merges patch into the job. Archive and restore are status patches.
func (s *Service) UpdateJob(ctx context.Context, id string, patch *types.JobPatch) (*types.Job, error) {
	if err := s.beginWrite(ctx, "update job"); err != nil {
		return nil, err
	}
	trimmed := *patch
	trimmed.Title = trimPtr(patch.Title)
	patch = &trimmed
	if err := patch.Validate(); err != nil {
		return nil, invalid("invalid job update", err)
	}

	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(job)
	job.UpdatedAt = s.now()

	if err := s.jobs.Put(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	s.changed(ctx, db.Jobs, events.JobUpdated, job.ID)
	return job, nil
}

// ReorderJob moves job id from order from to order to, shifting the jobs in
// between by one. Moves are serialized; a from that no longer matches the stored
// order is rejected with a *ConflictError so the caller can refetch.
func (s *Service) ReorderJob(ctx context.Context, id string, from, to int) (*types.Job, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	if err := s.sim.FailReorder("reorder jobs"); err != nil {
		log.Printf("[service] simulated failure: reorder job %s", id)
		return nil, err
	}

	s.reorderMu.Lock()
	defer s.reorderMu.Unlock()

	entries, err := s.jobEntries(ctx)
	if err != nil {
		return nil, err
	}
	changes, err := reorder.Plan(entries, reorder.Move{ID: id, From: from, To: to})
	switch {
	case errors.Is(err, reorder.ErrNoopMove):
		return nil, &ValidationError{Message: "fromOrder and toOrder are equal"}
	case errors.Is(err, reorder.ErrNotFound):
		return nil, &NotFoundError{Kind: "job", ID: id}
	case errors.Is(err, reorder.ErrStaleOrder):
		return nil, &ConflictError{Message: err.Error()}
	case err != nil:
		return nil, fmt.Errorf("failed to plan reorder: %w", err)
	}

	// Point updates, one job at a time; there is no cross-row transaction.
	now := s.now()
	var moved *types.Job
	for _, c := range changes {
		job, err := s.loadJob(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		job.Order = c.NewOrder
		job.UpdatedAt = now
		if err := s.jobs.Put(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to move job %s: %w", c.ID, err)
		}
		if c.ID == id {
			moved = job
		}
	}

	log.Printf("[service] reordered job %s: %d -> %d (%d jobs shifted)", id, from, to, len(changes)-1)
	s.changed(ctx, db.Jobs, events.JobsReordered, id)
	return moved, nil
}

func (s *Service) jobEntries(ctx context.Context) ([]reorder.Entry, error) {
	all, err := s.jobs.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	entries := make([]reorder.Entry, len(all))
	for i, j := range all {
		entries[i] = reorder.Entry{ID: j.ID, Order: j.Order}
	}
	return entries, nil
}
