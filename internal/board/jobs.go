package board

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/talentflow/internal/reorder"
	"github.com/jonathan/talentflow/internal/types"
)

// NoticeKind distinguishes success from failure notices.
type NoticeKind string

// Notice kinds
const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the user-visible outcome of a board change.
type Notice struct {
	Kind        NoticeKind
	Title       string
	Description string
}

// ErrUnknownItem is returned when a move names an id that is not on the board.
var ErrUnknownItem = errors.New("board: item not on board")

// JobsAPI is the part of the API the job board needs. Both the in-process
// service and the HTTP client satisfy it.
type JobsAPI interface {
	ListJobs(ctx context.Context, q types.JobQuery) (*types.Page[types.Job], error)
	ReorderJob(ctx context.Context, id string, from, to int) (*types.Job, error)
}

// JobBoard is one page of the job list that can be reordered by dragging a job
// onto another.
type JobBoard struct {
	api   JobsAPI
	query types.JobQuery
	state *Optimistic[types.Page[types.Job]]
}

// NewJobBoard creates a board for the page selected by q.
func NewJobBoard(api JobsAPI, q types.JobQuery) *JobBoard {
	b := &JobBoard{api: api, query: q}
	b.state = NewOptimistic(func(ctx context.Context) (types.Page[types.Job], error) {
		page, err := api.ListJobs(ctx, b.query)
		if err != nil {
			return types.Page[types.Job]{}, err
		}
		return *page, nil
	})
	return b
}

// Load fetches the page.
func (b *JobBoard) Load(ctx context.Context) error {
	return b.state.Refresh(ctx)
}

// Jobs returns the jobs as currently shown.
func (b *JobBoard) Jobs() []types.Job {
	return b.state.State().Data
}

// Page returns the page as currently shown.
func (b *JobBoard) Page() types.Page[types.Job] {
	return b.state.State()
}

// Move drops activeID onto overID: the active job takes the over job's order
// and the jobs between shift by one. The new order is shown immediately and
// kept if the server accepts it, otherwise the board is rolled back.
//
// Dropping a job onto itself, or onto a job with the same order, is ignored
// and returns a nil Notice and nil error.
func (b *JobBoard) Move(ctx context.Context, activeID, overID string) (*Notice, error) {
	if activeID == overID {
		return nil, nil
	}

	jobs := b.Jobs()
	active, over := -1, -1
	for i, j := range jobs {
		switch j.ID {
		case activeID:
			active = i
		case overID:
			over = i
		}
	}
	if active < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, activeID)
	}
	if over < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, overID)
	}
	from, to := jobs[active].Order, jobs[over].Order
	if from == to {
		return nil, nil
	}

	changes, err := reorder.Plan(jobEntries(jobs), reorder.Move{ID: activeID, From: from, To: to})
	if err != nil {
		return nil, err
	}
	pending, err := b.state.Apply(func(page types.Page[types.Job]) types.Page[types.Job] {
		page.Data = applyJobChanges(page.Data, changes, b.query.Sort)
		return page
	})
	if err != nil {
		return nil, err
	}

	if _, err := b.api.ReorderJob(ctx, activeID, from, to); err != nil {
		if rerr := pending.Revert(ctx); rerr != nil {
			log.Printf("[board] refetch after failed reorder: %v", rerr)
		}
		return &Notice{
			Kind:        NoticeError,
			Title:       "Failed to reorder",
			Description: "Could not update job order. Please try again.",
		}, err
	}

	if err := pending.Commit(ctx); err != nil {
		log.Printf("[board] refetch after reorder: %v", err)
	}
	return &Notice{
		Kind:        NoticeSuccess,
		Title:       "Job reordered",
		Description: "The job order has been updated successfully.",
	}, nil
}

func jobEntries(jobs []types.Job) []reorder.Entry {
	out := make([]reorder.Entry, len(jobs))
	for i, j := range jobs {
		out[i] = reorder.Entry{ID: j.ID, Order: j.Order}
	}
	return out
}

// applyJobChanges returns a new slice with changes applied. Boards sorted by
// order are re-sorted; other sorts keep their positions.
func applyJobChanges(jobs []types.Job, changes []reorder.Change, by types.JobSort) []types.Job {
	if by == types.JobSortTitle {
		next := make(map[string]int, len(changes))
		for _, c := range changes {
			next[c.ID] = c.NewOrder
		}
		out := make([]types.Job, len(jobs))
		for i, j := range jobs {
			if o, ok := next[j.ID]; ok {
				j.Order = o
			}
			out[i] = j
		}
		return out
	}

	byID := make(map[string]types.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	entries := reorder.Apply(jobEntries(jobs), changes)
	out := make([]types.Job, len(entries))
	for i, e := range entries {
		j := byID[e.ID]
		j.Order = e.Order
		out[i] = j
	}
	return out
}
