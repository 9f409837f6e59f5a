package board

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/talentflow/internal/types"
)

// CandidatesAPI is the part of the API the kanban needs.
type CandidatesAPI interface {
	ListCandidates(ctx context.Context, q types.CandidateQuery) (*types.Page[types.Candidate], error)
	UpdateCandidate(ctx context.Context, id string, patch *types.CandidatePatch) (*types.Candidate, error)
}

// Kanban shows candidates in one column per stage.
type Kanban struct {
	api   CandidatesAPI
	state *Optimistic[[]types.Candidate]
}

// NewKanban creates a kanban over every candidate matching q. Paging fields of q
// are ignored; all pages are loaded.
func NewKanban(api CandidatesAPI, q types.CandidateQuery) *Kanban {
	q.PageSize = types.MaxPageSize
	k := &Kanban{api: api}
	k.state = NewOptimistic(func(ctx context.Context) ([]types.Candidate, error) {
		var all []types.Candidate
		pq := q
		for page := 1; ; page++ {
			pq.Page = page
			res, err := api.ListCandidates(ctx, pq)
			if err != nil {
				return nil, err
			}
			all = append(all, res.Data...)
			if page >= res.Pagination.TotalPages {
				return all, nil
			}
		}
	})
	return k
}

// Load fetches the candidates.
func (k *Kanban) Load(ctx context.Context) error {
	return k.state.Refresh(ctx)
}

// Column returns the candidates in one stage.
func (k *Kanban) Column(stage types.Stage) []types.Candidate {
	var out []types.Candidate
	for _, c := range k.state.State() {
		if c.Stage == stage {
			out = append(out, c)
		}
	}
	return out
}

// Counts returns the number of candidates per stage.
func (k *Kanban) Counts() map[types.Stage]int {
	out := make(map[types.Stage]int, len(types.Stages))
	for _, c := range k.state.State() {
		out[c.Stage]++
	}
	return out
}

// MoveCandidate drops a candidate onto a stage column. Moving a candidate to
// the stage it is already in is ignored and returns a nil Notice and nil error.
func (k *Kanban) MoveCandidate(ctx context.Context, id string, stage types.Stage) (*Notice, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("unknown stage: %q", stage)
	}

	var current *types.Candidate
	for _, c := range k.state.State() {
		if c.ID == id {
			current = &c
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if current.Stage == stage {
		return nil, nil
	}

	pending, err := k.state.Apply(func(list []types.Candidate) []types.Candidate {
		out := make([]types.Candidate, len(list))
		copy(out, list)
		for i := range out {
			if out[i].ID == id {
				out[i].Stage = stage
			}
		}
		return out
	})
	if err != nil {
		return nil, err
	}

	if _, err := k.api.UpdateCandidate(ctx, id, &types.CandidatePatch{Stage: &stage}); err != nil {
		if rerr := pending.Revert(ctx); rerr != nil {
			log.Printf("[board] refetch after failed stage move: %v", rerr)
		}
		return &Notice{
			Kind:        NoticeError,
			Title:       "Failed to move candidate",
			Description: "Could not update candidate stage. Please try again.",
		}, err
	}

	if err := pending.Commit(ctx); err != nil {
		log.Printf("[board] refetch after stage move: %v", err)
	}
	return &Notice{
		Kind:        NoticeSuccess,
		Title:       "Candidate moved",
		Description: fmt.Sprintf("%s moved to %s", current.Name, stage.Label()),
	}, nil
}
