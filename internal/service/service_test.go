package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/talentflow/internal/db"
	"github.com/jonathan/talentflow/internal/events"
	"github.com/jonathan/talentflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	svc    *Service
	events *recorder
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	var (
		mu    sync.Mutex
		tick  = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		seq   int
		rec   = &recorder{}
		clock = func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			tick = tick.Add(time.Second)
			return tick
		}
		ids = func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%04d", seq)
		}
	)

	base := []Option{WithSimulator(Instant()), WithClock(clock), WithIDGenerator(ids), WithPublisher(rec)}
	return &fixture{svc: New(db.NewMemory(), append(base, opts...)...), events: rec}
}

func (f *fixture) seedJobs(t *testing.T, titles ...string) []*types.Job {
	t.Helper()
	out := make([]*types.Job, 0, len(titles))
	for _, title := range titles {
		job, err := f.svc.CreateJob(context.Background(), &types.CreateJobRequest{Title: title, Tags: []string{"Remote"}})
		require.NoError(t, err)
		out = append(out, job)
	}
	return out
}

func TestCreateJob_Defaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateJob(ctx, &types.CreateJobRequest{Title: "Senior Go Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "senior-go-engineer", first.Slug)
	assert.Equal(t, types.JobStatusActive, first.Status)
	assert.Equal(t, 1, first.Order, "first job of an empty board gets order 1")

	order := 20
	_, err = f.svc.CreateJob(ctx, &types.CreateJobRequest{Title: "Pinned", Order: &order})
	require.NoError(t, err)

	next, err := f.svc.CreateJob(ctx, &types.CreateJobRequest{Title: "Next", Status: types.JobStatusArchived})
	require.NoError(t, err)
	assert.Equal(t, 21, next.Order)
	assert.Equal(t, types.JobStatusArchived, next.Status)

	assert.Equal(t, []string{events.JobCreated, events.JobCreated, events.JobCreated}, f.events.kinds())
}

func TestCreateJob_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateJob(context.Background(), &types.CreateJobRequest{})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "This field is required", ve.Fields["title"])

	_, err = f.svc.CreateJob(context.Background(), &types.CreateJobRequest{Title: "   "})
	require.True(t, errors.As(err, &ve), "blank title")
	assert.Equal(t, "This field is required", ve.Fields["title"])

	job, err := f.svc.CreateJob(context.Background(), &types.CreateJobRequest{Title: "  Data Engineer "})
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", job.Title)
	assert.Equal(t, "data-engineer", job.Slug)

	blank := " "
	_, err = f.svc.UpdateJob(context.Background(), job.ID, &types.JobPatch{Title: &blank})
	require.True(t, errors.As(err, &ve), "blank title update")
	assert.Contains(t, ve.Fields, "title")
}

func TestListJobs_FilterSortPaginate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedJobs(t, "Backend Developer", "Frontend Developer", "Data Scientist", "Android Developer")
	archived := types.JobStatusArchived
	all, err := f.svc.ListJobs(ctx, types.JobQuery{})
	require.NoError(t, err)
	_, err = f.svc.UpdateJob(ctx, all.Data[2].ID, &types.JobPatch{Status: &archived})
	require.NoError(t, err)

	tests := []struct {
		name      string
		query     types.JobQuery
		wantTitle []string
		wantTotal int
	}{
		{
			name:      "default order",
			query:     types.JobQuery{},
			wantTitle: []string{"Backend Developer", "Frontend Developer", "Data Scientist", "Android Developer"},
			wantTotal: 4,
		},
		{
			name:      "search title case-insensitive",
			query:     types.JobQuery{Search: "DEVELOPER"},
			wantTitle: []string{"Backend Developer", "Frontend Developer", "Android Developer"},
			wantTotal: 3,
		},
		{
			name:      "search matches tags",
			query:     types.JobQuery{Search: "remo"},
			wantTitle: []string{"Backend Developer", "Frontend Developer", "Data Scientist", "Android Developer"},
			wantTotal: 4,
		},
		{
			name:      "status filter",
			query:     types.JobQuery{Status: types.JobStatusArchived},
			wantTitle: []string{"Data Scientist"},
			wantTotal: 1,
		},
		{
			name:      "sort by title with paging",
			query:     types.JobQuery{Sort: types.JobSortTitle, PageSize: 2, Page: 2},
			wantTitle: []string{"Data Scientist", "Frontend Developer"},
			wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.ListJobs(ctx, tt.query)
			require.NoError(t, err)
			titles := make([]string, len(page.Data))
			for i, j := range page.Data {
				titles[i] = j.Title
			}
			assert.Equal(t, tt.wantTitle, titles)
			assert.Equal(t, tt.wantTotal, page.Pagination.Total)
		})
	}
}

func TestListJobs_TotalPages(t *testing.T) {
	f := newFixture(t)
	titles := make([]string, 23)
	for i := range titles {
		titles[i] = fmt.Sprintf("Job %02d", i)
	}
	f.seedJobs(t, titles...)

	page, err := f.svc.ListJobs(context.Background(), types.JobQuery{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page.Data, 3)
	assert.Equal(t, types.Pagination{Page: 3, PageSize: 10, Total: 23, TotalPages: 3}, page.Pagination)
}

func TestGetJob_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.seedJobs(t, "QA Engineer")[0]

	title := "Senior QA Engineer"
	updated, err := f.svc.UpdateJob(ctx, job.ID, &types.JobPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, job.Slug, updated.Slug)
	assert.True(t, updated.UpdatedAt.After(job.UpdatedAt))

	_, err = f.svc.UpdateJob(ctx, "missing", &types.JobPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReorderJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	titles := make([]string, 10)
	for i := range titles {
		titles[i] = fmt.Sprintf("Job %d", i+1)
	}
	jobs := f.seedJobs(t, titles...) // orders 1..10

	moved, err := f.svc.ReorderJob(ctx, jobs[4].ID, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Order)

	page, err := f.svc.ListJobs(ctx, types.JobQuery{PageSize: 20})
	require.NoError(t, err)
	got := make([]string, len(page.Data))
	orders := map[string]int{}
	for i, j := range page.Data {
		got[i] = j.Title
		orders[j.Title] = j.Order
	}
	assert.Equal(t, []string{"Job 1", "Job 5", "Job 2", "Job 3", "Job 4", "Job 6", "Job 7", "Job 8", "Job 9", "Job 10"}, got)
	assert.Equal(t, 3, orders["Job 2"])
	assert.Equal(t, 4, orders["Job 3"])
	assert.Equal(t, 5, orders["Job 4"])
	assert.Contains(t, f.events.kinds(), events.JobsReordered)
}

func TestReorderJob_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	jobs := f.seedJobs(t, "A", "B", "C")

	_, err := f.svc.ReorderJob(ctx, jobs[0].ID, 1, 1)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = f.svc.ReorderJob(ctx, "missing", 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.ReorderJob(ctx, jobs[0].ID, 3, 1)
	var ce *ConflictError
	assert.True(t, errors.As(err, &ce))
}

func TestReorderJob_ConcurrentMovesStayConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	titles := make([]string, 8)
	for i := range titles {
		titles[i] = fmt.Sprintf("Job %d", i+1)
	}
	jobs := f.seedJobs(t, titles...)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Some of these will be rejected as stale; none may corrupt the board.
			_, _ = f.svc.ReorderJob(ctx, jobs[i].ID, i+1, 8-i)
		}(i)
	}
	wg.Wait()

	page, err := f.svc.ListJobs(ctx, types.JobQuery{PageSize: 20})
	require.NoError(t, err)
	seen := map[int]bool{}
	for _, j := range page.Data {
		assert.False(t, seen[j.Order], "duplicate order %d", j.Order)
		seen[j.Order] = true
	}
	assert.Len(t, seen, 8)
}

func TestSimulatedFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.seedJobs(t, "A", "B")[0]

	failing := New(f.svc.Store(), WithSimulator(NewSimulator(SimulatorConfig{ErrorRate: 1}, nil)))

	_, err := failing.CreateJob(ctx, &types.CreateJobRequest{Title: "never"})
	assert.ErrorIs(t, err, ErrSimulated)
	assert.Equal(t, "Failed to create job", err.Error())

	_, err = failing.ReorderJob(ctx, job.ID, 1, 2)
	assert.ErrorIs(t, err, ErrSimulated)

	// Reads never fail.
	_, err = failing.GetJob(ctx, job.ID)
	assert.NoError(t, err)

	page, err := f.svc.ListJobs(ctx, types.JobQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total, "failed writes must not change state")
	assert.Equal(t, 1, page.Data[0].Order)
}

func TestDelay_HonorsCancellation(t *testing.T) {
	svc := New(db.NewMemory(), WithSimulator(NewSimulator(SimulatorConfig{MinDelay: time.Hour, MaxDelay: time.Hour}, nil)))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.ListJobs(ctx, types.JobQuery{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// gatedStore holds the first armed Scan of collection, after it has read the
// documents, until release is closed.
type gatedStore struct {
	db.Store
	collection string
	armed      atomic.Bool
	reached    chan struct{}
	release    chan struct{}
}

func (g *gatedStore) Scan(ctx context.Context, collection string) ([][]byte, error) {
	docs, err := g.Store.Scan(ctx, collection)
	if collection == g.collection && g.armed.CompareAndSwap(true, false) {
		close(g.reached)
		<-g.release
	}
	return docs, err
}

func TestListJobs_WriteDuringReadIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{
		Store:      db.NewMemory(),
		collection: db.Jobs,
		reached:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	cache := &memoryCache{}
	svc := New(store, WithSimulator(Instant()), WithCache(cache))

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		job, err := svc.CreateJob(ctx, &types.CreateJobRequest{Title: title})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}
	store.armed.Store(true)

	done := make(chan error, 1)
	go func() {
		_, err := svc.ListJobs(ctx, types.JobQuery{})
		done <- err
	}()
	<-store.reached

	_, err := svc.ReorderJob(ctx, ids[2], 3, 1)
	require.NoError(t, err)
	close(store.release)
	require.NoError(t, <-done)

	page, err := svc.ListJobs(ctx, types.JobQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, ids[2], page.Data[0].ID, "reordered job comes first")
	assert.Equal(t, 1, page.Data[0].Order)
}
