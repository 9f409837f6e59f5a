// Package seed fills an empty store with a realistic hiring board: 25 jobs,
// a large candidate pool with stage histories, and a few assessments.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talentflow/internal/assessment"
	"github.com/jonathan/talentflow/internal/db"
	"github.com/jonathan/talentflow/internal/types"
)

// DefaultCandidates is the number of candidates seeded when Options.Candidates is 0.
const DefaultCandidates = 1000

// DefaultWorkers bounds concurrent candidate writes.
const DefaultWorkers = 8

const day = 24 * time.Hour

var jobTitles = []string{
	"Senior Frontend Engineer", "Backend Developer", "Full Stack Engineer", "DevOps Engineer",
	"Product Manager", "UX Designer", "Data Scientist", "Mobile Developer", "QA Engineer",
	"Technical Writer", "Engineering Manager", "Solutions Architect", "Security Engineer",
	"Machine Learning Engineer", "Site Reliability Engineer", "Product Designer", "Business Analyst",
	"Scrum Master", "Cloud Engineer", "Database Administrator", "Frontend Developer", "iOS Developer",
	"Android Developer", "UI Designer", "Growth Engineer",
}

var jobTags = []string{
	"Remote", "Full-time", "Part-time", "Contract", "Senior", "Junior",
	"Mid-level", "Engineering", "Design", "Product", "Data", "Management",
}

var firstNames = []string{
	"Emma", "Liam", "Olivia", "Noah", "Ava", "Ethan", "Sophia", "Mason", "Isabella", "William",
	"Mia", "James", "Charlotte", "Benjamin", "Amelia", "Lucas", "Harper", "Henry", "Evelyn",
	"Alexander", "Abigail", "Michael", "Emily", "Daniel", "Elizabeth", "Matthew", "Sofia",
	"Jackson", "Avery", "Sebastian", "Ella", "Jack", "Scarlett", "Aiden", "Grace", "Owen",
	"Chloe", "Samuel", "Victoria", "David", "Riley", "Joseph", "Aria", "Carter", "Lily",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez",
	"Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor",
	"Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White", "Harris", "Sanchez",
	"Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young", "Allen", "King",
}

// Options configures a seeding run.
type Options struct {
	Candidates int              // defaults to DefaultCandidates
	Workers    int              // defaults to DefaultWorkers
	Seed       uint64           // 0 picks a time-based seed
	Now        func() time.Time // defaults to time.Now
}

// Result summarizes what was written.
type Result struct {
	Skipped     bool
	Jobs        int
	Candidates  int
	Timeline    int
	Assessments int
}

func (r *Result) String() string {
	if r.Skipped {
		return "store already seeded"
	}
	return fmt.Sprintf("created %d jobs, %d candidates (%d timeline entries), %d assessments",
		r.Jobs, r.Candidates, r.Timeline, r.Assessments)
}

type candidateRecord struct {
	candidate types.Candidate
	timeline  []types.TimelineEntry
}

// Run seeds store unless it already holds jobs.
func Run(ctx context.Context, store db.Store, opts Options) (*Result, error) {
	if opts.Candidates <= 0 {
		opts.Candidates = DefaultCandidates
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	count, err := store.Count(ctx, db.Jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	if count > 0 {
		log.Printf("[seed] store already seeded | jobs=%d", count)
		return &Result{Skipped: true}, nil
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	now := opts.Now()

	jobs := generateJobs(rng, now)
	records := generateCandidates(rng, now, jobs, opts.Candidates)
	assessments, err := buildAssessments(jobs, now)
	if err != nil {
		return nil, err
	}

	jobTable := db.NewTable(store, db.Jobs, func(j *types.Job) string { return j.ID })
	candTable := db.NewTable(store, db.Candidates, func(c *types.Candidate) string { return c.ID })
	timelineTable := db.NewTable(store, db.CandidateTimeline, func(e *types.TimelineEntry) string { return e.ID })
	assessmentTable := db.NewTable(store, db.Assessments, func(a *types.Assessment) string { return a.ID })

	log.Printf("[seed] seeding | jobs=%d candidates=%d assessments=%d", len(jobs), len(records), len(assessments))

	for i := range jobs {
		if err := jobTable.Put(ctx, &jobs[i]); err != nil {
			return nil, fmt.Errorf("failed to seed job %s: %w", jobs[i].ID, err)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range records {
		rec := &records[i]
		g.Go(func() error {
			if err := candTable.Put(gCtx, &rec.candidate); err != nil {
				return fmt.Errorf("failed to seed candidate %s: %w", rec.candidate.ID, err)
			}
			for j := range rec.timeline {
				if err := timelineTable.Put(gCtx, &rec.timeline[j]); err != nil {
					return fmt.Errorf("failed to seed timeline %s: %w", rec.timeline[j].ID, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range assessments {
		if err := assessmentTable.Put(ctx, &assessments[i]); err != nil {
			return nil, fmt.Errorf("failed to seed assessment %s: %w", assessments[i].ID, err)
		}
	}

	res := &Result{Jobs: len(jobs), Candidates: len(records), Assessments: len(assessments)}
	for _, r := range records {
		res.Timeline += len(r.timeline)
	}
	log.Printf("[seed] done | %s", res)
	return res, nil
}

func generateJobs(rng *rand.Rand, now time.Time) []types.Job {
	jobs := make([]types.Job, len(jobTitles))
	for i, title := range jobTitles {
		status := types.JobStatusArchived
		if rng.Float64() > 0.3 {
			status = types.JobStatusActive
		}
		jobs[i] = types.Job{
			ID:          fmt.Sprintf("job-%02d", i+1),
			Title:       title,
			Slug:        types.Slugify(title),
			Status:      status,
			Tags:        pick(rng, jobTags, 2+rng.IntN(3)),
			Order:       i,
			Description: fmt.Sprintf("We are looking for a talented %s to join our team.", title),
			CreatedAt:   now.Add(-time.Duration(rng.Float64() * float64(90*day))),
			UpdatedAt:   now,
		}
	}
	return jobs
}

func generateCandidates(rng *rand.Rand, now time.Time, jobs []types.Job, n int) []candidateRecord {
	out := make([]candidateRecord, n)
	for i := range out {
		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]
		stage := types.Stages[rng.IntN(len(types.Stages))]
		created := now.Add(-time.Duration(rng.Float64() * float64(60*day)))
		id := fmt.Sprintf("candidate-%04d", i+1)

		c := types.Candidate{
			ID:        id,
			Name:      first + " " + last,
			Email:     fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			Stage:     stage,
			JobID:     jobs[rng.IntN(len(jobs))].ID,
			Phone:     fmt.Sprintf("+1-555-%04d", rng.IntN(10000)),
			CreatedAt: created,
			UpdatedAt: now,
		}
		out[i] = candidateRecord{candidate: c, timeline: walkPipeline(id, stage, created)}
	}
	return out
}

// walkPipeline records a candidate entering as applied and advancing one stage
// every three days until reaching stage.
func walkPipeline(candidateID string, stage types.Stage, start time.Time) []types.TimelineEntry {
	entries := []types.TimelineEntry{{
		ID:          fmt.Sprintf("timeline-%s-1", candidateID),
		CandidateID: candidateID,
		ToStage:     types.StageApplied,
		Timestamp:   start,
	}}
	for j := 1; j <= stage.Index(); j++ {
		from := types.Stages[j-1]
		entries = append(entries, types.TimelineEntry{
			ID:          fmt.Sprintf("timeline-%s-%d", candidateID, j+1),
			CandidateID: candidateID,
			FromStage:   &from,
			ToStage:     types.Stages[j],
			Timestamp:   start.Add(time.Duration(j) * 3 * day),
		})
	}
	return entries
}

func buildAssessments(jobs []types.Job, now time.Time) ([]types.Assessment, error) {
	fixtures, err := loadAssessmentFixtures()
	if err != nil {
		return nil, err
	}
	out := make([]types.Assessment, 0, len(fixtures))
	for i, f := range fixtures {
		if f.Job < 0 || f.Job >= len(jobs) {
			return nil, fmt.Errorf("assessment fixture %q: job index %d out of range", f.Title, f.Job)
		}
		sections, err := f.sections()
		if err != nil {
			return nil, err
		}
		a := types.Assessment{
			ID:        fmt.Sprintf("assessment-%d", i+1),
			JobID:     jobs[f.Job].ID,
			Title:     f.Title,
			Sections:  sections,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := assessment.CheckStructure(&a); err != nil {
			return nil, fmt.Errorf("assessment fixture %q: %w", f.Title, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// pick returns n distinct items from list in random order.
func pick(rng *rand.Rand, list []string, n int) []string {
	idx := rng.Perm(len(list))
	out := make([]string, 0, n)
	for _, i := range idx[:min(n, len(list))] {
		out = append(out, list[i])
	}
	return out
}
