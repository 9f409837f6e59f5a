// Package service implements the talentflow persistence and query service: a
// document-store backed API that simulates network latency and transient
// failures the way a remote hiring backend would.
package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talentflow/internal/db"
	"github.com/jonathan/talentflow/internal/events"
	"github.com/jonathan/talentflow/internal/types"
)

// Cache stores list pages. Implementations must treat failures as misses.
type Cache interface {
	Key(collection string, query any) string
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, collection string) error
}

// Publisher receives change notifications after successful writes.
type Publisher interface {
	Publish(evt events.Event)
}

// Service is the hiring pipeline API. It is safe for concurrent use.
type Service struct {
	store       db.Store
	jobs        *db.Table[types.Job]
	candidates  *db.Table[types.Candidate]
	timeline    *db.Table[types.TimelineEntry]
	notes       *db.Table[types.CandidateNote]
	assessments *db.Table[types.Assessment]
	responses   *db.Table[types.AssessmentResponse]

	sim       *Simulator
	cache     Cache
	publisher Publisher
	now       func() time.Time
	newID     func() string

	// reorderMu serializes order shifts so two concurrent moves cannot interleave their point updates.
	reorderMu sync.Mutex

	// generations counts writes per collection. A list page read under an
	// older generation is not cached.
	genMu       sync.Mutex
	generations map[string]uint64
}

// cacheTicket remembers where a list page would be cached and the collection
// generation it was read under.
type cacheTicket struct {
	key        string
	collection string
	generation uint64
}

// Option configures a Service.
type Option func(*Service)

// WithSimulator replaces the default latency and failure simulator.
func WithSimulator(sim *Simulator) Option {
	return func(s *Service) { s.sim = sim }
}

// WithCache enables list caching.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithPublisher sends change events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// New creates a Service over store.
func New(store db.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		jobs:        db.NewTable(store, db.Jobs, func(j *types.Job) string { return j.ID }),
		candidates:  db.NewTable(store, db.Candidates, func(c *types.Candidate) string { return c.ID }),
		timeline:    db.NewTable(store, db.CandidateTimeline, func(e *types.TimelineEntry) string { return e.ID }),
		notes:       db.NewTable(store, db.CandidateNotes, func(n *types.CandidateNote) string { return n.ID }),
		assessments: db.NewTable(store, db.Assessments, func(a *types.Assessment) string { return a.ID }),
		responses:   db.NewTable(store, db.AssessmentResponses, func(r *types.AssessmentResponse) string { return r.ID }),
		sim:         NewSimulator(DefaultSimulatorConfig(), nil),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       newUUID,
		generations: map[string]uint64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newUUID returns a time-ordered UUIDv7 so primary-key order follows creation order.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Store returns the underlying document store.
func (s *Service) Store() db.Store {
	return s.store
}

// begin applies the simulated network latency every operation pays.
func (s *Service) begin(ctx context.Context) error {
	return s.sim.Delay(ctx)
}

// beginWrite is begin plus the random write failure.
func (s *Service) beginWrite(ctx context.Context, op string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	if err := s.sim.Fail(op); err != nil {
		log.Printf("[service] simulated failure: %s", op)
		return err
	}
	return nil
}

func (s *Service) generation(collection string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[collection]
}

func (s *Service) bumpGeneration(collection string) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generations[collection]++
}

// cached looks up a list page. The returned ticket must be taken before the
// store is read so remember can tell whether a write happened in between.
func (s *Service) cached(ctx context.Context, collection string, query any, out any) (cacheTicket, bool) {
	if s.cache == nil {
		return cacheTicket{}, false
	}
	t := cacheTicket{
		key:        s.cache.Key(collection, query),
		collection: collection,
		generation: s.generation(collection),
	}
	hit, err := s.cache.GetJSON(ctx, t.key, out)
	if err != nil {
		log.Printf("[cache] read %s failed: %v", t.key, err)
		return t, false
	}
	return t, hit
}

// remember caches value unless the collection changed since t was taken.
func (s *Service) remember(ctx context.Context, t cacheTicket, value any) {
	if s.cache == nil || t.key == "" {
		return
	}
	if s.generation(t.collection) != t.generation {
		return
	}
	if err := s.cache.SetJSON(ctx, t.key, value); err != nil {
		log.Printf("[cache] write %s failed: %v", t.key, err)
	}
}

// changed invalidates cached lists of collection and announces the write.
func (s *Service) changed(ctx context.Context, collection, eventType, id string) {
	if s.cache != nil {
		s.bumpGeneration(collection)
		if err := s.cache.Invalidate(ctx, collection); err != nil {
			log.Printf("[cache] invalidate %s failed: %v", collection, err)
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(events.Event{Type: eventType, ID: id, At: s.now()})
	}
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
