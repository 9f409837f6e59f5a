// Package db provides the document store behind the talentflow service.
//
// Records are kept as JSON documents grouped into collections. Three backends
// implement Store: an in-memory map, a SQLite file (modernc.org/sqlite) and
// PostgreSQL (pgx). Each collection declares the fields it can be queried by,
// mirroring the secondary indexes of the dashboard's browser database.
package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
)

// Collection names
const (
	Jobs                = "jobs"
	Candidates          = "candidates"
	CandidateTimeline   = "candidate_timeline"
	CandidateNotes      = "candidate_notes"
	Assessments         = "assessments"
	AssessmentResponses = "assessment_responses"
)

// Indexes lists the queryable fields of every collection.
var Indexes = map[string][]string{
	Jobs:                {"title", "status", "order", "slug"},
	Candidates:          {"name", "email", "stage", "jobId"},
	CandidateTimeline:   {"candidateId", "timestamp"},
	CandidateNotes:      {"candidateId", "createdAt"},
	Assessments:         {"jobId"},
	AssessmentResponses: {"assessmentId", "candidateId"},
}

var (
	// ErrUnknownCollection is returned for a collection not listed in Indexes.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrNotIndexed is returned when Where is called on a field the collection does not index.
	ErrNotIndexed = errors.New("field is not indexed")
)

// Store persists JSON documents by collection and id.
//
// Get returns nil, nil when the document does not exist. Scan and Where return
// documents ordered by id. All methods are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Put(ctx context.Context, collection, id string, body []byte) error
	Delete(ctx context.Context, collection, id string) error
	Scan(ctx context.Context, collection string) ([][]byte, error)
	Where(ctx context.Context, collection, field, value string) ([][]byte, error)
	Count(ctx context.Context, collection string) (int, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the backend named by driver and creates the schema.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case DriverMemory, "":
		s = NewMemory()
	case DriverSQLite:
		s, err = OpenSQLite(dsn)
	case DriverPostgres:
		s, err = Connect(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	log.Printf("[store] opened %s store", driverName(driver))
	return s, nil
}

func driverName(driver string) string {
	if driver == "" {
		return DriverMemory
	}
	return driver
}

func checkCollection(collection string) error {
	if _, ok := Indexes[collection]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return nil
}

func checkIndexed(collection, field string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if !slices.Contains(Indexes[collection], field) {
		return fmt.Errorf("%w: %s.%s", ErrNotIndexed, collection, field)
	}
	return nil
}
