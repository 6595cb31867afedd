// Package store provides persistence for completed question-answering runs.
package store

import (
	"context"
	"database/sql"

	"github.com/andyjacy/aicommonplatform/internal/profile"
)

// QAHistory is one persisted question-answering run, including its trace.
type QAHistory struct {
	ID            int64
	QAID          string // pipeline-assigned question id
	UserID        string
	Question      string
	Answer        string
	Intent        string
	Confidence    float64
	Sources       string // JSON-encoded source list
	ExecutionTime float64
	TraceID       string
	TraceData     string // JSON-encoded trace summary
	CreatedTs     int64
}

// FindQAHistory filters history queries.
type FindQAHistory struct {
	QAID   *string
	UserID *string
	Limit  *int
	Offset *int
}

// Driver is the database abstraction the store runs on.
type Driver interface {
	GetDB() *sql.DB
	Migrate(ctx context.Context) error

	CreateQAHistory(ctx context.Context, create *QAHistory) (*QAHistory, error)
	ListQAHistory(ctx context.Context, find *FindQAHistory) ([]*QAHistory, error)
	CountQAHistory(ctx context.Context) (int64, error)

	Close() error
}

// Store provides database access to QA history.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// CreateQAHistory persists one completed run.
func (s *Store) CreateQAHistory(ctx context.Context, create *QAHistory) (*QAHistory, error) {
	return s.driver.CreateQAHistory(ctx, create)
}

// GetQAHistory fetches one run by its pipeline question id.
func (s *Store) GetQAHistory(ctx context.Context, qaID string) (*QAHistory, error) {
	list, err := s.driver.ListQAHistory(ctx, &FindQAHistory{QAID: &qaID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListQAHistory lists runs matching the filter, newest first.
func (s *Store) ListQAHistory(ctx context.Context, find *FindQAHistory) ([]*QAHistory, error) {
	return s.driver.ListQAHistory(ctx, find)
}

// CountQAHistory returns the total number of persisted runs.
func (s *Store) CountQAHistory(ctx context.Context) (int64, error) {
	return s.driver.CountQAHistory(ctx)
}
