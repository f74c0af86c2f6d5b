package state

import (
	"io"
	"time"
)

// RunStore persists the run ledger.
type RunStore interface {
	CreateRun(r *Run) error
	UpdateRun(r *Run) error
	FinishRun(r *Run, status RunStatus, runErr error, at time.Time) error
	GetRun(id string) (*Run, error)
	ListRuns(project string, limit int) ([]Run, error)
	LatestRun(project string) (*Run, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	Migrate() error
}

// Store is the full ledger backend used by the CLI.
type Store interface {
	io.Closer
	Migrator
	RunStore
}

var (
	_ Store    = (*DB)(nil)
	_ Migrator = (*DB)(nil)
	_ RunStore = (*DB)(nil)
)
