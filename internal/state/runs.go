package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when a run id has no ledger row.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the lifecycle state of a ledger run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunAborted   RunStatus = "aborted"
	RunCanceled  RunStatus = "canceled"
)

// Terminal reports whether the status ends a run.
func (s RunStatus) Terminal() bool {
	return s != RunRunning
}

// Run is one invocation of generate or resume.
type Run struct {
	ID           string
	Command      string
	Project      string
	RoadmapPath  string
	Provider     string
	Model        string
	Status       RunStatus
	Calls        int
	InputTokens  int64
	OutputTokens int64
	Error        string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// CreateRun inserts a new run row.
func (db *DB) CreateRun(r *Run) error {
	if r.ID == "" {
		return fmt.Errorf("create run: id is required")
	}
	if r.Status == "" {
		r.Status = RunRunning
	}
	_, err := db.Exec(`
		INSERT INTO runs (id, command, project, roadmap_path, provider, model, status,
			calls, input_tokens, output_tokens, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Command, r.Project, nullString(r.RoadmapPath), nullString(r.Provider), nullString(r.Model),
		string(r.Status), r.Calls, r.InputTokens, r.OutputTokens, nullString(r.Error),
		formatTime(r.StartedAt), nullTime(r.FinishedAt))
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// UpdateRun overwrites the mutable columns of an existing run.
func (db *DB) UpdateRun(r *Run) error {
	result, err := db.Exec(`
		UPDATE runs SET roadmap_path = ?, provider = ?, model = ?, status = ?, calls = ?,
			input_tokens = ?, output_tokens = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, nullString(r.RoadmapPath), nullString(r.Provider), nullString(r.Model), string(r.Status), r.Calls,
		r.InputTokens, r.OutputTokens, nullString(r.Error), nullTime(r.FinishedAt), r.ID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update run %s: %w", r.ID, ErrRunNotFound)
	}
	return nil
}

// FinishRun stamps a terminal status and finish time on r and persists it.
// A non-nil runErr is recorded as the run's error text.
func (db *DB) FinishRun(r *Run, status RunStatus, runErr error, at time.Time) error {
	if !status.Terminal() {
		return fmt.Errorf("finish run: %q is not a terminal status", status)
	}
	r.Status = status
	if runErr != nil {
		r.Error = runErr.Error()
	}
	r.FinishedAt = &at
	return db.UpdateRun(r)
}

// GetRun loads a run by id.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns runs newest first. An empty project lists every project;
// a limit of zero or less returns all rows.
func (db *DB) ListRuns(project string, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run for project.
func (db *DB) LatestRun(project string) (*Run, error) {
	runs, err := db.ListRuns(project, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("latest run for %q: %w", project, ErrRunNotFound)
	}
	return &runs[0], nil
}

const runColumns = `id, command, project, roadmap_path, provider, model, status,
	calls, input_tokens, output_tokens, error, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*Run, error) {
	var r Run
	var roadmapPath, provider, model, errText, finishedAt sql.NullString
	var status, startedAt string
	err := s.Scan(&r.ID, &r.Command, &r.Project, &roadmapPath, &provider, &model, &status,
		&r.Calls, &r.InputTokens, &r.OutputTokens, &errText, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	r.RoadmapPath = roadmapPath.String
	r.Provider = provider.String
	r.Model = model.String
	r.Error = errText.String
	r.Status = RunStatus(status)
	if r.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	r.FinishedAt = parseNullableTime(finishedAt)
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
