package state

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

// setupTestDB opens and migrates a ledger in a temp dir.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"), "")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_Drivers(t *testing.T) {
	tests := []struct {
		name       string
		driver     string
		wantDriver string
		wantErr    string
		optional   bool
	}{
		{name: "default is pure go", driver: "", wantDriver: DriverModernc},
		{name: "explicit modernc", driver: DriverModernc, wantDriver: DriverModernc},
		// mattn/go-sqlite3 needs cgo; without it Open fails and the case is skipped.
		{name: "cgo", driver: DriverCGO, wantDriver: DriverCGO, optional: true},
		{name: "unknown", driver: "postgres", wantErr: "unknown sqlite driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "dir", "state.db")
			db, err := Open(path, tt.driver)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Open error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				if tt.optional {
					t.Skipf("driver %s unavailable: %v", tt.driver, err)
				}
				t.Fatalf("Open failed: %v", err)
			}
			defer db.Close()

			if db.Driver() != tt.wantDriver {
				t.Errorf("Driver() = %q, want %q", db.Driver(), tt.wantDriver)
			}
			if db.Path() != path {
				t.Errorf("Path() = %q, want %q", db.Path(), path)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("database file not created: %v", err)
			}

			// The ledger works end to end on every driver.
			if err := db.Migrate(); err != nil {
				t.Fatalf("Migrate failed: %v", err)
			}
			if err := db.CreateRun(&Run{ID: "r1", Command: "generate", Project: "p", StartedAt: time.Now()}); err != nil {
				t.Fatalf("CreateRun failed: %v", err)
			}
			got, err := db.GetRun("r1")
			if err != nil {
				t.Fatalf("GetRun failed: %v", err)
			}
			if got.Status != RunRunning {
				t.Errorf("Status = %q, want %q", got.Status, RunRunning)
			}
		})
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	// Nothing can be created under /proc.
	if _, err := Open("/proc/nonexistent/state.db", ""); err == nil {
		t.Error("expected error opening db at invalid path")
	}
}

func TestClose(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "state.db"), "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if _, err := db.Query("SELECT 1"); err == nil {
		t.Error("expected error after close")
	}
}

func TestMigrate(t *testing.T) {
	db := setupTestDB(t)

	// Re-running is a no-op.
	for i := 0; i < 2; i++ {
		if err := db.Migrate(); err != nil {
			t.Fatalf("Migrate (again, %d) failed: %v", i, err)
		}
	}

	for _, obj := range []struct{ kind, name string }{
		{"table", "schema_version"},
		{"table", "runs"},
		{"index", "idx_runs_project"},
		{"index", "idx_runs_status"},
	} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", obj.kind, obj.name).Scan(&count); err != nil {
			t.Fatalf("lookup %s %s: %v", obj.kind, obj.name, err)
		}
		if count != 1 {
			t.Errorf("%s %s missing", obj.kind, obj.name)
		}
	}

	rows, err := db.Query("SELECT version FROM schema_version ORDER BY version")
	if err != nil {
		t.Fatalf("query schema_version: %v", err)
	}
	defer rows.Close()
	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			t.Fatalf("scan version: %v", err)
		}
		versions = append(versions, v)
	}
	if len(versions) != len(migrations) {
		t.Fatalf("versions = %v, want one per migration (%d)", versions, len(migrations))
	}
	for i, m := range migrations {
		if versions[i] != m.version {
			t.Errorf("version[%d] = %d, want %d", i, versions[i], m.version)
		}
	}
}

func TestMigrate_UpgradesFromV1(t *testing.T) {
	db := setupTestDB(t)

	// Pretend the ledger was created before the indexes existed.
	if _, err := db.Exec(`DROP INDEX idx_runs_project; DROP INDEX idx_runs_status; DELETE FROM schema_version WHERE version > 1`); err != nil {
		t.Fatalf("downgrade: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	var max int
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&max); err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if max != 2 {
		t.Errorf("schema version = %d, want 2", max)
	}
}

func TestOpenProject(t *testing.T) {
	root := t.TempDir()
	db, err := OpenProject(root, "")
	if err != nil {
		t.Fatalf("OpenProject failed: %v", err)
	}
	defer db.Close()

	if want := ProjectDBPath(root); db.Path() != want {
		t.Errorf("Path() = %q, want %q", db.Path(), want)
	}
	if want := filepath.Join(root, ".arbor", "state.db"); ProjectDBPath(root) != want {
		t.Errorf("ProjectDBPath() = %q, want %q", ProjectDBPath(root), want)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("runs table missing after OpenProject: %v", err)
	}
}

const insertRun = `INSERT INTO runs (id, command, project, status, started_at) VALUES (?, ?, ?, ?, ?)`

func TestTransaction(t *testing.T) {
	db := setupTestDB(t)
	stamp := formatTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	err := db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(insertRun, "tx-ok", "generate", "shop", "completed", stamp)
		return err
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}

	errBoom := errors.New("boom")
	err = db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(insertRun, "tx-fail", "generate", "shop", "running", stamp); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Errorf("Transaction error = %v, want %v", err, errBoom)
	}

	rows, err := db.Query("SELECT id FROM runs ORDER BY id")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 1 || ids[0] != "tx-ok" {
		t.Errorf("committed ids = %v, want [tx-ok]", ids)
	}
}

func TestFormatTime_SortsAsText(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{
		base.Add(500 * time.Millisecond),
		base,
		base.Add(time.Nanosecond),
		base.Add(-time.Second),
		base.In(time.FixedZone("EST", -5*3600)).Add(time.Hour),
	}

	formatted := make([]string, len(times))
	for i, tm := range times {
		formatted[i] = formatTime(tm)
		parsed, err := parseTime(formatted[i])
		if err != nil {
			t.Fatalf("parseTime(%q) failed: %v", formatted[i], err)
		}
		if !parsed.Equal(tm) {
			t.Errorf("round trip %v -> %q -> %v", tm, formatted[i], parsed)
		}
	}

	sort.Strings(formatted)
	sorted := append([]time.Time(nil), times...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	for i := range sorted {
		if formatted[i] != formatTime(sorted[i]) {
			t.Errorf("text order[%d] = %q, want %q", i, formatted[i], formatTime(sorted[i]))
		}
	}
}

func TestParseNullableTime(t *testing.T) {
	if got := parseNullableTime(sql.NullString{String: "2024-01-01T12:00:00Z", Valid: true}); got == nil {
		t.Error("expected time for valid input")
	}
	if got := parseNullableTime(sql.NullString{}); got != nil {
		t.Errorf("NULL = %v, want nil", got)
	}
	if got := parseNullableTime(sql.NullString{String: "not a time", Valid: true}); got != nil {
		t.Errorf("bad format = %v, want nil", got)
	}
}
