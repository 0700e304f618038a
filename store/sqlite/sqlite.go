/*
Package sqlite provides a SQLite-backed implementation of the leave stores.

PURPOSE:
  Implements leave.RequestStore and leave.OverrideStore using SQLite. The same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  leave_requests:    One row per request. Rows are never deleted; DENIED
                     requests are retained and returned by fetches so duplicate
                     detection can see them.
  override_records:  Append-only audit trail of manager overrides.

OPTIMISTIC CONCURRENCY:
  leave_requests carries a version column. CommitRescheduled updates dates
  WHERE version = expected, bumping the version in the same statement. Zero
  rows affected means either a concurrent modification (leave.ErrVersionConflict)
  or a missing row (leave.ErrNotFound); a follow-up existence check decides.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers don't
  block and crash recovery improves.

USAGE:
  st, err := sqlite.New("./data/roster.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - leave/store.go: interface definitions
  - leave/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fleetops/roster-engine/leave"
	"github.com/fleetops/roster-engine/roster"
)

// Store implements the leave storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		pilot_id TEXT NOT NULL,
		pilot_name TEXT,
		employee_id TEXT,
		request_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Snapshot fetches filter by pilot and by date intersection
	CREATE INDEX IF NOT EXISTS idx_requests_pilot
		ON leave_requests(pilot_id);
	CREATE INDEX IF NOT EXISTS idx_requests_dates
		ON leave_requests(start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(status);

	-- Override records (append-only audit trail)
	CREATE TABLE IF NOT EXISTS override_records (
		id TEXT PRIMARY KEY,
		leave_request_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		justification TEXT NOT NULL,
		conflict_types TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_overrides_request
		ON override_records(leave_request_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func (s *Store) FetchRequests(ctx context.Context, filter leave.Filter) ([]leave.Request, error) {
	query := `SELECT id, pilot_id, pilot_name, employee_id, request_type, start_date, end_date, status, version
		FROM leave_requests WHERE 1=1`
	var args []any

	if filter.PilotID != "" {
		query += " AND pilot_id = ?"
		args = append(args, filter.PilotID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if !filter.From.IsZero() {
		query += " AND end_date >= ?"
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		query += " AND start_date <= ?"
		args = append(args, filter.To.String())
	}
	query += " ORDER BY start_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch requests: %w", err)
	}
	defer rows.Close()

	var result []leave.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) GetRequest(ctx context.Context, id string) (leave.Request, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, pilot_id, pilot_name, employee_id, request_type, start_date, end_date, status, version
		FROM leave_requests WHERE id = ?`, id)

	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.Request{}, leave.ErrNotFound
	}
	return r, err
}

func (s *Store) SaveRequest(ctx context.Context, r leave.Request) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests (id, pilot_id, pilot_name, employee_id, request_type, start_date, end_date, status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pilot_id = excluded.pilot_id,
			pilot_name = excluded.pilot_name,
			employee_id = excluded.employee_id,
			request_type = excluded.request_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			status = excluded.status,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		r.ID, r.PilotID, r.PilotName, r.EmployeeID, string(r.Type),
		r.Start.String(), r.End.String(), string(r.Status), r.Version, now, now)
	if err != nil {
		return fmt.Errorf("save request: %w", err)
	}
	return nil
}

func (s *Store) CommitRescheduled(ctx context.Context, id string, newStart, newEnd roster.Date, expectedVersion int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET start_date = ?, end_date = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		newStart.String(), newEnd.String(), now, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("commit rescheduled: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("commit rescheduled: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Zero rows: decide which failure this was.
	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM leave_requests WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("commit rescheduled: %w", err)
	}
	if exists == 0 {
		return leave.ErrNotFound
	}
	return leave.ErrVersionConflict
}

// =============================================================================
// OVERRIDE STORE
// =============================================================================

func (s *Store) PersistOverride(ctx context.Context, rec leave.OverrideRecord) error {
	types := make([]string, len(rec.ConflictTypes))
	for i, t := range rec.ConflictTypes {
		types[i] = string(t)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO override_records (id, leave_request_id, actor_id, justification, conflict_types, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.LeaveRequestID, rec.ActorID, rec.Justification,
		strings.Join(types, ","), rec.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("persist override: %w", err)
	}
	return nil
}

func (s *Store) ListOverrides(ctx context.Context, leaveRequestID string) ([]leave.OverrideRecord, error) {
	query := `SELECT id, leave_request_id, actor_id, justification, conflict_types, created_at
		FROM override_records`
	var args []any
	if leaveRequestID != "" {
		query += " WHERE leave_request_id = ?"
		args = append(args, leaveRequestID)
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var result []leave.OverrideRecord
	for rows.Next() {
		var rec leave.OverrideRecord
		var types, createdAt string
		if err := rows.Scan(&rec.ID, &rec.LeaveRequestID, &rec.ActorID, &rec.Justification, &types, &createdAt); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		if types != "" {
			for _, t := range strings.Split(types, ",") {
				rec.ConflictTypes = append(rec.ConflictTypes, leave.ConflictType(t))
			}
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// =============================================================================
// SCANNING
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (leave.Request, error) {
	var r leave.Request
	var reqType, status, start, end string
	err := row.Scan(&r.ID, &r.PilotID, &r.PilotName, &r.EmployeeID, &reqType, &start, &end, &status, &r.Version)
	if err != nil {
		return leave.Request{}, err
	}

	r.Type = leave.RequestType(reqType)
	r.Status = leave.Status(status)
	if r.Start, err = roster.ParseDate(start); err != nil {
		return leave.Request{}, fmt.Errorf("bad start date %q: %w", start, err)
	}
	if r.End, err = roster.ParseDate(end); err != nil {
		return leave.Request{}, fmt.Errorf("bad end date %q: %w", end, err)
	}
	return r, nil
}
