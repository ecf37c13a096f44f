package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout sorts lexicographically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordAttempt inserts a target attempt and returns its row id.
func (s *Store) RecordAttempt(ctx context.Context, a Attempt) (int64, error) {
	if strings.TrimSpace(a.RunID) == "" {
		return 0, errors.New("attempt run id is empty")
	}
	if a.Status == "" {
		a.Status = StatusSuccess
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO attempts (
            run_id, job, target_index, protocol, identifier, european,
            status, error_kind, error_message, started_at, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID,
		nullableString(a.Job),
		a.Index,
		a.Protocol,
		nullableString(a.Identifier),
		boolToInt(a.European),
		a.Status,
		nullableString(a.ErrorKind),
		nullableString(a.ErrorMessage),
		formatTime(a.StartedAt),
		a.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecordRun inserts or replaces the summary row of a dispatch.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	if strings.TrimSpace(r.RunID) == "" {
		return errors.New("run id is empty")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO runs (
            run_id, job, mode, started_at, duration_ms, targets, failed, skipped
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID,
		nullableString(r.Job),
		r.Mode,
		formatTime(r.StartedAt),
		r.Duration.Milliseconds(),
		r.Targets,
		r.Failed,
		nullableString(r.Skipped),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const attemptColumns = `id, run_id, job, target_index, protocol, identifier, european,
    status, error_kind, error_message, started_at, duration_ms`

// ListAttempts returns attempts newest first.
func (s *Store) ListAttempts(ctx context.Context, filter Filter) ([]Attempt, error) {
	var (
		clauses []string
		args    []any
	)
	if runID := strings.TrimSpace(filter.RunID); runID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, runID)
	}
	if job := strings.TrimSpace(filter.Job); job != "" {
		clauses = append(clauses, "job = ?")
		args = append(args, job)
	}
	query := `SELECT ` + attemptColumns + ` FROM attempts`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// GetRun fetches the summary of runID. It returns nil when none exists.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, job, mode, started_at, duration_ms, targets, failed, skipped FROM runs WHERE run_id = ?`,
		strings.TrimSpace(runID))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Prune deletes runs and attempts that started before cutoff and reports how
// many attempts were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	bound := formatTime(cutoff)
	res, err := tx.ExecContext(ctx, `DELETE FROM attempts WHERE started_at < ?`, bound)
	if err != nil {
		return 0, fmt.Errorf("prune attempts: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, bound); err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return removed, nil
}

func scanAttempt(scanner interface{ Scan(dest ...any) error }) (Attempt, error) {
	var (
		attempt      Attempt
		job          sql.NullString
		identifier   sql.NullString
		european     int
		errorKind    sql.NullString
		errorMessage sql.NullString
		startedAt    string
		durationMS   int64
	)
	if err := scanner.Scan(
		&attempt.ID,
		&attempt.RunID,
		&job,
		&attempt.Index,
		&attempt.Protocol,
		&identifier,
		&european,
		&attempt.Status,
		&errorKind,
		&errorMessage,
		&startedAt,
		&durationMS,
	); err != nil {
		return Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	started, err := parseTime(startedAt)
	if err != nil {
		return Attempt{}, err
	}
	attempt.Job = job.String
	attempt.Identifier = identifier.String
	attempt.European = european != 0
	attempt.ErrorKind = errorKind.String
	attempt.ErrorMessage = errorMessage.String
	attempt.StartedAt = started
	attempt.Duration = time.Duration(durationMS) * time.Millisecond
	return attempt, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run        Run
		job        sql.NullString
		skipped    sql.NullString
		startedAt  string
		durationMS int64
	)
	if err := scanner.Scan(&run.RunID, &job, &run.Mode, &startedAt, &durationMS, &run.Targets, &run.Failed, &skipped); err != nil {
		return nil, err
	}
	started, err := parseTime(startedAt)
	if err != nil {
		return nil, err
	}
	run.Job = job.String
	run.Skipped = skipped.String
	run.StartedAt = started
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}
