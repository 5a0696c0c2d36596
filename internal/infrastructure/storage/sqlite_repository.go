package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // SQLite driver

	"BrainGuard/internal/domain"
	"BrainGuard/internal/ports"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	start_time INTEGER NOT NULL,
	sites TEXT NOT NULL DEFAULT '[]',
	detections INTEGER NOT NULL DEFAULT 0,
	time_spent_ms INTEGER NOT NULL DEFAULT 0,
	productive_ms INTEGER NOT NULL DEFAULT 0,
	categories TEXT NOT NULL DEFAULT '{}',
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_recorded_at ON sessions(recorded_at);
`

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLiteRepository keeps the append-only session log in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.SessionRepository = (*SQLiteRepository)(nil)

// Open creates (if needed) and opens the session database at path.
// MemoryDSN gives a throwaway database for tests and dry runs.
func Open(ctx context.Context, path string) (*SQLiteRepository, error) {
	dsn := path
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; also keeps an in-memory database alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if path != MemoryDSN {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// NewSQLiteRepository wraps an already opened database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Append stores one session record.
func (r *SQLiteRepository) Append(ctx context.Context, record domain.SessionRecord) error {
	if r.db == nil {
		return nil
	}

	sites, err := json.Marshal(nonNilSites(record.SitesVisited))
	if err != nil {
		return fmt.Errorf("encode sites: %w", err)
	}
	categories, err := json.Marshal(toMillis(record.Categories))
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	recordedAt := record.Timestamp
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	query, args, err := builder.Insert("sessions").
		Columns("start_time", "sites", "detections", "time_spent_ms", "productive_ms", "categories", "recorded_at").
		Values(
			record.StartTime.UnixMilli(),
			string(sites),
			record.Detections,
			record.TimeSpent.Milliseconds(),
			record.ProductiveTime.Milliseconds(),
			string(categories),
			recordedAt.UnixMilli(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Since returns records stored strictly after since, oldest first.
func (r *SQLiteRepository) Since(ctx context.Context, since time.Time) ([]domain.SessionRecord, error) {
	if r.db == nil {
		return nil, nil
	}

	query, args, err := builder.
		Select("id", "start_time", "sites", "detections", "time_spent_ms", "productive_ms", "categories", "recorded_at").
		From("sessions").
		Where(sq.Gt{"recorded_at": since.UnixMilli()}).
		OrderBy("recorded_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	var result []domain.SessionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		result = append(result, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// Prune deletes records stored at or before the cutoff.
func (r *SQLiteRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	if r.db == nil {
		return 0, nil
	}

	query, args, err := builder.Delete("sessions").
		Where(sq.LtOrEq{"recorded_at": before.UnixMilli()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func scanRecord(rows *sql.Rows) (domain.SessionRecord, error) {
	var (
		rec                                domain.SessionRecord
		start, spent, productive, recorded int64
		sites, categories                  string
	)
	if err := rows.Scan(&rec.ID, &start, &sites, &rec.Detections, &spent, &productive, &categories, &recorded); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("scan session: %w", err)
	}

	if err := json.Unmarshal([]byte(sites), &rec.SitesVisited); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("decode sites of session %d: %w", rec.ID, err)
	}
	var catMillis map[string]int64
	if err := json.Unmarshal([]byte(categories), &catMillis); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("decode categories of session %d: %w", rec.ID, err)
	}

	rec.StartTime = time.UnixMilli(start).UTC()
	rec.TimeSpent = time.Duration(spent) * time.Millisecond
	rec.ProductiveTime = time.Duration(productive) * time.Millisecond
	rec.Timestamp = time.UnixMilli(recorded).UTC()
	rec.Categories = make(map[string]time.Duration, len(catMillis))
	for k, v := range catMillis {
		rec.Categories[k] = time.Duration(v) * time.Millisecond
	}
	return rec, nil
}

func nonNilSites(sites []string) []string {
	if sites == nil {
		return []string{}
	}
	return sites
}

func toMillis(categories map[string]time.Duration) map[string]int64 {
	out := make(map[string]int64, len(categories))
	for k, v := range categories {
		out[k] = v.Milliseconds()
	}
	return out
}
