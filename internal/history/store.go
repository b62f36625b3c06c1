// Package history retains completed sessions for the statistics API.
// The store runs on an in-memory sqlite database: statistics survive
// monitor restarts within a process but die with it, matching the
// in-memory lifetime of the rest of the engine.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mikrosense/mikrosense/internal/model"
)

// InMemoryDSN keeps the whole store process-local.
const InMemoryDSN = ":memory:"

// DefaultRetention is how long completed sessions are kept before a
// purge evicts them.
const DefaultRetention = 24 * time.Hour

// Store records closed sessions and answers aggregate queries over them.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes the database and runs migrations.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection: the in-memory database lives and dies with it.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	store := &Store{db: db, logger: logger}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the connection pool, discarding in-memory history.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		// Timestamps are Unix nanoseconds: integer comparisons keep
		// ordering and purge cutoffs exact at sub-second precision.
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mac TEXT NOT NULL,
			host_name TEXT NOT NULL,
			address TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			disconnected_at INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			bytes_in INTEGER NOT NULL,
			bytes_out INTEGER NOT NULL,
			kicked INTEGER NOT NULL,
			kick_reason TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_mac ON sessions(mac);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_disconnected_at ON sessions(disconnected_at);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}
	}
	return nil
}

// RecordClosed appends one completed session.
func (s *Store) RecordClosed(ctx context.Context, closed model.ClosedSession) error {
	kicked := 0
	if closed.Kicked {
		kicked = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (mac, host_name, address, started_at, disconnected_at, duration_seconds, bytes_in, bytes_out, kicked, kick_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		closed.MAC,
		closed.Record.HostName,
		closed.Record.Address,
		closed.StartedAt.UnixNano(),
		closed.DisconnectedAt.UnixNano(),
		int64(closed.SessionLength/time.Second),
		int64(closed.BytesIn),
		int64(closed.BytesOut),
		kicked,
		closed.KickReason,
	)
	return err
}

// SessionRow is one completed session as returned by queries.
type SessionRow struct {
	MAC            string    `json:"mac"`
	HostName       string    `json:"host_name"`
	Address        string    `json:"address"`
	StartedAt      time.Time `json:"started_at"`
	DisconnectedAt time.Time `json:"disconnected_at"`
	Duration       string    `json:"duration"`
	BytesIn        uint64    `json:"bytes_in"`
	BytesOut       uint64    `json:"bytes_out"`
	Kicked         bool      `json:"kicked"`
	KickReason     string    `json:"kick_reason,omitempty"`
}

// RecentSessions returns completed sessions, most recent disconnect
// first.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT mac, host_name, address, started_at, disconnected_at, duration_seconds, bytes_in, bytes_out, kicked, kick_reason
		FROM sessions
		ORDER BY disconnected_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var (
			row                  SessionRow
			startedNs, endedNs   int64
			durationSecs, kicked int64
			bytesIn, bytesOut    int64
		)
		if err := rows.Scan(&row.MAC, &row.HostName, &row.Address, &startedNs, &endedNs, &durationSecs, &bytesIn, &bytesOut, &kicked, &row.KickReason); err != nil {
			return nil, err
		}
		row.StartedAt = time.Unix(0, startedNs).UTC()
		row.DisconnectedAt = time.Unix(0, endedNs).UTC()
		row.Duration = model.FormatDuration(time.Duration(durationSecs) * time.Second)
		row.BytesIn = uint64(bytesIn)
		row.BytesOut = uint64(bytesOut)
		row.Kicked = kicked != 0
		out = append(out, row)
	}
	return out, rows.Err()
}

// MACSummary aggregates all completed sessions of one MAC.
type MACSummary struct {
	MAC        string `json:"mac"`
	HostName   string `json:"host_name"`
	Sessions   int    `json:"sessions"`
	TotalTime  string `json:"total_time"`
	TotalBytes uint64 `json:"total_bytes"`
}

// MostConnectedMACs ranks MACs by completed session count.
func (s *Store) MostConnectedMACs(ctx context.Context, limit int) ([]MACSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT mac,
		       MAX(host_name) AS host_name,
		       COUNT(*) AS sessions,
		       SUM(duration_seconds) AS total_seconds,
		       SUM(bytes_in + bytes_out) AS total_bytes
		FROM sessions
		GROUP BY mac
		ORDER BY sessions DESC, total_seconds DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MACSummary
	for rows.Next() {
		var (
			summary               MACSummary
			totalSecs, totalBytes int64
		)
		if err := rows.Scan(&summary.MAC, &summary.HostName, &summary.Sessions, &totalSecs, &totalBytes); err != nil {
			return nil, err
		}
		summary.TotalTime = model.FormatDuration(time.Duration(totalSecs) * time.Second)
		summary.TotalBytes = uint64(totalBytes)
		out = append(out, summary)
	}
	return out, rows.Err()
}

// Stats summarizes the retained history.
type Stats struct {
	TotalSessions   int    `json:"total_sessions"`
	UniqueMACs      int    `json:"unique_macs"`
	KickedSessions  int    `json:"kicked_sessions"`
	TotalBytesIn    uint64 `json:"total_bytes_in"`
	TotalBytesOut   uint64 `json:"total_bytes_out"`
	AverageDuration string `json:"average_duration"`
}

// Statistics computes aggregate figures over all retained sessions.
func (s *Store) Statistics(ctx context.Context) (Stats, error) {
	var (
		stats                      Stats
		bytesIn, bytesOut, avgSecs sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT mac),
		       COALESCE(SUM(kicked), 0),
		       SUM(bytes_in),
		       SUM(bytes_out),
		       CAST(AVG(duration_seconds) AS INTEGER)
		FROM sessions`).Scan(
		&stats.TotalSessions,
		&stats.UniqueMACs,
		&stats.KickedSessions,
		&bytesIn,
		&bytesOut,
		&avgSecs,
	)
	if err != nil {
		return Stats{}, err
	}
	stats.TotalBytesIn = uint64(bytesIn.Int64)
	stats.TotalBytesOut = uint64(bytesOut.Int64)
	stats.AverageDuration = model.FormatDuration(time.Duration(avgSecs.Int64) * time.Second)
	return stats, nil
}

// PurgeOlderThan removes sessions that disconnected before now-maxAge and
// returns the number removed.
func (s *Store) PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE disconnected_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	removed, _ := res.RowsAffected()
	if removed > 0 {
		s.logger.Debug("purged session history", "removed", removed)
	}
	return removed, nil
}
