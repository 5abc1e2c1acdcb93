package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteSource reads the structured store maintained by the sampler.
// The sampler owns the schema: snapshots keyed by id with epoch-seconds
// timestamps and swap fields, process_samples referencing a snapshot id,
// and an append-only alerts table.
type SQLiteSource struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite opens the sqlite file at dbPath.
// The modernc.org driver is pure-go and works without CGO.
func OpenSQLite(dbPath string, log *zap.Logger) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Verify the connection quickly.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return &SQLiteSource{db: db, log: log}, nil
}

// ProcessSamples returns process memory samples since the cutoff, ascending
// by snapshot timestamp. Rows that cannot be scanned are skipped.
func (s *SQLiteSource) ProcessSamples(ctx context.Context, since time.Time) ([]ProcessSample, error) {
	const q = `
		SELECT ps.pid, ps.name, ps.memory_mb, s.timestamp
		FROM process_samples ps
		JOIN snapshots s ON ps.snapshot_id = s.id
		WHERE s.timestamp >= ?
		ORDER BY s.timestamp ASC`

	rows, err := s.db.QueryContext(ctx, q, since.Unix())
	if err != nil {
		if s.missingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query process samples: %w", err)
	}
	defer rows.Close()

	var out []ProcessSample
	for rows.Next() {
		var (
			pid  sql.NullString
			name sql.NullString
			mb   float64
			ts   float64 // the sampler stores fractional epoch seconds
		)
		if err := rows.Scan(&pid, &name, &mb, &ts); err != nil {
			s.log.Debug("skipping unreadable process sample", zap.Error(err))
			continue
		}
		out = append(out, ProcessSample{
			Timestamp: time.Unix(int64(ts), 0),
			PID:       pid.String,
			Command:   name.String,
			RSSMB:     mb,
		})
	}
	return out, rows.Err()
}

// SwapSamples returns swap snapshots since the cutoff, ascending.
func (s *SQLiteSource) SwapSamples(ctx context.Context, since time.Time) ([]SwapSample, error) {
	const q = `
		SELECT timestamp, swap_used_mb, swap_total_mb, swap_free_percent
		FROM snapshots
		WHERE timestamp >= ?
		ORDER BY timestamp ASC`

	rows, err := s.db.QueryContext(ctx, q, since.Unix())
	if err != nil {
		if s.missingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []SwapSample
	for rows.Next() {
		var ts, used, total, freePct float64
		if err := rows.Scan(&ts, &used, &total, &freePct); err != nil {
			s.log.Debug("skipping unreadable snapshot", zap.Error(err))
			continue
		}
		out = append(out, SwapSample{
			Timestamp: time.Unix(int64(ts), 0),
			UsedMB:    used,
			TotalMB:   total,
			FreePct:   freePct,
		})
	}
	return out, rows.Err()
}

// Alerts returns the most recent alerts of the given types since the cutoff,
// descending by timestamp, at most limit rows. Stores created before the
// metadata column existed are handled by retrying a reduced-column query.
func (s *SQLiteSource) Alerts(ctx context.Context, since time.Time, types []AlertType, limit int) ([]Alert, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(types)), ",")
	args := make([]any, 0, len(types)+2)
	args = append(args, since.Unix())
	for _, t := range types {
		args = append(args, string(t))
	}
	args = append(args, limit)

	withMeta := true
	q := fmt.Sprintf(`
		SELECT timestamp, type, message, pid, process_name, metadata
		FROM alerts
		WHERE timestamp >= ? AND type IN (%s)
		ORDER BY timestamp DESC
		LIMIT ?`, placeholders)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		withMeta = false
		q = fmt.Sprintf(`
			SELECT timestamp, type, message, pid, process_name
			FROM alerts
			WHERE timestamp >= ? AND type IN (%s)
			ORDER BY timestamp DESC
			LIMIT ?`, placeholders)
		rows, err = s.db.QueryContext(ctx, q, args...)
	}
	if err != nil {
		if s.missingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		var (
			ts        float64
			typ       string
			msg       sql.NullString
			pid       sql.NullString
			name      sql.NullString
			meta      sql.NullString
			scanError error
		)
		if withMeta {
			scanError = rows.Scan(&ts, &typ, &msg, &pid, &name, &meta)
		} else {
			scanError = rows.Scan(&ts, &typ, &msg, &pid, &name)
		}
		if scanError != nil {
			s.log.Debug("skipping unreadable alert", zap.Error(scanError))
			continue
		}
		out = append(out, Alert{
			Timestamp:   time.Unix(int64(ts), 0),
			Type:        AlertType(typ),
			Message:     msg.String,
			PID:         pid.String,
			ProcessName: name.String,
			Metadata:    meta.String,
		})
	}
	return out, rows.Err()
}

// Close releases the database connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// missingTable reports whether err means the queried table does not exist
// in this store. That is "no data", not a failure: the sampler creates
// tables lazily, so a fresh store may lack any of them.
func (s *SQLiteSource) missingTable(err error) bool {
	if err == nil || !strings.Contains(err.Error(), "no such table") {
		return false
	}
	s.log.Debug("table absent in structured store", zap.Error(err))
	return true
}
