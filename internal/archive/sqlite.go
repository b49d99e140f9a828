package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"boreas/internal/domain"
	"boreas/internal/util"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ Reader = (*SQLiteArchive)(nil)

// selectCols is the fixed projection read from the archive table:
// timestamp, unit-system flag, then the measurement fields in table order.
var selectCols = func() string {
	cols := []string{"dateTime", "usUnits"}
	for _, f := range domain.Fields {
		cols = append(cols, f.Name)
	}
	return strings.Join(cols, ",")
}()

// SQLiteArchive implements Reader backed by a wview-style SQLite database
// with an `archive` table keyed by epoch-second dateTime.
type SQLiteArchive struct {
	db *sql.DB
}

// OpenSQLite opens the archive database at dbPath read-only and verifies it
// is reachable. A live archive is rewritten every sampling interval and can
// be briefly locked, so the initial ping is retried.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", dbPath, err)
	}

	if err := util.Retry(ctx, 3, 200*time.Millisecond, func() error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging archive %s: %w", dbPath, err)
	}

	return &SQLiteArchive{db: db}, nil
}

// Close closes the underlying database connection.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

// Earliest returns the timestamp of the oldest archive record.
func (a *SQLiteArchive) Earliest(ctx context.Context) (time.Time, error) {
	var ts int64
	err := a.db.QueryRowContext(ctx,
		"SELECT dateTime FROM archive ORDER BY dateTime LIMIT 1").Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("querying earliest record: %w", err)
	}
	return time.Unix(ts, 0).UTC(), nil
}

// Count returns the number of records in the half-open span [start, end).
func (a *SQLiteArchive) Count(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM archive WHERE dateTime >= ? AND dateTime < ?",
		start.Unix(), end.Unix()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Readings returns the ordered projection of all records in [start, end).
func (a *SQLiteArchive) Readings(ctx context.Context, start, end time.Time) ([]domain.Reading, error) {
	query := "SELECT " + selectCols +
		" FROM archive WHERE dateTime >= ? AND dateTime < ? ORDER BY dateTime"

	rows, err := a.db.QueryContext(ctx, query, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	var readings []domain.Reading
	for rows.Next() {
		var (
			ts    int64
			units sql.NullFloat64
			vals  = make([]sql.NullFloat64, len(domain.Fields))
		)

		dest := make([]any, 0, len(vals)+2)
		dest = append(dest, &ts, &units)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}

		r := domain.Reading{
			Timestamp: time.Unix(ts, 0).UTC(),
			Imperial:  units.Valid && units.Float64 != 0,
			Values:    make([]*float64, len(domain.Fields)),
		}
		for i, v := range vals {
			if v.Valid {
				f := v.Float64
				r.Values[i] = &f
			}
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return readings, nil
}
