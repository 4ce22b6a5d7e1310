package postgresql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// databaseStats is one row of pg_stat_database for the monitored database,
// keyed by column name.  Columns vary across server versions, so consumers
// look values up by name and skip what the server doesn't have.
type databaseStats struct {
	columns map[string]interface{}
}

func (s *databaseStats) intColumn(name string) (int64, bool) {
	switch v := s.columns[name].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func (s *databaseStats) floatColumn(name string) (float64, bool) {
	switch v := s.columns[name].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (s *databaseStats) timeColumn(name string) (time.Time, bool) {
	if v, ok := s.columns[name].(time.Time); ok {
		return v, true
	}
	return time.Time{}, false
}

// statsSource is the slice of the database that the monitor needs.  The
// production implementation is statsDB; tests substitute a fake.
type statsSource interface {
	// reconnect drops any existing connection and establishes a fresh one.
	// The monitor reconnects on every gather cycle so that it never reads
	// from a stale transaction snapshot.
	reconnect(ctx context.Context) error
	close()
	databaseSize(ctx context.Context, name string) (int64, error)
	databaseStats(ctx context.Context, name string) (*databaseStats, error)
}

// statsDB implements statsSource on top of database/sql with the pq driver.
type statsDB struct {
	connStr string
	db      *sql.DB
}

func newStatsDB(connStr string) *statsDB {
	return &statsDB{connStr: connStr}
}

func (s *statsDB) reconnect(ctx context.Context) error {
	s.close()

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *statsDB) close() {
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}

func (s *statsDB) databaseSize(ctx context.Context, name string) (int64, error) {
	var size int64
	err := s.db.QueryRowContext(ctx,
		`SELECT pg_database_size($1)`, name).Scan(&size)
	return size, err
}

// All columns are selected and mapped by name so that the monitor works
// across server versions with differing pg_stat_database layouts.
func (s *statsDB) databaseStats(ctx context.Context, name string) (*databaseStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT * FROM pg_stat_database WHERE datname = $1`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}

	dest := make([]interface{}, len(cols))
	for i := range dest {
		dest[i] = new(interface{})
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	stats := &databaseStats{columns: make(map[string]interface{}, len(cols))}
	for i, col := range cols {
		if v := *(dest[i].(*interface{})); v != nil {
			stats.columns[col] = v
		}
	}
	return stats, nil
}

// isConnectionLost classifies errors that mean the server went away rather
// than that the query itself is wrong.  Connection losses are recovered by
// the per-cycle reconnect, so the monitor treats them as transient.
func isConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08 is connection exceptions; 57P01 is admin shutdown.
		class := pqErr.Code.Class()
		return class == "08" || pqErr.Code == "57P01"
	}

	return false
}
