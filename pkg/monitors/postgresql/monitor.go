// Package postgresql contains a monitor that polls database-level
// statistics from a PostgreSQL server.  Each gather cycle opens a fresh
// connection so that the statistics views are never read through a stale
// transaction snapshot, reads pg_database_size and the pg_stat_database row
// for the configured database, and emits one sample per statistic.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pollard/poll-agent/pkg/core/config"
	"github.com/pollard/poll-agent/pkg/monitors/types"
	"github.com/pollard/poll-agent/pkg/samples"
)

// Config for the postgresql monitor.
type Config struct {
	config.MonitorConfig `yaml:",inline"`

	// The hostname of the PostgreSQL server.
	Host string `yaml:"host" default:"localhost"`
	// The port of the PostgreSQL server.
	Port uint16 `yaml:"port" default:"5432"`
	// The database to report statistics for.  A server hosts many databases;
	// this monitor watches exactly one, and several instances of the monitor
	// can be configured to cover more.
	DatabaseName string `yaml:"databaseName" validate:"required"`
	// The username to connect as.  Any role that can read pg_stat_database
	// will do.
	DatabaseUsername string `yaml:"databaseUsername" validate:"required"`
	// The password for the above username.
	DatabasePassword string `yaml:"databasePassword" validate:"required" neverLog:"true"`
	// How long to wait when establishing the per-cycle connection.
	ConnectTimeoutSeconds int `yaml:"connectTimeoutSeconds" default:"5" validate:"gt=0"`
	// The sslmode connection parameter passed to the server.
	SSLMode string `yaml:"sslMode" default:"disable"`
}

func (c *Config) connStr() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s connect_timeout=%d sslmode=%s",
		c.Host, c.Port, c.DatabaseName, c.DatabaseUsername, c.DatabasePassword,
		c.ConnectTimeoutSeconds, c.SSLMode)
}

// statColumn binds one pg_stat_database column to the metric and dimensions
// it is emitted as.  The table is ordered; emission follows it top to bottom
// so a cycle's samples always arrive in the same order.  Columns the server
// doesn't have are skipped, which keeps the monitor working across server
// versions.
type statColumn struct {
	column     string
	metric     string
	dims       map[string]string
	sampleType samples.SampleType
	// Float columns (the block timing ones) are emitted as floats; all
	// others as integers.
	float bool
}

var statColumns = []statColumn{
	{column: "numbackends", metric: "postgres.database.connections", sampleType: samples.Gauge},
	{column: "xact_commit", metric: "postgres.database.transactions",
		dims: map[string]string{"result": "committed"}, sampleType: samples.Cumulative},
	{column: "xact_rollback", metric: "postgres.database.transactions",
		dims: map[string]string{"result": "rolledback"}, sampleType: samples.Cumulative},
	{column: "blks_read", metric: "postgres.database.disk_blocks",
		dims: map[string]string{"type": "read"}, sampleType: samples.Cumulative},
	{column: "blks_hit", metric: "postgres.database.disk_blocks",
		dims: map[string]string{"type": "hit"}, sampleType: samples.Cumulative},
	{column: "tup_returned", metric: "postgres.database.query_rows",
		dims: map[string]string{"op": "returned"}, sampleType: samples.Cumulative},
	{column: "tup_fetched", metric: "postgres.database.query_rows",
		dims: map[string]string{"op": "fetched"}, sampleType: samples.Cumulative},
	{column: "tup_inserted", metric: "postgres.database.query_rows",
		dims: map[string]string{"op": "inserted"}, sampleType: samples.Cumulative},
	{column: "tup_updated", metric: "postgres.database.query_rows",
		dims: map[string]string{"op": "updated"}, sampleType: samples.Cumulative},
	{column: "tup_deleted", metric: "postgres.database.query_rows",
		dims: map[string]string{"op": "deleted"}, sampleType: samples.Cumulative},
	{column: "temp_files", metric: "postgres.database.temp_files", sampleType: samples.Cumulative},
	{column: "temp_bytes", metric: "postgres.database.temp_bytes", sampleType: samples.Cumulative},
	{column: "deadlocks", metric: "postgres.database.deadlocks", sampleType: samples.Cumulative},
	{column: "blk_read_time", metric: "postgres.database.blocks_op_time",
		dims: map[string]string{"op": "read"}, sampleType: samples.Cumulative, float: true},
	{column: "blk_write_time", metric: "postgres.database.blocks_op_time",
		dims: map[string]string{"op": "write"}, sampleType: samples.Cumulative, float: true},
}

// Monitor that collects postgres database stats.
type Monitor struct {
	Output types.Output

	conf   *Config
	db     statsSource
	logger *logrus.Entry
}

// Configure the monitor and prepare the connection settings.  No connection
// is attempted here; the first gather cycle does that.
func (m *Monitor) Configure(conf *Config) error {
	m.conf = conf
	m.logger = logrus.WithFields(logrus.Fields{
		"monitorType": monitorType,
		"database":    conf.DatabaseName,
	})

	if m.db == nil {
		m.db = newStatsDB(conf.connStr())
	}

	return nil
}

// Collect runs one gather cycle.  Failure to connect or loss of the
// connection mid-cycle is logged and retried next cycle; only unexpected
// query failures are reported as errors.
func (m *Monitor) Collect(ctx context.Context) error {
	defer m.db.close()

	if err := m.db.reconnect(ctx); err != nil {
		m.logger.WithError(err).Warn("Could not connect to postgres server, will retry next cycle")
		return nil
	}

	size, err := m.db.databaseSize(ctx, m.conf.DatabaseName)
	if err != nil {
		return m.handleQueryError(err)
	}

	now := time.Now()

	out := make([]*samples.Sample, 0, len(statColumns)+2)
	out = append(out, samples.New("postgres.database.size", nil,
		samples.NewIntValue(size), samples.Gauge, now))

	stats, err := m.db.databaseStats(ctx, m.conf.DatabaseName)
	if err == sql.ErrNoRows {
		m.logger.Warn("No pg_stat_database row found, is databaseName spelled correctly?")
		m.Output.SendSamples(out...)
		return nil
	} else if err != nil {
		return m.handleQueryError(err)
	}

	for i := range statColumns {
		col := &statColumns[i]

		var value samples.Value
		if col.float {
			f, ok := stats.floatColumn(col.column)
			if !ok {
				continue
			}
			value = samples.NewFloatValue(f)
		} else {
			n, ok := stats.intColumn(col.column)
			if !ok {
				continue
			}
			value = samples.NewIntValue(n)
		}

		out = append(out, samples.New(col.metric, col.dims, value, col.sampleType, now))
	}

	if reset, ok := stats.timeColumn("stats_reset"); ok {
		out = append(out, samples.New("postgres.database.stats_reset", nil,
			samples.NewIntValue(reset.UnixNano()/int64(time.Millisecond)),
			samples.Gauge, now))
	}

	m.Output.SendSamples(out...)
	return nil
}

func (m *Monitor) handleQueryError(err error) error {
	if isConnectionLost(err) {
		m.logger.WithError(err).Warn("Lost connection to postgres server, will retry next cycle")
		return nil
	}
	return err
}
