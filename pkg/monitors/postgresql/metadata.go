package postgresql

import "github.com/pollard/poll-agent/pkg/monitors"

const monitorType = "postgresql"

var metadata = monitors.Metadata{
	MonitorType: monitorType,
	Description: "Gathers database-level statistics from a PostgreSQL server " +
		"by polling pg_database_size and pg_stat_database for a single database.",
	Metrics: []monitors.MetricMetadata{
		{Name: "postgres.database.size", Description: "Size in bytes of the database on disk", Unit: "byte"},
		{Name: "postgres.database.connections", Description: "Number of backends currently connected to the database"},
		{Name: "postgres.database.transactions", Description: "Number of transactions finished in the database", Cumulative: true,
			ExtraFields: map[string]string{"result": "committed|rolledback"}},
		{Name: "postgres.database.disk_blocks", Description: "Number of disk block accesses, split by whether they hit the buffer cache", Cumulative: true,
			ExtraFields: map[string]string{"type": "read|hit"}},
		{Name: "postgres.database.query_rows", Description: "Number of rows handled by queries against the database", Cumulative: true,
			ExtraFields: map[string]string{"op": "returned|fetched|inserted|updated|deleted"}},
		{Name: "postgres.database.temp_files", Description: "Number of temporary files created by queries", Cumulative: true},
		{Name: "postgres.database.temp_bytes", Description: "Bytes written to temporary files by queries", Cumulative: true, Unit: "byte"},
		{Name: "postgres.database.deadlocks", Description: "Number of deadlocks detected in the database", Cumulative: true},
		{Name: "postgres.database.blocks_op_time", Description: "Milliseconds spent on disk block operations", Cumulative: true, Unit: "millisecond",
			ExtraFields: map[string]string{"op": "read|write"}},
		{Name: "postgres.database.stats_reset", Description: "Time at which the database statistics were last reset, as milliseconds since the Unix epoch", Unit: "millisecond"},
	},
	ConfigOptions: []monitors.ConfigOptionMetadata{
		{Name: "host", Description: "Host of the PostgreSQL server", Default: "localhost"},
		{Name: "port", Description: "Port of the PostgreSQL server", Default: "5432"},
		{Name: "databaseName", Description: "Name of the database to report statistics for", Required: true},
		{Name: "databaseUsername", Description: "Username to connect with", Required: true},
		{Name: "databasePassword", Description: "Password to connect with", Required: true},
		{Name: "connectTimeoutSeconds", Description: "Timeout for establishing a connection", Default: "5"},
		{Name: "sslMode", Description: "The sslmode connection parameter", Default: "disable"},
	},
	LogFields: []monitors.LogFieldMetadata{
		{Name: "database", Description: "The configured database name"},
	},
}

// Register adds this monitor to the given registry.
func Register(r *monitors.Registry) {
	r.Register(&metadata, func() interface{} { return &Monitor{} }, &Config{})
}
