package monitors

// MetricMetadata is the static, process-wide registration record for one
// metric a monitor can emit.  Instances are declared as package-level tables
// in each monitor package, are immutable, and are shared read-only by all
// monitor instances of that type.
type MetricMetadata struct {
	Name        string
	Description string
	Group       string
	Unit        string
	// Cumulative metrics are monotonically non-decreasing since a reset
	// point; downstream consumers must derive rates from them.  All other
	// metrics are gauges.
	Cumulative bool
	// ExtraFields holds the static dimensions that distinguish this
	// registration from other registrations of the same metric name (e.g.
	// result=committed vs result=rolledback).
	ExtraFields map[string]string
}

// ConfigOptionMetadata documents one config option a monitor accepts.
type ConfigOptionMetadata struct {
	Name        string
	Description string
	Required    bool
	Default     string
}

// LogFieldMetadata documents one field attached to the monitor's emitted log
// lines.
type LogFieldMetadata struct {
	Name        string
	Description string
}

// Metadata is everything a monitor type declares about itself up front:
// which metrics it emits, which config options it accepts and which fields
// its output carries.  Nothing at runtime depends on it beyond config
// validation and documentation; it exists so that metric enumeration is
// declarative data rather than something scattered through collection code.
type Metadata struct {
	MonitorType   string
	Description   string
	Metrics       []MetricMetadata
	ConfigOptions []ConfigOptionMetadata
	LogFields     []LogFieldMetadata
}

// MetricNames returns the distinct metric names declared, in declaration
// order.
func (m *Metadata) MetricNames() []string {
	seen := map[string]bool{}
	var out []string
	for i := range m.Metrics {
		if !seen[m.Metrics[i].Name] {
			seen[m.Metrics[i].Name] = true
			out = append(out, m.Metrics[i].Name)
		}
	}
	return out
}
