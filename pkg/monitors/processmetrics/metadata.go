package processmetrics

import "github.com/pollard/poll-agent/pkg/monitors"

const monitorType = "process-metrics"

var metadata = monitors.Metadata{
	MonitorType: monitorType,
	Description: "Reports CPU, memory, thread and disk I/O metrics for a single " +
		"process, found by command line regex or by pid.",
	Metrics: []monitors.MetricMetadata{
		{Name: "proc.cpu.seconds", Description: "CPU time consumed by the process since it started, in seconds", Cumulative: true, Unit: "second",
			ExtraFields: map[string]string{"type": "user|system"}},
		{Name: "proc.uptime", Description: "Seconds since the process started", Unit: "second"},
		{Name: "proc.threads", Description: "Number of threads in the process"},
		{Name: "proc.mem.bytes", Description: "Memory used by the process, split by facet", Unit: "byte",
			ExtraFields: map[string]string{"type": "rss|vms|hwm|data|stack|locked|swap"}},
		{Name: "proc.disk.ops", Description: "Disk operations issued by the process since it started", Cumulative: true,
			ExtraFields: map[string]string{"type": "read|write"}},
		{Name: "proc.disk.bytes", Description: "Bytes transferred to or from disk by the process since it started", Cumulative: true, Unit: "byte",
			ExtraFields: map[string]string{"type": "read|write"}},
	},
	ConfigOptions: []monitors.ConfigOptionMetadata{
		{Name: "id", Description: "Label attached to every sample as the app dimension", Required: true},
		{Name: "commandline", Description: "Case-insensitive regex matched against process names and command lines"},
		{Name: "pid", Description: "Pid of the process to monitor, or $$ for the agent itself"},
	},
	LogFields: []monitors.LogFieldMetadata{
		{Name: "app", Description: "The configured process label"},
		{Name: "pid", Description: "The pid of the resolved target process"},
	},
}

// Register adds this monitor to the given registry.
func Register(r *monitors.Registry) {
	r.Register(&metadata, func() interface{} { return &Monitor{} }, &Config{})
}
