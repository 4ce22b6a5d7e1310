// Package types holds the types shared between the monitor host framework
// and monitor implementations.  It exists to break an import cycle between
// the core config package and the monitors package.
package types

import "github.com/pollard/poll-agent/pkg/samples"

// MonitorID uniquely identifies a monitor instance within the agent process.
type MonitorID string

// Output is the interface monitors use to emit samples to the agent core.
// It takes care of attaching the per-instance extra dimensions so that
// monitors don't have to worry about them.  Implementations are
// fire-and-forget from the monitor's perspective; SendSamples never blocks
// the caller indefinitely.
type Output interface {
	Copy() Output
	SendSamples(samples ...*samples.Sample)
	AddExtraDimension(key, value string)
	RemoveExtraDimension(key string)
}
