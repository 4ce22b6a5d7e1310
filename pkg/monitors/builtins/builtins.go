// Package builtins assembles the registry of monitor types compiled into
// the agent.  Monitors are registered here explicitly instead of via
// package-level init side effects so that tests and embedders can build
// registries with exactly the monitors they want.
package builtins

import (
	"github.com/pollard/poll-agent/pkg/monitors"
	"github.com/pollard/poll-agent/pkg/monitors/postgresql"
	"github.com/pollard/poll-agent/pkg/monitors/processmetrics"
)

// NewRegistry returns a registry containing every builtin monitor type.
func NewRegistry() *monitors.Registry {
	registry := monitors.NewRegistry()

	postgresql.Register(registry)
	processmetrics.Register(registry)

	return registry
}
