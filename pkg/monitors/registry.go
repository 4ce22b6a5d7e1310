package monitors

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/pollard/poll-agent/pkg/core/config"
	"github.com/pollard/poll-agent/pkg/utils"
)

// MonitorFactory creates an unconfigured instance of a monitor.
type MonitorFactory func() interface{}

type registration struct {
	metadata       *Metadata
	factory        MonitorFactory
	configTemplate config.MonitorCustomConfig
}

// Registry holds the set of monitor types the agent knows how to run.  It is
// built once at process start (see the builtins package), is read-only
// afterward, and is handed to the MonitorManager explicitly instead of
// living in package-level mutable state.
type Registry struct {
	monitors map[string]registration
}

// NewRegistry creates an empty monitor registry.
func NewRegistry() *Registry {
	return &Registry{
		monitors: make(map[string]registration),
	}
}

// Register a monitor type.  The metadata describes the monitor's metrics and
// options; the factory creates new unconfigured instances; configTemplate is
// a pointer to an empty config struct for the monitor, cloned for each
// instance before decoding.  Registering the same type twice is a
// programming error and panics.
func (r *Registry) Register(metadata *Metadata, factory MonitorFactory, configTemplate config.MonitorCustomConfig) {
	if _, ok := r.monitors[metadata.MonitorType]; ok {
		panic(fmt.Sprintf("monitor type '%s' registered more than once", metadata.MonitorType))
	}
	r.monitors[metadata.MonitorType] = registration{
		metadata:       metadata,
		factory:        factory,
		configTemplate: configTemplate,
	}
}

// HasType tells whether the given monitor type is registered.
func (r *Registry) HasType(monitorType string) bool {
	_, ok := r.monitors[monitorType]
	return ok
}

// Metadata returns the declared metadata for the given monitor type, or nil
// if the type is not registered.
func (r *Registry) Metadata(monitorType string) *Metadata {
	if reg, ok := r.monitors[monitorType]; ok {
		return reg.metadata
	}
	return nil
}

// Types returns the registered monitor types, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.monitors))
	for t := range r.monitors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) newInstance(monitorType string) (interface{}, error) {
	reg, ok := r.monitors[monitorType]
	if !ok {
		return nil, errors.Errorf("unknown monitor type %s", monitorType)
	}
	return reg.factory(), nil
}

func (r *Registry) newConfigTemplate(monitorType string) (config.MonitorCustomConfig, error) {
	reg, ok := r.monitors[monitorType]
	if !ok {
		return nil, errors.Errorf("unknown monitor type %s", monitorType)
	}
	return utils.CloneInterface(reg.configTemplate).(config.MonitorCustomConfig), nil
}
