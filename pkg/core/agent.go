// Package core contains the central Agent type that wires the config file,
// the monitor manager and the sample writer together.
package core

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pollard/poll-agent/pkg/core/config"
	"github.com/pollard/poll-agent/pkg/core/writer"
	"github.com/pollard/poll-agent/pkg/monitors"
)

// Agent is what hangs off of the main routine and holds the top-level
// components together.
type Agent struct {
	registry *monitors.Registry
	manager  *monitors.MonitorManager
	writer   *writer.SampleWriter

	lock             sync.Mutex
	writerConfigured bool
	lastWriterConf   config.WriterConfig
}

// NewAgent creates an agent that can run the monitor types in the given
// registry.  Nothing starts until Configure is called.
func NewAgent(registry *monitors.Registry) *Agent {
	return &Agent{
		registry: registry,
		manager:  monitors.NewMonitorManager(registry),
		writer:   writer.New(),
	}
}

// Configure applies a loaded config to the agent.  It is called both at
// startup and again on reload; monitors are diffed against their running
// config so only changed monitors restart.
func (a *Agent) Configure(conf *config.Config) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if level := conf.Logging.LogrusLevel(); level != nil {
		logrus.SetLevel(*level)
	}

	// The writer's buffer cannot be resized while monitors hold its channel,
	// so writer config only takes effect at startup.
	if !a.writerConfigured {
		a.writer.Configure(&conf.Writer)
		a.manager.SetSampleChannel(a.writer.SampleChannel())
		a.writerConfigured = true
		a.lastWriterConf = conf.Writer
	} else if conf.Writer != a.lastWriterConf {
		logrus.Warn("Writer config changes require an agent restart to take effect")
	}

	a.manager.Configure(conf.Monitors, conf.IntervalSeconds)
}

// LoadAndConfigure reads the config file at path and applies it.
func (a *Agent) LoadAndConfigure(path string) error {
	conf, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	a.Configure(conf)
	return nil
}

// Shutdown stops all monitors and drains the writer.
func (a *Agent) Shutdown() {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.manager.Shutdown()
	a.writer.Shutdown()
}

// Startup creates an agent with the given registry and starts it from the
// config file at configPath.
func Startup(registry *monitors.Registry, configPath string) (*Agent, error) {
	agent := NewAgent(registry)

	if err := agent.LoadAndConfigure(configPath); err != nil {
		return nil, err
	}

	return agent, nil
}
