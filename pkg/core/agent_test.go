package core

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/pollard/poll-agent/pkg/core/config"
	"github.com/pollard/poll-agent/pkg/monitors"
	"github.com/pollard/poll-agent/pkg/monitors/types"
)

type pingMonitorConfig struct {
	config.MonitorConfig `yaml:",inline"`
}

type pingMonitor struct {
	Output types.Output

	collects *atomic.Int64
}

func (m *pingMonitor) Configure(conf *pingMonitorConfig) error { return nil }

func (m *pingMonitor) Collect(ctx context.Context) error {
	m.collects.Inc()
	return nil
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), os.FileMode(0600)))
	return path
}

func TestStartupRunsConfiguredMonitors(t *testing.T) {
	mon := &pingMonitor{collects: atomic.NewInt64(0)}

	registry := monitors.NewRegistry()
	registry.Register(&monitors.Metadata{MonitorType: "ping"},
		func() interface{} { return mon }, &pingMonitorConfig{})

	path := writeConfigFile(t, `
intervalSeconds: 1
monitors:
  - type: ping
`)

	agent, err := Startup(registry, path)
	require.NoError(t, err)
	defer agent.Shutdown()

	deadline := time.After(3 * time.Second)
	for mon.collects.Load() < 1 {
		select {
		case <-deadline:
			t.Fatal("monitor never collected")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStartupFailsOnMissingConfigFile(t *testing.T) {
	registry := monitors.NewRegistry()
	_, err := Startup(registry, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestReloadDiffsMonitors(t *testing.T) {
	instancesMade := atomic.NewInt64(0)

	registry := monitors.NewRegistry()
	registry.Register(&monitors.Metadata{MonitorType: "ping"},
		func() interface{} {
			instancesMade.Inc()
			return &pingMonitor{collects: atomic.NewInt64(0)}
		}, &pingMonitorConfig{})

	path := writeConfigFile(t, `
intervalSeconds: 1
monitors:
  - type: ping
`)

	agent, err := Startup(registry, path)
	require.NoError(t, err)
	defer agent.Shutdown()

	// Reloading an identical config must not restart the monitor.
	require.NoError(t, agent.LoadAndConfigure(path))
	assert.Equal(t, int64(1), instancesMade.Load())
}
