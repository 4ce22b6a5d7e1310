package monitors

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/pollard/poll-agent/pkg/core/config"
	"github.com/pollard/poll-agent/pkg/monitors/types"
)

type flakyMonitorConfig struct {
	config.MonitorConfig `yaml:",inline"`
}

type flakyMonitor struct {
	Output types.Output

	collects *atomic.Int64
	fail     *atomic.Bool
	shutdown *atomic.Bool
}

func (m *flakyMonitor) Configure(conf *flakyMonitorConfig) error {
	return nil
}

func (m *flakyMonitor) Collect(ctx context.Context) error {
	m.collects.Inc()
	if m.fail.Load() {
		return errors.New("gather failed")
	}
	return nil
}

func (m *flakyMonitor) Shutdown() {
	m.shutdown.Store(true)
}

func newFlakyActiveMonitor(t *testing.T) (*ActiveMonitor, *flakyMonitor) {
	mon := &flakyMonitor{
		collects: atomic.NewInt64(0),
		fail:     atomic.NewBool(false),
		shutdown: atomic.NewBool(false),
	}

	registry := NewRegistry()
	registry.Register(&Metadata{MonitorType: "flaky"},
		func() interface{} { return mon }, &flakyMonitorConfig{})

	am := &ActiveMonitor{
		instance: mon,
		id:       types.MonitorID("1"),
		output:   &monitorOutput{extraDims: map[string]string{}, dropped: atomic.NewUint64(0)},
	}
	t.Cleanup(am.Shutdown)

	conf := &flakyMonitorConfig{}
	conf.Type = "flaky"
	conf.IntervalSeconds = 1
	require.NoError(t, am.configureMonitor(registry, conf))

	return am, mon
}

func waitUntil(t *testing.T, cond func() bool) {
	deadline := time.After(3 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for condition")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestCollectRunsOnInterval(t *testing.T) {
	am, mon := newFlakyActiveMonitor(t)

	waitUntil(t, func() bool { return mon.collects.Load() >= 2 })
	assert.GreaterOrEqual(t, am.collectCalls.Load(), uint64(2))
}

func TestCollectFailureDoesNotStopSchedule(t *testing.T) {
	am, mon := newFlakyActiveMonitor(t)
	mon.fail.Store(true)

	before := mon.collects.Load()
	waitUntil(t, func() bool { return mon.collects.Load() >= before+2 })
	assert.GreaterOrEqual(t, am.collectFailures.Load(), uint64(2))
}

func TestShutdownStopsScheduleAndNotifiesMonitor(t *testing.T) {
	am, mon := newFlakyActiveMonitor(t)

	waitUntil(t, func() bool { return mon.collects.Load() >= 1 })
	am.Shutdown()
	assert.True(t, mon.shutdown.Load())

	after := mon.collects.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, after, mon.collects.Load())
}

func TestOutputInjectedByField(t *testing.T) {
	_, mon := newFlakyActiveMonitor(t)
	assert.NotNil(t, mon.Output)
}

func TestRejectsZeroInterval(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&Metadata{MonitorType: "flaky"},
		func() interface{} { return &flakyMonitor{} }, &flakyMonitorConfig{})

	am := &ActiveMonitor{
		instance: &flakyMonitor{},
		output:   &monitorOutput{extraDims: map[string]string{}, dropped: atomic.NewUint64(0)},
	}

	conf := &flakyMonitorConfig{}
	conf.Type = "flaky"
	assert.Error(t, am.configureMonitor(registry, conf))
}
