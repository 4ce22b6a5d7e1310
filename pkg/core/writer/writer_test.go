package writer

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollard/poll-agent/pkg/core/config"
	"github.com/pollard/poll-agent/pkg/samples"
)

func newTestWriter(t *testing.T) (*SampleWriter, *logtest.Hook) {
	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)

	sw := New()
	sw.Configure(&config.WriterConfig{BufferSize: 100})
	t.Cleanup(sw.Shutdown)

	return sw, hook
}

func sampleEntries(hook *logtest.Hook) []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "sample" {
			out = append(out, e)
		}
	}
	return out
}

func waitForSampleEntries(t *testing.T, hook *logtest.Hook, count int) []*logrus.Entry {
	deadline := time.After(3 * time.Second)
	for {
		if entries := sampleEntries(hook); len(entries) >= count {
			return entries
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d emitted samples", count)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestEmitsSamplesInArrivalOrder(t *testing.T) {
	sw, hook := newTestWriter(t)

	ch := sw.SampleChannel()
	for _, name := range []string{"first", "second", "third"} {
		ch <- samples.New(name, nil, samples.NewIntValue(1), samples.Gauge, time.Now())
	}

	entries := waitForSampleEntries(t, hook, 3)
	assert.Equal(t, "first", entries[0].Data["metric"])
	assert.Equal(t, "second", entries[1].Data["metric"])
	assert.Equal(t, "third", entries[2].Data["metric"])
}

func TestEmittedFieldsDescribeTheSample(t *testing.T) {
	sw, hook := newTestWriter(t)

	ts := time.Unix(12, 0)
	sw.SampleChannel() <- samples.New("postgres.database.size",
		map[string]string{"database": "orders"},
		samples.NewIntValue(4096), samples.Gauge, ts)

	entries := waitForSampleEntries(t, hook, 1)
	e := entries[0]
	assert.Equal(t, "postgres.database.size", e.Data["metric"])
	assert.Equal(t, "4096", e.Data["value"])
	assert.Equal(t, "gauge", e.Data["type"])
	assert.Equal(t, "database=orders", e.Data["dimensions"])
	assert.Equal(t, int64(12000), e.Data["timestamp"])
}

func TestDimensionsRenderSorted(t *testing.T) {
	sw, hook := newTestWriter(t)

	sw.SampleChannel() <- samples.New("a",
		map[string]string{"zone": "b", "app": "x", "env": "prod"},
		samples.NewIntValue(1), samples.Gauge, time.Now())

	entries := waitForSampleEntries(t, hook, 1)
	assert.Equal(t, "app=x,env=prod,zone=b", entries[0].Data["dimensions"])
}

func TestInternalMetricsCountEmissions(t *testing.T) {
	sw, hook := newTestWriter(t)

	for i := 0; i < 5; i++ {
		sw.SampleChannel() <- samples.New("a", nil, samples.NewIntValue(1), samples.Gauge, time.Now())
	}
	waitForSampleEntries(t, hook, 5)

	metrics := sw.InternalMetrics()
	assert.Equal(t, uint64(5), metrics["writer.samples_received"])
	assert.Equal(t, uint64(5), metrics["writer.samples_emitted"])
}

func TestShutdownDrainsBufferedSamples(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	sw := New()
	sw.Configure(&config.WriterConfig{BufferSize: 100})

	// Stop the drain goroutine first so samples stay buffered.
	sw.cancel()
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		sw.SampleChannel() <- samples.New("a", nil, samples.NewIntValue(1), samples.Gauge, time.Now())
	}

	sw.Shutdown()
	require.Len(t, sampleEntries(hook), 3)
}
