package monitors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/pollard/poll-agent/pkg/samples"
)

func newTestMonitorOutput(bufferSize int) (*monitorOutput, chan *samples.Sample) {
	ch := make(chan *samples.Sample, bufferSize)
	return &monitorOutput{
		monitorType: "test-monitor",
		monitorID:   "1",
		sampleChan:  ch,
		extraDims:   map[string]string{},
		dropped:     atomic.NewUint64(0),
	}, ch
}

func TestSendSamplesStampsZeroTimestamps(t *testing.T) {
	mo, ch := newTestMonitorOutput(10)

	mo.SendSamples(samples.New("a", nil, samples.NewIntValue(1), samples.Gauge, time.Time{}))

	s := <-ch
	assert.False(t, s.Timestamp.IsZero())
}

func TestSendSamplesKeepsExplicitTimestamps(t *testing.T) {
	mo, ch := newTestMonitorOutput(10)
	ts := time.Unix(42, 0)

	mo.SendSamples(samples.New("a", nil, samples.NewIntValue(1), samples.Gauge, ts))

	s := <-ch
	assert.Equal(t, ts, s.Timestamp)
}

func TestExtraDimensionsOverrideSampleDimensions(t *testing.T) {
	mo, ch := newTestMonitorOutput(10)
	mo.AddExtraDimension("env", "prod")
	mo.AddExtraDimension("region", "us-east-1")

	mo.SendSamples(samples.New("a", map[string]string{"env": "dev", "db": "orders"},
		samples.NewIntValue(1), samples.Gauge, time.Time{}))

	s := <-ch
	assert.Equal(t, "prod", s.Dimensions["env"])
	assert.Equal(t, "us-east-1", s.Dimensions["region"])
	assert.Equal(t, "orders", s.Dimensions["db"])
}

func TestRemoveExtraDimension(t *testing.T) {
	mo, ch := newTestMonitorOutput(10)
	mo.AddExtraDimension("env", "prod")
	mo.RemoveExtraDimension("env")

	mo.SendSamples(samples.New("a", nil, samples.NewIntValue(1), samples.Gauge, time.Time{}))

	s := <-ch
	_, ok := s.Dimensions["env"]
	assert.False(t, ok)
}

func TestSendNeverBlocksWhenBufferFull(t *testing.T) {
	mo, ch := newTestMonitorOutput(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			mo.SendSamples(samples.New("a", nil, samples.NewIntValue(1), samples.Gauge, time.Time{}))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendSamples blocked on a full buffer")
	}

	assert.Equal(t, uint64(2), mo.dropped.Load())
	assert.Len(t, ch, 1)
}

func TestCopyIsolatesExtraDimensions(t *testing.T) {
	mo, _ := newTestMonitorOutput(10)
	mo.AddExtraDimension("env", "prod")

	copied := mo.Copy()
	copied.AddExtraDimension("env", "staging")

	require.Equal(t, "prod", mo.extraDims["env"])
	assert.Equal(t, "staging", copied.(*monitorOutput).extraDims["env"])
}
