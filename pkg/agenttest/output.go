// Package agenttest contains test helpers for monitor tests.
package agenttest

import (
	"time"

	"github.com/pollard/poll-agent/pkg/monitors/types"
	"github.com/pollard/poll-agent/pkg/samples"
)

// TestOutput can be used in place of the normal monitor output to provide a
// mechanism for testing monitor emission.
type TestOutput struct {
	sampleChan chan *samples.Sample
	extraDims  map[string]string
}

var _ types.Output = &TestOutput{}

// NewTestOutput creates a new initialized TestOutput instance.
func NewTestOutput() *TestOutput {
	return &TestOutput{
		sampleChan: make(chan *samples.Sample, 1000),
		extraDims:  map[string]string{},
	}
}

// Copy the output object.
func (to *TestOutput) Copy() types.Output {
	return to
}

// SendSamples accepts the samples a monitor emits during a gather cycle.
func (to *TestOutput) SendSamples(ss ...*samples.Sample) {
	for i := range ss {
		to.sampleChan <- ss[i]
	}
}

// AddExtraDimension stores the dim for inspection by tests.
func (to *TestOutput) AddExtraDimension(key, value string) {
	to.extraDims[key] = value
}

// RemoveExtraDimension removes the dim.
func (to *TestOutput) RemoveExtraDimension(key string) {
	delete(to.extraDims, key)
}

// ExtraDimensions returns the extra dims added so far.
func (to *TestOutput) ExtraDimensions() map[string]string {
	return to.extraDims
}

// FlushSamples returns all of the samples emitted so far without waiting.
func (to *TestOutput) FlushSamples() []*samples.Sample {
	var out []*samples.Sample
	for {
		select {
		case s := <-to.sampleChan:
			out = append(out, s)
		default:
			return out
		}
	}
}

// WaitForSamples waits for at least count samples to be emitted, up to
// waitSeconds, and returns however many arrived by then.
func (to *TestOutput) WaitForSamples(count, waitSeconds int) []*samples.Sample {
	var out []*samples.Sample
	timeout := time.After(time.Duration(waitSeconds) * time.Second)

	for len(out) < count {
		select {
		case s := <-to.sampleChan:
			out = append(out, s)
		case <-timeout:
			return out
		}
	}
	return out
}
