// Package samples contains the data model for metric samples that monitors
// emit to the agent core.
package samples

import (
	"fmt"
	"time"
)

// SampleType tells downstream consumers how to interpret a sample's value.
type SampleType int

const (
	// Gauge is an instantaneous value with no accumulation semantics.
	Gauge SampleType = iota
	// Cumulative is a counter that is monotonically non-decreasing since an
	// explicit reset point.  Consumers must derive rates/deltas from it
	// rather than treating it as an absolute level.
	Cumulative
)

func (st SampleType) String() string {
	if st == Cumulative {
		return "cumulative"
	}
	return "gauge"
}

// Value is a single numeric sample value.
type Value interface {
	Float() float64
	String() string
}

// IntValue holds an integer sample value.
type IntValue int64

// Float converts the value for emission.
func (v IntValue) Float() float64 { return float64(v) }

func (v IntValue) String() string { return fmt.Sprintf("%d", int64(v)) }

// Int returns the underlying integer.
func (v IntValue) Int() int64 { return int64(v) }

// FloatValue holds a floating-point sample value.
type FloatValue float64

// Float converts the value for emission.
func (v FloatValue) Float() float64 { return float64(v) }

func (v FloatValue) String() string { return fmt.Sprintf("%g", float64(v)) }

// NewIntValue makes a Value from an int64.
func NewIntValue(v int64) Value { return IntValue(v) }

// NewFloatValue makes a Value from a float64.
func NewFloatValue(v float64) Value { return FloatValue(v) }

// Sample is a single metric observation from one gather cycle.  Samples are
// ephemeral: a monitor hands them to its Output immediately and never holds
// onto them.
type Sample struct {
	// Metric is the registered metric name.
	Metric string
	// Dimensions disambiguate sub-series of the same metric (e.g. type=read
	// vs type=write).
	Dimensions map[string]string
	// Value of the observation.
	Value Value
	// Type of the metric this sample belongs to.
	Type SampleType
	// Timestamp of the observation.  If zero, the agent core stamps it with
	// the time it first sees the sample.
	Timestamp time.Time
}

// New creates a Sample.  The dimensions map is used as-is, so callers must
// not mutate it after handing the sample off.
func New(metric string, dimensions map[string]string, value Value, sampleType SampleType, timestamp time.Time) *Sample {
	return &Sample{
		Metric:     metric,
		Dimensions: dimensions,
		Value:      value,
		Type:       sampleType,
		Timestamp:  timestamp,
	}
}

func (s *Sample) String() string {
	return fmt.Sprintf("%s{%v} = %s (%s)", s.Metric, s.Dimensions, s.Value, s.Type)
}
