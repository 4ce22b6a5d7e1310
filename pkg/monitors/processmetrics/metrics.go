package processmetrics

import (
	"time"

	"github.com/pollard/poll-agent/pkg/samples"
)

// CPUTimes is the accumulated CPU time a process has consumed, in seconds.
type CPUTimes struct {
	User   float64
	System float64
}

// MemoryStats holds the memory facets of one process.  All values are bytes.
type MemoryStats struct {
	RSS    uint64
	VMS    uint64
	HWM    uint64
	Data   uint64
	Stack  uint64
	Locked uint64
	Swap   uint64
}

// IOStats holds the accumulated disk I/O counters of one process.
type IOStats struct {
	ReadCount  uint64
	WriteCount uint64
	ReadBytes  uint64
	WriteBytes uint64
}

// Process is the capability a monitored process handle must provide.  The
// production implementation wraps gopsutil; tests substitute fakes with
// fixed values.
type Process interface {
	Pid() int32
	Name() (string, error)
	Cmdline() (string, error)
	CPUTimes() (*CPUTimes, error)
	// CreateTime is milliseconds since the Unix epoch.
	CreateTime() (int64, error)
	NumThreads() (int32, error)
	MemoryInfo() (*MemoryStats, error)
	IOCounters() (*IOStats, error)
}

// Swapped out in tests for deterministic uptime values.
var timeNow = time.Now

// processMetric binds one declared metric to the extractor that reads it off
// a process handle.  Emission walks the table top to bottom, so a cycle's
// samples are always in declaration order.
type processMetric struct {
	metric     string
	dims       map[string]string
	sampleType samples.SampleType
	extract    func(Process) (samples.Value, error)
}

func cpuFacet(f func(*CPUTimes) float64) func(Process) (samples.Value, error) {
	return func(p Process) (samples.Value, error) {
		times, err := p.CPUTimes()
		if err != nil {
			return nil, err
		}
		return samples.NewFloatValue(f(times)), nil
	}
}

func memoryFacet(f func(*MemoryStats) uint64) func(Process) (samples.Value, error) {
	return func(p Process) (samples.Value, error) {
		mem, err := p.MemoryInfo()
		if err != nil {
			return nil, err
		}
		return samples.NewIntValue(int64(f(mem))), nil
	}
}

func ioFacet(f func(*IOStats) uint64) func(Process) (samples.Value, error) {
	return func(p Process) (samples.Value, error) {
		io, err := p.IOCounters()
		if err != nil {
			return nil, err
		}
		return samples.NewIntValue(int64(f(io))), nil
	}
}

func uptimeSeconds(p Process) (samples.Value, error) {
	createdMs, err := p.CreateTime()
	if err != nil {
		return nil, err
	}
	nowMs := timeNow().UnixNano() / int64(time.Millisecond)
	return samples.NewFloatValue(float64(nowMs-createdMs) / 1000), nil
}

func threadCount(p Process) (samples.Value, error) {
	n, err := p.NumThreads()
	if err != nil {
		return nil, err
	}
	return samples.NewIntValue(int64(n)), nil
}

var processMetrics = []processMetric{
	{"proc.cpu.seconds", map[string]string{"type": "user"}, samples.Cumulative,
		cpuFacet(func(t *CPUTimes) float64 { return t.User })},
	{"proc.cpu.seconds", map[string]string{"type": "system"}, samples.Cumulative,
		cpuFacet(func(t *CPUTimes) float64 { return t.System })},
	{"proc.uptime", nil, samples.Gauge, uptimeSeconds},
	{"proc.threads", nil, samples.Gauge, threadCount},
	{"proc.mem.bytes", map[string]string{"type": "rss"}, samples.Gauge,
		memoryFacet(func(m *MemoryStats) uint64 { return m.RSS })},
	{"proc.mem.bytes", map[string]string{"type": "vms"}, samples.Gauge,
		memoryFacet(func(m *MemoryStats) uint64 { return m.VMS })},
	{"proc.mem.bytes", map[string]string{"type": "hwm"}, samples.Gauge,
		memoryFacet(func(m *MemoryStats) uint64 { return m.HWM })},
	{"proc.mem.bytes", map[string]string{"type": "data"}, samples.Gauge,
		memoryFacet(func(m *MemoryStats) uint64 { return m.Data })},
	{"proc.mem.bytes", map[string]string{"type": "stack"}, samples.Gauge,
		memoryFacet(func(m *MemoryStats) uint64 { return m.Stack })},
	{"proc.mem.bytes", map[string]string{"type": "locked"}, samples.Gauge,
		memoryFacet(func(m *MemoryStats) uint64 { return m.Locked })},
	{"proc.mem.bytes", map[string]string{"type": "swap"}, samples.Gauge,
		memoryFacet(func(m *MemoryStats) uint64 { return m.Swap })},
	{"proc.disk.ops", map[string]string{"type": "read"}, samples.Cumulative,
		ioFacet(func(io *IOStats) uint64 { return io.ReadCount })},
	{"proc.disk.ops", map[string]string{"type": "write"}, samples.Cumulative,
		ioFacet(func(io *IOStats) uint64 { return io.WriteCount })},
	{"proc.disk.bytes", map[string]string{"type": "read"}, samples.Cumulative,
		ioFacet(func(io *IOStats) uint64 { return io.ReadBytes })},
	{"proc.disk.bytes", map[string]string{"type": "write"}, samples.Cumulative,
		ioFacet(func(io *IOStats) uint64 { return io.WriteBytes })},
}
