package processmetrics

import (
	"io/fs"
	"syscall"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/process"
)

// psutilProcess adapts a gopsutil process handle to the Process interface.
type psutilProcess struct {
	p *process.Process
}

var _ Process = &psutilProcess{}

func (pp *psutilProcess) Pid() int32 { return pp.p.Pid }

func (pp *psutilProcess) Name() (string, error) { return pp.p.Name() }

func (pp *psutilProcess) Cmdline() (string, error) { return pp.p.Cmdline() }

func (pp *psutilProcess) CPUTimes() (*CPUTimes, error) {
	times, err := pp.p.Times()
	if err != nil {
		return nil, err
	}
	return &CPUTimes{User: times.User, System: times.System}, nil
}

func (pp *psutilProcess) CreateTime() (int64, error) { return pp.p.CreateTime() }

func (pp *psutilProcess) NumThreads() (int32, error) { return pp.p.NumThreads() }

func (pp *psutilProcess) MemoryInfo() (*MemoryStats, error) {
	mem, err := pp.p.MemoryInfo()
	if err != nil {
		return nil, err
	}
	return &MemoryStats{
		RSS:    mem.RSS,
		VMS:    mem.VMS,
		HWM:    mem.HWM,
		Data:   mem.Data,
		Stack:  mem.Stack,
		Locked: mem.Locked,
		Swap:   mem.Swap,
	}, nil
}

func (pp *psutilProcess) IOCounters() (*IOStats, error) {
	io, err := pp.p.IOCounters()
	if err != nil {
		return nil, err
	}
	return &IOStats{
		ReadCount:  io.ReadCount,
		WriteCount: io.WriteCount,
		ReadBytes:  io.ReadBytes,
		WriteBytes: io.WriteBytes,
	}, nil
}

// Swapped out in tests to supply fake process lists.
var listProcesses = func() ([]Process, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		out = append(out, &psutilProcess{p: p})
	}
	return out, nil
}

// Swapped out in tests to supply a fake process for a pid.
var processByPID = func(pid int32) (Process, error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil, err
	}
	return &psutilProcess{p: p}, nil
}

// isProcessGone tells whether an error from a process handle means the
// process no longer exists, as opposed to a transient read failure.  On
// Linux a vanished process surfaces as ENOENT from reading the pid's /proc
// entries, not as ErrorProcessNotRunning.
func isProcessGone(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, process.ErrorProcessNotRunning) ||
		errors.Is(err, syscall.ESRCH) ||
		errors.Is(err, fs.ErrNotExist)
}
