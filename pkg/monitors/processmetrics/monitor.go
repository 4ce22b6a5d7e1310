// Package processmetrics contains a monitor that reports CPU, memory,
// thread and disk I/O metrics for a single process.  The process is picked
// either by matching a regular expression against process names and command
// lines or by pid, and is re-resolved whenever the previous handle stops
// working.
package processmetrics

import (
	"context"
	"os"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pollard/poll-agent/pkg/core/config"
	"github.com/pollard/poll-agent/pkg/monitors/types"
	"github.com/pollard/poll-agent/pkg/samples"
	"github.com/pollard/poll-agent/pkg/utils"
)

// ownPidSentinel in the pid option selects the agent's own process.
const ownPidSentinel = "$$"

// Config for the process metrics monitor.
type Config struct {
	config.MonitorConfig `yaml:",inline"`

	// A label for the monitored process, attached to every emitted sample as
	// the "app" dimension.
	ID string `yaml:"id" validate:"required"`
	// A regular expression matched case-insensitively against process
	// names and command lines.  The first matching process is monitored.
	// Takes precedence over pid when both are given.
	Commandline string `yaml:"commandline"`
	// The pid of the process to monitor, or "$$" for the agent's own
	// process.
	Pid string `yaml:"pid"`
}

// Validate ensures there is some way to find the target process.
func (c *Config) Validate() error {
	if c.Commandline == "" && c.Pid == "" {
		return errors.New("one of commandline or pid must be set")
	}
	if c.Commandline != "" {
		if _, err := regexp.Compile(`(?i)` + c.Commandline); err != nil {
			return errors.Wrap(err, "commandline is not a valid regular expression")
		}
	}
	if c.Pid != "" && c.Pid != ownPidSentinel {
		if _, err := strconv.ParseInt(c.Pid, 10, 32); err != nil {
			return errors.Errorf("pid must be a number or '%s'", ownPidSentinel)
		}
	}
	return nil
}

// Monitor that reports metrics about a single target process.
type Monitor struct {
	Output types.Output

	conf    *Config
	matcher *regexp.Regexp
	// The handle for the cycle in progress.  Cleared when the process
	// disappears mid-cycle so a stale handle never outlives its target.
	proc   Process
	logger *logrus.Entry
}

// Configure the monitor.  The target process is resolved on each gather
// cycle, not here, so a not-yet-started target is not a configuration
// error.
func (m *Monitor) Configure(conf *Config) error {
	m.conf = conf
	m.logger = logrus.WithFields(logrus.Fields{
		"monitorType": monitorType,
		"app":         conf.ID,
	})

	if conf.Commandline != "" {
		m.matcher = regexp.MustCompile(`(?i)` + conf.Commandline)
	}

	return nil
}

// Collect runs one gather cycle.  The target is re-resolved every cycle
// since its identity can change across ticks (e.g. after a restart).  A
// cycle with no resolvable target emits nothing; the target going away
// mid-cycle stops emission at the metric that failed.
func (m *Monitor) Collect(ctx context.Context) error {
	proc, err := m.resolveTarget()
	if err != nil {
		return err
	}
	if proc == nil {
		m.proc = nil
		m.logger.Debug("No matching process found, will look again next cycle")
		return nil
	}
	m.proc = proc

	dims := map[string]string{"app": m.conf.ID}

	for i := range processMetrics {
		pm := &processMetrics[i]

		value, err := pm.extract(m.proc)
		if err != nil {
			if isProcessGone(err) {
				m.logger.WithField("pid", m.proc.Pid()).
					Info("Target process has gone away, abandoning cycle")
				m.proc = nil
				return nil
			}
			m.logger.WithError(err).WithField("metric", pm.metric).
				Warn("Could not read metric from process")
			continue
		}

		m.Output.SendSamples(samples.New(pm.metric,
			utils.MergeStringMaps(dims, pm.dims), value, pm.sampleType, timeNow()))
	}

	return nil
}

// resolveTarget finds the process to monitor.  Commandline matching wins
// over pid when both are configured.  A nil, nil return means nothing
// matched this cycle.
func (m *Monitor) resolveTarget() (Process, error) {
	if m.matcher != nil {
		procs, err := listProcesses()
		if err != nil {
			return nil, errors.Wrap(err, "could not list processes")
		}

		for _, p := range procs {
			// The pattern can match either the short process name or the
			// full command line.  Processes we can't inspect at all (gone,
			// or owned by another user) are skipped rather than failing
			// the search.
			if name, err := p.Name(); err == nil && m.matcher.MatchString(name) {
				return p, nil
			}
			if cmdline, err := p.Cmdline(); err == nil && m.matcher.MatchString(cmdline) {
				return p, nil
			}
		}
		return nil, nil
	}

	pid := int64(os.Getpid())
	if m.conf.Pid != ownPidSentinel {
		// Validated at config time.
		pid, _ = strconv.ParseInt(m.conf.Pid, 10, 32)
	}

	proc, err := processByPID(int32(pid))
	if err != nil {
		if isProcessGone(err) {
			return nil, nil
		}
		return nil, err
	}
	return proc, nil
}
