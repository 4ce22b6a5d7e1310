package monitors

import (
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/pollard/poll-agent/pkg/core/config"
	"github.com/pollard/poll-agent/pkg/monitors/types"
	"github.com/pollard/poll-agent/pkg/samples"
	"github.com/pollard/poll-agent/pkg/utils"
)

// MonitorManager coordinates the startup and shutdown of monitors based on
// the configuration provided by the main agent config.  On reconfiguration
// it diffs the incoming monitor configs against the running set by hash so
// that unchanged monitors keep running uninterrupted.
type MonitorManager struct {
	registry *Registry

	monitorConfigs map[uint64]config.MonitorCustomConfig
	activeMonitors []*ActiveMonitor
	badConfigs     map[uint64]*config.MonitorConfig
	lock           sync.Mutex

	// Sample channel to hand out to monitor outputs
	sampleChan chan<- *samples.Sample

	intervalSeconds int

	idGenerator func() string
	dropped     *atomic.Uint64
}

// NewMonitorManager creates a new instance of the MonitorManager
func NewMonitorManager(registry *Registry) *MonitorManager {
	return &MonitorManager{
		registry:       registry,
		monitorConfigs: make(map[uint64]config.MonitorCustomConfig),
		badConfigs:     make(map[uint64]*config.MonitorConfig),
		idGenerator:    utils.NewIDGenerator(),
		dropped:        atomic.NewUint64(0),
	}
}

// SetSampleChannel configures the channel that monitor outputs will send
// gathered samples to.  Must be called before Configure.
func (mm *MonitorManager) SetSampleChannel(ch chan<- *samples.Sample) {
	mm.sampleChan = ch
}

// Configure receives a list of monitor configurations.  It will start up any
// monitor that is not currently running, stop any that are no longer
// configured, and restart any that have changed config.
func (mm *MonitorManager) Configure(confs []config.MonitorConfig, intervalSeconds int) {
	mm.lock.Lock()
	defer mm.lock.Unlock()

	mm.intervalSeconds = intervalSeconds

	seenHashes := map[uint64]bool{}
	for i := range confs {
		conf := &confs[i]

		hash := conf.Hash()
		if seenHashes[hash] {
			logrus.WithFields(logrus.Fields{
				"monitorType": conf.Type,
			}).Error("Monitor config is duplicated, ignoring redundant copy")
			continue
		}
		seenHashes[hash] = true

		if _, ok := mm.monitorConfigs[hash]; ok {
			// The monitor is running with an identical config already.
			continue
		}
		if bad, ok := mm.badConfigs[hash]; ok && bad != nil {
			// The config was previously rejected and hasn't changed.
			continue
		}

		if err := mm.handleNewConfig(conf, hash); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"monitorType": conf.Type,
			}).Error("Could not configure monitor")
			conf.ValidationError = err.Error()
			mm.badConfigs[hash] = conf
		}
	}

	// Any monitor whose config hash is no longer present gets shut down.
	for hash := range mm.monitorConfigs {
		if !seenHashes[hash] {
			mm.deleteMonitorsByConfigHash(hash)
		}
	}
	for hash := range mm.badConfigs {
		if !seenHashes[hash] {
			delete(mm.badConfigs, hash)
		}
	}

	mm.deleteDoomedMonitors()
}

func (mm *MonitorManager) handleNewConfig(conf *config.MonitorConfig, hash uint64) error {
	if conf.IntervalSeconds == 0 {
		conf.IntervalSeconds = mm.intervalSeconds
	}

	monConfig, err := mm.registry.newConfigTemplate(conf.Type)
	if err != nil {
		return err
	}

	if err := config.DecodeMonitorConfig(conf, monConfig); err != nil {
		return err
	}

	if err := mm.createAndConfigureNewMonitor(monConfig, hash); err != nil {
		return err
	}

	mm.monitorConfigs[hash] = monConfig
	return nil
}

// Creates a new monitor instance, configures it, and inserts it into the
// list of active monitors.
func (mm *MonitorManager) createAndConfigureNewMonitor(monConfig config.MonitorCustomConfig, hash uint64) error {
	id := types.MonitorID(mm.idGenerator())
	coreConfig := monConfig.MonitorConfigCore()

	instance, err := mm.registry.newInstance(coreConfig.Type)
	if err != nil {
		return err
	}

	output := &monitorOutput{
		monitorType: coreConfig.Type,
		monitorID:   id,
		sampleChan:  mm.sampleChan,
		extraDims:   map[string]string{},
		dropped:     mm.dropped,
	}

	am := &ActiveMonitor{
		instance:   instance,
		id:         id,
		configHash: hash,
		output:     output,
	}

	if err := am.configureMonitor(mm.registry, monConfig); err != nil {
		return err
	}

	mm.activeMonitors = append(mm.activeMonitors, am)

	logrus.WithFields(logrus.Fields{
		"monitorType": coreConfig.Type,
		"monitorID":   id,
	}).Info("Started monitor")

	return nil
}

func (mm *MonitorManager) deleteMonitorsByConfigHash(hash uint64) {
	for i := range mm.activeMonitors {
		if mm.activeMonitors[i].configHash == hash {
			logrus.WithFields(logrus.Fields{
				"monitorID": mm.activeMonitors[i].id,
			}).Info("Shutting down monitor due to config change")
			mm.activeMonitors[i].doomed = true
		}
	}
	delete(mm.monitorConfigs, hash)
}

func (mm *MonitorManager) deleteDoomedMonitors() {
	var remaining []*ActiveMonitor

	for i := range mm.activeMonitors {
		am := mm.activeMonitors[i]
		if am.doomed {
			am.Shutdown()
		} else {
			remaining = append(remaining, am)
		}
	}

	mm.activeMonitors = remaining
}

// ActiveMonitorCount returns the number of running monitors.
func (mm *MonitorManager) ActiveMonitorCount() int {
	mm.lock.Lock()
	defer mm.lock.Unlock()
	return len(mm.activeMonitors)
}

// BadConfigCount returns the number of monitor configs that were rejected
// during the last Configure call.
func (mm *MonitorManager) BadConfigCount() int {
	mm.lock.Lock()
	defer mm.lock.Unlock()
	return len(mm.badConfigs)
}

// DroppedSampleCount returns the total number of samples dropped by monitor
// outputs because the writer could not keep up.
func (mm *MonitorManager) DroppedSampleCount() uint64 {
	return mm.dropped.Load()
}

// Shutdown will shutdown all managed monitors and deinitialize the manager.
func (mm *MonitorManager) Shutdown() {
	mm.lock.Lock()
	defer mm.lock.Unlock()

	for i := range mm.activeMonitors {
		mm.activeMonitors[i].doomed = true
	}
	mm.deleteDoomedMonitors()

	mm.activeMonitors = nil
	mm.monitorConfigs = nil
	mm.badConfigs = nil
}
